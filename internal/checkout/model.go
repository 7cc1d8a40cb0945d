package checkout

import (
	"errors"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type State string

const (
	StateIdle             State = "idle"
	StateAddressSelection State = "address_selection"
	StateSubmitting       State = "submitting"
	StatePaymentPending   State = "payment_pending"
	StatePaymentVerifying State = "payment_verifying"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

type RetryOption string

const (
	RetryVerification RetryOption = "retry-verification"
	RestartPayment    RetryOption = "restart-payment"
)

var (
	ErrNoAddress        = errors.New("no delivery address selected")
	ErrUnknownAddress   = errors.New("unknown delivery address")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidState     = errors.New("invalid checkout state")
	ErrOrderPending     = errors.New("an order is already awaiting payment")
	ErrInvalidCallback  = errors.New("invalid payment callback")
)

// Shopper-facing messages.
const (
	msgSelectAddress      = "Please select a delivery address"
	msgAddressAdded       = "Address added successfully"
	msgAddAddressFailed   = "Failed to add address"
	msgPlaceOrderFailed   = "Failed to place order"
	msgPaymentInitFailed  = "Failed to initiate payment"
	msgVerificationFailed = "Payment verification failed"
	msgOrderPlaced        = "Order placed successfully!"
	msgAttemptInterrupted = "Your payment was interrupted. Please try again"
)

const (
	MerchantName = "Zwiggy"
	ThemeColor   = "#fc8019"
)

// PaymentIntent carries what the payment widget needs to open.
type PaymentIntent struct {
	Key             string  `json:"key"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	ProviderOrderID string  `json:"order_id"`
	Prefill         Prefill `json:"prefill"`
	Theme           Theme   `json:"theme"`
}

type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type Theme struct {
	Color string `json:"color"`
}

// PaymentCallback is what the payment widget hands back on success.
type PaymentCallback struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (c PaymentCallback) valid() bool {
	return c.RazorpayOrderID != "" && c.RazorpayPaymentID != "" && c.RazorpaySignature != ""
}

// View is a snapshot of a checkout attempt.
type View struct {
	State             State             `json:"state"`
	Addresses         []clients.Address `json:"addresses"`
	SelectedAddressID int64             `json:"selectedAddressId,omitempty"`
	Instructions      string            `json:"deliveryInstructions"`
	Bill              cart.Bill         `json:"bill"`
	Order             *clients.Order    `json:"order,omitempty"`
	Payment           *clients.Payment  `json:"payment,omitempty"`
	Intent            *PaymentIntent    `json:"paymentIntent,omitempty"`
	RetryOptions      []RetryOption     `json:"retryOptions,omitempty"`
	LastError         string            `json:"lastError,omitempty"`
}

// pendingAttempt is the persisted form of an attempt holding an unpaid order.
type pendingAttempt struct {
	State        State            `json:"state"`
	AddressID    int64            `json:"addressId"`
	Instructions string           `json:"deliveryInstructions"`
	Order        clients.Order    `json:"order"`
	Payment      *clients.Payment `json:"payment,omitempty"`
	Intent       *PaymentIntent   `json:"paymentIntent,omitempty"`
	Callback     *PaymentCallback `json:"callback,omitempty"`
	Retry        []RetryOption    `json:"retryOptions,omitempty"`
	LastError    string           `json:"lastError,omitempty"`
}
