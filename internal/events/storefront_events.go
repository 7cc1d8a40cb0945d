package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventTypeOrderPlaced               = "OrderPlaced"
	EventTypeCheckoutCompleted         = "CheckoutCompleted"
	EventTypePaymentVerificationFailed = "PaymentVerificationFailed"

	orderPlacedSchema               = "storefront.order.placed.v1"
	checkoutCompletedSchema         = "storefront.checkout.completed.v1"
	paymentVerificationFailedSchema = "storefront.payment.verification_failed.v1"
)

type OrderLine struct {
	MenuItemID int64 `json:"menuItemId"`
	Quantity   int   `json:"quantity"`
}

type OrderPlaced struct {
	SessionID    string          `json:"sessionId"`
	UserID       int64           `json:"userId,omitempty"`
	OrderID      int64           `json:"orderId"`
	OrderNumber  string          `json:"orderNumber"`
	RestaurantID int64           `json:"restaurantId"`
	Items        []OrderLine     `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Timestamp    time.Time       `json:"timestamp"`
}

type CheckoutCompleted struct {
	SessionID   string          `json:"sessionId"`
	UserID      int64           `json:"userId,omitempty"`
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	PaymentID   string          `json:"paymentId"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
}

type PaymentVerificationFailed struct {
	SessionID       string    `json:"sessionId"`
	UserID          int64     `json:"userId,omitempty"`
	OrderID         int64     `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	ProviderOrderID string    `json:"razorpayOrderId"`
	Reason          string    `json:"reason"`
	Timestamp       time.Time `json:"timestamp"`
}
