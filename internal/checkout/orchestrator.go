package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

type Cart interface {
	Snapshot() cart.State
	Bill(fees cart.Fees) cart.Bill
	Clear(ctx context.Context) error
}

type Session interface {
	Token() string
	User() (clients.UserInfo, bool)
}

type OrderAPI interface {
	Create(ctx context.Context, token string, req clients.CreateOrderRequest) (clients.Order, error)
}

type PaymentAPI interface {
	CreateForOrder(ctx context.Context, token string, orderID int64) (clients.Payment, error)
	Verify(ctx context.Context, token string, req clients.VerifyPaymentRequest) (clients.Payment, error)
}

type AddressAPI interface {
	List(ctx context.Context, token string) ([]clients.Address, error)
	Create(ctx context.Context, token string, req clients.AddressRequest) (clients.Address, error)
}

type Notifier interface {
	Success(message string) int64
	Error(message string) int64
}

type Deps struct {
	SessionID string
	// Store keeps an attempt with an unpaid order across shopper rebuilds.
	// Nil disables that.
	Store     storage.Store
	Cart      Cart
	Session   Session
	Orders    OrderAPI
	Payments  PaymentAPI
	Addresses AddressAPI
	Toasts    Notifier
	Events    events.Publisher
	Fees      cart.Fees
	Logger    *log.Logger
}

// Orchestrator drives one shopper's checkout:
//
//	idle -> address_selection -> submitting -> payment_pending
//	     -> payment_verifying -> completed | failed
//
// Order creation is never retried on its own. Once an order exists it must
// be paid (or the attempt reset) before another can be placed.
type Orchestrator struct {
	d Deps

	mu           sync.Mutex
	state        State
	addresses    []clients.Address
	addressID    int64
	instructions string
	order        *clients.Order
	payment      *clients.Payment
	intent       *PaymentIntent
	callback     *PaymentCallback
	retry        []RetryOption
	lastErr      string
}

func New(d Deps) *Orchestrator {
	return &Orchestrator{d: d, state: StateIdle}
}

// Load restores an attempt whose order is still unpaid. An attempt cut off
// mid-request comes back as failed with the matching retry options.
func (o *Orchestrator) Load(ctx context.Context) error {
	if o.d.Store == nil {
		return nil
	}
	var p pendingAttempt
	err := storage.GetJSON(ctx, o.d.Store, o.d.SessionID, storage.KeyCheckout, &p)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load checkout: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked()
	o.state = p.State
	o.addressID = p.AddressID
	o.instructions = p.Instructions
	order := p.Order
	o.order = &order
	o.payment = p.Payment
	o.intent = p.Intent
	o.callback = p.Callback
	o.retry = p.Retry
	o.lastErr = p.LastError

	if o.busyLocked() {
		o.state = StateFailed
		o.lastErr = msgAttemptInterrupted
		o.retry = []RetryOption{RestartPayment}
		if o.callback != nil && o.payment != nil {
			o.retry = []RetryOption{RetryVerification, RestartPayment}
		}
	}
	return nil
}

func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

// Begin starts a new attempt: it loads the shopper's addresses and
// preselects the default one.
func (o *Orchestrator) Begin(ctx context.Context) (View, error) {
	token := o.d.Session.Token()
	if token == "" {
		return View{}, ErrNotAuthenticated
	}
	if len(o.d.Cart.Snapshot().Lines) == 0 {
		return View{}, ErrEmptyCart
	}

	o.mu.Lock()
	if o.busyLocked() || (o.order != nil && o.state != StateCompleted) {
		o.mu.Unlock()
		return View{}, ErrOrderPending
	}
	o.mu.Unlock()

	addresses, err := o.d.Addresses.List(ctx, token)
	if err != nil {
		if clients.IsUnauthorized(err) {
			return View{}, err
		}
		o.d.Logger.Printf("checkout: load addresses session=%s cid=%s: %v", o.d.SessionID, middleware.GetCorrelationID(ctx), err)
		addresses = nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.resetLocked()
	o.addresses = slices.Clone(addresses)
	for _, a := range addresses {
		if a.IsDefault {
			o.addressID = a.ID
			break
		}
	}
	o.state = StateAddressSelection
	return o.viewLocked(), nil
}

func (o *Orchestrator) SelectAddress(id int64) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.editableLocked(); err != nil {
		return View{}, err
	}
	if !slices.ContainsFunc(o.addresses, func(a clients.Address) bool { return a.ID == id }) {
		return View{}, ErrUnknownAddress
	}
	o.addressID = id
	return o.viewLocked(), nil
}

// AddAddress creates an address upstream and selects it.
func (o *Orchestrator) AddAddress(ctx context.Context, req clients.AddressRequest) (View, error) {
	o.mu.Lock()
	err := o.editableLocked()
	o.mu.Unlock()
	if err != nil {
		return View{}, err
	}

	token := o.d.Session.Token()
	if token == "" {
		return View{}, ErrNotAuthenticated
	}
	if req.Type == "" {
		req.Type = "HOME"
	}

	addr, err := o.d.Addresses.Create(ctx, token, req)
	if err != nil {
		o.d.Toasts.Error(msgAddAddressFailed)
		return View{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.addresses = append(o.addresses, addr)
	o.addressID = addr.ID
	o.d.Toasts.Success(msgAddressAdded)
	return o.viewLocked(), nil
}

// SyncAddress records an address created or edited outside the checkout.
func (o *Orchestrator) SyncAddress(addr clients.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateIdle || addr.ID == 0 {
		return
	}
	if addr.IsDefault {
		for i := range o.addresses {
			o.addresses[i].IsDefault = false
		}
	}
	if i := slices.IndexFunc(o.addresses, func(a clients.Address) bool { return a.ID == addr.ID }); i >= 0 {
		o.addresses[i] = addr
		return
	}
	o.addresses = append(o.addresses, addr)
}

// ForgetAddress drops a deleted address. It is deselected unless an order
// was already placed with it.
func (o *Orchestrator) ForgetAddress(id int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.addresses = slices.DeleteFunc(o.addresses, func(a clients.Address) bool { return a.ID == id })
	if o.addressID == id && o.order == nil {
		o.addressID = 0
	}
}

func (o *Orchestrator) SetInstructions(s string) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.editableLocked(); err != nil {
		return View{}, err
	}
	o.instructions = s
	return o.viewLocked(), nil
}

// PlaceOrder submits the cart as an order and requests a payment for it.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (PaymentIntent, error) {
	o.mu.Lock()
	if o.busyLocked() || (o.order != nil && o.state != StateCompleted) {
		o.mu.Unlock()
		return PaymentIntent{}, ErrOrderPending
	}
	if o.state != StateAddressSelection && o.state != StateFailed {
		o.mu.Unlock()
		return PaymentIntent{}, ErrInvalidState
	}
	if o.addressID == 0 {
		o.mu.Unlock()
		o.d.Toasts.Error(msgSelectAddress)
		return PaymentIntent{}, ErrNoAddress
	}

	st := o.d.Cart.Snapshot()
	if len(st.Lines) == 0 || st.Restaurant == nil {
		o.mu.Unlock()
		return PaymentIntent{}, ErrEmptyCart
	}
	token := o.d.Session.Token()
	if token == "" {
		o.mu.Unlock()
		return PaymentIntent{}, ErrNotAuthenticated
	}

	req := clients.CreateOrderRequest{
		RestaurantID:         st.Restaurant.ID,
		DeliveryAddressID:    o.addressID,
		DeliveryInstructions: o.instructions,
		Items:                make([]clients.OrderItemRequest, 0, len(st.Lines)),
	}
	for _, l := range st.Lines {
		req.Items = append(req.Items, clients.OrderItemRequest{MenuItemID: l.ItemID, Quantity: l.Quantity})
	}
	o.state = StateSubmitting
	o.lastErr = ""
	o.retry = nil
	o.mu.Unlock()

	created, err := o.d.Orders.Create(ctx, token, req)
	if err != nil {
		msg := clients.UserMessage(err, msgPlaceOrderFailed)
		o.fail(ctx, msg, nil)
		o.d.Toasts.Error(msg)
		return PaymentIntent{}, err
	}

	o.mu.Lock()
	o.order = &created
	o.saveLocked(ctx)
	o.mu.Unlock()

	user, _ := o.d.Session.User()
	lines := make([]events.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, events.OrderLine{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}
	o.publish(ctx, func(p events.Publisher, meta events.EventMeta) error {
		return p.PublishOrderPlaced(ctx, meta, events.OrderPlaced{
			SessionID:    o.d.SessionID,
			UserID:       user.ID,
			OrderID:      created.ID,
			OrderNumber:  created.OrderNumber,
			RestaurantID: created.RestaurantID,
			Items:        lines,
			TotalAmount:  created.TotalAmount,
			Timestamp:    time.Now().UTC(),
		})
	})

	return o.requestPayment(ctx, token, created)
}

// ConfirmPayment verifies the widget's callback with the backend. On
// success the cart is cleared; on failure the order stays as is upstream
// and the shopper may retry the verification or restart the payment.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, cb PaymentCallback) (View, error) {
	if !cb.valid() {
		return View{}, ErrInvalidCallback
	}

	o.mu.Lock()
	if o.order == nil || o.payment == nil || (o.state != StatePaymentPending && o.state != StateFailed) {
		o.mu.Unlock()
		return View{}, ErrInvalidState
	}
	if cb.RazorpayOrderID != o.payment.RazorpayOrderID {
		o.mu.Unlock()
		return View{}, ErrInvalidCallback
	}
	created := *o.order
	o.callback = &cb
	o.state = StatePaymentVerifying
	o.saveLocked(ctx)
	o.mu.Unlock()

	return o.verify(ctx, created, cb)
}

// RetryVerification re-sends the last payment callback.
func (o *Orchestrator) RetryVerification(ctx context.Context) (View, error) {
	o.mu.Lock()
	if o.state != StateFailed || o.callback == nil || o.order == nil {
		o.mu.Unlock()
		return View{}, ErrInvalidState
	}
	created, cb := *o.order, *o.callback
	o.state = StatePaymentVerifying
	o.saveLocked(ctx)
	o.mu.Unlock()

	return o.verify(ctx, created, cb)
}

// RestartPayment requests a fresh payment for the order already placed.
func (o *Orchestrator) RestartPayment(ctx context.Context) (PaymentIntent, error) {
	o.mu.Lock()
	if o.order == nil || (o.state != StateFailed && o.state != StatePaymentPending) {
		o.mu.Unlock()
		return PaymentIntent{}, ErrInvalidState
	}
	token := o.d.Session.Token()
	if token == "" {
		o.mu.Unlock()
		return PaymentIntent{}, ErrNotAuthenticated
	}
	created := *o.order
	o.callback = nil
	o.state = StateSubmitting
	o.saveLocked(ctx)
	o.mu.Unlock()

	return o.requestPayment(ctx, token, created)
}

// Reset abandons the current attempt. An order already created stays
// placed upstream.
func (o *Orchestrator) Reset(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busyLocked() {
		return ErrInvalidState
	}
	o.resetLocked()
	o.saveLocked(ctx)
	return nil
}

// requestPayment runs with the attempt already marked submitting, which
// keeps Reset away from the order until it returns.
func (o *Orchestrator) requestPayment(ctx context.Context, token string, created clients.Order) (PaymentIntent, error) {
	payment, err := o.d.Payments.CreateForOrder(ctx, token, created.ID)
	if err != nil {
		msg := clients.UserMessage(err, msgPaymentInitFailed)
		o.fail(ctx, msg, []RetryOption{RestartPayment})
		o.d.Toasts.Error(msg)
		return PaymentIntent{}, err
	}

	user, _ := o.d.Session.User()
	intent := PaymentIntent{
		Key:             payment.RazorpayKeyID,
		Amount:          minorUnits(payment.Amount),
		Currency:        payment.Currency,
		Name:            MerchantName,
		Description:     fmt.Sprintf("Order #%s", created.OrderNumber),
		ProviderOrderID: payment.RazorpayOrderID,
		Prefill: Prefill{
			Name:    firstNonEmpty(payment.CustomerName, user.Name),
			Email:   firstNonEmpty(payment.CustomerEmail, user.Email),
			Contact: firstNonEmpty(payment.CustomerPhone, user.Phone),
		},
		Theme: Theme{Color: ThemeColor},
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.payment = &payment
	o.intent = &intent
	o.retry = nil
	o.lastErr = ""
	o.state = StatePaymentPending
	o.saveLocked(ctx)
	return intent, nil
}

// verify runs with the attempt already marked payment_verifying.
func (o *Orchestrator) verify(ctx context.Context, created clients.Order, cb PaymentCallback) (View, error) {
	token := o.d.Session.Token()
	_, err := o.d.Payments.Verify(ctx, token, clients.VerifyPaymentRequest{
		OrderID:           created.ID,
		RazorpayOrderID:   cb.RazorpayOrderID,
		RazorpayPaymentID: cb.RazorpayPaymentID,
		RazorpaySignature: cb.RazorpaySignature,
	})
	user, _ := o.d.Session.User()
	if err != nil {
		o.d.Logger.Printf("checkout: payment verification failed order=%d session=%s cid=%s: %v",
			created.ID, o.d.SessionID, middleware.GetCorrelationID(ctx), err)
		o.fail(ctx, msgVerificationFailed, []RetryOption{RetryVerification, RestartPayment})
		o.d.Toasts.Error(msgVerificationFailed)
		o.publish(ctx, func(p events.Publisher, meta events.EventMeta) error {
			return p.PublishPaymentVerificationFailed(ctx, meta, events.PaymentVerificationFailed{
				SessionID:       o.d.SessionID,
				UserID:          user.ID,
				OrderID:         created.ID,
				OrderNumber:     created.OrderNumber,
				ProviderOrderID: cb.RazorpayOrderID,
				Reason:          err.Error(),
				Timestamp:       time.Now().UTC(),
			})
		})
		return o.View(), err
	}

	if err := o.d.Cart.Clear(ctx); err != nil {
		o.d.Logger.Printf("checkout: clear cart after payment session=%s: %v", o.d.SessionID, err)
	}

	o.mu.Lock()
	o.state = StateCompleted
	o.retry = nil
	o.lastErr = ""
	o.saveLocked(ctx)
	amount := decimal.Zero
	if o.payment != nil {
		amount = o.payment.Amount
	}
	view := o.viewLocked()
	o.mu.Unlock()

	o.d.Toasts.Success(msgOrderPlaced)
	o.publish(ctx, func(p events.Publisher, meta events.EventMeta) error {
		return p.PublishCheckoutCompleted(ctx, meta, events.CheckoutCompleted{
			SessionID:   o.d.SessionID,
			UserID:      user.ID,
			OrderID:     created.ID,
			OrderNumber: created.OrderNumber,
			PaymentID:   cb.RazorpayPaymentID,
			Amount:      amount,
			Timestamp:   time.Now().UTC(),
		})
	})
	return view, nil
}

func (o *Orchestrator) fail(ctx context.Context, msg string, retry []RetryOption) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateFailed
	o.lastErr = msg
	o.retry = retry
	o.saveLocked(ctx)
}

// saveLocked persists the attempt while it holds an unpaid order and drops
// it otherwise. The order already exists upstream, so a storage failure is
// logged rather than failing the request.
func (o *Orchestrator) saveLocked(ctx context.Context) {
	if o.d.Store == nil {
		return
	}
	var err error
	if o.order == nil || o.state == StateCompleted {
		err = o.d.Store.Delete(ctx, o.d.SessionID, storage.KeyCheckout)
	} else {
		var values map[string]json.RawMessage
		values, err = storage.Encode(map[string]any{storage.KeyCheckout: pendingAttempt{
			State:        o.state,
			AddressID:    o.addressID,
			Instructions: o.instructions,
			Order:        *o.order,
			Payment:      o.payment,
			Intent:       o.intent,
			Callback:     o.callback,
			Retry:        o.retry,
			LastError:    o.lastErr,
		}})
		if err == nil {
			err = o.d.Store.Put(ctx, o.d.SessionID, values)
		}
	}
	if err != nil {
		o.d.Logger.Printf("checkout: persist attempt session=%s cid=%s: %v", o.d.SessionID, middleware.GetCorrelationID(ctx), err)
	}
}

// publish is best effort: a broker outage never fails a checkout.
func (o *Orchestrator) publish(ctx context.Context, fn func(events.Publisher, events.EventMeta) error) {
	if o.d.Events == nil {
		return
	}
	meta := events.EventMeta{
		CorrelationID: middleware.GetCorrelationID(ctx),
		SessionID:     o.d.SessionID,
	}
	if err := fn(o.d.Events, meta); err != nil {
		o.d.Logger.Printf("checkout: publish event session=%s: %v", o.d.SessionID, err)
	}
}

func (o *Orchestrator) busyLocked() bool {
	return o.state == StateSubmitting || o.state == StatePaymentVerifying
}

// editableLocked reports whether address and instructions may still change.
func (o *Orchestrator) editableLocked() error {
	if o.state == StateAddressSelection || (o.state == StateFailed && o.order == nil) {
		return nil
	}
	return ErrInvalidState
}

func (o *Orchestrator) resetLocked() {
	o.state = StateIdle
	o.addresses = nil
	o.addressID = 0
	o.instructions = ""
	o.order = nil
	o.payment = nil
	o.intent = nil
	o.callback = nil
	o.retry = nil
	o.lastErr = ""
}

func (o *Orchestrator) viewLocked() View {
	v := View{
		State:             o.state,
		Addresses:         slices.Clone(o.addresses),
		SelectedAddressID: o.addressID,
		Instructions:      o.instructions,
		Bill:              o.d.Cart.Bill(o.d.Fees),
		RetryOptions:      slices.Clone(o.retry),
		LastError:         o.lastErr,
	}
	if v.Addresses == nil {
		v.Addresses = []clients.Address{}
	}
	if o.order != nil {
		cp := *o.order
		v.Order = &cp
	}
	if o.payment != nil {
		cp := *o.payment
		v.Payment = &cp
	}
	if o.intent != nil {
		cp := *o.intent
		v.Intent = &cp
	}
	return v
}

// minorUnits converts an amount to paise, the unit the widget expects.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
