package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

const msgCheckoutFailed = "Checkout failed"

// CheckoutHandler exposes the shopper's checkout attempt. Every answer,
// successful or not, carries the current checkout view.
type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler { return &CheckoutHandler{} }

type checkoutError struct {
	model.ErrorResponse
	Checkout checkout.View `json:"checkout"`
}

type selectAddressRequest struct {
	AddressID int64 `json:"addressId"`
}

type instructionsRequest struct {
	Instructions string `json:"instructions"`
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shopper.FromContext(r.Context()).Checkout.View())
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())
	view, err := s.Checkout.Begin(r.Context())
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())
	if err := s.Checkout.Reset(r.Context()); err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Checkout.View())
}

func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	var req selectAddressRequest
	if err := decodeJSON(r, &req); err != nil || req.AddressID <= 0 {
		writeError(w, r, http.StatusBadRequest, "addressId is required")
		return
	}
	view, err := s.Checkout.SelectAddress(req.AddressID)
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	req, ok := readAddress(w, r)
	if !ok {
		return
	}
	view, err := s.Checkout.AddAddress(r.Context(), req)
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *CheckoutHandler) SetInstructions(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	var req instructionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.Checkout.SetInstructions(strings.TrimSpace(req.Instructions))
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Place creates the order and its payment. The returned view carries the
// paymentIntent the UI opens the payment widget with.
func (h *CheckoutHandler) Place(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())
	if _, err := s.Checkout.PlaceOrder(r.Context()); err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Checkout.View())
}

func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	var cb checkout.PaymentCallback
	if err := decodeJSON(r, &cb); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	view, err := s.Checkout.ConfirmPayment(r.Context(), cb)
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) RetryVerification(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())
	view, err := s.Checkout.RetryVerification(r.Context())
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) RestartPayment(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())
	if _, err := s.Checkout.RestartPayment(r.Context()); err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Checkout.View())
}

func (h *CheckoutHandler) fail(w http.ResponseWriter, r *http.Request, s *shopper.Shopper, err error) {
	if errors.Is(err, checkout.ErrNotAuthenticated) {
		writeLoginRequired(w, r)
		return
	}
	if clients.IsUnauthorized(err) {
		WriteUpstreamError(w, r, err, msgCheckoutFailed)
		return
	}

	view := s.Checkout.View()
	status, msg := checkoutStatus(err, view.LastError)
	writeJSON(w, status, checkoutError{
		ErrorResponse: model.ErrorResponse{
			Error:         msg,
			CorrelationID: middleware.GetCorrelationID(r.Context()),
		},
		Checkout: view,
	})
}

// checkoutStatus maps err to a status and message. Backend failures prefer
// the message the orchestrator already showed the shopper.
func checkoutStatus(err error, shown string) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrNoAddress),
		errors.Is(err, checkout.ErrUnknownAddress),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidCallback):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, checkout.ErrInvalidState),
		errors.Is(err, checkout.ErrOrderPending):
		return http.StatusConflict, err.Error()
	}

	status := clients.StatusCode(err)
	if status < 400 || status >= 500 {
		status = http.StatusBadGateway
	}
	if shown != "" {
		return status, shown
	}
	return status, clients.UserMessage(err, msgCheckoutFailed)
}
