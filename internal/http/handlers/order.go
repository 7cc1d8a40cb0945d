package handlers

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

const (
	msgLoadOrders     = "Failed to load orders"
	msgLoadOrder      = "Failed to load order"
	msgOrderCancelled = "Order cancelled"
	msgCancelFailed   = "Failed to cancel order"
	msgNotCancellable = "Order can no longer be cancelled"
)

var orderPaging = clients.PageQuery{Page: 0, Size: 10}

type OrderHandler struct{ c *clients.OrderClient }

func NewOrderHandler(c *clients.OrderClient) *OrderHandler { return &OrderHandler{c: c} }

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	page, err := h.c.ListMine(r.Context(), s.Session.Token(), pageQuery(r, orderPaging))
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadOrders)
		return
	}
	writeJSON(w, http.StatusOK, clients.Page[order.View]{
		Content:       order.NewViews(page.Content),
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Number:        page.Number,
		Size:          page.Size,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	o, err := h.c.Get(r.Context(), s.Session.Token(), id)
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadOrder)
		return
	}
	writeJSON(w, http.StatusOK, order.NewView(o))
}

// Cancel checks the current status first and only forwards the cancel
// while the order is still cancellable.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())
	token := s.Session.Token()

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}
	current, err := h.c.Get(r.Context(), token, id)
	if err != nil {
		s.Toasts.Error(clients.UserMessage(err, msgCancelFailed))
		WriteUpstreamError(w, r, err, msgCancelFailed)
		return
	}
	if !order.Status(current.Status).Cancellable() {
		s.Toasts.Error(msgNotCancellable)
		writeError(w, r, http.StatusConflict, msgNotCancellable)
		return
	}

	cancelled, err := h.c.Cancel(r.Context(), token, id)
	if err != nil {
		s.Toasts.Error(clients.UserMessage(err, msgCancelFailed))
		WriteUpstreamError(w, r, err, msgCancelFailed)
		return
	}
	if cancelled.ID == 0 {
		// some backends answer with an empty body
		cancelled = current
		cancelled.Status = string(order.StatusCancelled)
	}

	s.Toasts.Success(msgOrderCancelled)
	writeJSON(w, http.StatusOK, order.NewView(cancelled))
}
