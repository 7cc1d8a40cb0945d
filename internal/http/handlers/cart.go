package handlers

import (
	"log"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

const (
	msgAddedToCart     = "Added to cart"
	msgReplaceCart     = "Your cart contains items from another restaurant. Clear cart and add this item?"
	msgItemUnavailable = "Item is currently unavailable"
	msgCartFailed      = "Failed to update cart"
)

// CartHandler serves the shopper's cart. Items are priced from the backend
// menu, never from the request.
type CartHandler struct {
	restaurants *clients.RestaurantClient
	menu        *clients.MenuClient
	fees        cart.Fees
	logger      *log.Logger
}

func NewCartHandler(restaurants *clients.RestaurantClient, menu *clients.MenuClient, fees cart.Fees, logger *log.Logger) *CartHandler {
	return &CartHandler{restaurants: restaurants, menu: menu, fees: fees, logger: logger}
}

type cartView struct {
	Lines      []cart.Line      `json:"lines"`
	Restaurant *cart.Restaurant `json:"restaurant"`
	ItemCount  int              `json:"itemCount"`
	Bill       cart.Bill        `json:"bill"`
}

type addItemRequest struct {
	ItemID         int64 `json:"itemId"`
	RestaurantID   int64 `json:"restaurantId"`
	ConfirmReplace bool  `json:"confirmReplace"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view(shopper.FromContext(r.Context())))
}

// AddItem adds one unit. A cart bound to another restaurant answers 409
// with conflict set; repeating the call with confirmReplace swaps the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ItemID <= 0 || req.RestaurantID <= 0 {
		writeError(w, r, http.StatusBadRequest, "itemId and restaurantId are required")
		return
	}

	rest, err := h.restaurants.Get(r.Context(), req.RestaurantID)
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadRestaurant)
		return
	}
	items, err := h.menu.ByRestaurant(r.Context(), req.RestaurantID)
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadMenu)
		return
	}
	item, found := findItem(items, req.ItemID)
	if !found {
		writeError(w, r, http.StatusNotFound, "menu item not found")
		return
	}
	if !item.IsAvailable {
		s.Toasts.Warning(msgItemUnavailable)
		writeError(w, r, http.StatusUnprocessableEntity, msgItemUnavailable)
		return
	}

	added, err := s.Cart.AddItem(r.Context(),
		cart.Item{ID: item.ID, Name: item.Name, Price: item.Price, IsVeg: item.IsVeg, RestaurantID: rest.ID},
		cart.Restaurant{ID: rest.ID, Name: rest.Name, City: rest.City, ImageURL: rest.ImageURL, DeliveryFee: rest.DeliveryFee},
		req.ConfirmReplace,
	)
	if err != nil {
		h.fail(w, r, s, err)
		return
	}
	if !added {
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:         msgReplaceCart,
			CorrelationID: middleware.GetCorrelationID(r.Context()),
			Conflict:      true,
		})
		return
	}

	s.Toasts.Success(msgAddedToCart)
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	id, ok := pathID(r, "itemId")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}
	var req updateQuantityRequest
	if err := decodeJSON(r, &req); err != nil || req.Quantity == nil {
		writeError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}

	if err := s.Cart.UpdateQuantity(r.Context(), id, *req.Quantity); err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	id, ok := pathID(r, "itemId")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := s.Cart.RemoveItem(r.Context(), id); err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	if err := s.Cart.Clear(r.Context()); err != nil {
		h.fail(w, r, s, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *CartHandler) view(s *shopper.Shopper) cartView {
	snap := s.Cart.Snapshot()
	return cartView{
		Lines:      snap.Lines,
		Restaurant: snap.Restaurant,
		ItemCount:  s.Cart.ItemCount(),
		Bill:       s.Cart.Bill(h.fees),
	}
}

// fail reports a storage failure; the cart itself is unchanged.
func (h *CartHandler) fail(w http.ResponseWriter, r *http.Request, s *shopper.Shopper, err error) {
	h.logger.Printf("cart session=%s cid=%s: %v", s.ID, middleware.GetCorrelationID(r.Context()), err)
	s.Toasts.Error(msgCartFailed)
	writeError(w, r, http.StatusInternalServerError, msgCartFailed)
}

func findItem(items []clients.MenuItem, id int64) (clients.MenuItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return clients.MenuItem{}, false
}
