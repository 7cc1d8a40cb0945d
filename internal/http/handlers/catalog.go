package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

const (
	msgLoadRestaurants = "Failed to load restaurants"
	msgLoadRestaurant  = "Failed to load restaurant"
	msgLoadMenu        = "Failed to load menu"
	msgLoadCategories  = "Failed to load categories"
	msgSearch          = "Search failed"

	defaultTopRated = 6
)

var (
	restaurantPaging = clients.PageQuery{Page: 0, Size: 10, SortBy: "rating", SortDir: "desc"}
	searchPaging     = clients.PageQuery{Page: 0, Size: 20}
)

type CatalogHandler struct {
	restaurants *clients.RestaurantClient
	menu        *clients.MenuClient
	categories  *clients.CategoryClient
}

func NewCatalogHandler(restaurants *clients.RestaurantClient, menu *clients.MenuClient, categories *clients.CategoryClient) *CatalogHandler {
	return &CatalogHandler{restaurants: restaurants, menu: menu, categories: categories}
}

func (h *CatalogHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	page, err := h.restaurants.List(r.Context(), pageQuery(r, restaurantPaging))
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadRestaurants)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	page, err := h.restaurants.Search(r.Context(), query, pageQuery(r, searchPaging))
	if err != nil {
		WriteUpstreamError(w, r, err, msgSearch)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	list, err := h.restaurants.TopRated(r.Context(), queryInt(r, "limit", defaultTopRated))
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadRestaurants)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *CatalogHandler) ByCuisine(w http.ResponseWriter, r *http.Request) {
	cuisine, err := url.PathUnescape(chi.URLParam(r, "cuisine"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid cuisine")
		return
	}
	cuisine = strings.TrimSpace(cuisine)
	if cuisine == "" {
		writeError(w, r, http.StatusBadRequest, "cuisine is required")
		return
	}
	page, err := h.restaurants.ByCuisine(r.Context(), cuisine, pageQuery(r, restaurantPaging))
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadRestaurants)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	rest, err := h.restaurants.Get(r.Context(), id)
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadRestaurant)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

// Menu returns a restaurant's menu. veg, bestsellers and q narrow it down;
// grouped=true returns category groups instead of a flat list.
func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	items, err := h.menu.ByRestaurant(r.Context(), id)
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadMenu)
		return
	}

	if queryBool(r, "veg") {
		items = catalog.FilterVeg(items)
	}
	if queryBool(r, "bestsellers") {
		items = catalog.Bestsellers(items)
	}
	items = catalog.Search(items, r.URL.Query().Get("q"))

	if queryBool(r, "grouped") {
		writeJSON(w, http.StatusOK, nonNil(catalog.GroupByCategory(items)))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *CatalogHandler) SearchMenu(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	page, err := h.menu.Search(r.Context(), query, pageQuery(r, searchPaging))
	if err != nil {
		WriteUpstreamError(w, r, err, msgSearch)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.categories.List(r.Context())
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadCategories)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
