package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

type ToastHandler struct{}

func NewToastHandler() *ToastHandler { return &ToastHandler{} }

func (h *ToastHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(shopper.FromContext(r.Context()).Toasts.List()))
}

func (h *ToastHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid toast id")
		return
	}
	if !shopper.FromContext(r.Context()).Toasts.Remove(id) {
		writeError(w, r, http.StatusNotFound, "toast not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
