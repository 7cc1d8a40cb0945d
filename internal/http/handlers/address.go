package handlers

import (
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

const (
	msgLoadAddresses   = "Failed to load addresses"
	msgAddressSaved    = "Address added successfully"
	msgAddressUpdated  = "Address updated"
	msgAddressDeleted  = "Address deleted"
	msgSaveAddressFail = "Failed to add address"
	msgUpdateAddrFail  = "Failed to update address"
	msgDeleteAddrFail  = "Failed to delete address"

	defaultAddressType = "HOME"
)

var addressTypes = map[string]bool{"HOME": true, "WORK": true, "OTHER": true}

type AddressHandler struct{ c *clients.AddressClient }

func NewAddressHandler(c *clients.AddressClient) *AddressHandler { return &AddressHandler{c: c} }

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	list, err := h.c.List(r.Context(), s.Session.Token())
	if err != nil {
		WriteUpstreamError(w, r, err, msgLoadAddresses)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	req, ok := readAddress(w, r)
	if !ok {
		return
	}
	addr, err := h.c.Create(r.Context(), s.Session.Token(), req)
	if err != nil {
		s.Toasts.Error(clients.UserMessage(err, msgSaveAddressFail))
		WriteUpstreamError(w, r, err, msgSaveAddressFail)
		return
	}
	s.Checkout.SyncAddress(addr)
	s.Toasts.Success(msgAddressSaved)
	writeJSON(w, http.StatusCreated, addr)
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid address id")
		return
	}
	req, ok := readAddress(w, r)
	if !ok {
		return
	}
	addr, err := h.c.Update(r.Context(), s.Session.Token(), id, req)
	if err != nil {
		s.Toasts.Error(clients.UserMessage(err, msgUpdateAddrFail))
		WriteUpstreamError(w, r, err, msgUpdateAddrFail)
		return
	}
	s.Checkout.SyncAddress(addr)
	s.Toasts.Success(msgAddressUpdated)
	writeJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := shopper.FromContext(r.Context())

	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid address id")
		return
	}
	if err := h.c.Delete(r.Context(), s.Session.Token(), id); err != nil {
		s.Toasts.Error(clients.UserMessage(err, msgDeleteAddrFail))
		WriteUpstreamError(w, r, err, msgDeleteAddrFail)
		return
	}
	s.Checkout.ForgetAddress(id)
	s.Toasts.Success(msgAddressDeleted)
	w.WriteHeader(http.StatusNoContent)
}

// readAddress decodes and validates an address body, writing the error
// response itself when it is unusable.
func readAddress(w http.ResponseWriter, r *http.Request) (clients.AddressRequest, bool) {
	var req clients.AddressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return req, false
	}

	req.Street = strings.TrimSpace(req.Street)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	req.Pincode = strings.TrimSpace(req.Pincode)
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if req.Type == "" {
		req.Type = defaultAddressType
	}

	switch {
	case req.Street == "" || req.City == "" || req.State == "" || req.Pincode == "":
		writeError(w, r, http.StatusUnprocessableEntity, "street, city, state and pincode are required")
		return req, false
	case !addressTypes[req.Type]:
		writeError(w, r, http.StatusUnprocessableEntity, "type must be HOME, WORK or OTHER")
		return req, false
	}
	return req, true
}
