package order

import "github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"

// View is an order decorated with what the order history needs to render it.
type View struct {
	clients.Order
	StatusLabel string `json:"statusLabel"`
	Cancellable bool   `json:"cancellable"`
}

func NewView(o clients.Order) View {
	s := Status(o.Status)
	return View{Order: o, StatusLabel: s.Label(), Cancellable: s.Cancellable()}
}

func NewViews(orders []clients.Order) []View {
	out := make([]View, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewView(o))
	}
	return out
}
