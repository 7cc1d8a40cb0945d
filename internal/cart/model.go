package cart

import (
	"github.com/shopspring/decimal"
)

// Restaurant is the snapshot of the restaurant a cart is bound to.
type Restaurant struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	City        string              `json:"city,omitempty"`
	ImageURL    string              `json:"imageUrl,omitempty"`
	DeliveryFee decimal.NullDecimal `json:"deliveryFee"`
}

// Item is a menu item being added to the cart.
type Item struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	IsVeg        bool            `json:"isVeg"`
	RestaurantID int64           `json:"restaurantId"`
}

type Line struct {
	ItemID       int64           `json:"itemId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
	IsVeg        bool            `json:"isVeg"`
	RestaurantID int64           `json:"restaurantId"`
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is a point-in-time copy of a cart.
type State struct {
	Lines      []Line      `json:"lines"`
	Restaurant *Restaurant `json:"restaurant"`
}
