package cart

import "github.com/shopspring/decimal"

type Fees struct {
	DefaultDeliveryFee decimal.Decimal
	PlatformFee        decimal.Decimal
	TaxRate            decimal.Decimal
}

func DefaultFees() Fees {
	return Fees{
		DefaultDeliveryFee: decimal.NewFromInt(30),
		PlatformFee:        decimal.NewFromInt(5),
		TaxRate:            decimal.RequireFromString("0.05"),
	}
}

type Bill struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	PlatformFee decimal.Decimal `json:"platformFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// ComputeBill prices lines for restaurant. The restaurant's own delivery fee
// wins over the default; tax is rounded half up to a whole unit.
func ComputeBill(lines []Line, restaurant *Restaurant, fees Fees) Bill {
	subtotal := subtotal(lines)

	delivery := fees.DefaultDeliveryFee
	if restaurant != nil && restaurant.DeliveryFee.Valid {
		delivery = restaurant.DeliveryFee.Decimal
	}

	tax := subtotal.Mul(fees.TaxRate).Round(0)
	return Bill{
		Subtotal:    subtotal,
		DeliveryFee: delivery,
		PlatformFee: fees.PlatformFee,
		Tax:         tax,
		Total:       subtotal.Add(delivery).Add(fees.PlatformFee).Add(tax),
	}
}

func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}
