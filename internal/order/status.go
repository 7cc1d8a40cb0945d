package order

import "strings"

type Status string

const (
	StatusPlaced         Status = "PLACED"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// next lists the forward transitions the backend performs.
var next = map[Status][]Status{
	StatusPlaced:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Label is the status as shown to shoppers, e.g. "OUT FOR DELIVERY".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Cancellable reports whether the shopper may still cancel.
func (s Status) Cancellable() bool {
	return s == StatusPlaced || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) CanTransition(to Status) bool {
	for _, n := range next[s] {
		if n == to {
			return true
		}
	}
	return false
}

// Payment statuses reported by the backend.
const (
	PaymentCreated  = "CREATED"
	PaymentSuccess  = "SUCCESS"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)
