package clients

import (
	"context"
	"net/http"
	"strconv"
)

type PaymentClient struct{ c *Client }

func NewPaymentClient(c *Client) *PaymentClient { return &PaymentClient{c: c} }

// CreateForOrder asks the backend for a provider order to pay orderID with.
func (pc *PaymentClient) CreateForOrder(ctx context.Context, token string, orderID int64) (Payment, error) {
	var out Payment
	err := pc.c.call(ctx, http.MethodPost, "/payments/create/"+strconv.FormatInt(orderID, 10), nil, token, nil, &out)
	return out, err
}

func (pc *PaymentClient) Verify(ctx context.Context, token string, req VerifyPaymentRequest) (Payment, error) {
	var out Payment
	err := pc.c.call(ctx, http.MethodPost, "/payments/verify", nil, token, req, &out)
	return out, err
}
