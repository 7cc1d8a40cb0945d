package clients

import (
	"context"
	"net/http"
	"strconv"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

func (oc *OrderClient) Create(ctx context.Context, token string, req CreateOrderRequest) (Order, error) {
	var out Order
	err := oc.c.call(ctx, http.MethodPost, "/orders", nil, token, req, &out)
	return out, err
}

func (oc *OrderClient) ListMine(ctx context.Context, token string, pq PageQuery) (Page[Order], error) {
	var out Page[Order]
	err := oc.c.call(ctx, http.MethodGet, "/orders", pq.values(), token, nil, &out)
	return out, err
}

func (oc *OrderClient) Get(ctx context.Context, token string, id int64) (Order, error) {
	var out Order
	err := oc.c.call(ctx, http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), nil, token, nil, &out)
	return out, err
}

func (oc *OrderClient) Cancel(ctx context.Context, token string, id int64) (Order, error) {
	var out Order
	err := oc.c.call(ctx, http.MethodPost, "/orders/"+strconv.FormatInt(id, 10)+"/cancel", nil, token, nil, &out)
	return out, err
}
