package clients

import (
	"context"
	"net/http"
	"strconv"
)

type MenuClient struct{ c *Client }

func NewMenuClient(c *Client) *MenuClient { return &MenuClient{c: c} }

func (mc *MenuClient) ByRestaurant(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	return mc.list(ctx, "/menu/restaurant/"+strconv.FormatInt(restaurantID, 10))
}

func (mc *MenuClient) Veg(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	return mc.list(ctx, "/menu/restaurant/"+strconv.FormatInt(restaurantID, 10)+"/veg")
}

func (mc *MenuClient) Bestsellers(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	return mc.list(ctx, "/menu/restaurant/"+strconv.FormatInt(restaurantID, 10)+"/bestsellers")
}

func (mc *MenuClient) Search(ctx context.Context, query string, pq PageQuery) (Page[MenuItem], error) {
	q := pq.values()
	q.Set("query", query)
	var out Page[MenuItem]
	err := mc.c.call(ctx, http.MethodGet, "/menu/search", q, "", nil, &out)
	return out, err
}

func (mc *MenuClient) list(ctx context.Context, path string) ([]MenuItem, error) {
	var out []MenuItem
	err := mc.c.call(ctx, http.MethodGet, path, nil, "", nil, &out)
	return out, err
}
