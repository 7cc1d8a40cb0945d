package clients

import (
	"context"
	"net/http"
	"strconv"
)

type AddressClient struct{ c *Client }

func NewAddressClient(c *Client) *AddressClient { return &AddressClient{c: c} }

func (ac *AddressClient) List(ctx context.Context, token string) ([]Address, error) {
	var out []Address
	err := ac.c.call(ctx, http.MethodGet, "/users/addresses", nil, token, nil, &out)
	return out, err
}

func (ac *AddressClient) Create(ctx context.Context, token string, req AddressRequest) (Address, error) {
	var out Address
	err := ac.c.call(ctx, http.MethodPost, "/users/addresses", nil, token, req, &out)
	return out, err
}

func (ac *AddressClient) Update(ctx context.Context, token string, id int64, req AddressRequest) (Address, error) {
	var out Address
	err := ac.c.call(ctx, http.MethodPut, "/users/addresses/"+strconv.FormatInt(id, 10), nil, token, req, &out)
	return out, err
}

func (ac *AddressClient) Delete(ctx context.Context, token string, id int64) error {
	return ac.c.call(ctx, http.MethodDelete, "/users/addresses/"+strconv.FormatInt(id, 10), nil, token, nil, nil)
}
