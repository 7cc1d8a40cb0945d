package clients

import (
	"context"
	"net/http"
)

type CategoryClient struct{ c *Client }

func NewCategoryClient(c *Client) *CategoryClient { return &CategoryClient{c: c} }

func (cc *CategoryClient) List(ctx context.Context) ([]Category, error) {
	var out []Category
	err := cc.c.call(ctx, http.MethodGet, "/categories", nil, "", nil, &out)
	return out, err
}
