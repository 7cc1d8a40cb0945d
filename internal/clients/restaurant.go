package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PageQuery carries the paging parameters the backend understands. Zero
// values are left out of the query string.
type PageQuery struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

func (p PageQuery) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortDir != "" {
		q.Set("sortDir", p.SortDir)
	}
	return q
}

type RestaurantClient struct{ c *Client }

func NewRestaurantClient(c *Client) *RestaurantClient { return &RestaurantClient{c: c} }

func (rc *RestaurantClient) List(ctx context.Context, pq PageQuery) (Page[Restaurant], error) {
	var out Page[Restaurant]
	err := rc.c.call(ctx, http.MethodGet, "/restaurants", pq.values(), "", nil, &out)
	return out, err
}

func (rc *RestaurantClient) Search(ctx context.Context, query string, pq PageQuery) (Page[Restaurant], error) {
	q := pq.values()
	q.Set("query", query)
	var out Page[Restaurant]
	err := rc.c.call(ctx, http.MethodGet, "/restaurants/search", q, "", nil, &out)
	return out, err
}

func (rc *RestaurantClient) Get(ctx context.Context, id int64) (Restaurant, error) {
	var out Restaurant
	err := rc.c.call(ctx, http.MethodGet, "/restaurants/"+strconv.FormatInt(id, 10), nil, "", nil, &out)
	return out, err
}

func (rc *RestaurantClient) ByCuisine(ctx context.Context, cuisine string, pq PageQuery) (Page[Restaurant], error) {
	var out Page[Restaurant]
	err := rc.c.call(ctx, http.MethodGet, "/restaurants/cuisine/"+url.PathEscape(cuisine), pq.values(), "", nil, &out)
	return out, err
}

func (rc *RestaurantClient) TopRated(ctx context.Context, limit int) ([]Restaurant, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []Restaurant
	err := rc.c.call(ctx, http.MethodGet, "/restaurants/top-rated", q, "", nil, &out)
	return out, err
}
