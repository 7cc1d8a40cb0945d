package shopper

import "context"

type ctxKey struct{}

func NewContext(ctx context.Context, s *Shopper) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the shopper attached by the request pipeline, or nil.
func FromContext(ctx context.Context) *Shopper {
	s, _ := ctx.Value(ctxKey{}).(*Shopper)
	return s
}
