package handlers

import (
	"log"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

// Shoppers attaches the shopper owning the request's session id.
func Shoppers(reg *shopper.Registry, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := middleware.GetSessionID(r.Context())
			s, release, err := reg.Acquire(r.Context(), sid)
			if err != nil {
				logger.Printf("load shopper session=%s cid=%s: %v", sid, middleware.GetCorrelationID(r.Context()), err)
				writeError(w, r, http.StatusInternalServerError, "failed to load session")
				return
			}
			defer release()
			next.ServeHTTP(w, r.WithContext(shopper.NewContext(r.Context(), s)))
		})
	}
}

// RequireSession turns anonymous shoppers away with a login redirect.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := shopper.FromContext(r.Context())
		if s == nil || !s.Session.IsAuthenticated() {
			writeLoginRequired(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
