package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

var errBadBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

// writeLoginRequired answers 401 and points the UI at the login page.
func writeLoginRequired(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{
		Error:         "Please login to continue",
		CorrelationID: middleware.GetCorrelationID(r.Context()),
		Redirect:      session.LoginRedirect(returnPath(r)),
	})
}

// WriteUpstreamError maps a backend failure onto the response. The upstream
// status is mirrored for 4xx answers; 5xx and transport errors become 502.
// A rejected token ends the shopper's session.
func WriteUpstreamError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if clients.IsUnauthorized(err) {
		if s := shopper.FromContext(r.Context()); s != nil {
			_ = s.Session.Clear(r.Context())
		}
		writeLoginRequired(w, r)
		return
	}

	status := clients.StatusCode(err)
	if status < 400 || status >= 500 {
		status = http.StatusBadGateway
	}
	writeError(w, r, status, clients.UserMessage(err, fallback))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// pageQuery reads page/size/sortBy/sortDir, falling back to def.
func pageQuery(r *http.Request, def clients.PageQuery) clients.PageQuery {
	q := r.URL.Query()
	pq := clients.PageQuery{
		Page:    queryInt(r, "page", def.Page),
		Size:    queryInt(r, "size", def.Size),
		SortBy:  def.SortBy,
		SortDir: def.SortDir,
	}
	if v := q.Get("sortBy"); v != "" {
		pq.SortBy = v
	}
	if v := strings.ToLower(q.Get("sortDir")); v == "asc" || v == "desc" {
		pq.SortDir = v
	}
	return pq
}

// returnPath is the UI page a gated route belongs to: /me/orders/7 comes
// from /orders/7, and every /me/checkout call from /checkout.
func returnPath(r *http.Request) string {
	p := strings.TrimPrefix(r.URL.Path, "/me")
	if p == "" || p == "/" {
		return session.DefaultRedirect
	}
	if r.Method != http.MethodGet || strings.HasPrefix(p, "/checkout") {
		if i := strings.Index(p[1:], "/"); i >= 0 {
			p = p[:i+1]
		}
	}
	return p
}
