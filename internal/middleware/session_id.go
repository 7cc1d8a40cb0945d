package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const HeaderSessionID = "X-Session-Id"

// SessionID makes sure every request carries a shopper session id. A missing
// or malformed id is replaced by a fresh one, which is echoed back so the UI
// can keep sending it.
func SessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
		}
		w.Header().Set(HeaderSessionID, sid)

		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
	})
}

func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxSessionID, sid)
}

func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(ctxSessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
