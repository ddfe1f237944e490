package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"flm/internal/platform/requestctx"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// RequestID tags every request with an id, honoring an inbound
// X-Request-Id so upstream proxies can correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
