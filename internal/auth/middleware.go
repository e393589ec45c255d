package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type ctxKey string

const pageIDKey ctxKey = "page_id"

func PageIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(pageIDKey)
	id, ok := v.(string)
	return id, ok
}

// RequireOwner admits requests bearing an owner token for the page named by
// the {id} route parameter.
func RequireOwner(jwtSvc *JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(h, "Bearer ")

			pageID, err := jwtSvc.Verify(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if want := chi.URLParam(r, "id"); want != "" && want != pageID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), pageIDKey, pageID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
