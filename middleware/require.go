package middleware

import (
	"fmt"
	"net/http"
)

// RequireClaim must run after Guard. It answers 403 unless the claim key is present
// and its value, formatted with %v, equals want.
func RequireClaim(key, want string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			v, ok := claims[key]
			if !ok || fmt.Sprint(v) != want {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
