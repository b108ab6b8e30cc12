package middleware

import (
	"context"
	"net/http"
	"strings"

	goToken "github.com/MrEthical07/goToken"
)

// Verifier is the subset of *goToken.Service the guard needs.
type Verifier interface {
	Verify(token string) (goToken.Claims, error)
}

type claimsContextKey struct{}

// ClaimsFromContext returns the claims stored by Guard.
func ClaimsFromContext(ctx context.Context) (goToken.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(goToken.Claims)
	return claims, ok
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims goToken.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// Guard rejects requests without a valid bearer token with 401 and passes the rest
// on with the verified claims in the context.
func Guard(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				unauthorized(w)
				return
			}

			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the credential from an Authorization header value. The scheme
// match is case-insensitive.
func BearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="gotoken"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
