package middleware

import (
	"context"
	"net/http"
	"strings"

	authsmith "github.com/authsmith/authsmith"
	"github.com/authsmith/authsmith/token"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the validated session claims injected by [Guard].
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok
}

// Guard returns middleware that rejects requests without a valid bearer
// session token.
func Guard(engine *authsmith.Engine) func(http.Handler) http.Handler {
	return guard(engine, false)
}

// RequireVerified returns middleware that additionally rejects sessions whose
// token was minted before the account's email was verified.
func RequireVerified(engine *authsmith.Engine) func(http.Handler) http.Handler {
	return guard(engine, true)
}

func guard(engine *authsmith.Engine, requireVerified bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			bearer, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.ValidateToken(bearer)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if requireVerified && !claims.EmailVerified {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}
