package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/pkg/utils"
)

type principalKey struct{}

type IdentityResolver interface {
	Resolve(ctx context.Context, principalToken string) (entities.User, error)
}

// Principal resolves the bearer token to a user and stores it in the request
// context. The token is an opaque principal id from the external auth layer;
// no credential checks happen here. Anonymous requests pass through so public
// routes keep working; protected handlers reject them themselves.
func Principal(identity IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := identity.Resolve(r.Context(), token)
			if err != nil {
				utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), principalKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the principal stored by the Principal middleware.
func UserFrom(ctx context.Context) (entities.User, bool) {
	user, ok := ctx.Value(principalKey{}).(entities.User)
	return user, ok
}
