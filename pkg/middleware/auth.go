package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromCtx returns the principal stored by Authenticate.
func PrincipalFromCtx(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*auth.Principal)
	return p, ok && p != nil
}

// Authenticate requires a valid bearer token and stores the decoded
// principal in the request context. Missing and invalid credentials both
// end in a 401 envelope before the handler runs.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := auth.ParseBearer(r.Header.Get("Authorization"))
		if err != nil {
			msg := "The user is not authorized"
			if errors.Is(err, auth.ErrMissingToken) {
				msg = "Authentication required"
			}
			logger.WithCtx(r.Context()).Debug("auth rejected", "error", err, "path", r.URL.Path)
			response.Unauthorized(w, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}
