// Package rbac gates routes on the authenticated principal's role.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

// Admin allows the request through only when the principal stored by
// middleware.Authenticate is an administrator. Requests that reach it
// without a principal are answered 401.
func Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalFromCtx(r.Context())
		if !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}
		if !p.IsAdmin {
			response.Forbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SelfOrAdmin allows the request when the principal is an administrator or
// when the route parameter read by param equals the principal's user id.
func SelfOrAdmin(param func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := middleware.PrincipalFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if !p.IsAdmin && param(r) != p.UserID {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
