package middleware

import (
	"context"
	"net/http"
	"strings"

	"fashion-store/models"
	"fashion-store/utils"
)

// Key type for context values.
type contextKey string

// UserContextKey holds the authenticated *utils.Claims on the request
// context.
const UserContextKey = contextKey("user")

// AuthMiddleware verifies the bearer token and attaches the claims to the
// request context. Missing or invalid tokens yield 401.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.RespondErrorMessage(w, http.StatusUnauthorized, "Authorization header missing")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.RespondErrorMessage(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		claims, err := utils.ParseJWT(parts[1])
		if err != nil {
			utils.RespondErrorMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware rejects authenticated callers who are not admins.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(UserContextKey).(*utils.Claims)
		if !ok || claims.Role != models.RoleAdmin {
			utils.RespondErrorMessage(w, http.StatusForbidden, "Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}
