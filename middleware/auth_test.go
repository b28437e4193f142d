package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashion-store/middleware"
	"fashion-store/models"
	"fashion-store/utils"
)

func okHandler(t *testing.T, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantRole, claims.Role)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	utils.JwtKey = []byte("test-signing-key")
	token, err := utils.GenerateJWT("64f0c3a1b2c3d4e5f6a7b8c9", "ada@example.com", models.RoleCustomer)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid_token", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing_header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong_scheme", authHeader: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "malformed_token", authHeader: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middleware.AuthMiddleware(okHandler(t, models.RoleCustomer)).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	utils.JwtKey = []byte("test-signing-key")

	adminToken, err := utils.GenerateJWT("64f0c3a1b2c3d4e5f6a7b8c9", "root@example.com", models.RoleAdmin)
	require.NoError(t, err)
	customerToken, err := utils.GenerateJWT("64f0c3a1b2c3d4e5f6a7b8ca", "ada@example.com", models.RoleCustomer)
	require.NoError(t, err)

	chain := middleware.AuthMiddleware(middleware.AdminMiddleware(okHandler(t, models.RoleAdmin)))

	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
