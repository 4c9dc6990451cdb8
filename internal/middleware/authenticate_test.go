package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/auth"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/middleware"
)

// mockVerifier is a hand-written mock of middleware.TokenVerifier.
type mockVerifier struct {
	VerifyFn func(raw string) (auth.Identity, error)
}

var _ middleware.TokenVerifier = (*mockVerifier)(nil)

func (m *mockVerifier) Verify(raw string) (auth.Identity, error) { return m.VerifyFn(raw) }

// identityEcho writes the caller's user ID so tests can see what reached the handler.
var identityEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(auth.UserID(r.Context()).String()))
})

func TestAuthenticator(t *testing.T) {
	userID := uuid.New()
	verifier := &mockVerifier{VerifyFn: func(raw string) (auth.Identity, error) {
		if raw != "good" {
			return auth.Identity{}, domain.ErrUnauthenticated
		}
		return auth.Identity{UserID: userID, Role: domain.UserRoleUser}, nil
	}}
	h := middleware.NewAuthenticator(verifier)(identityEcho)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"rejected token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/trips", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, userID.String(), rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"code":"unauthenticated"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	roles := map[string]domain.UserRole{"admin": domain.UserRoleAdmin, "user": domain.UserRoleUser}
	verifier := &mockVerifier{VerifyFn: func(raw string) (auth.Identity, error) {
		role, ok := roles[raw]
		if !ok {
			return auth.Identity{}, errors.New("unknown")
		}
		return auth.Identity{UserID: uuid.New(), Role: role}, nil
	}}
	h := middleware.NewAuthenticator(verifier)(middleware.RequireAdmin(identityEcho))

	for token, want := range map[string]int{"admin": http.StatusOK, "user": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, token)
	}

	rec := httptest.NewRecorder()
	middleware.RequireAdmin(identityEcho).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
