package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/rank-ladder/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func whoAmI(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		role, err := GetUserRoleFromContext(r.Context())
		require.NoError(t, err)
		w.Header().Set("X-User", string(role)+":"+strconv.Itoa(id))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	handler := auth.Authenticate(whoAmI(t))

	valid := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42, "role": "player", "exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42, "role": "player", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	foreign := signToken(t, "other-secret", jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42, "role": "player"})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + valid, http.StatusNoContent},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "player:42", rec.Header().Get("X-User"))
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := Authorize(string(models.RoleAdmin))(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ContextWithUser(req.Context(), 1, models.RoleAdmin)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ContextWithUser(req.Context(), 1, models.RolePlayer)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    int
		wantErr bool
	}{
		{"number", jwt.MapClaims{"user_id": float64(7)}, 7, false},
		{"numeric string", jwt.MapClaims{"user_id": "8"}, 8, false},
		{"fraction", jwt.MapClaims{"user_id": 7.5}, 0, true},
		{"zero", jwt.MapClaims{"user_id": float64(0)}, 0, true},
		{"missing", jwt.MapClaims{}, 0, true},
		{"bool", jwt.MapClaims{"user_id": true}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.WithValue(context.Background(), userContextKey, tt.claims)
			got, err := GetUserIDFromContext(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := GetUserIDFromContext(context.Background())
	assert.Error(t, err)
}
