package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClaims string

func (c stubClaims) GetUserID() string { return string(c) }

// stubValidator maps known tokens to user ids.
type stubValidator map[string]string

func (v stubValidator) ValidateToken(token string) (UserIDGetter, error) {
	userID, ok := v[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return stubClaims(userID), nil
}

func TestAuthMiddleware(t *testing.T) {
	validator := stubValidator{"good": "user-42", "nosub": ""}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "user-42"},
		{"lowercase scheme", "bearer good", http.StatusOK, "user-42"},
		{"extra spaces", "Bearer   good", http.StatusOK, "user-42"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"missing scheme", "good", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"only scheme", "Bearer", http.StatusUnauthorized, ""},
		{"too many parts", "Bearer good extra", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, ""},
		{"empty subject", "Bearer nosub", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID, err := UserID(r)
				require.NoError(t, err)
				gotUser = userID
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/plans", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"kind":"unauthenticated"`)
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := UserID(req)
	assert.ErrorIs(t, err, ErrNoUser)

	req = req.WithContext(WithUserID(req.Context(), "u1"))
	userID, err := UserID(req)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}
