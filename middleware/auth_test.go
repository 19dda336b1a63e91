package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "league-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protected(roles ...string) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(id))
	})
	return Authenticate(testSecret)(Authorize(roles...)(inner))
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{
			name:   "no header",
			status: http.StatusUnauthorized,
		},
		{
			name:   "not bearer",
			header: "Basic dXNlcjpwYXNz",
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong secret",
			header: "Bearer " + signToken(t, "other", jwt.MapClaims{"user_id": "u1", "role": "umpire", "exp": exp}),
			status: http.StatusUnauthorized,
		},
		{
			name:   "expired",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": "u1", "role": "umpire", "exp": time.Now().Add(-time.Hour).Unix()}),
			status: http.StatusUnauthorized,
		},
		{
			name:   "viewer is forbidden",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": "u1", "role": "viewer", "exp": exp}),
			status: http.StatusForbidden,
		},
		{
			name:   "umpire",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": "u1", "role": "umpire", "exp": exp}),
			status: http.StatusOK,
			body:   "u1",
		},
		{
			name:   "numeric admin id",
			header: "bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "role": "admin", "exp": exp}),
			status: http.StatusOK,
			body:   "42",
		},
	}

	h := protected("umpire", "admin")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u1", "role": "admin"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	protected("admin").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
