package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-backend/internal/auth"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, auth.CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, auth.CheckPassword(hash, "wrong password"))
}

func TestTokenRoundTrip(t *testing.T) {
	sessions := auth.NewSessions("test-secret", time.Hour)

	token, err := sessions.NewToken(42)
	require.NoError(t, err)

	userId, err := sessions.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userId)
}

func TestExpiredTokenRejected(t *testing.T) {
	sessions := auth.NewSessions("test-secret", -time.Minute)

	token, err := sessions.NewToken(42)
	require.NoError(t, err)

	_, err = sessions.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenFromDifferentSecretRejected(t *testing.T) {
	token, err := auth.NewSessions("secret-a", time.Hour).NewToken(1)
	require.NoError(t, err)

	_, err = auth.NewSessions("secret-b", time.Hour).VerifyToken(token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	sessions := auth.NewSessions("test-secret", time.Hour)

	var gotUserId uint
	var gotOk bool
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserId, gotOk = auth.UserId(r.Context())
	}))

	// No header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed header.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token.
	token, err := sessions.NewToken(7)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOk)
	assert.Equal(t, uint(7), gotUserId)
}
