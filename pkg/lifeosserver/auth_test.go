package lifeosserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	token, err := tm.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestTokenManagerRejections(t *testing.T) {
	tm, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := tm.Verify("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager("other-secret", time.Hour)
		require.NoError(t, err)
		token, err := other.Issue(uuid.New())
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := NewTokenManager("test-secret", -time.Minute)
		require.NoError(t, err)
		token, err := expired.Issue(uuid.New())
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.Error(t, err)
	})

	t.Run("empty secret refused", func(t *testing.T) {
		_, err := NewTokenManager("", time.Hour)
		assert.Error(t, err)
	})
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/summary", nil)
		req.Header.Set("Authorization", "Bearer abc123")
		assert.Equal(t, "abc123", tokenFromRequest(req))
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/summary", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "cookie-token"})
		assert.Equal(t, "cookie-token", tokenFromRequest(req))
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/summary", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "cookie-token"})
		assert.Equal(t, "header-token", tokenFromRequest(req))
	})

	t.Run("nothing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/summary", nil)
		assert.Empty(t, tokenFromRequest(req))
	})
}

// With no token at all, the middleware must reject before touching the token
// manager or the database.
func TestRequireSessionWithoutToken(t *testing.T) {
	s := &Server{}
	handler := s.requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for unauthenticated requests")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
