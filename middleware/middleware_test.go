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

var secret = []byte("test-secret")

func protected(roles ...string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := GetSubjectFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Subject", sub)
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(secret)(Authorize(roles...)(ok))
}

func request(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	organizer, err := IssueToken(secret, "alice", RoleOrganizer, time.Hour)
	require.NoError(t, err)
	viewer, err := IssueToken(secret, "bob", RoleViewer, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, "carol", RoleOrganizer, -time.Minute)
	require.NoError(t, err)
	forged, err := IssueToken([]byte("other"), "mallory", RoleOrganizer, time.Hour)
	require.NoError(t, err)

	h := protected(RoleOrganizer)

	rec := request(t, h, organizer)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "alice", rec.Header().Get("X-Subject"))

	assert.Equal(t, http.StatusForbidden, request(t, h, viewer).Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, h, expired).Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, h, forged).Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, h, "garbage").Code)
}

func TestRejectsNonHMACTokens(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": RoleOrganizer})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(t, protected(RoleOrganizer), raw).Code)
}

func TestUnknownRole(t *testing.T) {
	raw, err := IssueToken(secret, "dave", "admin", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(t, protected(RoleOrganizer), raw).Code)
}

func TestIssueTokenNeedsSecret(t *testing.T) {
	_, err := IssueToken(nil, "x", RoleOrganizer, time.Hour)
	assert.Error(t, err)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	h := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1003"))

	now = now.Add(time.Hour)
	call("10.0.0.3:1000")
	assert.Len(t, limiter.visitors, 1)
}
