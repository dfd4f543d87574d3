package api

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediatrack/mediatrack/internal/auth"
	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	app, _ := newTestApp(t, &database.MockRepository{})

	protected := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		require.True(t, ok, "expected an identity in the request context")
		app.writeJson(w, http.StatusOK, LoginResponse{Handle: identity.Handle, Role: identity.Role})
	})

	t.Run("no cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		protected(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieKey, Value: "!!not-a-token!!"})
		protected(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("forged signature", func(t *testing.T) {
		otherCodec := auth.NewCodec([]byte("some-other-key"), "")
		token, err := otherCodec.Issue("alice", auth.RoleUser, false)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieKey, Value: token})
		protected(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unsigned handle-less token", func(t *testing.T) {
		token := base64.RawURLEncoding.EncodeToString([]byte(`{"role":"user"}`))

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieKey, Value: token})
		protected(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected a hand-built session to be rejected")
	})

	t.Run("valid shared-secret token", func(t *testing.T) {
		token, err := app.codec.Issue("", auth.RoleUser, true)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieKey, Value: token})
		protected(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		token, err := app.codec.Issue("alice", auth.RoleUser, false)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieKey, Value: token})
		protected(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "no-store, no-cache, must-revalidate, private", rr.Header().Get("Cache-Control"))
	})
}

func TestErrorHandler(t *testing.T) {
	app, _ := newTestApp(t, &database.MockRepository{})

	h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/anything", nil)
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}
