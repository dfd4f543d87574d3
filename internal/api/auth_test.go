package api

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediatrack/mediatrack/internal/auth"
	"github.com/mediatrack/mediatrack/internal/config"
	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/mediatrack/mediatrack/internal/stats"
	"github.com/mediatrack/mediatrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// findCookie is a helper function to find a cookie by name in the response
// recorder. It returns the cookie if found, or nil if not found.
func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func newTestApp(t *testing.T, mockRepo database.Repository) (*MediaTrackApp, *stats.MockStats) {
	t.Helper()
	st := stats.NewMockStats()
	app := NewMediaTrackApp(http.NewServeMux(), testutil.TestLogger(t), mockRepo, st, &config.Config{
		SigningKey:    []byte("test-signing-key"),
		AccessSecret:  "shared-access-secret",
		OwnerHandle:   "owner",
		OwnerPassword: "owner-password",
	})
	return app, st
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(v))
	return buf
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterHandler(t *testing.T) {
	tcases := []struct {
		name         string
		body         any
		mockAccount  database.Account
		mockErr      error
		mockCalled   bool
		expectedCode int
	}{
		{
			name:         "successfully registers",
			body:         RegisterRequest{Handle: "alice", Password: "s3cret"},
			mockAccount:  database.Account{Handle: "alice", Role: auth.RoleUser},
			mockCalled:   true,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "invalid json body",
			body:         "not json",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing handle",
			body:         RegisterRequest{Password: "s3cret"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing password",
			body:         RegisterRequest{Handle: "alice"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "duplicate handle",
			body:         RegisterRequest{Handle: "alice", Password: "s3cret"},
			mockErr:      database.ErrDuplicateKey,
			mockCalled:   true,
			expectedCode: http.StatusConflict,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockRepository{}
			defer mockRepo.AssertExpectations(t)
			if tc.mockCalled {
				mockRepo.On("CreateAccount", mock.Anything).Return(tc.mockAccount, tc.mockErr).Once()
			}

			app, st := newTestApp(t, mockRepo)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(t, tc.body))
			app.register(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusCreated {
				var resp LoginResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "alice", resp.Handle)
				assert.Equal(t, auth.RoleUser, resp.Role)
				assert.Equal(t, 1, st.Counts[stats.MetricRegistrations])
			} else {
				assert.Zero(t, st.Counts[stats.MetricRegistrations])
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	passwordHash := hashFor(t, "s3cret")

	t.Run("successful login sets session cookie", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{}`), nil)
		mockRepo.On("GetAccount", "alice").
			Return(database.Account{Handle: "alice", PasswordHash: passwordHash}, nil).Once()
		mockRepo.On("GetBinding", "alice").
			Return(database.DeviceBinding{}, sql.ErrNoRows).Once()

		app, st := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "alice", Password: "s3cret"}))
		app.login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "alice", resp.Handle)
		assert.Equal(t, auth.RoleUser, resp.Role)
		assert.False(t, resp.Bound)

		cookie := findCookie(rr, sessionCookieKey)
		require.NotNil(t, cookie, "expected a session cookie")
		cred, err := app.codec.Parse(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "alice", cred.Handle)
		assert.Equal(t, auth.RoleUser, cred.Role)
		assert.Empty(t, cred.Secret, "named sessions never carry the access secret")

		assert.Equal(t, 1, st.Counts[stats.MetricLogins])
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{}`), nil)
		mockRepo.On("GetAccount", "alice").
			Return(database.Account{Handle: "alice", PasswordHash: passwordHash}, nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "alice", Password: "wrong"}))
		app.login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, findCookie(rr, sessionCookieKey))
	})

	t.Run("unknown handle is indistinguishable from wrong password", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{}`), nil)
		mockRepo.On("GetAccount", "ghost").
			Return(database.Account{}, sql.ErrNoRows).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "ghost", Password: "s3cret"}))
		app.login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("banned account", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{"banned": ["alice"]}`), nil)

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "alice", Password: "s3cret"}))
		app.login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockRepo.AssertNotCalled(t, "GetAccount", "alice")
	})

	t.Run("bound account without device code", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{}`), nil)
		mockRepo.On("GetAccount", "alice").
			Return(database.Account{Handle: "alice", PasswordHash: passwordHash}, nil).Once()
		mockRepo.On("GetBinding", "alice").
			Return(database.DeviceBinding{Handle: "alice", MachineCode: "AAA-111"}, nil).Once()

		app, st := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "alice", Password: "s3cret"}))
		app.login(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Nil(t, findCookie(rr, sessionCookieKey))
		assert.Equal(t, 1, st.Counts[stats.MetricBindConflicts])
	})

	t.Run("matching device code logs in bound", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{}`), nil)
		mockRepo.On("GetAccount", "alice").
			Return(database.Account{Handle: "alice", PasswordHash: passwordHash}, nil).Once()
		mockRepo.On("GetBinding", "alice").
			Return(database.DeviceBinding{Handle: "alice", MachineCode: "AAA-111"}, nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "alice", Password: "s3cret", DeviceCode: "aaa-111"}))
		app.login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Bound)
	})

	t.Run("device code claimed elsewhere", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{}`), nil)
		mockRepo.On("GetAccount", "alice").
			Return(database.Account{Handle: "alice", PasswordHash: passwordHash}, nil).Once()
		mockRepo.On("GetBinding", "alice").
			Return(database.DeviceBinding{}, sql.ErrNoRows).Once()
		mockRepo.On("GetBindingByCode", "AAA-111").
			Return(database.DeviceBinding{Handle: "bob", MachineCode: "AAA-111"}, nil).Once()

		app, st := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "alice", Password: "s3cret", DeviceCode: "AAA-111"}))
		app.login(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, 1, st.Counts[stats.MetricBindConflicts])
	})

	t.Run("shared secret login", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		app, _ := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Password: "shared-access-secret"}))
		app.login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Empty(t, resp.Handle)
		assert.Equal(t, auth.RoleUser, resp.Role)

		cookie := findCookie(rr, sessionCookieKey)
		require.NotNil(t, cookie)
		cred, err := app.codec.Parse(cookie.Value)
		require.NoError(t, err)
		assert.Empty(t, cred.Handle)
		assert.Equal(t, "shared-access-secret", cred.Secret, "expected the access secret, never the signing key")

		raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "test-signing-key", "expected the signing key to stay server-side")
		mockRepo.AssertNotCalled(t, "GetBinding", mock.Anything)
	})

	t.Run("owner login bypasses storage", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetSettings").Return([]byte(`{}`), nil)
		mockRepo.On("AccountExists", "owner").Return(true, nil).Once()
		mockRepo.On("GetBinding", "owner").
			Return(database.DeviceBinding{}, sql.ErrNoRows).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, LoginRequest{Handle: "owner", Password: "owner-password"}))
		app.login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, auth.RoleOwner, resp.Role)
		mockRepo.AssertNotCalled(t, "GetAccount", "owner")
	})
}

func TestLogoutHandler(t *testing.T) {
	app, _ := newTestApp(t, &database.MockRepository{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
	app.logout(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	cookie := findCookie(rr, sessionCookieKey)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value, "expected the session cookie to be cleared")
}

func TestSessionHandler(t *testing.T) {
	app, _ := newTestApp(t, &database.MockRepository{})

	t.Run("with identity", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "alice", Role: auth.RoleUser}))
		app.session(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "alice", resp.Handle)
	})

	t.Run("without identity", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		app.session(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestChangePasswordHandler(t *testing.T) {
	t.Run("stores a fresh hash", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("UpdatePassword", "alice", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpass")) == nil
		})).Return(nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/password",
			jsonBody(t, ChangePasswordRequest{Password: "newpass"}))
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "alice"}))
		app.changePassword(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("shared-secret session cannot change passwords", func(t *testing.T) {
		app, _ := newTestApp(t, &database.MockRepository{})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/password",
			jsonBody(t, ChangePasswordRequest{Password: "newpass"}))
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Role: auth.RoleUser}))
		app.changePassword(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestBindDeviceHandler(t *testing.T) {
	t.Run("claims the code", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("BindDevice", database.BindDeviceParams{
			Handle:      "alice",
			MachineCode: "AAA-111",
			Descriptor:  "laptop",
		}).Return(database.DeviceBinding{Handle: "alice", MachineCode: "AAA-111", Descriptor: "laptop"}, nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/device/bind",
			jsonBody(t, BindDeviceRequest{MachineCode: "AAA-111", Descriptor: "laptop"}))
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "alice"}))
		app.bindDevice(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("losing the claim race returns conflict", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("BindDevice", mock.Anything).
			Return(database.DeviceBinding{}, database.ErrCodeConflict).Once()
		mockRepo.On("GetBindingByCode", "AAA-111").
			Return(database.DeviceBinding{Handle: "bob"}, nil).Once()

		app, st := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/device/bind",
			jsonBody(t, BindDeviceRequest{MachineCode: "AAA-111"}))
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "alice"}))
		app.bindDevice(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, 1, st.Counts[stats.MetricBindConflicts])
	})

	t.Run("missing machine code", func(t *testing.T) {
		app, _ := newTestApp(t, &database.MockRepository{})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/device/bind",
			jsonBody(t, BindDeviceRequest{}))
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "alice"}))
		app.bindDevice(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDeleteAccountHandler(t *testing.T) {
	t.Run("self purge clears the session", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("PurgeAccount", "alice", ",alice,").Return(nil).Once()

		app, st := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/account", nil)
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "alice", Role: auth.RoleUser}))
		app.deleteAccount(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		cookie := findCookie(rr, sessionCookieKey)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, 1, st.Counts[stats.MetricPurges])
	})

	t.Run("ordinary user cannot purge others", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/account?handle=bob", nil)
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "alice", Role: auth.RoleUser}))
		app.deleteAccount(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		mockRepo.AssertNotCalled(t, "PurgeAccount", mock.Anything, mock.Anything)
	})

	t.Run("admin purges another account without losing their session", func(t *testing.T) {
		mockRepo := &database.MockRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("PurgeAccount", "bob", ",bob,").Return(nil).Once()

		app, _ := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/account?handle=bob", nil)
		req = req.WithContext(WithIdentity(req.Context(), auth.Identity{Handle: "root", Role: auth.RoleAdmin}))
		app.deleteAccount(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Nil(t, findCookie(rr, sessionCookieKey))
	})
}
