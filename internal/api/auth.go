package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mediatrack/mediatrack/internal/account"
	"github.com/mediatrack/mediatrack/internal/auth"
	"github.com/mediatrack/mediatrack/internal/stats"
)

var (
	// sessionDuration is the cookie lifetime; the credential itself carries
	// no expiry.
	sessionDuration = 7 * 24 * time.Hour

	sessionCookieKey = "session"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

type RegisterRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Handle     string `json:"handle"`
	Password   string `json:"password"`
	DeviceCode string `json:"device_code,omitempty"`
}

type LoginResponse struct {
	Handle string `json:"handle,omitempty"`
	Role   string `json:"role"`
	Bound  bool   `json:"bound"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type BindDeviceRequest struct {
	MachineCode string `json:"machine_code"`
	Descriptor  string `json:"descriptor,omitempty"`
}

// The session credential rides in a client-visible cookie so the UI can read
// role and handle without a round trip. SameSite stays lax for top-level
// navigation.
func createSessionCookie(token string, exp time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieKey,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(exp),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *MediaTrackApp) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Handle == "" || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newAccount, err := s.accounts.Register(r.Context(), req.Handle, req.Password)
	if err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, account.ErrDuplicateHandle):
			errResp = NewConflictError("handle already registered")
		case errors.Is(err, account.ErrInvalidHandle):
			errResp = NewBadRequestError()
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.MetricRegistrations)
	s.writeJson(w, http.StatusCreated, LoginResponse{
		Handle: newAccount.Handle,
		Role:   newAccount.Role,
	})
}

func (s *MediaTrackApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	identity, err := s.verifier.Verify(r.Context(), lr.Handle, lr.Password)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountBanned) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var bindState auth.BindState
	if identity.Handle != "" {
		bindState, err = s.bindings.CheckAndBind(r.Context(), identity.Handle, lr.DeviceCode)
		if err != nil {
			var taken *auth.CodeTakenError
			var errResp *ApiError
			switch {
			case errors.Is(err, auth.ErrCodeRequired), errors.Is(err, auth.ErrCodeMismatch):
				s.stats.Incr(stats.MetricBindConflicts)
				errResp = NewForbiddenError(err.Error())
			case errors.As(err, &taken):
				s.stats.Incr(stats.MetricBindConflicts)
				errResp = NewConflictError(err.Error())
			default:
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	token, err := s.codec.Issue(identity.Handle, identity.Role, identity.Handle == "")
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createSessionCookie(token, sessionDuration))
	s.stats.Incr(stats.MetricLogins)

	s.writeJson(w, http.StatusOK, LoginResponse{
		Handle: identity.Handle,
		Role:   identity.Role,
		Bound:  bindState.Bound,
	})
}

func (s *MediaTrackApp) logout(w http.ResponseWriter, _ *http.Request) {
	// instruct browser to delete cookie by overwriting it with an expired token
	http.SetCookie(w, createSessionCookie("", time.Duration(time.Unix(0, 0).Unix())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) session(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, LoginResponse{
		Handle: identity.Handle,
		Role:   identity.Role,
	})
}

func (s *MediaTrackApp) changePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok || identity.Handle == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), identity.Handle, req.Password); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) bindDevice(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok || identity.Handle == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req BindDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MachineCode == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	binding, err := s.bindings.Bind(r.Context(), identity.Handle, req.MachineCode, req.Descriptor)
	if err != nil {
		var taken *auth.CodeTakenError
		var errResp *ApiError
		if errors.As(err, &taken) {
			s.stats.Incr(stats.MetricBindConflicts)
			errResp = NewConflictError(err.Error())
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, bindingToWire(binding))
}

func (s *MediaTrackApp) unbindDevice(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok || identity.Handle == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	target := identity.Handle
	if h := r.URL.Query().Get("handle"); h != "" && h != identity.Handle {
		if !identity.Elevated() {
			errResp := NewForbiddenError("")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		target = h
	}

	if err := s.bindings.Unbind(r.Context(), target); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) deleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok || identity.Handle == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	target := identity.Handle
	if h := r.URL.Query().Get("handle"); h != "" && h != identity.Handle {
		if !identity.Elevated() {
			errResp := NewForbiddenError("")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		target = h
	}

	if err := s.accounts.Purge(r.Context(), target); err != nil {
		s.log.Println("purge account:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.MetricPurges)

	if target == identity.Handle {
		http.SetCookie(w, createSessionCookie("", time.Duration(time.Unix(0, 0).Unix())))
	}
	w.WriteHeader(http.StatusNoContent)
}
