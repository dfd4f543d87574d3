package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/mediatrack/mediatrack/internal/social"
	"github.com/mediatrack/mediatrack/internal/stats"
	"github.com/mediatrack/mediatrack/internal/types"
)

// maxInlineAvatarBytes caps inline-encoded avatar images.
const maxInlineAvatarBytes = 256 << 10

type CreateFriendRequestRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message,omitempty"`
}

type RespondFriendRequestRequest struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type CreateConversationRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type,omitempty"`
	Participants []string `json:"participants"`
}

type RenameConversationRequest struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type CreateMessageRequest struct {
	ConversationId string `json:"conversation_id"`
	Content        string `json:"content"`
	Type           string `json:"type,omitempty"`
}

type SetAvatarRequest struct {
	Handle string `json:"handle,omitempty"`
	Avatar string `json:"avatar"`
}

func (s *MediaTrackApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// requireHandle pulls the named identity out of the context; shared-secret
// sessions carry no handle and cannot use per-account endpoints.
func (s *MediaTrackApp) requireHandle(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := IdentityFrom(r.Context())
	if !ok || identity.Handle == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return "", false
	}
	return identity.Handle, true
}

func (s *MediaTrackApp) searchAccounts(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireHandle(w, r); !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.social.SearchAccounts(r.Context(), query))
}

func (s *MediaTrackApp) getFriends(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	s.writeJson(w, http.StatusOK, s.social.Friends(r.Context(), handle))
}

func (s *MediaTrackApp) removeFriend(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	friend := r.URL.Query().Get("handle")
	if friend == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.social.RemoveFriend(r.Context(), handle, friend); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) createFriendRequest(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req CreateFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Recipient == "" || req.Recipient == handle {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fr, err := s.social.SendFriendRequest(r.Context(), handle, req.Recipient, req.Message)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, fr)
}

func (s *MediaTrackApp) getFriendRequests(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	s.writeJson(w, http.StatusOK, s.social.FriendRequests(r.Context(), handle))
}

func (s *MediaTrackApp) respondFriendRequest(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req RespondFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Id == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// only the recipient may settle a request
	pending, err := s.social.FriendRequestById(r.Context(), req.Id)
	if err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if pending.Recipient != handle {
		errResp := NewForbiddenError("")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fr, err := s.social.RespondFriendRequest(r.Context(), req.Id, req.Status)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, social.ErrInvalidStatus) {
			errResp = NewBadRequestError()
		} else {
			errResp = s.socialError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, fr)
}

func (s *MediaTrackApp) deleteFriendRequest(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fr, err := s.social.FriendRequestById(r.Context(), id)
	if err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if fr.Sender != handle && fr.Recipient != handle {
		errResp := NewForbiddenError("")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.social.DeleteFriendRequest(r.Context(), id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) createConversation(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// the creator is always a participant
	participants := append(req.Participants, handle)

	conv, err := s.social.CreateConversation(r.Context(), req.Name, req.Type, participants)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, social.ErrInvalidParticipant) {
			errResp = NewBadRequestError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, conv)
}

func (s *MediaTrackApp) getConversations(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	s.writeJson(w, http.StatusOK, s.social.Conversations(r.Context(), handle))
}

func (s *MediaTrackApp) getConversation(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.social.Conversation(r.Context(), id, handle)
	if err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, conv)
}

func (s *MediaTrackApp) renameConversation(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Id == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.social.RenameConversation(r.Context(), req.Id, handle, req.Name)
	if err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, conv)
}

func (s *MediaTrackApp) deleteConversation(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.social.DeleteConversation(r.Context(), id, handle); err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) createMessage(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConversationId == "" || req.Content == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.social.SendMessage(r.Context(), req.ConversationId, handle, handle, req.Content, req.Type)
	if err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.MetricMessages)
	s.writeJson(w, http.StatusCreated, msg)
}

func (s *MediaTrackApp) getMessages(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	conversationId := r.URL.Query().Get("conversation_id")
	if conversationId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var before int64
	var limit int
	var err error

	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		before, err = strconv.ParseInt(beforeStr, 10, 64)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	messages, err := s.social.Messages(r.Context(), conversationId, handle, before, limit)
	if err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *MediaTrackApp) markMessagesRead(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.requireHandle(w, r)
	if !ok {
		return
	}

	conversationId := r.URL.Query().Get("conversation_id")
	if conversationId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.social.MarkRead(r.Context(), conversationId, handle); err != nil {
		errResp := s.socialError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) getAvatar(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireHandle(w, r); !ok {
		return
	}

	handle := r.URL.Query().Get("handle")
	if handle == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// avatar lookups feed list views; a storage error shows up as no avatar
	account, err := s.db.GetAccount(r.Context(), handle)
	if err != nil {
		s.writeJson(w, http.StatusOK, types.Account{Handle: handle})
		return
	}

	s.writeJson(w, http.StatusOK, types.Account{Handle: account.Handle, Avatar: account.Avatar})
}

func validAvatar(avatar string) bool {
	if strings.HasPrefix(avatar, "data:image/") {
		return len(avatar) <= maxInlineAvatarBytes
	}

	u, err := url.Parse(avatar)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (s *MediaTrackApp) setAvatar(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok || identity.Handle == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SetAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Avatar == "" || !validAvatar(req.Avatar) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	target := identity.Handle
	if req.Handle != "" && req.Handle != identity.Handle {
		if !identity.Elevated() {
			errResp := NewForbiddenError("")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		target = req.Handle
	}

	if err := s.db.SetAvatar(r.Context(), target, req.Avatar); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *MediaTrackApp) deleteAvatar(w http.ResponseWriter, r *http.Request) {
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

	if err := s.db.SetAvatar(r.Context(), target, ""); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// socialError maps social-layer failures onto the HTTP taxonomy.
func (s *MediaTrackApp) socialError(err error) *ApiError {
	switch {
	case errors.Is(err, social.ErrNotFound):
		return NewNotFoundError()
	case errors.Is(err, social.ErrNotParticipant):
		return NewForbiddenError("")
	default:
		return NewInternalServerError(err)
	}
}

func bindingToWire(b database.DeviceBinding) types.DeviceBinding {
	return types.DeviceBinding{
		Handle:      b.Handle,
		MachineCode: b.MachineCode,
		Descriptor:  b.Descriptor,
		BoundAt:     b.BoundAt,
	}
}
