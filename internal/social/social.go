// Package social owns the friend graph and messaging data: canonical edge
// ordering, friend request lifecycle, conversation membership and the
// message read path. It sits directly on the repository; delivery of new
// messages to connected clients is out of scope here.
package social

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"

	"github.com/mediatrack/mediatrack/internal/database"
	"github.com/mediatrack/mediatrack/internal/types"
	"github.com/teris-io/shortid"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"

	searchLimit = 20
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotParticipant     = errors.New("not a conversation participant")
	ErrInvalidStatus      = errors.New("invalid request status")
	ErrInvalidParticipant = errors.New("invalid participant handle")
)

type Service struct {
	log  *log.Logger
	repo database.Repository

	// overridable for tests
	generateId func() (string, error)
}

func NewService(logger *log.Logger, repo database.Repository) *Service {
	return &Service{
		log:        logger,
		repo:       repo,
		generateId: shortid.Generate,
	}
}

// CanonicalPair orders two handles so the lexicographically smaller one
// sorts first. Every edge write and point lookup goes through this, which is
// what keeps each unordered pair down to a single row.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// ParticipantToken is the delimited form of a handle used inside the
// serialized participant list, so substring matching cannot confuse "bob"
// with "bobby".
func ParticipantToken(handle string) string {
	return "," + handle + ","
}

func encodeParticipants(handles []string) string {
	set := slices.Clone(handles)
	sort.Strings(set)
	set = slices.Compact(set)
	return "," + strings.Join(set, ",") + ","
}

func decodeParticipants(serialized string) []string {
	trimmed := strings.Trim(serialized, ",")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ",")
}

func (s *Service) AddFriend(ctx context.Context, a, b string) (database.FriendEdge, error) {
	ca, cb := CanonicalPair(a, b)
	return s.repo.UpsertFriendEdge(ctx, ca, cb)
}

func (s *Service) RemoveFriend(ctx context.Context, a, b string) error {
	ca, cb := CanonicalPair(a, b)
	return s.repo.DeleteFriendEdge(ctx, ca, cb)
}

func (s *Service) AreFriends(ctx context.Context, a, b string) bool {
	ca, cb := CanonicalPair(a, b)
	_, err := s.repo.GetFriendEdge(ctx, ca, cb)
	return err == nil
}

// Friends lists the handles befriended with the given handle. This read
// feeds a sidebar, so storage failures degrade to an empty list.
func (s *Service) Friends(ctx context.Context, handle string) []string {
	edges, err := s.repo.ListFriendEdges(ctx, handle)
	if err != nil {
		s.log.Println("list friend edges:", err)
		return nil
	}

	friends := make([]string, 0, len(edges))
	for _, e := range edges {
		if e.HandleA == handle {
			friends = append(friends, e.HandleB)
		} else {
			friends = append(friends, e.HandleA)
		}
	}

	return friends
}

func (s *Service) SendFriendRequest(ctx context.Context, sender, recipient, message string) (types.FriendRequest, error) {
	id, err := s.generateId()
	if err != nil {
		return types.FriendRequest{}, fmt.Errorf("generate request id: %w", err)
	}

	fr, err := s.repo.CreateFriendRequest(ctx, database.CreateFriendRequestParams{
		Id:        id,
		Sender:    sender,
		Recipient: recipient,
		Message:   message,
	})
	if err != nil {
		return types.FriendRequest{}, err
	}

	return friendRequestToWire(fr), nil
}

// RespondFriendRequest transitions a pending request. Accepting also creates
// the canonical friend edge; both changes land in one storage transaction.
func (s *Service) RespondFriendRequest(ctx context.Context, id, status string) (types.FriendRequest, error) {
	if status != StatusAccepted && status != StatusRejected {
		return types.FriendRequest{}, ErrInvalidStatus
	}

	fr, err := s.repo.GetFriendRequest(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.FriendRequest{}, ErrNotFound
		}
		return types.FriendRequest{}, err
	}

	if status == StatusAccepted {
		ca, cb := CanonicalPair(fr.Sender, fr.Recipient)
		fr, err = s.repo.AcceptFriendRequest(ctx, id, ca, cb)
	} else {
		fr, err = s.repo.UpdateFriendRequestStatus(ctx, id, status)
	}
	if err != nil {
		return types.FriendRequest{}, err
	}

	return friendRequestToWire(fr), nil
}

func (s *Service) FriendRequests(ctx context.Context, handle string) []types.FriendRequest {
	dbRequests, err := s.repo.ListFriendRequests(ctx, handle)
	if err != nil {
		s.log.Println("list friend requests:", err)
		return nil
	}

	requests := make([]types.FriendRequest, 0, len(dbRequests))
	for _, fr := range dbRequests {
		requests = append(requests, friendRequestToWire(fr))
	}

	return requests
}

func (s *Service) DeleteFriendRequest(ctx context.Context, id string) error {
	return s.repo.DeleteFriendRequest(ctx, id)
}

func (s *Service) CreateConversation(ctx context.Context, name, convType string, participants []string) (types.Conversation, error) {
	if len(participants) == 0 {
		return types.Conversation{}, fmt.Errorf("conversation requires at least one participant")
	}
	for _, p := range participants {
		// a handle carrying the delimiter would split into extra members
		// when the participant list is serialized
		if p == "" || strings.ContainsAny(p, ", ") {
			return types.Conversation{}, ErrInvalidParticipant
		}
	}
	if convType == "" {
		convType = "direct"
	}

	id, err := s.generateId()
	if err != nil {
		return types.Conversation{}, fmt.Errorf("generate conversation id: %w", err)
	}

	conv, err := s.repo.CreateConversation(ctx, database.CreateConversationParams{
		Id:           id,
		Name:         name,
		Participants: encodeParticipants(participants),
		Type:         convType,
	})
	if err != nil {
		return types.Conversation{}, err
	}

	return conversationToWire(conv), nil
}

// Conversation returns a conversation visible to the viewer: membership in
// the participant set is the visibility rule.
func (s *Service) Conversation(ctx context.Context, id, viewer string) (types.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Conversation{}, ErrNotFound
		}
		return types.Conversation{}, err
	}

	wire := conversationToWire(conv)
	if viewer != "" && !slices.Contains(wire.Participants, viewer) {
		return types.Conversation{}, ErrNotParticipant
	}

	return wire, nil
}

// Conversations lists the viewer's conversations, best-effort.
func (s *Service) Conversations(ctx context.Context, handle string) []types.Conversation {
	dbConvs, err := s.repo.ListConversations(ctx, ParticipantToken(handle))
	if err != nil {
		s.log.Println("list conversations:", err)
		return nil
	}

	convs := make([]types.Conversation, 0, len(dbConvs))
	for _, c := range dbConvs {
		wire := conversationToWire(c)
		// the substring scan is a prefilter; membership is decided on the
		// decoded participant set
		if !slices.Contains(wire.Participants, handle) {
			continue
		}
		convs = append(convs, wire)
	}

	return convs
}

func (s *Service) RenameConversation(ctx context.Context, id, viewer, name string) (types.Conversation, error) {
	conv, err := s.Conversation(ctx, id, viewer)
	if err != nil {
		return types.Conversation{}, err
	}

	updated, err := s.repo.UpdateConversation(ctx, database.UpdateConversationParams{
		Id:           id,
		Name:         name,
		Participants: encodeParticipants(conv.Participants),
	})
	if err != nil {
		return types.Conversation{}, err
	}

	return conversationToWire(updated), nil
}

// DeleteConversation removes the conversation and all its messages. The
// repository applies both removals as one unit.
func (s *Service) DeleteConversation(ctx context.Context, id, viewer string) error {
	if _, err := s.Conversation(ctx, id, viewer); err != nil {
		return err
	}
	return s.repo.DeleteConversation(ctx, id)
}

// SendMessage appends a message to a live conversation the sender belongs
// to. A message must never reference a dead conversation, so the membership
// check doubles as the liveness check.
func (s *Service) SendMessage(ctx context.Context, conversationId, sender, senderName, content, msgType string) (types.Message, error) {
	if _, err := s.Conversation(ctx, conversationId, sender); err != nil {
		return types.Message{}, err
	}
	if msgType == "" {
		msgType = "text"
	}

	id, err := s.generateId()
	if err != nil {
		return types.Message{}, fmt.Errorf("generate message id: %w", err)
	}

	msg, err := s.repo.CreateMessage(ctx, database.CreateMessageParams{
		Id:             id,
		ConversationId: conversationId,
		Sender:         sender,
		SenderName:     senderName,
		Content:        content,
		Type:           msgType,
	})
	if err != nil {
		return types.Message{}, err
	}

	return messageToWire(msg), nil
}

// Messages returns a page of a conversation's messages in chronological
// order. Storage hands back newest-first so the page anchors on the most
// recent rows; the slice is reversed before returning because display order
// is oldest-first.
func (s *Service) Messages(ctx context.Context, conversationId, viewer string, before int64, limit int) ([]types.Message, error) {
	if _, err := s.Conversation(ctx, conversationId, viewer); err != nil {
		return nil, err
	}

	dbMsgs, err := s.repo.GetMessages(ctx, conversationId, before, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]types.Message, 0, len(dbMsgs))
	for i := len(dbMsgs) - 1; i >= 0; i-- {
		messages = append(messages, messageToWire(dbMsgs[i]))
	}

	return messages, nil
}

func (s *Service) MarkRead(ctx context.Context, conversationId, reader string) error {
	if _, err := s.Conversation(ctx, conversationId, reader); err != nil {
		return err
	}
	return s.repo.MarkMessagesRead(ctx, conversationId, reader)
}

// SearchAccounts finds handles by substring, capped at 20 matches, in
// storage order. Best-effort: failures yield an empty result.
func (s *Service) SearchAccounts(ctx context.Context, query string) []types.Account {
	dbAccounts, err := s.repo.SearchAccounts(ctx, query, searchLimit)
	if err != nil {
		s.log.Println("search accounts:", err)
		return nil
	}

	accounts := make([]types.Account, 0, len(dbAccounts))
	for _, a := range dbAccounts {
		accounts = append(accounts, types.Account{
			Handle: a.Handle,
			Avatar: a.Avatar,
			Role:   a.Role,
		})
	}

	return accounts
}

func friendRequestToWire(fr database.FriendRequest) types.FriendRequest {
	return types.FriendRequest{
		Id:        fr.Id,
		Sender:    fr.Sender,
		Recipient: fr.Recipient,
		Message:   fr.Message,
		Status:    fr.Status,
		CreatedAt: fr.CreatedAt,
		UpdatedAt: fr.UpdatedAt,
	}
}

func conversationToWire(c database.Conversation) types.Conversation {
	return types.Conversation{
		Id:           c.Id,
		Name:         c.Name,
		Participants: decodeParticipants(c.Participants),
		Type:         c.Type,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func messageToWire(m database.Message) types.Message {
	return types.Message{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Sender:         m.Sender,
		SenderName:     m.SenderName,
		Content:        m.Content,
		Type:           m.Type,
		Read:           m.Read,
		Timestamp:      m.CreatedAt,
	}
}

func (s *Service) FriendRequestById(ctx context.Context, id string) (types.FriendRequest, error) {
	fr, err := s.repo.GetFriendRequest(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.FriendRequest{}, ErrNotFound
		}
		return types.FriendRequest{}, err
	}
	return friendRequestToWire(fr), nil
}
