package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	args := m.Called(params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRepository) GetAccount(ctx context.Context, handle string) (Account, error) {
	args := m.Called(handle)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRepository) AccountExists(ctx context.Context, handle string) (bool, error) {
	args := m.Called(handle)
	return args.Bool(0), args.Error(1)
}
func (m *MockRepository) UpdatePassword(ctx context.Context, handle, passwordHash string) error {
	args := m.Called(handle, passwordHash)
	return args.Error(0)
}
func (m *MockRepository) SearchAccounts(ctx context.Context, query string, limit int) ([]Account, error) {
	args := m.Called(query, limit)
	return args.Get(0).([]Account), args.Error(1)
}
func (m *MockRepository) SetAvatar(ctx context.Context, handle, avatar string) error {
	args := m.Called(handle, avatar)
	return args.Error(0)
}
func (m *MockRepository) GetBinding(ctx context.Context, handle string) (DeviceBinding, error) {
	args := m.Called(handle)
	return args.Get(0).(DeviceBinding), args.Error(1)
}
func (m *MockRepository) GetBindingByCode(ctx context.Context, machineCode string) (DeviceBinding, error) {
	args := m.Called(machineCode)
	return args.Get(0).(DeviceBinding), args.Error(1)
}
func (m *MockRepository) BindDevice(ctx context.Context, params BindDeviceParams) (DeviceBinding, error) {
	args := m.Called(params)
	return args.Get(0).(DeviceBinding), args.Error(1)
}
func (m *MockRepository) DeleteBinding(ctx context.Context, handle string) error {
	args := m.Called(handle)
	return args.Error(0)
}
func (m *MockRepository) UpsertFriendEdge(ctx context.Context, handleA, handleB string) (FriendEdge, error) {
	args := m.Called(handleA, handleB)
	return args.Get(0).(FriendEdge), args.Error(1)
}
func (m *MockRepository) GetFriendEdge(ctx context.Context, handleA, handleB string) (FriendEdge, error) {
	args := m.Called(handleA, handleB)
	return args.Get(0).(FriendEdge), args.Error(1)
}
func (m *MockRepository) ListFriendEdges(ctx context.Context, handle string) ([]FriendEdge, error) {
	args := m.Called(handle)
	return args.Get(0).([]FriendEdge), args.Error(1)
}
func (m *MockRepository) DeleteFriendEdge(ctx context.Context, handleA, handleB string) error {
	args := m.Called(handleA, handleB)
	return args.Error(0)
}
func (m *MockRepository) CreateFriendRequest(ctx context.Context, params CreateFriendRequestParams) (FriendRequest, error) {
	args := m.Called(params)
	return args.Get(0).(FriendRequest), args.Error(1)
}
func (m *MockRepository) GetFriendRequest(ctx context.Context, id string) (FriendRequest, error) {
	args := m.Called(id)
	return args.Get(0).(FriendRequest), args.Error(1)
}
func (m *MockRepository) ListFriendRequests(ctx context.Context, handle string) ([]FriendRequest, error) {
	args := m.Called(handle)
	return args.Get(0).([]FriendRequest), args.Error(1)
}
func (m *MockRepository) UpdateFriendRequestStatus(ctx context.Context, id, status string) (FriendRequest, error) {
	args := m.Called(id, status)
	return args.Get(0).(FriendRequest), args.Error(1)
}
func (m *MockRepository) AcceptFriendRequest(ctx context.Context, id, handleA, handleB string) (FriendRequest, error) {
	args := m.Called(id, handleA, handleB)
	return args.Get(0).(FriendRequest), args.Error(1)
}
func (m *MockRepository) DeleteFriendRequest(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockRepository) CreateConversation(ctx context.Context, params CreateConversationParams) (Conversation, error) {
	args := m.Called(params)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) GetConversation(ctx context.Context, id string) (Conversation, error) {
	args := m.Called(id)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) ListConversations(ctx context.Context, participantToken string) ([]Conversation, error) {
	args := m.Called(participantToken)
	return args.Get(0).([]Conversation), args.Error(1)
}
func (m *MockRepository) UpdateConversation(ctx context.Context, params UpdateConversationParams) (Conversation, error) {
	args := m.Called(params)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockRepository) DeleteConversation(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRepository) GetMessages(ctx context.Context, conversationId string, before int64, limit int) ([]Message, error) {
	args := m.Called(conversationId, before, limit)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRepository) MarkMessagesRead(ctx context.Context, conversationId, reader string) error {
	args := m.Called(conversationId, reader)
	return args.Error(0)
}
func (m *MockRepository) AppendPlay(ctx context.Context, play PlayRecord) error {
	args := m.Called(play)
	return args.Error(0)
}
func (m *MockRepository) ListPlays(ctx context.Context, handle string, limit int) ([]PlayRecord, error) {
	args := m.Called(handle, limit)
	return args.Get(0).([]PlayRecord), args.Error(1)
}
func (m *MockRepository) AddFavorite(ctx context.Context, fav Favorite) error {
	args := m.Called(fav)
	return args.Error(0)
}
func (m *MockRepository) RemoveFavorite(ctx context.Context, handle, mediaId string) error {
	args := m.Called(handle, mediaId)
	return args.Error(0)
}
func (m *MockRepository) ListFavorites(ctx context.Context, handle string) ([]Favorite, error) {
	args := m.Called(handle)
	return args.Get(0).([]Favorite), args.Error(1)
}
func (m *MockRepository) SetSkipMarker(ctx context.Context, marker SkipMarker) error {
	args := m.Called(marker)
	return args.Error(0)
}
func (m *MockRepository) GetSkipMarker(ctx context.Context, handle, mediaId string) (SkipMarker, error) {
	args := m.Called(handle, mediaId)
	return args.Get(0).(SkipMarker), args.Error(1)
}
func (m *MockRepository) AppendSearch(ctx context.Context, rec SearchRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}
func (m *MockRepository) ListSearches(ctx context.Context, handle string, limit int) ([]SearchRecord, error) {
	args := m.Called(handle, limit)
	return args.Get(0).([]SearchRecord), args.Error(1)
}
func (m *MockRepository) GetSettings(ctx context.Context) ([]byte, error) {
	args := m.Called()
	if blob, ok := args.Get(0).([]byte); ok {
		return blob, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockRepository) SaveSettings(ctx context.Context, blob []byte) error {
	args := m.Called(blob)
	return args.Error(0)
}
func (m *MockRepository) PurgeAccount(ctx context.Context, handle, participantToken string) error {
	args := m.Called(handle, participantToken)
	return args.Error(0)
}
