package database

import "context"

type Repository interface {
	Ping() error

	CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error)
	GetAccount(ctx context.Context, handle string) (Account, error)
	AccountExists(ctx context.Context, handle string) (bool, error)
	UpdatePassword(ctx context.Context, handle, passwordHash string) error
	SearchAccounts(ctx context.Context, query string, limit int) ([]Account, error)
	SetAvatar(ctx context.Context, handle, avatar string) error

	GetBinding(ctx context.Context, handle string) (DeviceBinding, error)
	GetBindingByCode(ctx context.Context, machineCode string) (DeviceBinding, error)
	BindDevice(ctx context.Context, params BindDeviceParams) (DeviceBinding, error)
	DeleteBinding(ctx context.Context, handle string) error

	UpsertFriendEdge(ctx context.Context, handleA, handleB string) (FriendEdge, error)
	GetFriendEdge(ctx context.Context, handleA, handleB string) (FriendEdge, error)
	ListFriendEdges(ctx context.Context, handle string) ([]FriendEdge, error)
	DeleteFriendEdge(ctx context.Context, handleA, handleB string) error

	CreateFriendRequest(ctx context.Context, params CreateFriendRequestParams) (FriendRequest, error)
	GetFriendRequest(ctx context.Context, id string) (FriendRequest, error)
	ListFriendRequests(ctx context.Context, handle string) ([]FriendRequest, error)
	UpdateFriendRequestStatus(ctx context.Context, id, status string) (FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, id, handleA, handleB string) (FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, id string) error

	CreateConversation(ctx context.Context, params CreateConversationParams) (Conversation, error)
	GetConversation(ctx context.Context, id string) (Conversation, error)
	ListConversations(ctx context.Context, participantToken string) ([]Conversation, error)
	UpdateConversation(ctx context.Context, params UpdateConversationParams) (Conversation, error)
	DeleteConversation(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error)
	GetMessages(ctx context.Context, conversationId string, before int64, limit int) ([]Message, error)
	MarkMessagesRead(ctx context.Context, conversationId, reader string) error

	AppendPlay(ctx context.Context, play PlayRecord) error
	ListPlays(ctx context.Context, handle string, limit int) ([]PlayRecord, error)
	AddFavorite(ctx context.Context, fav Favorite) error
	RemoveFavorite(ctx context.Context, handle, mediaId string) error
	ListFavorites(ctx context.Context, handle string) ([]Favorite, error)
	SetSkipMarker(ctx context.Context, marker SkipMarker) error
	GetSkipMarker(ctx context.Context, handle, mediaId string) (SkipMarker, error)
	AppendSearch(ctx context.Context, rec SearchRecord) error
	ListSearches(ctx context.Context, handle string, limit int) ([]SearchRecord, error)

	GetSettings(ctx context.Context) ([]byte, error)
	SaveSettings(ctx context.Context, blob []byte) error

	PurgeAccount(ctx context.Context, handle, participantToken string) error
}
