package database

import "time"

type Account struct {
	Handle       string
	PasswordHash string
	Avatar       string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type DeviceBinding struct {
	Handle      string
	MachineCode string
	Descriptor  string
	BoundAt     time.Time
}

type FriendEdge struct {
	HandleA   string
	HandleB   string
	Status    string
	CreatedAt time.Time
}

type FriendRequest struct {
	Id        string
	Sender    string
	Recipient string
	Message   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Conversation carries its participant set in serialized form. Decoding to a
// handle slice happens in the social package, never in SQL.
type Conversation struct {
	Id           string
	Name         string
	Participants string
	Type         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Message struct {
	Id             string
	ConversationId string
	Sender         string
	SenderName     string
	Content        string
	Type           string
	Read           bool
	CreatedAt      time.Time
}

type PlayRecord struct {
	Handle   string
	MediaId  string
	Title    string
	Position int
	Duration int
	PlayedAt time.Time
}

type Favorite struct {
	Handle  string
	MediaId string
	Title   string
	AddedAt time.Time
}

type SkipMarker struct {
	Handle  string
	MediaId string
	Start   int
	End     int
}

type SearchRecord struct {
	Handle     string
	Query      string
	SearchedAt time.Time
}

type CreateAccountParams struct {
	Handle       string
	PasswordHash string
	Role         string
}

type BindDeviceParams struct {
	Handle      string
	MachineCode string
	Descriptor  string
}

type CreateFriendRequestParams struct {
	Id        string
	Sender    string
	Recipient string
	Message   string
}

type CreateConversationParams struct {
	Id           string
	Name         string
	Participants string
	Type         string
}

type UpdateConversationParams struct {
	Id           string
	Name         string
	Participants string
}

type CreateMessageParams struct {
	Id             string
	ConversationId string
	Sender         string
	SenderName     string
	Content        string
	Type           string
}
