package types

import (
	"time"
)

type Account struct {
	Handle    string    `json:"handle"`
	Role      string    `json:"role,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type DeviceBinding struct {
	Handle      string    `json:"handle"`
	MachineCode string    `json:"machine_code"`
	Descriptor  string    `json:"descriptor,omitempty"`
	BoundAt     time.Time `json:"bound_at,omitempty"`
}

type FriendRequest struct {
	Id        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Conversation struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	Participants []string  `json:"participants"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Message struct {
	Id             string    `json:"id"`
	ConversationId string    `json:"conversation_id"`
	Sender         string    `json:"sender"`
	SenderName     string    `json:"sender_name,omitempty"`
	Content        string    `json:"content"`
	Type           string    `json:"type,omitempty"`
	Read           bool      `json:"read"`
	Timestamp      time.Time `json:"timestamp"`
}

type PlayRecord struct {
	Handle   string    `json:"-"`
	MediaId  string    `json:"media_id"`
	Title    string    `json:"title,omitempty"`
	Position int       `json:"position"`
	Duration int       `json:"duration,omitempty"`
	PlayedAt time.Time `json:"played_at"`
}

type Favorite struct {
	Handle  string    `json:"-"`
	MediaId string    `json:"media_id"`
	Title   string    `json:"title,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

type SkipMarker struct {
	Handle  string `json:"-"`
	MediaId string `json:"media_id"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

type SearchRecord struct {
	Handle     string    `json:"-"`
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}
