// Package realtime routes chat events between connected peers.
//
// Two peers meet in a room whose id is derived from their account ids, so
// neither side needs a lookup to find it. A Router keeps room membership in
// a Hub and fans events out through a Bus: LocalBus for a single instance,
// RedisBus when several instances share traffic. Each connection drains
// its own bounded queue, so a slow client never stalls a room.
package realtime

import (
	"encoding/json"
	"time"
)

// RoomID is the canonical room of the unordered pair {a, b}.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

// Event names on the wire.
const (
	EventJoinRoom       = "joinRoom"
	EventSendMessage    = "sendMessage"
	EventTyping         = "typing"
	EventJoined         = "joined"
	EventReceiveMessage = "receiveMessage"
	EventUserTyping     = "userTyping"
	EventError          = "error"
)

// Envelope is one frame between a client and the server.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an Envelope.
func NewEnvelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

// JoinRequest is the payload of joinRoom.
type JoinRequest struct {
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId"`
}

// Message is a chat message. Messages are relayed, never stored.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

// Typing is the payload of typing (inbound) and userTyping (outbound).
type Typing struct {
	UserID       string `json:"userId"`
	TargetUserID string `json:"targetUserId,omitempty"`
	IsTyping     bool   `json:"isTyping"`
}

// ErrorPayload is the payload of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
}
