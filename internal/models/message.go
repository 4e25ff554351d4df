package models

import "time"

// Message is a delivered chat message. Immutable once created; only a reset
// removes rows, in bulk for the whole pair.
type Message struct {
	ID         string    `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// History is the response shape for a conversation fetch. When the pair has
// no accepted relationship Messages stays empty and the relationship fields
// let the caller render the request flow without a second round trip.
type History struct {
	Messages     []Message `json:"messages"`
	Relationship string    `json:"relationship"`
	IsSender     bool      `json:"is_sender"`
	RequestID    string    `json:"request_id,omitempty"`
}
