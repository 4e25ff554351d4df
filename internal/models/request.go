package models

import "time"

// ChatRequest statuses. A request is deleted outright on rejection, so no
// rejected status is ever stored.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
)

// Relationship values derived from ChatRequest state for a pair of users.
// Never stored; computed per request.
const (
	RelationNone            = "none"
	RelationPendingSent     = "pending_sent"
	RelationPendingReceived = "pending_received"
	RelationAccepted        = "accepted"
)

// ChatRequest is the consent record gating message exchange between two users.
// At most one row exists per unordered user pair, enforced by a unique index
// on the canonical ordering of the pair.
type ChatRequest struct {
	ID           string    `db:"id" json:"id"`
	SenderID     string    `db:"sender_id" json:"sender_id"`
	ReceiverID   string    `db:"receiver_id" json:"receiver_id"`
	FirstMessage string    `db:"first_message" json:"first_message"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PendingRequest is a pending ChatRequest joined with the sender's profile.
type PendingRequest struct {
	ID              string    `db:"id" json:"id"`
	SenderID        string    `db:"sender_id" json:"sender_id"`
	FirstMessage    string    `db:"first_message" json:"first_message"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	SenderUsername  string    `db:"username" json:"sender_username"`
	SenderFirstName string    `db:"first_name" json:"sender_first_name"`
	SenderLastName  string    `db:"last_name" json:"sender_last_name"`
}
