package models

import "time"

// Event names delivered over a user's websocket room.
const (
	EventReceiveMessage  = "receive_message"
	EventNewRequest      = "new_request"
	EventRequestAccepted = "request_accepted"
	EventRequestRejected = "request_rejected"
	EventChatReset       = "chat_reset"
)

// Event is the envelope written to room members. Delivery is fire and
// forget: no ack, no queue, no redelivery.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// MessageEvent is the receive_message payload. Time carries the h:mm AM/PM
// rendering clients show next to the bubble.
type MessageEvent struct {
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	Time       string    `json:"time"`
}

// NewRequestEvent is sent to the receiver when a chat request is created.
type NewRequestEvent struct {
	RequestID string `json:"request_id"`
	SenderID  string `json:"sender_id"`
}

// RequestAcceptedEvent is sent to both parties on acceptance.
type RequestAcceptedEvent struct {
	RequestID  string `json:"request_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

// RequestRejectedEvent is sent to the sender only; the record is gone.
type RequestRejectedEvent struct {
	RequestID string `json:"request_id"`
}

// ChatResetEvent is sent to both parties, each naming the other one.
type ChatResetEvent struct {
	OtherUserID string `json:"other_user_id"`
}
