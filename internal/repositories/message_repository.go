package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chatly-service/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, senderID, receiverID, body string) (models.Message, error)
	ListBetween(ctx context.Context, userA, userB string) ([]models.Message, error)
	ListSelf(ctx context.Context, userID string) ([]models.Message, error)
	DeleteBetween(ctx context.Context, userA, userB string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a message.
func (r *MessageRepo) Create(ctx context.Context, senderID, receiverID, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (id, sender_id, receiver_id, body) VALUES ($1, $2, $3, $4)
        RETURNING id, sender_id, receiver_id, body, created_at`,
		uuid.NewString(), senderID, receiverID, body).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &msg.CreatedAt)
	return msg, err
}

// ListBetween returns both directions of a pair's history, oldest first.
func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, receiver_id, body, created_at
        FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC`, userA, userB)
	return msgs, err
}

// ListSelf returns a user's self-chat, oldest first.
func (r *MessageRepo) ListSelf(ctx context.Context, userID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, receiver_id, body, created_at
        FROM messages
        WHERE sender_id=$1 AND receiver_id=$1
        ORDER BY created_at ASC`, userID)
	return msgs, err
}

// DeleteBetween removes every message exchanged by the pair.
func (r *MessageRepo) DeleteBetween(ctx context.Context, userA, userB string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)`, userA, userB)
	return err
}
