package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chatly-service/internal/models"
)

var (
	ErrRequestNotFound = errors.New("chat request not found")

	// ErrRequestConflict reports a concurrent duplicate insert rejected by
	// the store's unique pair index.
	ErrRequestConflict = errors.New("chat request already exists for pair")
)

const uniqueViolation = "23505"

// RequestRepository abstracts ChatRequest persistence.
type RequestRepository interface {
	Create(ctx context.Context, senderID, receiverID, firstMessage string) (models.ChatRequest, error)
	GetByID(ctx context.Context, requestID string) (models.ChatRequest, error)
	FindByPair(ctx context.Context, userA, userB string) (models.ChatRequest, error)
	MarkAccepted(ctx context.Context, requestID string) error
	Delete(ctx context.Context, requestID string) error
	DeleteByPair(ctx context.Context, userA, userB string) error
	ListPending(ctx context.Context, receiverID string) ([]models.PendingRequest, error)
}

// RequestRepo is a sqlx implementation of RequestRepository.
type RequestRepo struct {
	db *sqlx.DB
}

// NewRequestRepo constructs a RequestRepo.
func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

// Create inserts a pending request. The unique pair index turns a racing
// duplicate into ErrRequestConflict instead of a second row.
func (r *RequestRepo) Create(ctx context.Context, senderID, receiverID, firstMessage string) (models.ChatRequest, error) {
	var request models.ChatRequest
	err := r.db.QueryRowxContext(ctx, `INSERT INTO chat_requests (id, sender_id, receiver_id, first_message, status)
        VALUES ($1, $2, $3, $4, 'pending')
        RETURNING id, sender_id, receiver_id, first_message, status, created_at`,
		uuid.NewString(), senderID, receiverID, firstMessage).
		Scan(&request.ID, &request.SenderID, &request.ReceiverID, &request.FirstMessage, &request.Status, &request.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ChatRequest{}, ErrRequestConflict
		}
		return models.ChatRequest{}, err
	}
	return request, nil
}

// GetByID fetches a request by id.
func (r *RequestRepo) GetByID(ctx context.Context, requestID string) (models.ChatRequest, error) {
	var request models.ChatRequest
	err := r.db.GetContext(ctx, &request, `SELECT id, sender_id, receiver_id, first_message, status, created_at
        FROM chat_requests WHERE id=$1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRequest{}, ErrRequestNotFound
	}
	return request, err
}

// FindByPair fetches the request between two users in either direction.
func (r *RequestRepo) FindByPair(ctx context.Context, userA, userB string) (models.ChatRequest, error) {
	var request models.ChatRequest
	err := r.db.GetContext(ctx, &request, `SELECT id, sender_id, receiver_id, first_message, status, created_at
        FROM chat_requests
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)`, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRequest{}, ErrRequestNotFound
	}
	return request, err
}

// MarkAccepted flips a request to accepted. Accepted never reverts.
func (r *RequestRepo) MarkAccepted(ctx context.Context, requestID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chat_requests SET status='accepted' WHERE id=$1`, requestID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Delete removes the request outright; no rejected tombstone is kept.
func (r *RequestRepo) Delete(ctx context.Context, requestID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_requests WHERE id=$1`, requestID)
	return err
}

// DeleteByPair removes any request between two users, either direction.
func (r *RequestRepo) DeleteByPair(ctx context.Context, userA, userB string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_requests
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)`, userA, userB)
	return err
}

// ListPending returns pending requests addressed to the receiver, newest
// first, joined with the sender's profile.
func (r *RequestRepo) ListPending(ctx context.Context, receiverID string) ([]models.PendingRequest, error) {
	var requests []models.PendingRequest
	err := r.db.SelectContext(ctx, &requests, `SELECT cr.id, cr.sender_id, cr.first_message, cr.created_at,
            u.username, u.first_name, u.last_name
        FROM chat_requests cr
        JOIN users u ON u.id = cr.sender_id
        WHERE cr.receiver_id=$1 AND cr.status='pending'
        ORDER BY cr.created_at DESC`, receiverID)
	return requests, err
}
