package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chatly-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts profile and friend-set persistence.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.UserProfile, error)
	AddFriendship(ctx context.Context, userID, friendID string) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a profile by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, first_name, last_name, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ListUsers returns every profile with its friend id list, newest first.
func (r *UserRepo) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	query := `SELECT u.id, u.username, u.first_name, u.last_name, u.created_at,
            COALESCE(array_agg(f.friend_id) FILTER (WHERE f.friend_id IS NOT NULL), '{}') AS friends
        FROM users u
        LEFT JOIN friends f ON f.user_id = u.id
        GROUP BY u.id
        ORDER BY u.created_at DESC`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.UserProfile
	for rows.Next() {
		var profile models.UserProfile
		var friends pq.StringArray
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.FirstName, &profile.LastName, &profile.CreatedAt, &friends); err != nil {
			return nil, err
		}
		profile.Friends = []string(friends)
		result = append(result, profile)
	}
	return result, rows.Err()
}

// AddFriendship adds each user to the other's friend set. Set union: already
// present pairs are a no-op.
func (r *UserRepo) AddFriendship(ctx context.Context, userID, friendID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO friends (user_id, friend_id) VALUES ($1, $2), ($2, $1)
        ON CONFLICT (user_id, friend_id) DO NOTHING`, userID, friendID)
	return err
}
