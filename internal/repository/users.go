package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
)

// UserRepository handles persistence for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user with an already hashed password.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	u := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO users (email, password_hash, created_at)
		 VALUES (?, ?, ?)
		 RETURNING id`),
		u.Email, u.PasswordHash, u.CreatedAt.UnixMilli(),
	).Scan(&u.ID)
	if err != nil {
		return nil, storageError("insert user", err)
	}
	return u, nil
}

// GetByEmail returns the user registered with email or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u         model.User
		createdAt int64
	)
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`),
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("get user", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}
