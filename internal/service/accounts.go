package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/ticket-booking/internal/auth"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/model"
	"github.com/Shivanand-hulikatti/ticket-booking/internal/repository"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountService registers users and logs them in.
type AccountService struct {
	users *repository.UserRepository
	auth  *auth.Authenticator
}

// NewAccountService constructs an AccountService with its dependencies.
func NewAccountService(users *repository.UserRepository, a *auth.Authenticator) *AccountService {
	return &AccountService{users: users, auth: a}
}

// Register creates an account. Emails are compared case-insensitively.
func (s *AccountService) Register(ctx context.Context, req model.CredentialsRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, req.Email, hash)
}

// Login checks the credentials and returns the user with a signed session
// token.
func (s *AccountService) Login(ctx context.Context, req model.CredentialsRequest) (*model.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("look up user: %w", err)
	}
	if !s.auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.Issue(auth.Identity{UserID: u.ID, Email: u.Email})
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
