package auth

import (
	"context"
	"strings"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

type RegisterResult struct {
	User  domain.User
	Token string
}

// Register creates a password account and mints the durable API token.
// A user.registered event is published so the profile service can create
// the matching profile row; publish failure is logged, not fatal.
func (s *Service) Register(ctx context.Context, email, username, password string) (RegisterResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if username == "" {
		return RegisterResult{}, domain.ErrMissingField("username")
	}
	if len(password) < 8 {
		return RegisterResult{}, domain.ErrInvalidField("password", "must be at least 8 characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return RegisterResult{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return RegisterResult{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return RegisterResult{}, err
	}

	u, err := s.users.Create(ctx, domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return RegisterResult{}, err
	}

	token, _, err := s.tokens.GetOrCreate(ctx, u.ID)
	if err != nil {
		return RegisterResult{}, err
	}

	if err := s.pub.PublishUserRegistered(ctx, UserRegisteredEvent{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
	}); err != nil {
		s.audit("user_registered_publish_failed", map[string]string{
			"user_id": formatUserID(u.ID),
			"error":   err.Error(),
		})
	}

	s.audit("register", map[string]string{
		"user_id": formatUserID(u.ID),
		"email":   u.Email,
	})
	return RegisterResult{User: u, Token: token}, nil
}
