package auth

import (
	"context"
	"strings"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

type LoginResult struct {
	User  domain.User
	Token string // durable API token
}

// Login authenticates a user by email and password and returns the durable
// API token directly; password logins are same-origin JSON calls and do not
// go through the OTT redirect channel.
// IMPORTANT: must not leak whether the email exists (avoid user enumeration).
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Hide not-found behind invalid credentials
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if u.PasswordHash == "" {
		// Social-only account; no password to compare.
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	token, _, err := s.tokens.GetOrCreate(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}

	// Same finalize path as social logins; with no pending login it is a
	// deliberate no-op for the hand-off channel.
	s.LoginFinalized(ctx, u, nil)

	s.audit("login", map[string]string{"user_id": formatUserID(u.ID)})
	return LoginResult{User: u, Token: token}, nil
}

// GetUser resolves a user by id, for /me style reads.
func (s *Service) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}
