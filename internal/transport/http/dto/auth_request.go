package dto

import (
	"strings"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return domain.ErrMissingField("email")
	}
	if r.Password == "" {
		return domain.ErrMissingField("password")
	}
	return nil
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return domain.ErrMissingField("email")
	}
	if strings.TrimSpace(r.Username) == "" {
		return domain.ErrMissingField("username")
	}
	if len(r.Password) < 8 {
		return domain.ErrInvalidField("password", "must be at least 8 characters")
	}
	return nil
}
