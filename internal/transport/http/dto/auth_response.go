package dto

import "github.com/oyaa52/finsense/services/login-service/internal/domain"

type UserView struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type AuthData struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}
