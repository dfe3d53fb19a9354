package domain

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string // empty for social-only accounts
	AvatarURL    string
}
