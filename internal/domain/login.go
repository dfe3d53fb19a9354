package domain

import "time"

// PendingLogin is the in-flight representation of a social login attempt.
// It lives only for the duration of the provider callback request and is
// never persisted. OneTimeToken is attached before the login is finalized
// and cleared by the finalize handler once the credential has been cached.
type PendingLogin struct {
	Provider       string
	ProviderUserID string
	Email          string
	Username       string
	AvatarURL      string

	OneTimeToken string
}

// CachedCredential is the value handed off through the token cache.
// The JSON field names are part of the exchange wire format.
type CachedCredential struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// SocialIdentity links an external provider identity to a user.
type SocialIdentity struct {
	ID             string
	Provider       string
	ProviderUserID string
	Email          string
	UserID         int64
	CreatedAt      time.Time
}

const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
)

// IsValidProvider checks if the provider is supported.
func IsValidProvider(p string) bool {
	switch p {
	case ProviderGoogle, ProviderKakao:
		return true
	default:
		return false
	}
}
