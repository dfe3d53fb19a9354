package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// TokenResponse is the common shape of a provider token endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// UserInfo is the normalized provider profile. Each client maps its
// provider-specific payload (e.g. Google's `picture` vs Kakao's
// `properties.profile_image`) into this shape.
type UserInfo struct {
	Sub           string // provider-unique user id
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// GeneratePKCE generates a code_verifier and code_challenge (S256).
func GeneratePKCE() (verifier, challenge string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(b)

	h := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(h[:])

	return verifier, challenge, nil
}
