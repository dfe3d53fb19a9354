package auth

import (
	"context"
	"time"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/oauth"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the login service needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	UpdateAvatarURL(ctx context.Context, userID int64, avatarURL string) error
}

/*
SocialIdentityRepo
------------------
Provider-identity linkage (google sub / kakao id -> user).
*/
type SocialIdentityRepo interface {
	FindByProviderAndSub(ctx context.Context, provider, providerUserID string) (*domain.SocialIdentity, error)
	Create(ctx context.Context, identity *domain.SocialIdentity) error
}

/*
APITokenStore
-------------
The durable credential the frontend uses after the hand-off.
GetOrCreate must be atomic: concurrent calls for one user must agree on a
single token (unique constraint in the backing store).
*/
type APITokenStore interface {
	// GetOrCreate returns the user's durable token, creating it on first use.
	// created reports whether this call minted the token.
	GetOrCreate(ctx context.Context, userID int64) (token string, created bool, err error)

	// FindUserIDByToken resolves a presented token; used by the auth middleware.
	FindUserIDByToken(ctx context.Context, token string) (int64, error)
}

/*
CredentialCache
---------------
Time-boxed hand-off channel keyed by OTT. Save must set the TTL atomically
with the write; Consume must be an atomic get-and-delete so two concurrent
exchanges can never both succeed.
*/
type CredentialCache interface {
	Save(ctx context.Context, ott string, cred domain.CachedCredential, ttl time.Duration) error
	Consume(ctx context.Context, ott string) (domain.CachedCredential, error)
}

/*
OAuthStateStore
---------------
One-time state tokens for the provider round-trip (replay protection).
*/
type OAuthStateData struct {
	CodeVerifier string `json:"code_verifier"`
	Provider     string `json:"provider"`
	RedirectTo   string `json:"redirect_to"`
}

type OAuthStateStore interface {
	Create(ctx context.Context, state OAuthStateData) (string, error)
	Consume(ctx context.Context, stateToken string) (OAuthStateData, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
OAuthProvider
-------------
A configured identity provider (google, kakao).
*/
type OAuthProvider interface {
	IsConfigured() bool
	AuthURL(state, codeChallenge string) string
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth.TokenResponse, error)
	GetUserInfo(ctx context.Context, accessToken string) (*oauth.UserInfo, error)
}

/*
EventPublisher
--------------
Publishes events to RabbitMQ. The profile service consumes user.registered
and bootstraps a profile row; this service does not own profiles.
*/
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error
}

type UserRegisteredEvent struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Provider string `json:"provider,omitempty"` // empty for password signups
}
