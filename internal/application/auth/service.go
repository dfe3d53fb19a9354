package auth

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	users      UserRepo
	identities SocialIdentityRepo
	tokens     APITokenStore
	cache      CredentialCache
	hasher     PasswordHasher
	pub        EventPublisher

	ottTTL time.Duration
	audit  func(action string, fields map[string]string)
}

type Config struct {
	// OneTimeTokenTTL bounds the hand-off window between the redirect and
	// the frontend's exchange call.
	OneTimeTokenTTL time.Duration
}

const defaultOneTimeTokenTTL = 300 * time.Second

func NewService(
	users UserRepo,
	identities SocialIdentityRepo,
	tokens APITokenStore,
	cache CredentialCache,
	hasher PasswordHasher,
	pub EventPublisher,
	cfg Config,
) *Service {
	ttl := cfg.OneTimeTokenTTL
	if ttl <= 0 {
		ttl = defaultOneTimeTokenTTL
	}
	return &Service{
		users:      users,
		identities: identities,
		tokens:     tokens,
		cache:      cache,
		hasher:     hasher,
		pub:        pub,
		ottTTL:     ttl,
		audit:      func(string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// newOneTimeToken returns an unguessable single-use identifier.
// uuid.NewString panics if the entropy source is exhausted, which is the
// right behavior here: there is no meaningful recovery.
func newOneTimeToken() string {
	return uuid.NewString()
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
