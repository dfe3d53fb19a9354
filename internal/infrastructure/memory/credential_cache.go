package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

type entry struct {
	cred      domain.CachedCredential
	expiresAt time.Time
}

// CredentialCache is the in-process fallback for the redis hand-off cache.
// Expiry is checked lazily on Consume; the clock is injectable for tests.
type CredentialCache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewCredentialCache() *CredentialCache {
	return &CredentialCache{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// WithClock replaces the time source. Test hook.
func (s *CredentialCache) WithClock(now func() time.Time) *CredentialCache {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *CredentialCache) Save(ctx context.Context, ott string, cred domain.CachedCredential, ttl time.Duration) error {
	ott = strings.TrimSpace(ott)
	if ott == "" {
		return domain.ErrMissingField("ott")
	}
	if cred.Token == "" {
		return domain.ErrMissingField("token")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ott] = entry{cred: cred, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *CredentialCache) Consume(ctx context.Context, ott string) (domain.CachedCredential, error) {
	ott = strings.TrimSpace(ott)
	if ott == "" {
		return domain.CachedCredential{}, domain.ErrMissingField("ott")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[ott]
	if !ok {
		return domain.CachedCredential{}, domain.ErrOneTimeTokenInvalid()
	}
	// Delete on first read either way; an expired entry is gone too.
	delete(s.data, ott)

	if s.now().After(e.expiresAt) {
		return domain.CachedCredential{}, domain.ErrOneTimeTokenInvalid()
	}
	return e.cred, nil
}
