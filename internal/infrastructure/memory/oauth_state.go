package memory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

type stateEntry struct {
	state     auth.OAuthStateData
	expiresAt time.Time
}

// OAuthStateStore is the in-process fallback for the redis state store.
type OAuthStateStore struct {
	mu   sync.Mutex
	data map[string]stateEntry
	ttl  time.Duration
	now  func() time.Time
}

func NewOAuthStateStore(ttl time.Duration) *OAuthStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OAuthStateStore{
		data: make(map[string]stateEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *OAuthStateStore) Create(ctx context.Context, state auth.OAuthStateData) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = stateEntry{state: state, expiresAt: s.now().Add(s.ttl)}
	return token, nil
}

func (s *OAuthStateStore) Consume(ctx context.Context, stateToken string) (auth.OAuthStateData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[stateToken]
	if !ok {
		return auth.OAuthStateData{}, domain.ErrOAuthStateInvalid()
	}
	delete(s.data, stateToken)

	if s.now().After(e.expiresAt) {
		return auth.OAuthStateData{}, domain.ErrOAuthStateInvalid()
	}
	return e.state, nil
}
