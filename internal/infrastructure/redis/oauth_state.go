package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

// OAuthStateStore manages one-time OAuth state tokens.
type OAuthStateStore struct {
	client *Client
	ttl    time.Duration
}

func NewOAuthStateStore(client *Client, ttl time.Duration) *OAuthStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OAuthStateStore{
		client: client,
		ttl:    ttl,
	}
}

// Create generates a random state token and stores the state under it.
func (s *OAuthStateStore) Create(ctx context.Context, state auth.OAuthStateData) (string, error) {
	if s.client == nil || s.client.rdb == nil {
		return "", errors.New("redis oauth state store not configured")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	stateToken := base64.RawURLEncoding.EncodeToString(b)

	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}

	if err := s.client.rdb.Set(ctx, "oauth_state:"+stateToken, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return stateToken, nil
}

// Consume retrieves and deletes the state (one-time use, prevents replay).
func (s *OAuthStateStore) Consume(ctx context.Context, stateToken string) (auth.OAuthStateData, error) {
	stateToken = strings.TrimSpace(stateToken)
	if stateToken == "" {
		return auth.OAuthStateData{}, domain.ErrOAuthStateInvalid()
	}
	if s.client == nil || s.client.rdb == nil {
		return auth.OAuthStateData{}, errors.New("redis oauth state store not configured")
	}

	// Atomic GET + DEL
	const lua = `
local v = redis.call("GET", KEYS[1])
if not v then
  return nil
end
redis.call("DEL", KEYS[1])
return v
`
	res, err := s.client.rdb.Eval(ctx, lua, []string{"oauth_state:" + stateToken}).Result()
	if errors.Is(err, goredis.Nil) {
		return auth.OAuthStateData{}, domain.ErrOAuthStateInvalid()
	}
	if err != nil {
		return auth.OAuthStateData{}, fmt.Errorf("state consume: %w", err)
	}

	raw, ok := res.(string)
	if !ok {
		return auth.OAuthStateData{}, domain.ErrOAuthStateInvalid()
	}

	var state auth.OAuthStateData
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return auth.OAuthStateData{}, fmt.Errorf("unmarshal state: %w", err)
	}
	return state, nil
}
