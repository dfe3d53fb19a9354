package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

// CredentialCache is the hand-off channel for the OTT exchange: one JSON
// {token, user_id} entry per OTT under key "ott_<ott>", expiring with the
// hand-off window. Consume is an atomic get-and-delete so a credential can
// be read out at most once.
type CredentialCache struct {
	rdb    *goredis.Client
	prefix string
}

func NewCredentialCache(c *Client) *CredentialCache {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &CredentialCache{
		rdb:    rdb,
		prefix: "ott_",
	}
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
	if s.rdb == nil {
		return errors.New("redis credential cache not configured")
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	// overwrite is fine (each login attempt mints a fresh OTT anyway)
	return s.rdb.Set(ctx, s.prefix+ott, data, ttl).Err()
}

func (s *CredentialCache) Consume(ctx context.Context, ott string) (domain.CachedCredential, error) {
	ott = strings.TrimSpace(ott)
	if ott == "" {
		return domain.CachedCredential{}, domain.ErrMissingField("ott")
	}
	if s.rdb == nil {
		return domain.CachedCredential{}, errors.New("redis credential cache not configured")
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
	res, err := s.rdb.Eval(ctx, lua, []string{s.prefix + ott}).Result()
	if errors.Is(err, goredis.Nil) {
		// never issued, already consumed, or expired
		return domain.CachedCredential{}, domain.ErrOneTimeTokenInvalid()
	}
	if err != nil {
		return domain.CachedCredential{}, fmt.Errorf("ott consume: %w", err)
	}

	raw, ok := res.(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return domain.CachedCredential{}, domain.ErrOneTimeTokenInvalid()
	}

	var cred domain.CachedCredential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return domain.CachedCredential{}, fmt.Errorf("unmarshal credential: %w", err)
	}
	return cred, nil
}
