package auth

import (
	"context"
	"strings"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

// ExchangeOneTimeToken is the one-shot read-and-invalidate lookup the
// frontend calls after following the redirect. The first call for a valid
// OTT returns the cached credential; every later call, and any call with an
// expired or never-issued token, fails identically so callers cannot tell
// which of the three happened.
func (s *Service) ExchangeOneTimeToken(ctx context.Context, ott string) (domain.CachedCredential, error) {
	ott = strings.TrimSpace(ott)
	if ott == "" {
		return domain.CachedCredential{}, domain.ErrOneTimeTokenRequired()
	}

	cred, err := s.cache.Consume(ctx, ott)
	if err != nil {
		// Collapse misses and backend failures into the one client-visible
		// error; keep the cause in the audit trail.
		if !domain.Is(err, "ott_invalid") {
			s.audit("ott_exchange_failed", map[string]string{"error": err.Error()})
		}
		return domain.CachedCredential{}, domain.ErrOneTimeTokenInvalid()
	}

	s.audit("ott_exchanged", map[string]string{
		"user_id": formatUserID(cred.UserID),
	})
	return cred, nil
}
