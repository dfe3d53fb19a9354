package auth

import (
	"context"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

// LoginFinalized runs once per finalized login, social or local. For social
// logins it publishes the durable credential into the hand-off cache under
// the pending login's OTT and returns that OTT so the caller can build the
// redirect URL. It returns "" whenever nothing was cached.
//
// Failures here never fail the login: the user is already authenticated at
// the session layer, so every error path degrades to "no token delivered"
// and the frontend's exchange call surfaces the miss.
func (s *Service) LoginFinalized(ctx context.Context, user domain.User, pending *domain.PendingLogin) string {
	if pending == nil {
		// Local/password login. The hand-off channel is social-only.
		return ""
	}

	ott := pending.OneTimeToken
	// Clear the attachment regardless of outcome so nothing later in the
	// request can re-publish under the same token.
	pending.OneTimeToken = ""

	if ott == "" {
		s.audit("ott_not_attached", map[string]string{
			"user_id":  formatUserID(user.ID),
			"provider": pending.Provider,
		})
		return ""
	}

	token, created, err := s.tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		s.audit("api_token_issue_failed", map[string]string{
			"user_id": formatUserID(user.ID),
			"error":   err.Error(),
		})
		return ""
	}
	if created {
		s.audit("api_token_created", map[string]string{
			"user_id": formatUserID(user.ID),
		})
	}

	cred := domain.CachedCredential{Token: token, UserID: user.ID}
	if err := s.cache.Save(ctx, ott, cred, s.ottTTL); err != nil {
		s.audit("ott_cache_write_failed", map[string]string{
			"user_id": formatUserID(user.ID),
			"error":   err.Error(),
		})
		return ""
	}

	s.audit("ott_cached", map[string]string{
		"user_id":  formatUserID(user.ID),
		"provider": pending.Provider,
	})
	return ott
}
