package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/oauth"
)

// OAuthDeps holds the per-provider collaborators for the social flow.
type OAuthDeps struct {
	Providers  map[string]OAuthProvider
	StateStore OAuthStateStore
}

type OAuthStartResult struct {
	AuthURL string
}

// OAuthStart initiates the provider round-trip: PKCE values, a one-time
// state token, and the provider authorization URL.
func (s *Service) OAuthStart(ctx context.Context, provider, redirectTo string, deps OAuthDeps) (*OAuthStartResult, error) {
	if !domain.IsValidProvider(provider) {
		return nil, domain.New(domain.KindValidation, "unsupported_provider", "unsupported oauth provider")
	}

	client := deps.Providers[provider]
	if client == nil || !client.IsConfigured() {
		return nil, domain.New(domain.KindValidation, "oauth_not_configured", provider+" oauth not configured")
	}

	verifier, challenge, err := oauth.GeneratePKCE()
	if err != nil {
		return nil, domain.ErrRandomFailed(err)
	}

	stateToken, err := deps.StateStore.Create(ctx, OAuthStateData{
		CodeVerifier: verifier,
		Provider:     provider,
		RedirectTo:   redirectTo,
	})
	if err != nil {
		return nil, fmt.Errorf("create oauth state: %w", err)
	}

	return &OAuthStartResult{AuthURL: client.AuthURL(stateToken, challenge)}, nil
}

type OAuthCallbackResult struct {
	User         domain.User
	OneTimeToken string // "" when the hand-off could not be published
	RedirectTo   string
	IsNewUser    bool
}

// OAuthCallback finishes the provider round-trip. It resolves or creates the
// local user, attaches a fresh OTT to the pending login, and runs the
// finalize handler, which publishes {token, user_id} into the hand-off cache.
// The returned OneTimeToken is what the transport layer appends to the
// frontend redirect.
func (s *Service) OAuthCallback(ctx context.Context, provider, stateToken, code string, deps OAuthDeps) (*OAuthCallbackResult, error) {
	state, err := deps.StateStore.Consume(ctx, stateToken)
	if err != nil {
		return nil, domain.ErrOAuthStateInvalid()
	}
	if state.Provider != provider {
		return nil, domain.New(domain.KindAuth, "provider_mismatch", "oauth provider mismatch")
	}

	client := deps.Providers[provider]
	if client == nil {
		return nil, domain.New(domain.KindValidation, "unsupported_provider", "unsupported oauth provider")
	}

	tokenResp, err := client.ExchangeCode(ctx, code, state.CodeVerifier)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	info, err := client.GetUserInfo(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}

	user, isNew, err := s.resolveSocialUser(ctx, provider, info)
	if err != nil {
		return nil, err
	}

	pending := &domain.PendingLogin{
		Provider:       provider,
		ProviderUserID: info.Sub,
		Email:          info.Email,
		Username:       info.Name,
		AvatarURL:      info.AvatarURL,
	}
	s.AttachOneTimeToken(pending)

	ott := s.LoginFinalized(ctx, user, pending)

	if isNew {
		s.audit("oauth_register", map[string]string{
			"user_id":  formatUserID(user.ID),
			"provider": provider,
		})
	} else {
		s.audit("oauth_login", map[string]string{
			"user_id":  formatUserID(user.ID),
			"provider": provider,
		})
	}

	return &OAuthCallbackResult{
		User:         user,
		OneTimeToken: ott,
		RedirectTo:   state.RedirectTo,
		IsNewUser:    isNew,
	}, nil
}

// resolveSocialUser maps a provider identity to a local user, creating the
// user and the identity link on first login.
func (s *Service) resolveSocialUser(ctx context.Context, provider string, info *oauth.UserInfo) (domain.User, bool, error) {
	identity, err := s.identities.FindByProviderAndSub(ctx, provider, info.Sub)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("lookup social identity: %w", err)
	}

	if identity != nil {
		user, err := s.users.GetByID(ctx, identity.UserID)
		if err != nil {
			return domain.User{}, false, err
		}
		// Keep the avatar in sync with the provider profile; best effort.
		if info.AvatarURL != "" && info.AvatarURL != user.AvatarURL {
			if err := s.users.UpdateAvatarURL(ctx, user.ID, info.AvatarURL); err == nil {
				user.AvatarURL = info.AvatarURL
			}
		}
		return user, false, nil
	}

	user, err := s.users.Create(ctx, domain.User{
		Email:     info.Email,
		Username:  info.Name,
		AvatarURL: info.AvatarURL,
		// No password for social-only accounts.
	})
	if err != nil {
		return domain.User{}, false, err
	}

	if err := s.identities.Create(ctx, &domain.SocialIdentity{
		ID:             uuid.NewString(),
		Provider:       provider,
		ProviderUserID: info.Sub,
		Email:          info.Email,
		UserID:         user.ID,
	}); err != nil {
		return domain.User{}, false, fmt.Errorf("create social identity: %w", err)
	}

	if err := s.pub.PublishUserRegistered(ctx, UserRegisteredEvent{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Provider: provider,
	}); err != nil {
		s.audit("user_registered_publish_failed", map[string]string{
			"user_id": formatUserID(user.ID),
			"error":   err.Error(),
		})
	}

	return user, true, nil
}
