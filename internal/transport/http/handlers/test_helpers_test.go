package http_handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
	"github.com/oyaa52/finsense/services/login-service/internal/domain"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/memory"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/oauth"
)

/*
Minimal port stubs for handler tests. Real cache/state behavior comes from
the in-memory infrastructure; the repos are maps.
*/

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[int64]domain.User
	byEmail map[string]domain.User
	nextID  int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: map[int64]domain.User{}, byEmail: map[string]domain.User{}, nextID: 1}
}

func (s *stubUserRepo) add(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID
	}
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u
	return u
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (s *stubUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return s.add(u), nil
}

func (s *stubUserRepo) UpdateAvatarURL(ctx context.Context, userID int64, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.AvatarURL = avatarURL
	s.byID[userID] = u
	return nil
}

type stubIdentityRepo struct {
	mu    sync.Mutex
	byKey map[string]*domain.SocialIdentity
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byKey: map[string]*domain.SocialIdentity{}}
}

func (s *stubIdentityRepo) FindByProviderAndSub(ctx context.Context, provider, sub string) (*domain.SocialIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byKey[provider+"|"+sub], nil
}

func (s *stubIdentityRepo) Create(ctx context.Context, identity *domain.SocialIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[identity.Provider+"|"+identity.ProviderUserID] = identity
	return nil
}

type stubTokenStore struct {
	mu      sync.Mutex
	byUser  map[int64]string
	byToken map[string]int64
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{byUser: map[int64]string{}, byToken: map[string]int64{}}
}

func (s *stubTokenStore) set(userID int64, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = token
	s.byToken[token] = userID
}

func (s *stubTokenStore) GetOrCreate(ctx context.Context, userID int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.byUser[userID]; ok {
		return tok, false, nil
	}
	tok := "tok_for_" + string(rune('a'+len(s.byUser)))
	s.byUser[userID] = tok
	s.byToken[tok] = userID
	return tok, true, nil
}

func (s *stubTokenStore) FindUserIDByToken(ctx context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byToken[token]
	if !ok {
		return 0, domain.ErrTokenInvalid()
	}
	return id, nil
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (stubHasher) Compare(hash, password string) error {
	if hash == "hashed:"+password {
		return nil
	}
	return domain.ErrInvalidCredentials()
}

type stubPublisher struct{}

func (stubPublisher) PublishUserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	return nil
}

type stubProvider struct {
	info *oauth.UserInfo
}

func (stubProvider) IsConfigured() bool { return true }
func (stubProvider) AuthURL(state, codeChallenge string) string {
	return "https://provider.example.com/authorize?state=" + state
}
func (stubProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth.TokenResponse, error) {
	return &oauth.TokenResponse{AccessToken: "at"}, nil
}
func (p stubProvider) GetUserInfo(ctx context.Context, accessToken string) (*oauth.UserInfo, error) {
	return p.info, nil
}

type handlerFixture struct {
	svc    *auth.Service
	users  *stubUserRepo
	tokens *stubTokenStore
	cache  *memory.CredentialCache
	deps   auth.OAuthDeps
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		users:  newStubUserRepo(),
		tokens: newStubTokenStore(),
		cache:  memory.NewCredentialCache(),
	}

	f.svc = auth.NewService(
		f.users,
		newStubIdentityRepo(),
		f.tokens,
		f.cache,
		stubHasher{},
		stubPublisher{},
		auth.Config{OneTimeTokenTTL: 300 * time.Second},
	)

	f.deps = auth.OAuthDeps{
		Providers: map[string]auth.OAuthProvider{
			"google": stubProvider{info: &oauth.UserInfo{Sub: "sub-1", Email: "a@x.com", Name: "alice"}},
		},
		StateStore: memory.NewOAuthStateStore(10 * time.Minute),
	}

	return f
}
