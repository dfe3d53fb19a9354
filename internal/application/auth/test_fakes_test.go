package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/oauth"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type auditLog struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *auditLog) record(action string, fields map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, fields: fields})
}

func (a *auditLog) find(action string) *auditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.entries {
		if a.entries[i].action == action {
			return &a.entries[i]
		}
	}
	return nil
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[int64]domain.User
	byEmail map[string]domain.User
	nextID  int64

	getByIDErr    error
	getByEmailErr error
	createErr     error

	avatarUpdates []struct {
		userID int64
		url    string
	}
	updateAvatarErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[int64]domain.User{},
		byEmail: map[string]domain.User{},
		nextID:  1,
	}
}

func (f *fakeUserRepo) add(u domain.User) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.nextID
	}
	if u.ID >= f.nextID {
		f.nextID = u.ID + 1
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	return f.add(u), nil
}

func (f *fakeUserRepo) UpdateAvatarURL(ctx context.Context, userID int64, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateAvatarErr != nil {
		return f.updateAvatarErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.AvatarURL = avatarURL
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.avatarUpdates = append(f.avatarUpdates, struct {
		userID int64
		url    string
	}{userID, avatarURL})
	return nil
}

type fakeIdentityRepo struct {
	mu sync.Mutex

	byKey map[string]*domain.SocialIdentity

	findErr   error
	createErr error
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{byKey: map[string]*domain.SocialIdentity{}}
}

func identityKey(provider, sub string) string { return provider + "|" + sub }

func (f *fakeIdentityRepo) FindByProviderAndSub(ctx context.Context, provider, providerUserID string) (*domain.SocialIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byKey[identityKey(provider, providerUserID)], nil
}

func (f *fakeIdentityRepo) Create(ctx context.Context, identity *domain.SocialIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.byKey[identityKey(identity.Provider, identity.ProviderUserID)] = identity
	return nil
}

// fakeTokenStore mints "tok_<n>" values and is idempotent per user.
type fakeTokenStore struct {
	mu sync.Mutex

	byUser  map[int64]string
	byToken map[string]int64
	minted  int

	getOrCreateErr error
	findErr        error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		byUser:  map[int64]string{},
		byToken: map[string]int64{},
	}
}

func (f *fakeTokenStore) set(userID int64, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[userID] = token
	f.byToken[token] = userID
}

func (f *fakeTokenStore) GetOrCreate(ctx context.Context, userID int64) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getOrCreateErr != nil {
		return "", false, f.getOrCreateErr
	}
	if tok, ok := f.byUser[userID]; ok {
		return tok, false, nil
	}
	f.minted++
	tok := fmt.Sprintf("tok_%d", f.minted)
	f.byUser[userID] = tok
	f.byToken[tok] = userID
	return tok, true, nil
}

func (f *fakeTokenStore) FindUserIDByToken(ctx context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return 0, f.findErr
	}
	id, ok := f.byToken[token]
	if !ok {
		return 0, domain.ErrTokenInvalid()
	}
	return id, nil
}

// fakeCredentialCache behaves like the real stores: single-use reads, lazy
// expiry against an adjustable clock.
type fakeCredentialCache struct {
	mu   sync.Mutex
	data map[string]struct {
		cred      domain.CachedCredential
		expiresAt time.Time
	}
	now time.Time

	saveErr    error
	consumeErr error
}

func newFakeCredentialCache() *fakeCredentialCache {
	return &fakeCredentialCache{
		data: map[string]struct {
			cred      domain.CachedCredential
			expiresAt time.Time
		}{},
		now: time.Unix(1700000000, 0),
	}
}

func (f *fakeCredentialCache) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeCredentialCache) Save(ctx context.Context, ott string, cred domain.CachedCredential, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data[ott] = struct {
		cred      domain.CachedCredential
		expiresAt time.Time
	}{cred, f.now.Add(ttl)}
	return nil
}

func (f *fakeCredentialCache) Consume(ctx context.Context, ott string) (domain.CachedCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return domain.CachedCredential{}, f.consumeErr
	}
	e, ok := f.data[ott]
	if !ok {
		return domain.CachedCredential{}, domain.ErrOneTimeTokenInvalid()
	}
	delete(f.data, ott)
	if f.now.After(e.expiresAt) {
		return domain.CachedCredential{}, domain.ErrOneTimeTokenInvalid()
	}
	return e.cred, nil
}

type fakeStateStore struct {
	mu     sync.Mutex
	data   map[string]OAuthStateData
	nextID int

	createErr  error
	consumeErr error
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{data: map[string]OAuthStateData{}}
}

func (f *fakeStateStore) Create(ctx context.Context, state OAuthStateData) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	tok := fmt.Sprintf("state_%d", f.nextID)
	f.data[tok] = state
	return tok, nil
}

func (f *fakeStateStore) Consume(ctx context.Context, stateToken string) (OAuthStateData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return OAuthStateData{}, f.consumeErr
	}
	state, ok := f.data[stateToken]
	if !ok {
		return OAuthStateData{}, domain.ErrOAuthStateInvalid()
	}
	delete(f.data, stateToken)
	return state, nil
}

// fakeHasher uses a reversible scheme so tests can seed hashes without bcrypt.
type fakeHasher struct {
	hashErr error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + password, nil
}

func (f *fakeHasher) Compare(hash string, password string) error {
	if hash == "hashed:"+password {
		return nil
	}
	return domain.ErrInvalidCredentials()
}

type fakePublisher struct {
	mu     sync.Mutex
	events []UserRegisteredEvent

	publishErr error
}

func (f *fakePublisher) PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, evt)
	return nil
}

type fakeProvider struct {
	configured bool
	authURL    string
	token      *oauth.TokenResponse
	info       *oauth.UserInfo

	exchangeErr error
	infoErr     error
}

func (f *fakeProvider) IsConfigured() bool { return f.configured }

func (f *fakeProvider) AuthURL(state, codeChallenge string) string {
	return f.authURL + "?state=" + state
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth.TokenResponse, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	if f.token != nil {
		return f.token, nil
	}
	return &oauth.TokenResponse{AccessToken: "provider-access-token"}, nil
}

func (f *fakeProvider) GetUserInfo(ctx context.Context, accessToken string) (*oauth.UserInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

/*
Service under test
*/

type svcFixture struct {
	svc        *Service
	users      *fakeUserRepo
	identities *fakeIdentityRepo
	tokens     *fakeTokenStore
	cache      *fakeCredentialCache
	hasher     *fakeHasher
	pub        *fakePublisher
	audits     *auditLog
}

func newSvcForTest(t *testing.T) *svcFixture {
	t.Helper()

	f := &svcFixture{
		users:      newFakeUserRepo(),
		identities: newFakeIdentityRepo(),
		tokens:     newFakeTokenStore(),
		cache:      newFakeCredentialCache(),
		hasher:     &fakeHasher{},
		pub:        &fakePublisher{},
		audits:     &auditLog{},
	}

	f.svc = NewService(
		f.users,
		f.identities,
		f.tokens,
		f.cache,
		f.hasher,
		f.pub,
		Config{OneTimeTokenTTL: 300 * time.Second},
	).WithAudit(f.audits.record)

	return f
}
