package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
	"github.com/oyaa52/finsense/services/login-service/internal/config"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/db/postgres"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/oyaa52/finsense/services/login-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/oauth"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/redis"
	"github.com/oyaa52/finsense/services/login-service/internal/infrastructure/security"
	"github.com/oyaa52/finsense/services/login-service/internal/logger"
	http_handlers "github.com/oyaa52/finsense/services/login-service/internal/transport/http/handlers"
	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/middleware"
	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/response"
	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (DBCloser, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)

	// NewProviders overrides the OAuth client map, for tests.
	NewProviders func(cfg *config.Config) map[string]auth.OAuthProvider
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

type Publisher interface{}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	// 2) repos
	userRepo := postgres.NewUserRepo(sqlDB)
	identityRepo := postgres.NewSocialIdentityRepo(sqlDB)
	tokenRepo := postgres.NewAPITokenRepo(sqlDB)

	// 3) redis (best-effort)
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory hand-off stores")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 4) hand-off stores
	// The credential cache holds the {token, user_id} payload keyed by OTT;
	// the state store backs the OAuth round-trip. Redis in real deployments,
	// in-process maps when it is down or absent.
	var credCache auth.CredentialCache
	var stateStore auth.OAuthStateStore

	if redisCli != nil {
		credCache = redis.NewCredentialCache(redisCli.(*redis.Client))
		stateStore = redis.NewOAuthStateStore(redisCli.(*redis.Client), cfg.OAuthStateTTL)
	} else {
		credCache = memory.NewCredentialCache()
		stateStore = memory.NewOAuthStateStore(cfg.OAuthStateTTL)
	}

	// 5) oauth providers
	var providers map[string]auth.OAuthProvider
	if deps.NewProviders != nil {
		providers = deps.NewProviders(cfg)
	} else {
		providers = map[string]auth.OAuthProvider{
			"google": oauth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackURL),
			"kakao":  oauth.NewKakaoClient(cfg.KakaoClientID, cfg.KakaoClientSecret, cfg.OAuthCallbackURL),
		}
	}

	// 6) publisher
	pub, err := deps.NewPublisher(cfg.RabbitURL)
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher()
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	} else {
		if p, ok := pub.(interface{ SetExchange(string) }); ok {
			p.SetExchange(cfg.RabbitExchange)
		}
	}

	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 7) service
	hasher := security.NewBcryptHasher(12)

	authSvc := auth.NewService(
		userRepo,
		identityRepo,
		tokenRepo,
		credCache,
		hasher,
		pub.(auth.EventPublisher),
		auth.Config{
			OneTimeTokenTTL: cfg.OneTimeTokenTTL,
		},
	)

	authSvc = authSvc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	// 8) handlers + middleware
	oauthDeps := auth.OAuthDeps{
		Providers:  providers,
		StateStore: stateStore,
	}

	authH := http_handlers.NewAuthHandler(authSvc)
	exchangeH := http_handlers.NewExchangeHandler(authSvc)
	healthH := http_handlers.NewHealthHandler(sqlDB)
	oauthH := http_handlers.NewOAuthHandler(authSvc, oauthDeps, cfg.FrontendCallbackURL, cfg.AllowedRedirects)

	authMW := middleware.TokenAuth(tokenRepo, response.WriteError)

	// 9) router
	mux, err := deps.NewRouter(router.Deps{
		Health:      healthH,
		Auth:        authH,
		OAuth:       oauthH,
		Exchange:    exchangeH,
		RequestIDMW: middleware.RequestID,
		AuthMW:      authMW,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 10) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string, debug bool) (DBCloser, error) {
			return config.NewDB(addr, debug)
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
