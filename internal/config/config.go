package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Infrastructure
	DBAddr        string
	DBDebug       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string
	RabbitExchange string

	// One-time-token hand-off
	OneTimeTokenTTL time.Duration
	OAuthStateTTL   time.Duration

	// Frontend
	// Base URL the social callback redirects to; the OTT is appended as a
	// query parameter. Existing query parameters are preserved.
	FrontendCallbackURL string
	AllowedRedirects    []string

	// OAuth providers
	OAuthCallbackURL   string
	GoogleClientID     string
	GoogleClientSecret string
	KakaoClientID      string
	KakaoClientSecret  string
}

func Load() (*Config, error) {
	// Best-effort .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// Infrastructure dependencies.
	// The login service cannot operate without its backing stores; fail fast
	// to avoid starting partially initialized.

	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	cfg.DBDebug = os.Getenv("DB_DEBUG") == "true"

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %q", v)
		}
		cfg.RedisDB = n
	}

	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "finsense.events")

	cfg.FrontendCallbackURL = os.Getenv("FRONTEND_CALLBACK_URL")
	if cfg.FrontendCallbackURL == "" {
		return nil, fmt.Errorf("missing required env var: FRONTEND_CALLBACK_URL")
	}

	// Whitelisted post-login paths on the frontend (comma separated).
	if v := os.Getenv("ALLOWED_REDIRECTS"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.AllowedRedirects = append(cfg.AllowedRedirects, p)
			}
		}
	}

	// Hand-off window. 5 minutes bounds how long an unexchanged OTT stays
	// redeemable.
	ttl, err := getDuration("OTT_TTL", 300*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.OneTimeTokenTTL = ttl

	stl, err := getDuration("OAUTH_STATE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.OAuthStateTTL = stl

	cfg.OAuthCallbackURL = os.Getenv("OAUTH_CALLBACK_URL")
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.KakaoClientID = os.Getenv("KAKAO_CLIENT_ID")
	cfg.KakaoClientSecret = os.Getenv("KAKAO_CLIENT_SECRET")

	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}
