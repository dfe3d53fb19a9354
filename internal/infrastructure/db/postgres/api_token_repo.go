package postgres

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

// APITokenRepo implements auth.APITokenStore on the api_tokens table.
// The UNIQUE constraint on user_id is what makes GetOrCreate safe under
// concurrency: two racing inserts cannot both land, and the loser reads the
// winner's row.
type APITokenRepo struct {
	db *sql.DB
}

func NewAPITokenRepo(db *sql.DB) *APITokenRepo {
	return &APITokenRepo{db: db}
}

func (r *APITokenRepo) GetOrCreate(ctx context.Context, userID int64) (string, bool, error) {
	if userID <= 0 {
		return "", false, domain.ErrMissingField("user_id")
	}

	// Fast path: token already exists.
	token, err := r.findByUserID(ctx, userID)
	if err == nil {
		return token, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, domain.ErrDBUnavailable(err)
	}

	candidate, err := newTokenValue()
	if err != nil {
		return "", false, domain.ErrRandomFailed(err)
	}

	const ins = `
INSERT INTO api_tokens (user_id, token)
VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING
RETURNING token;
`
	err = r.db.QueryRowContext(ctx, ins, userID, candidate).Scan(&token)
	if err == nil {
		return token, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, domain.ErrDBUnavailable(err)
	}

	// Lost the race: a concurrent call inserted first. Read theirs.
	token, err = r.findByUserID(ctx, userID)
	if err != nil {
		return "", false, domain.ErrDBUnavailable(err)
	}
	return token, false, nil
}

func (r *APITokenRepo) FindUserIDByToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrTokenInvalid()
	}

	var userID int64
	const q = `SELECT user_id FROM api_tokens WHERE token = $1 LIMIT 1;`
	err := r.db.QueryRowContext(ctx, q, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrTokenInvalid()
		}
		return 0, domain.ErrDBUnavailable(err)
	}
	return userID, nil
}

func (r *APITokenRepo) findByUserID(ctx context.Context, userID int64) (string, error) {
	var token string
	const q = `SELECT token FROM api_tokens WHERE user_id = $1 LIMIT 1;`
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&token)
	return token, err
}

// newTokenValue returns a 40-char hex token (160-bit entropy).
func newTokenValue() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
