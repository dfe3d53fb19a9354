package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

// SocialIdentityRepo implements auth.SocialIdentityRepo using PostgreSQL.
type SocialIdentityRepo struct {
	db *sql.DB
}

func NewSocialIdentityRepo(db *sql.DB) *SocialIdentityRepo {
	return &SocialIdentityRepo{db: db}
}

// FindByProviderAndSub finds a social identity by provider and provider user id.
// A missing row is not an error; it returns (nil, nil).
func (r *SocialIdentityRepo) FindByProviderAndSub(ctx context.Context, provider, providerUserID string) (*domain.SocialIdentity, error) {
	var identity domain.SocialIdentity
	var email sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, provider, provider_user_id, email, user_id, created_at
		FROM social_identities
		WHERE provider = $1 AND provider_user_id = $2
	`, provider, providerUserID).Scan(
		&identity.ID,
		&identity.Provider,
		&identity.ProviderUserID,
		&email,
		&identity.UserID,
		&identity.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDBUnavailable(err)
	}

	identity.Email = email.String
	return &identity, nil
}

// Create inserts a new social identity.
func (r *SocialIdentityRepo) Create(ctx context.Context, identity *domain.SocialIdentity) error {
	var email *string
	if identity.Email != "" {
		email = &identity.Email
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO social_identities (id, provider, provider_user_id, email, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, identity.ID, identity.Provider, identity.ProviderUserID, email, identity.UserID).Scan(
		&identity.CreatedAt,
	)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}
