package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var avatar sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &avatar)
	if err != nil {
		return domain.User{}, err
	}
	u.AvatarURL = avatar.String
	return u, nil
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT id, email, username, password_hash, avatar_url
FROM users
WHERE email = $1
LIMIT 1;
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	if id <= 0 {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT id, email, username, password_hash, avatar_url
FROM users
WHERE id = $1
LIMIT 1;
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.Username == "" {
		// social profiles may come without a display name
		u.Username = u.Email[:strings.Index(u.Email+"@", "@")]
	}

	const q = `
INSERT INTO users (email, username, password_hash, avatar_url)
VALUES ($1, $2, $3, NULLIF($4, ''))
RETURNING id;
`
	err := r.db.QueryRowContext(ctx, q, u.Email, u.Username, u.PasswordHash, u.AvatarURL).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return u, nil
}

func (r *UserRepo) UpdateAvatarURL(ctx context.Context, userID int64, avatarURL string) error {
	if userID <= 0 {
		return domain.ErrMissingField("id")
	}

	const q = `UPDATE users SET avatar_url = NULLIF($2, '') WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, userID, avatarURL)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

// isUniqueViolation matches the postgres unique_violation SQLSTATE (23505)
// without depending on the driver's error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
