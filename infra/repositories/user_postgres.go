package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giovaniif/motorent/domain/user"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, name, role, created_at, date_of_birth, address, credential_id_number, credential_id_image_url`

type UserRepositoryPostgres struct {
	db *sqlx.DB
}

func NewUserRepositoryPostgres(db *sqlx.DB) *UserRepositoryPostgres {
	return &UserRepositoryPostgres{db: db}
}

func (r *UserRepositoryPostgres) get(ctx context.Context, query, key string) (*user.User, error) {
	var u user.User
	err := r.db.QueryRowxContext(ctx, query, key).Scan(userFields(&u)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", user.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", key, err)
	}
	return &u, nil
}

func (r *UserRepositoryPostgres) Get(ctx context.Context, userId string) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userId)
}

func (r *UserRepositoryPostgres) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepositoryPostgres) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(userFields(&u)...); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepositoryPostgres) Save(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			date_of_birth = EXCLUDED.date_of_birth,
			address = EXCLUDED.address,
			credential_id_number = EXCLUDED.credential_id_number,
			credential_id_image_url = EXCLUDED.credential_id_image_url`,
		u.Id, u.Email, u.Name, string(u.Role), u.CreatedAt,
		u.DateOfBirth, u.Address, u.CredentialIdNumber, u.CredentialIdImageUrl)
	if err != nil {
		return fmt.Errorf("save user %s: %w", u.Id, err)
	}
	return nil
}

func userFields(u *user.User) []any {
	return []any{&u.Id, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.DateOfBirth, &u.Address, &u.CredentialIdNumber, &u.CredentialIdImageUrl}
}
