package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expense-share/internal/domain"
)

// UserAccessRepository is the credential store consumed by the
// authentication core. Absence is signalled with pgx.ErrNoRows.
type UserAccessRepository interface {
	Create(ctx context.Context, record *domain.CredentialRecord) error
	Update(ctx context.Context, record *domain.CredentialRecord) error
	GetByID(ctx context.Context, id int64) (*domain.CredentialRecord, error)
	FindByUsername(ctx context.Context, username string) (*domain.CredentialRecord, error)
}

type userAccessRepository struct {
	pool *pgxpool.Pool
}

// NewUserAccessRepository returns a Postgres-backed implementation.
func NewUserAccessRepository(pool *pgxpool.Pool) UserAccessRepository {
	return &userAccessRepository{pool: pool}
}

func (r *userAccessRepository) Create(ctx context.Context, record *domain.CredentialRecord) error {
	const query = `
        INSERT INTO user_access (username, password_hash, roles)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		record.Username,
		record.PasswordHash,
		record.Roles,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
}

func (r *userAccessRepository) Update(ctx context.Context, record *domain.CredentialRecord) error {
	const query = `
        UPDATE user_access SET username=$1, password_hash=$2, roles=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		record.Username,
		record.PasswordHash,
		record.Roles,
		record.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userAccessRepository) GetByID(ctx context.Context, id int64) (*domain.CredentialRecord, error) {
	const query = `
        SELECT id, username, password_hash, roles, created_at, updated_at
        FROM user_access WHERE id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userAccessRepository) FindByUsername(ctx context.Context, username string) (*domain.CredentialRecord, error) {
	const query = `
        SELECT id, username, password_hash, roles, created_at, updated_at
        FROM user_access WHERE username=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, username))
}

func (r *userAccessRepository) scanOne(row pgx.Row) (*domain.CredentialRecord, error) {
	var record domain.CredentialRecord
	if err := row.Scan(
		&record.ID,
		&record.Username,
		&record.PasswordHash,
		&record.Roles,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
