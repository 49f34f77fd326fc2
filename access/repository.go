package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmatrimony/db"
	"jobmatrimony/domain"
)

// ErrRoleNotFound signals that the identity has never been initialized.
var ErrRoleNotFound = fmt.Errorf("access: role not found: %w", domain.ErrNotFound)

// Repository stores the single role held by each identity.
type Repository interface {
	GetRole(ctx context.Context, id domain.Identity) (Role, error)
	// InsertRoleIfAbsent grants role only when id holds none yet and returns
	// the role id holds afterwards.
	InsertRoleIfAbsent(ctx context.Context, id domain.Identity, role Role) (Role, bool, error)
	SetRole(ctx context.Context, id domain.Identity, role Role) error
	ListIdentities(ctx context.Context) ([]domain.Identity, error)
	DeleteRole(ctx context.Context, id domain.Identity) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed role repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetRole returns the role assigned to id.
func (r *PGRepository) GetRole(ctx context.Context, id domain.Identity) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT role FROM user_roles WHERE identity = $1`, string(id)).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRoleNotFound
		}
		return "", fmt.Errorf("access: get role: %w", err)
	}
	return role, nil
}

// InsertRoleIfAbsent relies on ON CONFLICT DO NOTHING so concurrent first
// contacts cannot both win.
func (r *PGRepository) InsertRoleIfAbsent(ctx context.Context, id domain.Identity, role Role) (Role, bool, error) {
	const insertSQL = `
		INSERT INTO user_roles (identity, role)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, insertSQL, string(id), role)
	if err != nil {
		return "", false, fmt.Errorf("access: insert role: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return role, true, nil
	}

	current, err := r.GetRole(ctx, id)
	if err != nil {
		return "", false, err
	}
	return current, false, nil
}

// SetRole overwrites any prior role.
func (r *PGRepository) SetRole(ctx context.Context, id domain.Identity, role Role) error {
	const upsertSQL = `
		INSERT INTO user_roles (identity, role)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO UPDATE
		SET role = EXCLUDED.role,
		    updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, upsertSQL, string(id), role); err != nil {
		return fmt.Errorf("access: set role: %w", err)
	}
	return nil
}

// ListIdentities returns every initialized identity ordered by identity.
func (r *PGRepository) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	rows, err := r.pool.Query(ctx, `SELECT identity FROM user_roles ORDER BY identity ASC`)
	if err != nil {
		return nil, fmt.Errorf("access: list identities: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Identity, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("access: scan identity: %w", err)
		}
		out = append(out, domain.Identity(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("access: iterate identities: %w", err)
	}
	return out, nil
}

// DeleteRole removes the assignment; deleting an unknown identity is NotFound.
func (r *PGRepository) DeleteRole(ctx context.Context, id domain.Identity) error {
	return DeleteRoleTx(ctx, r.pool, id)
}

// DeleteRoleTx is DeleteRole on q, typically a transaction shared with
// other deletes.
func DeleteRoleTx(ctx context.Context, q db.Execer, id domain.Identity) error {
	tag, err := q.Exec(ctx, `DELETE FROM user_roles WHERE identity = $1`, string(id))
	if err != nil {
		return fmt.Errorf("access: delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
