package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmatrimony/db"
	"jobmatrimony/domain"
)

var (
	// ErrProfileNotFound signals an identity without any stored profile.
	ErrProfileNotFound = fmt.Errorf("profile: not found: %w", domain.ErrNotFound)
	// ErrJobProfileNotFound signals a missing job sub-profile.
	ErrJobProfileNotFound = fmt.Errorf("profile: job profile not found: %w", domain.ErrNotFound)
	// ErrMatrimonialProfileNotFound signals a missing matrimonial sub-profile.
	ErrMatrimonialProfileNotFound = fmt.Errorf("profile: matrimonial profile not found: %w", domain.ErrNotFound)

	errNilProfile = fmt.Errorf("profile: profile required: %w", domain.ErrInvalidInput)
)

// Repository is the keyed profile store. Writes replace wholesale and never
// merge field by field.
type Repository interface {
	Get(ctx context.Context, id domain.Identity) (UserProfile, error)
	Put(ctx context.Context, id domain.Identity, p UserProfile) error
	PutJob(ctx context.Context, id domain.Identity, p JobProfile) error
	PutMatrimonial(ctx context.Context, id domain.Identity, p MatrimonialProfile) error
	// ListMatrimonial returns every matrimonial profile ordered by identity.
	ListMatrimonial(ctx context.Context) ([]Candidate, error)
	// Delete removes both sub-profiles; deleting an absent profile is not an error.
	Delete(ctx context.Context, id domain.Identity) error
}

// PGRepository stores each sub-profile as a JSONB column of the profiles table.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get fetches both sub-profiles of id.
func (r *PGRepository) Get(ctx context.Context, id domain.Identity) (UserProfile, error) {
	const query = `
		SELECT job, matrimonial
		FROM profiles
		WHERE identity = $1
	`

	var jobRaw, matrimonialRaw []byte
	err := r.pool.QueryRow(ctx, query, string(id)).Scan(&jobRaw, &matrimonialRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserProfile{}, ErrProfileNotFound
		}
		return UserProfile{}, fmt.Errorf("profile: query by identity: %w", err)
	}

	out, err := decodeProfile(jobRaw, matrimonialRaw)
	if err != nil {
		return UserProfile{}, err
	}
	if out.Empty() {
		return UserProfile{}, ErrProfileNotFound
	}
	return out, nil
}

// Put replaces both columns in one statement.
func (r *PGRepository) Put(ctx context.Context, id domain.Identity, p UserProfile) error {
	jobRaw, err := encodeOptional(p.Job)
	if err != nil {
		return err
	}
	matrimonialRaw, err := encodeOptional(p.Matrimonial)
	if err != nil {
		return err
	}

	const upsertSQL = `
		INSERT INTO profiles (identity, job, matrimonial)
		VALUES ($1, $2, $3)
		ON CONFLICT (identity) DO UPDATE
		SET job = EXCLUDED.job,
		    matrimonial = EXCLUDED.matrimonial,
		    updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, upsertSQL, string(id), jobRaw, matrimonialRaw); err != nil {
		return fmt.Errorf("profile: put: %w", err)
	}
	return nil
}

// PutJob replaces only the job column.
func (r *PGRepository) PutJob(ctx context.Context, id domain.Identity, p JobProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: encode job profile: %w", err)
	}

	const upsertSQL = `
		INSERT INTO profiles (identity, job)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO UPDATE
		SET job = EXCLUDED.job,
		    updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, upsertSQL, string(id), raw); err != nil {
		return fmt.Errorf("profile: put job: %w", err)
	}
	return nil
}

// PutMatrimonial replaces only the matrimonial column.
func (r *PGRepository) PutMatrimonial(ctx context.Context, id domain.Identity, p MatrimonialProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: encode matrimonial profile: %w", err)
	}

	const upsertSQL = `
		INSERT INTO profiles (identity, matrimonial)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO UPDATE
		SET matrimonial = EXCLUDED.matrimonial,
		    updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, upsertSQL, string(id), raw); err != nil {
		return fmt.Errorf("profile: put matrimonial: %w", err)
	}
	return nil
}

// ListMatrimonial fetches the candidate pool for compatibility scoring.
func (r *PGRepository) ListMatrimonial(ctx context.Context) ([]Candidate, error) {
	const query = `
		SELECT identity, matrimonial
		FROM profiles
		WHERE matrimonial IS NOT NULL
		ORDER BY identity ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("profile: list matrimonial: %w", err)
	}
	defer rows.Close()

	candidates := make([]Candidate, 0, 32)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("profile: scan candidate: %w", err)
		}
		var p MatrimonialProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("profile: decode matrimonial profile: %w", err)
		}
		candidates = append(candidates, Candidate{Identity: domain.Identity(id), Profile: p})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile: iterate candidates: %w", err)
	}
	return candidates, nil
}

// Delete removes the profiles row of id.
func (r *PGRepository) Delete(ctx context.Context, id domain.Identity) error {
	return DeleteTx(ctx, r.pool, id)
}

// DeleteTx is Delete on q. Deleting an absent row is not an error.
func DeleteTx(ctx context.Context, q db.Execer, id domain.Identity) error {
	if _, err := q.Exec(ctx, `DELETE FROM profiles WHERE identity = $1`, string(id)); err != nil {
		return fmt.Errorf("profile: delete: %w", err)
	}
	return nil
}

func encodeOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("profile: encode: %w", err)
	}
	return raw, nil
}

func decodeProfile(jobRaw, matrimonialRaw []byte) (UserProfile, error) {
	var out UserProfile
	if len(jobRaw) > 0 {
		out.Job = &JobProfile{}
		if err := json.Unmarshal(jobRaw, out.Job); err != nil {
			return UserProfile{}, fmt.Errorf("profile: decode job profile: %w", err)
		}
	}
	if len(matrimonialRaw) > 0 {
		out.Matrimonial = &MatrimonialProfile{}
		if err := json.Unmarshal(matrimonialRaw, out.Matrimonial); err != nil {
			return UserProfile{}, fmt.Errorf("profile: decode matrimonial profile: %w", err)
		}
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
