package matrimony

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmatrimony/db"
	"jobmatrimony/domain"
)

// Repository owns interests and matches. AcceptInterest and RejectInterest
// perform the ownership and state checks atomically with the transition.
type Repository interface {
	CreateInterest(ctx context.Context, in Interest) (Interest, error)
	GetInterest(ctx context.Context, id int64) (Interest, error)
	// AcceptInterest marks the interest accepted and creates a match with
	// score unless the pair is already matched.
	AcceptInterest(ctx context.Context, id int64, actor domain.Identity, score int, at time.Time) (AcceptResult, error)
	RejectInterest(ctx context.Context, id int64, actor domain.Identity, at time.Time) (Interest, error)
	InterestsSentBy(ctx context.Context, id domain.Identity) ([]Interest, error)
	InterestsReceivedBy(ctx context.Context, id domain.Identity) ([]Interest, error)

	CreateMatch(ctx context.Context, m Match) (Match, error)
	MatchesOf(ctx context.Context, id domain.Identity) ([]Match, error)

	// DeleteIdentity removes every interest and match involving id.
	DeleteIdentity(ctx context.Context, id domain.Identity) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const interestColumns = `id, sender, recipient, status, created_at, responded_at`

const matchColumns = `id, user1, user2, compatibility_score, created_at`

// CreateInterest depends on the partial unique index over pending
// (sender, recipient) pairs to reject duplicates.
func (r *PGRepository) CreateInterest(ctx context.Context, in Interest) (Interest, error) {
	query := `
		INSERT INTO interests (sender, recipient, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + interestColumns

	created, err := scanInterest(r.pool.QueryRow(ctx, query, string(in.Sender), string(in.Recipient), in.Status, in.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Interest{}, ErrDuplicateInterest
		}
		return Interest{}, fmt.Errorf("matrimony: insert interest: %w", err)
	}
	return created, nil
}

func (r *PGRepository) GetInterest(ctx context.Context, id int64) (Interest, error) {
	in, err := scanInterest(r.pool.QueryRow(ctx, `SELECT `+interestColumns+` FROM interests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interest{}, ErrInterestNotFound
		}
		return Interest{}, fmt.Errorf("matrimony: get interest: %w", err)
	}
	return in, nil
}

func (r *PGRepository) AcceptInterest(ctx context.Context, id int64, actor domain.Identity, score int, at time.Time) (AcceptResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("matrimony: begin acceptance tx: %w", err)
	}
	defer tx.Rollback(ctx)

	in, err := lockPendingForRecipient(ctx, tx, id, actor)
	if err != nil {
		return AcceptResult{}, err
	}
	if err := markResponded(ctx, tx, &in, InterestAccepted, at); err != nil {
		return AcceptResult{}, err
	}

	candidate := NewMatch(in.Sender, in.Recipient, score, at)
	insertSQL := `
		INSERT INTO matches (user1, user2, compatibility_score, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1, user2) DO NOTHING
		RETURNING ` + matchColumns

	result := AcceptResult{Interest: in}
	m, err := scanMatch(tx.QueryRow(ctx, insertSQL, string(candidate.User1), string(candidate.User2), candidate.CompatibilityScore, candidate.CreatedAt))
	switch {
	case err == nil:
		result.Match = m
		result.MatchCreated = true
	case errors.Is(err, pgx.ErrNoRows):
		// Pair already matched; keep the existing match.
		existing, err := scanMatch(tx.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE user1 = $1 AND user2 = $2`, string(candidate.User1), string(candidate.User2)))
		if err != nil {
			return AcceptResult{}, fmt.Errorf("matrimony: load existing match: %w", err)
		}
		result.Match = existing
	default:
		return AcceptResult{}, fmt.Errorf("matrimony: insert match: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return AcceptResult{}, fmt.Errorf("matrimony: commit acceptance: %w", err)
	}
	return result, nil
}

func (r *PGRepository) RejectInterest(ctx context.Context, id int64, actor domain.Identity, at time.Time) (Interest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Interest{}, fmt.Errorf("matrimony: begin rejection tx: %w", err)
	}
	defer tx.Rollback(ctx)

	in, err := lockPendingForRecipient(ctx, tx, id, actor)
	if err != nil {
		return Interest{}, err
	}
	if err := markResponded(ctx, tx, &in, InterestRejected, at); err != nil {
		return Interest{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Interest{}, fmt.Errorf("matrimony: commit rejection: %w", err)
	}
	return in, nil
}

func (r *PGRepository) InterestsSentBy(ctx context.Context, id domain.Identity) ([]Interest, error) {
	return r.queryInterests(ctx, `SELECT `+interestColumns+` FROM interests WHERE sender = $1 ORDER BY id ASC`, id)
}

func (r *PGRepository) InterestsReceivedBy(ctx context.Context, id domain.Identity) ([]Interest, error) {
	return r.queryInterests(ctx, `SELECT `+interestColumns+` FROM interests WHERE recipient = $1 ORDER BY id ASC`, id)
}

func (r *PGRepository) CreateMatch(ctx context.Context, m Match) (Match, error) {
	m = NewMatch(m.User1, m.User2, m.CompatibilityScore, m.CreatedAt)
	query := `
		INSERT INTO matches (user1, user2, compatibility_score, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + matchColumns

	created, err := scanMatch(r.pool.QueryRow(ctx, query, string(m.User1), string(m.User2), m.CompatibilityScore, m.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Match{}, ErrMatchExists
		}
		return Match{}, fmt.Errorf("matrimony: insert match: %w", err)
	}
	return created, nil
}

func (r *PGRepository) MatchesOf(ctx context.Context, id domain.Identity) ([]Match, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+matchColumns+` FROM matches WHERE user1 = $1 OR user2 = $1 ORDER BY id ASC`, string(id))
	if err != nil {
		return nil, fmt.Errorf("matrimony: list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, 8)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("matrimony: scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("matrimony: iterate matches: %w", err)
	}
	return matches, nil
}

func (r *PGRepository) DeleteIdentity(ctx context.Context, id domain.Identity) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("matrimony: begin delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := DeleteIdentityTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("matrimony: commit delete: %w", err)
	}
	return nil
}

// DeleteIdentityTx removes every interest and match involving id on q.
func DeleteIdentityTx(ctx context.Context, q db.Execer, id domain.Identity) error {
	if _, err := q.Exec(ctx, `DELETE FROM interests WHERE sender = $1 OR recipient = $1`, string(id)); err != nil {
		return fmt.Errorf("matrimony: delete interests: %w", err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM matches WHERE user1 = $1 OR user2 = $1`, string(id)); err != nil {
		return fmt.Errorf("matrimony: delete matches: %w", err)
	}
	return nil
}

func (r *PGRepository) queryInterests(ctx context.Context, query string, id domain.Identity) ([]Interest, error) {
	rows, err := r.pool.Query(ctx, query, string(id))
	if err != nil {
		return nil, fmt.Errorf("matrimony: list interests: %w", err)
	}
	defer rows.Close()

	out := make([]Interest, 0, 8)
	for rows.Next() {
		in, err := scanInterest(rows)
		if err != nil {
			return nil, fmt.Errorf("matrimony: scan interest: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("matrimony: iterate interests: %w", err)
	}
	return out, nil
}

// lockPendingForRecipient loads the interest FOR UPDATE and applies the
// checks in order: existence, ownership, state.
func lockPendingForRecipient(ctx context.Context, tx pgx.Tx, id int64, actor domain.Identity) (Interest, error) {
	in, err := scanInterest(tx.QueryRow(ctx, `SELECT `+interestColumns+` FROM interests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interest{}, ErrInterestNotFound
		}
		return Interest{}, fmt.Errorf("matrimony: lock interest: %w", err)
	}
	if err := CheckRespond(in, actor); err != nil {
		return Interest{}, err
	}
	return in, nil
}

func markResponded(ctx context.Context, tx pgx.Tx, in *Interest, status InterestStatus, at time.Time) error {
	if _, err := tx.Exec(ctx, `UPDATE interests SET status = $2, responded_at = $3 WHERE id = $1`, in.ID, status, at); err != nil {
		return fmt.Errorf("matrimony: update interest: %w", err)
	}
	in.Status = status
	in.RespondedAt = &at
	return nil
}

func scanInterest(row pgx.Row) (Interest, error) {
	var (
		in        Interest
		sender    string
		recipient string
		status    string
	)
	if err := row.Scan(&in.ID, &sender, &recipient, &status, &in.CreatedAt, &in.RespondedAt); err != nil {
		return Interest{}, err
	}
	in.Sender = domain.Identity(sender)
	in.Recipient = domain.Identity(recipient)
	in.Status = InterestStatus(status)
	return in, nil
}

func scanMatch(row pgx.Row) (Match, error) {
	var (
		m     Match
		user1 string
		user2 string
	)
	if err := row.Scan(&m.ID, &user1, &user2, &m.CompatibilityScore, &m.CreatedAt); err != nil {
		return Match{}, err
	}
	m.User1 = domain.Identity(user1)
	m.User2 = domain.Identity(user2)
	return m, nil
}

var _ Repository = (*PGRepository)(nil)
