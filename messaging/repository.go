package messaging

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmatrimony/domain"
)

// Repository is the append-only message log. There is no update or delete.
type Repository interface {
	// Append stores m and returns it with Seq assigned.
	Append(ctx context.Context, m Message) (Message, error)
	// ListBetween returns the messages of the unordered pair {a, b} ordered by
	// timestamp then sequence.
	ListBetween(ctx context.Context, a, b domain.Identity) ([]Message, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Append(ctx context.Context, m Message) (Message, error) {
	low, high := domain.Pair(m.From, m.To)
	const insertSQL = `
		INSERT INTO messages (id, sender, recipient, pair_low, pair_high, content, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`
	if err := r.pool.QueryRow(ctx, insertSQL,
		m.ID,
		string(m.From),
		string(m.To),
		string(low),
		string(high),
		m.Content,
		m.Timestamp,
	).Scan(&m.Seq); err != nil {
		return Message{}, fmt.Errorf("messaging: append: %w", err)
	}
	return m, nil
}

func (r *PGRepository) ListBetween(ctx context.Context, a, b domain.Identity) ([]Message, error) {
	low, high := domain.Pair(a, b)
	const query = `
		SELECT id::text, seq, sender, recipient, content, sent_at
		FROM messages
		WHERE pair_low = $1 AND pair_high = $2
		ORDER BY sent_at ASC, seq ASC
	`

	rows, err := r.pool.Query(ctx, query, string(low), string(high))
	if err != nil {
		return nil, fmt.Errorf("messaging: list: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0, 16)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("messaging: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messaging: iterate: %w", err)
	}
	return out, nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var (
		m        Message
		from, to string
	)
	if err := row.Scan(&m.ID, &m.Seq, &from, &to, &m.Content, &m.Timestamp); err != nil {
		return Message{}, err
	}
	m.From = domain.Identity(from)
	m.To = domain.Identity(to)
	return m, nil
}

var _ Repository = (*PGRepository)(nil)
