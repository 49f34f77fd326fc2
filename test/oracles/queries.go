package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

// All lists invariant checks. Each query returns rows only on violation.
func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_one_match_per_pair",
			SQL: `SELECT LEAST(user1, user2), GREATEST(user1, user2), COUNT(*) FROM matches
                  GROUP BY 1, 2 HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_one_pending_interest_per_ordered_pair",
			SQL: `SELECT sender, recipient, COUNT(*) FROM interests
                  WHERE status = 'pending'
                  GROUP BY sender, recipient HAVING COUNT(*) > 1`,
		},
		{
			Name: "O3_accepted_interest_has_match",
			SQL: `SELECT i.id FROM interests i
                  WHERE i.status = 'accepted'
                    AND NOT EXISTS (
                        SELECT 1 FROM matches m
                        WHERE (m.user1 = i.sender AND m.user2 = i.recipient)
                           OR (m.user1 = i.recipient AND m.user2 = i.sender))`,
		},
		{
			Name: "O4_response_time_iff_terminal",
			SQL: `SELECT id, status, responded_at FROM interests
                  WHERE (status = 'pending') <> (responded_at IS NULL)`,
		},
		{
			Name: "O5_no_self_relations",
			SQL: `SELECT id::text FROM interests WHERE sender = recipient
                  UNION ALL
                  SELECT id::text FROM matches WHERE user1 = user2`,
		},
		{
			Name: "O6_score_range",
			SQL:  `SELECT id, compatibility_score FROM matches WHERE compatibility_score NOT BETWEEN 0 AND 100`,
		},
		{
			Name: "O7_one_application_per_job_and_applicant",
			SQL: `SELECT job_id, applicant, COUNT(*) FROM job_applications
                  GROUP BY job_id, applicant HAVING COUNT(*) > 1`,
		},
		{
			Name: "O8_application_status_vocabulary",
			SQL: `SELECT id, status FROM job_applications
                  WHERE status NOT IN ('submitted', 'reviewed', 'accepted', 'rejected')`,
		},
		{
			Name: "O9_message_pair_matches_participants",
			SQL: `SELECT seq FROM messages
                  WHERE NOT ((pair_low = sender AND pair_high = recipient)
                          OR (pair_low = recipient AND pair_high = sender))`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
	}
	return "", "", nil
}
