package platform

import (
	"context"
	"fmt"

	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/db"
	"jobmatrimony/domain"
	"jobmatrimony/matrimony"
	"jobmatrimony/profile"
)

// Purger removes an identity's role, profiles, applications, interests and
// matches as one unit. Unknown identities fail with NotFound and nothing is
// removed.
type Purger interface {
	PurgeIdentity(ctx context.Context, id domain.Identity) error
}

// PGPurger runs every delete of a purge in one Postgres transaction.
type PGPurger struct {
	pool db.TxBeginner
}

func NewPGPurger(pool db.TxBeginner) *PGPurger {
	return &PGPurger{pool: pool}
}

func (p *PGPurger) PurgeIdentity(ctx context.Context, id domain.Identity) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("platform: begin purge tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Role first: an unknown identity aborts before anything else runs.
	if err := access.DeleteRoleTx(ctx, tx, id); err != nil {
		return err
	}
	if err := profile.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := catalog.DeleteApplicationsTx(ctx, tx, id); err != nil {
		return err
	}
	if err := matrimony.DeleteIdentityTx(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform: commit purge: %w", err)
	}
	return nil
}
