package platform_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/matrimony"
	"jobmatrimony/messaging"
	"jobmatrimony/platform"
	"jobmatrimony/profile"
	"jobmatrimony/test/infra"
)

func TestDeleteUserPurge_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, true)
	require.NoError(t, err)
	defer pool.Close()
	t.Cleanup(func() { _ = teardown(context.Background()) })

	svc := platform.New(platform.Deps{
		Repos: platform.Repositories{
			Roles:     access.NewRepository(pool),
			Profiles:  profile.NewRepository(pool),
			Catalog:   catalog.NewRepository(pool),
			Matrimony: matrimony.NewRepository(pool),
			Messages:  messaging.NewRepository(pool),
			Purger:    platform.NewPGPurger(pool),
		},
		BootstrapAdmins: []string{"root"},
	})

	const root, alice, bob = domain.Identity("root"), domain.Identity("alice"), domain.Identity("bob")
	for _, id := range []domain.Identity{root, alice, bob} {
		_, err := svc.InitializeAccessControl(ctx, id)
		require.NoError(t, err)
	}
	for _, id := range []domain.Identity{alice, bob} {
		p := profile.MatrimonialProfile{Name: string(id), Age: 30, MinAge: 25, MaxAge: 35}
		require.NoError(t, svc.CreateOrUpdateMatrimonialProfile(ctx, id, p))
	}
	listing, err := svc.CreateJobListing(ctx, root, catalog.Listing{Title: "Nurse"})
	require.NoError(t, err)
	_, err = svc.ApplyForJob(ctx, alice, listing.ID)
	require.NoError(t, err)
	_, err = svc.SendInterest(ctx, bob, alice)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, alice, bob, "hi")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteUser(ctx, root, "ghost"), domain.ErrNotFound)
	require.NoError(t, svc.DeleteUser(ctx, root, alice))

	counts := map[string]string{
		"user_roles":       `SELECT COUNT(*) FROM user_roles WHERE identity = $1`,
		"profiles":         `SELECT COUNT(*) FROM profiles WHERE identity = $1`,
		"job_applications": `SELECT COUNT(*) FROM job_applications WHERE applicant = $1`,
		"interests":        `SELECT COUNT(*) FROM interests WHERE sender = $1 OR recipient = $1`,
	}
	for table, query := range counts {
		var n int
		require.NoError(t, pool.QueryRow(ctx, query, string(alice)).Scan(&n), table)
		assert.Zero(t, n, "%s rows left for deleted user", table)
	}

	msgs, err := svc.GetMessages(ctx, root, alice, bob)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "messages are retained")
}
