package test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/matrimony"
	"jobmatrimony/messaging"
	"jobmatrimony/profile"
	"jobmatrimony/recommend"
	"jobmatrimony/test/actors"
	"jobmatrimony/test/chaos"
	"jobmatrimony/test/infra"
	"jobmatrimony/test/oracles"
)

var (
	flDuration    = flag.Duration("duration", 20*time.Second, "how long to run stress")
	flConcurrency = flag.Int("concurrency", 4, "number of concurrent actors per kind")
	flSeed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flDSN         = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")
	flChaos       = flag.Bool("chaos", false, "terminate random backends while actors run")
)

func TestMatchmakingConcurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test skipped in -short mode")
	}
	seed := *flSeed

	var (
		pgC        *infra.PGContainer
		dsn        string
		err        error
		usedShared bool
	)
	ctx, cancel := context.WithTimeout(context.Background(), *flDuration+60*time.Second)
	defer cancel()

	switch {
	case *flDSN != "":
		dsn = *flDSN
		usedShared = true
		pgC = &infra.PGContainer{}
	case os.Getenv(infra.DSNEnv) != "":
		dsn = os.Getenv(infra.DSNEnv)
		usedShared = true
		pgC = &infra.PGContainer{}
	default:
		if dockerAvailable(ctx) {
			pgC, dsn, err = infra.StartPostgres16(ctx, "")
			if err != nil {
				t.Fatalf("start postgres: %v", err)
			}
		} else {
			dsn, err = infra.InitLocalDatabase(ctx)
			if err != nil {
				t.Skipf("no database available: %v", err)
			}
			pgC = &infra.PGContainer{}
		}
	}
	defer pgC.Terminate(context.Background())

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, usedShared)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	defer pool.Close()
	defer func() {
		if err := teardown(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	}()

	world := mustSeed(t, ctx, pool, seed)

	g, ctx2 := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	for i := 0; i < *flConcurrency; i++ {
		base := seed + int64(i)*101
		g.Go(func() error { return actors.Suitor(ctx2, world, base+1, stop) })
		g.Go(func() error { return actors.Responder(ctx2, world, base+2, stop) })
		g.Go(func() error { return actors.Applicant(ctx2, world, base+3, stop) })
		g.Go(func() error { return actors.Reviewer(ctx2, world, base+4, stop) })
	}
	g.Go(func() error { return actors.Matchmaker(ctx2, world, seed+5, stop) })
	g.Go(func() error { return actors.Chatter(ctx2, world, seed+6, stop) })
	if *flChaos {
		go chaos.TerminateRandomBackend(ctx2, pool, infra.ApplicationName, stop)
	}

	deadline := time.Now().Add(*flDuration)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var failed bool
loop:
	for time.Now().Before(deadline) {
		select {
		case <-ctx2.Done():
			break loop
		case <-ticker.C:
			if checkOracles(t, ctx2, pool, seed) {
				failed = true
				break loop
			}
		}
	}

	close(stop)
	if err := g.Wait(); err != nil && !failed {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("actors errored: %v (seed=%d)", err, seed)
		}
	}
	if !failed {
		checkOracles(t, ctx, pool, seed)
	}
}

// checkOracles reports a failed invariant and returns true when one fails.
func checkOracles(t *testing.T, ctx context.Context, pool *pgxpool.Pool, seed int64) bool {
	t.Helper()
	name, row, err := oracles.Run(ctx, pool)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		t.Errorf("oracle error: %v", err)
		return true
	}
	if name != "" {
		dumpRecent(t, ctx, pool)
		t.Errorf("Oracle %s failed. First row: %s (seed=%d)", name, row, seed)
		return true
	}
	return false
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}

// mustSeed creates users (half of them with matrimonial profiles) and a few
// listings, and returns services bound to the pool.
func mustSeed(t *testing.T, ctx context.Context, pool *pgxpool.Pool, seed int64) *actors.World {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	logger := zap.NewNop()

	profiles := profile.NewService(profile.NewRepository(pool), logger)
	cat := catalog.NewService(catalog.NewRepository(pool), logger)
	scorer := func(ctx context.Context, a, b domain.Identity) (int, error) {
		pa, errA := profiles.Matrimonial(ctx, a)
		pb, errB := profiles.Matrimonial(ctx, b)
		if errA != nil || errB != nil {
			return 0, nil
		}
		return recommend.Compatibility(pa, pb), nil
	}

	world := &actors.World{
		Matrimony: matrimony.NewService(matrimony.NewRepository(pool), profiles, logger).WithScorer(scorer),
		Catalog:   cat,
		Messages:  messaging.NewService(messaging.NewRepository(pool), logger),
	}

	religions := []string{"Hindu", "Christian", "Muslim", "Sikh"}
	cities := []string{"Pune", "Delhi", "Chennai"}
	for i := 0; i < 12; i++ {
		id := domain.Identity(fmt.Sprintf("user-%02d", i))
		world.Users = append(world.Users, id)
		if i%2 == 1 {
			continue
		}
		age := 24 + rng.Intn(12)
		err := profiles.SaveMatrimonial(ctx, id, profile.MatrimonialProfile{
			Name:              string(id),
			Age:               age,
			Religion:          religions[rng.Intn(len(religions))],
			Occupation:        "engineer",
			PreferredLocation: cities[rng.Intn(len(cities))],
			MinAge:            age - 3,
			MaxAge:            age + 5,
		})
		if err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		l, err := cat.CreateListing(ctx, catalog.Listing{
			Title:     fmt.Sprintf("Engineer %d", i),
			Location:  cities[i%len(cities)],
			SalaryMin: 100,
			SalaryMax: 200,
		})
		if err != nil {
			t.Fatalf("seed listing: %v", err)
		}
		world.JobIDs = append(world.JobIDs, l.ID)
	}
	return world
}

func dumpRecent(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	type dump struct {
		name string
		sql  string
	}
	dumps := []dump{
		{"interests", `SELECT id, sender, recipient, status, responded_at FROM interests ORDER BY id DESC LIMIT 50`},
		{"matches", `SELECT id, user1, user2, compatibility_score FROM matches ORDER BY id DESC LIMIT 50`},
		{"job_applications", `SELECT id, job_id, applicant, status FROM job_applications ORDER BY id DESC LIMIT 50`},
	}
	for _, d := range dumps {
		rows, err := pool.Query(ctx, d.sql)
		if err != nil {
			t.Logf("dump %s error: %v", d.name, err)
			continue
		}
		cols := rows.FieldDescriptions()
		t.Logf("-- %s --", d.name)
		for rows.Next() {
			vals, _ := rows.Values()
			buf := make([]any, 0, len(vals))
			for i := range vals {
				buf = append(buf, fmt.Sprintf("%s=%v", string(cols[i].Name), vals[i]))
			}
			t.Logf("%s", buf)
		}
		rows.Close()
	}
}
