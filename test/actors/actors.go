// Package actors drives concurrent, randomized traffic against the Postgres
// repositories. Expected rejections (domain errors, connections killed by
// chaos) are swallowed; anything else stops the actor.
package actors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/matrimony"
	"jobmatrimony/messaging"
)

// World is the shared state every actor works against.
type World struct {
	Users     []domain.Identity
	JobIDs    []int64
	Matrimony *matrimony.Service
	Catalog   *catalog.Service
	Messages  *messaging.Service
}

func (w *World) user(rng *rand.Rand) domain.Identity {
	return w.Users[rng.Intn(len(w.Users))]
}

func (w *World) pair(rng *rand.Rand) (domain.Identity, domain.Identity) {
	a := w.user(rng)
	b := w.user(rng)
	for b == a {
		b = w.user(rng)
	}
	return a, b
}

// expected reports whether err is a legitimate outcome under contention.
func expected(err error) bool {
	if err == nil || domain.Kind(err) != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.ErrUnexpectedEOF) || pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 57: operator intervention (terminated backend), 08: connection
		// exception, 40: serialization failure or deadlock.
		for _, class := range []string{"57", "08", "40"} {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
	}
	return false
}

// loop calls step until stop closes or ctx ends, pausing between calls.
func loop(ctx context.Context, name string, seed int64, stop <-chan struct{}, pause func(*rand.Rand) time.Duration, step func(*rand.Rand) error) error {
	rng := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if err := step(rng); !expected(err) {
			return fmt.Errorf("%s: %w", name, err)
		}
		time.Sleep(pause(rng))
	}
}

func jitter(base, spread int) func(*rand.Rand) time.Duration {
	return func(rng *rand.Rand) time.Duration {
		return time.Duration(base+rng.Intn(spread)) * time.Millisecond
	}
}

// Suitor sends interests between random pairs.
func Suitor(ctx context.Context, w *World, seed int64, stop <-chan struct{}) error {
	return loop(ctx, "suitor", seed, stop, jitter(5, 15), func(rng *rand.Rand) error {
		sender, recipient := w.pair(rng)
		_, err := w.Matrimony.SendInterest(ctx, sender, recipient)
		return err
	})
}

// Responder answers the pending interests of a random user. Several
// responders racing on the same interest exercise the accept transaction.
func Responder(ctx context.Context, w *World, seed int64, stop <-chan struct{}) error {
	return loop(ctx, "responder", seed, stop, jitter(5, 20), func(rng *rand.Rand) error {
		recipient := w.user(rng)
		received, err := w.Matrimony.Received(ctx, recipient)
		if err != nil {
			return err
		}
		for _, in := range received {
			if in.Status != matrimony.InterestPending {
				continue
			}
			if rng.Intn(4) == 0 {
				_, err = w.Matrimony.RejectInterest(ctx, recipient, in.ID)
			} else {
				_, err = w.Matrimony.AcceptInterest(ctx, recipient, in.ID)
			}
			if !expected(err) {
				return err
			}
		}
		return nil
	})
}

// Matchmaker saves matches directly, racing with accepted interests.
func Matchmaker(ctx context.Context, w *World, seed int64, stop <-chan struct{}) error {
	return loop(ctx, "matchmaker", seed, stop, jitter(20, 40), func(rng *rand.Rand) error {
		a, b := w.pair(rng)
		_, err := w.Matrimony.SaveMatch(ctx, a, b, rng.Intn(101))
		return err
	})
}

// Applicant applies random users to random listings.
func Applicant(ctx context.Context, w *World, seed int64, stop <-chan struct{}) error {
	return loop(ctx, "applicant", seed, stop, jitter(5, 15), func(rng *rand.Rand) error {
		_, err := w.Catalog.Apply(ctx, w.user(rng), w.JobIDs[rng.Intn(len(w.JobIDs))])
		return err
	})
}

var reviewStatuses = []string{"reviewed", "accepted", "rejected", "submitted"}

// Reviewer moves applications of a random listing to a random status.
func Reviewer(ctx context.Context, w *World, seed int64, stop <-chan struct{}) error {
	return loop(ctx, "reviewer", seed, stop, jitter(10, 30), func(rng *rand.Rand) error {
		apps, err := w.Catalog.ApplicationsByJob(ctx, w.JobIDs[rng.Intn(len(w.JobIDs))])
		if err != nil {
			return err
		}
		for _, app := range apps {
			_, err := w.Catalog.UpdateApplicationStatus(ctx, app.ID, reviewStatuses[rng.Intn(len(reviewStatuses))])
			if !expected(err) {
				return err
			}
		}
		return nil
	})
}

// Chatter appends messages between random pairs.
func Chatter(ctx context.Context, w *World, seed int64, stop <-chan struct{}) error {
	return loop(ctx, "chatter", seed, stop, jitter(5, 10), func(rng *rand.Rand) error {
		from, to := w.pair(rng)
		_, err := w.Messages.Send(ctx, from, to, fmt.Sprintf("hello %d", rng.Int63()))
		return err
	})
}
