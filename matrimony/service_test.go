package matrimony_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"jobmatrimony/domain"
	"jobmatrimony/matrimony"
	"jobmatrimony/memstore"
)

type profileSet map[domain.Identity]bool

func (p profileSet) HasMatrimonial(_ context.Context, id domain.Identity) (bool, error) {
	return p[id], nil
}

func newService(withProfiles ...domain.Identity) *matrimony.Service {
	set := profileSet{}
	for _, id := range withProfiles {
		set[id] = true
	}
	return matrimony.NewService(memstore.NewMatrimony(), set, zap.NewNop())
}

func TestService_SendInterestValidation(t *testing.T) {
	svc := newService("bob")
	ctx := context.Background()

	cases := []struct {
		name      string
		sender    domain.Identity
		recipient domain.Identity
		want      error
	}{
		{"empty recipient", "alice", "", domain.ErrInvalidInput},
		{"self", "bob", "bob", domain.ErrConflict},
		{"recipient without profile", "bob", "carol", domain.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SendInterest(ctx, tc.sender, tc.recipient); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	in, err := svc.SendInterest(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if in.Status != matrimony.InterestPending {
		t.Fatalf("expected pending, got %s", in.Status)
	}
	if _, err := svc.SendInterest(ctx, "alice", "bob"); !errors.Is(err, matrimony.ErrDuplicateInterest) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	sent, err := svc.Sent(ctx, "alice")
	if err != nil {
		t.Fatalf("sent: %v", err)
	}
	if len(sent) != 1 || sent[0].Recipient != "bob" || sent[0].Status != matrimony.InterestPending {
		t.Fatalf("expected exactly one pending interest alice->bob, got %+v", sent)
	}
}

func TestService_AcceptCreatesScoredMatch(t *testing.T) {
	svc := newService("bob").WithScorer(func(_ context.Context, a, b domain.Identity) (int, error) {
		if a != "alice" || b != "bob" {
			t.Fatalf("scorer called with %s,%s", a, b)
		}
		return 130, nil
	})
	ctx := context.Background()

	in, err := svc.SendInterest(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.AcceptInterest(ctx, "alice", in.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("sender must not accept, got %v", err)
	}

	res, err := svc.AcceptInterest(ctx, "bob", in.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !res.MatchCreated || res.Match.CompatibilityScore != 100 {
		t.Fatalf("expected created match with clamped score, got %+v", res)
	}
	if res.Match.User1 != "alice" || res.Match.User2 != "bob" {
		t.Fatalf("expected canonical pair, got %s,%s", res.Match.User1, res.Match.User2)
	}

	if _, err := svc.AcceptInterest(ctx, "bob", in.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state on second accept, got %v", err)
	}
	if _, err := svc.RejectInterest(ctx, "bob", in.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state on reject after accept, got %v", err)
	}
	if _, err := svc.AcceptInterest(ctx, "bob", 77); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	matched, err := svc.MatchedWith(ctx, "bob")
	if err != nil {
		t.Fatalf("matched with: %v", err)
	}
	if _, ok := matched["alice"]; !ok || len(matched) != 1 {
		t.Fatalf("unexpected matched set %v", matched)
	}
}

func TestService_RejectCreatesNoMatch(t *testing.T) {
	svc := newService("bob")
	ctx := context.Background()

	in, _ := svc.SendInterest(ctx, "alice", "bob")
	rejected, err := svc.RejectInterest(ctx, "bob", in.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != matrimony.InterestRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	matches, _ := svc.Matches(ctx, "alice")
	if len(matches) != 0 {
		t.Fatalf("reject must not create a match, got %v", matches)
	}
	sent, _ := svc.Sent(ctx, "alice")
	received, _ := svc.Received(ctx, "bob")
	if len(sent) != 1 || len(received) != 1 {
		t.Fatalf("expected interest listed on both sides, got %d sent %d received", len(sent), len(received))
	}
}

func TestService_SaveMatch(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, tc := range []struct {
		other domain.Identity
		score int
	}{
		{"", 50},
		{"alice", 50},
		{"bob", -1},
		{"bob", 101},
	} {
		if _, err := svc.SaveMatch(ctx, "alice", tc.other, tc.score); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("save match %q %d: expected invalid input, got %v", tc.other, tc.score, err)
		}
	}

	m, err := svc.SaveMatch(ctx, "bob", "alice", 64)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if m.CompatibilityScore != 64 {
		t.Fatalf("caller supplied score must be kept, got %d", m.CompatibilityScore)
	}
	if _, err := svc.SaveMatch(ctx, "alice", "bob", 10); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for reversed pair, got %v", err)
	}
}
