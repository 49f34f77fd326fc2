package messaging_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"jobmatrimony/domain"
	"jobmatrimony/memstore"
	"jobmatrimony/messaging"
)

func TestService_SendValidation(t *testing.T) {
	svc := messaging.NewService(memstore.NewMessages(), zap.NewNop())
	ctx := context.Background()

	cases := []struct {
		name    string
		from    domain.Identity
		to      domain.Identity
		content string
		ok      bool
	}{
		{"valid", "alice", "bob", "hello", true},
		{"self message", "alice", "alice", "note to self", true},
		{"max length", "alice", "bob", strings.Repeat("é", messaging.MaxContentRunes), true},
		{"max length padded", "alice", "bob", "  " + strings.Repeat("é", messaging.MaxContentRunes) + "\n", true},
		{"too long", "alice", "bob", strings.Repeat("a", messaging.MaxContentRunes+1), false},
		{"too long padded", "alice", "bob", " " + strings.Repeat("é", messaging.MaxContentRunes+1) + " ", false},
		{"blank content", "alice", "bob", "   ", false},
		{"missing sender", "", "bob", "hi", false},
		{"missing recipient", "alice", " ", "hi", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tc.from, tc.to, tc.content)
			if tc.ok && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !tc.ok && !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestService_SendStoresTrimmedContent(t *testing.T) {
	svc := messaging.NewService(memstore.NewMessages(), zap.NewNop())
	ctx := context.Background()

	sent, err := svc.Send(ctx, "alice", "bob", "  hello there \n")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Content != "hello there" {
		t.Fatalf("stored content = %q, want trimmed", sent.Content)
	}
	log, err := svc.Between(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("between: %v", err)
	}
	if len(log) != 1 || log[0].Content != "hello there" {
		t.Fatalf("unexpected conversation %+v", log)
	}
}

func TestService_ConversationOrder(t *testing.T) {
	clock := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	ids := 0
	svc := messaging.NewService(memstore.NewMessages(), zap.NewNop()).
		WithClock(func() time.Time { return clock }).
		WithIDGenerator(func() string { ids++; return "m" + string(rune('0'+ids)) })
	ctx := context.Background()

	mustSend := func(from, to domain.Identity, content string) {
		t.Helper()
		if _, err := svc.Send(ctx, from, to, content); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	mustSend("alice", "bob", "first")
	mustSend("bob", "alice", "second")
	clock = clock.Add(time.Second)
	mustSend("alice", "bob", "third")
	mustSend("alice", "carol", "elsewhere")

	conv, err := svc.Between(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("between: %v", err)
	}
	got := make([]string, len(conv))
	for i, m := range conv {
		got[i] = m.Content
	}
	if strings.Join(got, ",") != "first,second,third" {
		t.Fatalf("unexpected order %v", got)
	}
	if conv[0].ID != "m1" {
		t.Fatalf("expected generated id m1, got %s", conv[0].ID)
	}

	if _, err := svc.Between(ctx, "", "alice"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
