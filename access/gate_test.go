package access

import (
	"context"
	"errors"
	"sort"
	"testing"

	"go.uber.org/zap"

	"jobmatrimony/domain"
)

func TestGate_InitializeIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	gate := NewGate(repo, nil, zap.NewNop())
	ctx := context.Background()

	role, err := gate.Initialize(ctx, "alice")
	if err != nil {
		t.Fatalf("initialize: unexpected error: %v", err)
	}
	if role != RoleUser {
		t.Fatalf("initialize: expected %s got %s", RoleUser, role)
	}

	if err := gate.Assign(ctx, "alice", RoleAdmin); err != nil {
		t.Fatalf("assign: %v", err)
	}

	role, err = gate.Initialize(ctx, "alice")
	if err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("second initialize must keep existing role, got %s", role)
	}
}

func TestGate_InitializeBootstrapAdmin(t *testing.T) {
	gate := NewGate(newFakeRepository(), []string{" root ", ""}, zap.NewNop())

	role, err := gate.Initialize(context.Background(), "root")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("expected bootstrap identity to become admin, got %s", role)
	}
}

func TestGate_InitializeRejectsAnonymous(t *testing.T) {
	gate := NewGate(newFakeRepository(), nil, zap.NewNop())

	if _, err := gate.Initialize(context.Background(), domain.Anonymous); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := gate.Authorize(context.Background(), domain.Anonymous, OpInitialize); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for anonymous initialize, got %v", err)
	}
}

func TestGate_AuthorizeByRole(t *testing.T) {
	repo := newFakeRepository()
	repo.roles["admin"] = RoleAdmin
	repo.roles["user"] = RoleUser
	gate := NewGate(repo, nil, zap.NewNop())
	ctx := context.Background()

	cases := []struct {
		name    string
		id      domain.Identity
		op      Operation
		allowed bool
	}{
		{"guest lists listings", "", OpListListings, true},
		{"unassigned reads caller role", "stranger", OpGetCallerRole, true},
		{"unassigned cannot save profile", "stranger", OpSaveProfile, false},
		{"anonymous cannot send interest", "", OpSendInterest, false},
		{"user sends interest", "user", OpSendInterest, true},
		{"user cannot create listing", "user", OpCreateListing, false},
		{"user cannot assign role", "user", OpAssignRole, false},
		{"admin creates listing", "admin", OpCreateListing, true},
		{"admin sends interest", "admin", OpSendInterest, true},
		{"admin deletes user", "admin", OpDeleteUser, true},
		{"unknown operation", "admin", Operation("drop_tables"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gate.Authorize(ctx, tc.id, tc.op)
			if tc.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tc.allowed && !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestGate_RoleOfDefaultsToGuest(t *testing.T) {
	gate := NewGate(newFakeRepository(), nil, zap.NewNop())

	role, err := gate.RoleOf(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("role of: %v", err)
	}
	if role != RoleGuest {
		t.Fatalf("expected guest got %s", role)
	}

	admin, err := gate.IsAdmin(context.Background(), "nobody")
	if err != nil || admin {
		t.Fatalf("expected non-admin without error, got %v %v", admin, err)
	}
}

func TestGate_AssignValidation(t *testing.T) {
	gate := NewGate(newFakeRepository(), nil, zap.NewNop())
	ctx := context.Background()

	if err := gate.Assign(ctx, "", RoleUser); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty target, got %v", err)
	}
	if err := gate.Assign(ctx, "bob", Role("owner")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown role, got %v", err)
	}
	if err := gate.Assign(ctx, "bob", RoleGuest); err != nil {
		t.Fatalf("assign guest: %v", err)
	}
	if err := gate.Assign(ctx, "bob", RoleAdmin); err != nil {
		t.Fatalf("assign admin: %v", err)
	}
	role, _ := gate.RoleOf(ctx, "bob")
	if role != RoleAdmin {
		t.Fatalf("assignment must overwrite, got %s", role)
	}
}

func TestGate_IdentitiesAndRemove(t *testing.T) {
	gate := NewGate(newFakeRepository(), nil, zap.NewNop())
	ctx := context.Background()

	for _, id := range []domain.Identity{"carol", "alice", "bob"} {
		if _, err := gate.Initialize(ctx, id); err != nil {
			t.Fatalf("initialize %s: %v", id, err)
		}
	}
	if err := gate.Remove(ctx, "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := gate.Remove(ctx, "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}

	ids, err := gate.Identities(ctx)
	if err != nil {
		t.Fatalf("identities: %v", err)
	}
	if len(ids) != 2 || ids[0] != "alice" || ids[1] != "carol" {
		t.Fatalf("unexpected identities %v", ids)
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Admin ")
	if err != nil || role != RoleAdmin {
		t.Fatalf("expected admin, got %q %v", role, err)
	}
	if _, err := ParseRole("superuser"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

type fakeRepository struct {
	roles map[domain.Identity]Role
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{roles: make(map[domain.Identity]Role)}
}

func (f *fakeRepository) GetRole(ctx context.Context, id domain.Identity) (Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return "", ErrRoleNotFound
	}
	return role, nil
}

func (f *fakeRepository) InsertRoleIfAbsent(ctx context.Context, id domain.Identity, role Role) (Role, bool, error) {
	if current, ok := f.roles[id]; ok {
		return current, false, nil
	}
	f.roles[id] = role
	return role, true, nil
}

func (f *fakeRepository) SetRole(ctx context.Context, id domain.Identity, role Role) error {
	f.roles[id] = role
	return nil
}

func (f *fakeRepository) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	out := make([]domain.Identity, 0, len(f.roles))
	for id := range f.roles {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeRepository) DeleteRole(ctx context.Context, id domain.Identity) error {
	if _, ok := f.roles[id]; !ok {
		return ErrRoleNotFound
	}
	delete(f.roles, id)
	return nil
}
