package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jobmatrimony/domain"
)

var (
	// ErrForbidden signals a caller below the role an operation requires.
	ErrForbidden = fmt.Errorf("access: caller lacks required role: %w", domain.ErrUnauthorized)
	// ErrAnonymous signals an operation that needs a known identity.
	ErrAnonymous = fmt.Errorf("access: anonymous caller: %w", domain.ErrUnauthorized)
	// ErrUnknownOperation is returned for operations absent from the policy table.
	ErrUnknownOperation = fmt.Errorf("access: unknown operation: %w", domain.ErrUnauthorized)
)

// Gate answers "may identity X perform operation Y" and owns role state.
type Gate struct {
	repo      Repository
	bootstrap map[domain.Identity]struct{}
	logger    *zap.Logger
}

// NewGate creates a gate over repo. Identities in bootstrapAdmins receive
// admin instead of user on their first initialization.
func NewGate(repo Repository, bootstrapAdmins []string, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	bootstrap := make(map[domain.Identity]struct{}, len(bootstrapAdmins))
	for _, id := range bootstrapAdmins {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		bootstrap[domain.Identity(id)] = struct{}{}
	}
	return &Gate{
		repo:      repo,
		bootstrap: bootstrap,
		logger:    logger.Named("access"),
	}
}

// Authorize returns the caller's effective role, or ErrForbidden when that
// role is below what op requires.
func (g *Gate) Authorize(ctx context.Context, id domain.Identity, op Operation) (Role, error) {
	required, ok := Required(op)
	if !ok {
		return "", ErrUnknownOperation
	}
	if op == OpInitialize && id.IsAnonymous() {
		return "", ErrAnonymous
	}

	role, err := g.RoleOf(ctx, id)
	if err != nil {
		return "", err
	}
	if !role.AtLeast(required) {
		g.logger.Debug("operation denied",
			zap.String("identity", id.String()),
			zap.String("operation", string(op)),
			zap.String("role", string(role)),
			zap.String("required", string(required)),
		)
		return role, ErrForbidden
	}
	return role, nil
}

// RoleOf returns the assigned role, or guest for anonymous and unassigned
// identities.
func (g *Gate) RoleOf(ctx context.Context, id domain.Identity) (Role, error) {
	if id.IsAnonymous() {
		return RoleGuest, nil
	}
	role, err := g.repo.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return RoleGuest, nil
		}
		return "", err
	}
	return role, nil
}

// Known reports whether id holds an assigned role.
func (g *Gate) Known(ctx context.Context, id domain.Identity) (bool, error) {
	if id.IsAnonymous() {
		return false, nil
	}
	if _, err := g.repo.GetRole(ctx, id); err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsAdmin reports whether id currently holds the admin role.
func (g *Gate) IsAdmin(ctx context.Context, id domain.Identity) (bool, error) {
	role, err := g.RoleOf(ctx, id)
	if err != nil {
		return false, err
	}
	return role == RoleAdmin, nil
}

// Initialize grants the default role on first contact. Repeated calls leave
// the existing role untouched and return it.
func (g *Gate) Initialize(ctx context.Context, id domain.Identity) (Role, error) {
	if id.IsAnonymous() {
		return "", ErrAnonymous
	}

	grant := RoleUser
	if _, ok := g.bootstrap[id]; ok {
		grant = RoleAdmin
	}

	role, created, err := g.repo.InsertRoleIfAbsent(ctx, id, grant)
	if err != nil {
		return "", err
	}
	if created {
		g.logger.Info("identity initialized",
			zap.String("identity", id.String()),
			zap.String("role", string(role)),
		)
	}
	return role, nil
}

// Assign overwrites the role of target.
func (g *Gate) Assign(ctx context.Context, target domain.Identity, role Role) error {
	if target.IsAnonymous() {
		return fmt.Errorf("access: target identity required: %w", domain.ErrInvalidInput)
	}
	if !isValidRole(role) {
		return fmt.Errorf("access: invalid role %q: %w", role, domain.ErrInvalidInput)
	}
	if err := g.repo.SetRole(ctx, target, role); err != nil {
		return err
	}
	g.logger.Info("role assigned",
		zap.String("identity", target.String()),
		zap.String("role", string(role)),
	)
	return nil
}

// Identities lists every identity holding a role.
func (g *Gate) Identities(ctx context.Context) ([]domain.Identity, error) {
	return g.repo.ListIdentities(ctx)
}

// Remove drops the role of id so it reverts to guest.
func (g *Gate) Remove(ctx context.Context, id domain.Identity) error {
	return g.repo.DeleteRole(ctx, id)
}
