package platform

import (
	"context"

	"go.uber.org/zap"

	"jobmatrimony/access"
	"jobmatrimony/domain"
)

// InitializeAccessControl grants the caller its default role on first
// contact and returns the role it now holds.
func (s *Service) InitializeAccessControl(ctx context.Context, caller domain.Identity) (access.Role, error) {
	return call(ctx, s, caller, access.OpInitialize, exclusive, func(access.Role) (access.Role, error) {
		return s.gate.Initialize(ctx, caller)
	})
}

// AssignCallerUserRole overwrites the role of target.
func (s *Service) AssignCallerUserRole(ctx context.Context, caller, target domain.Identity, role string) error {
	return exec(ctx, s, caller, access.OpAssignRole, exclusive, func(access.Role) error {
		parsed, err := access.ParseRole(role)
		if err != nil {
			return err
		}
		return s.gate.Assign(ctx, target, parsed)
	})
}

func (s *Service) GetCallerUserRole(ctx context.Context, caller domain.Identity) (access.Role, error) {
	return call(ctx, s, caller, access.OpGetCallerRole, shared, func(role access.Role) (access.Role, error) {
		return role, nil
	})
}

func (s *Service) IsCallerAdmin(ctx context.Context, caller domain.Identity) (bool, error) {
	return call(ctx, s, caller, access.OpIsCallerAdmin, shared, func(role access.Role) (bool, error) {
		return role == access.RoleAdmin, nil
	})
}

// Authorize checks that caller may run op without running it. Transports
// call it before reading a request body so rejected callers never see
// input validation errors.
func (s *Service) Authorize(ctx context.Context, caller domain.Identity, op access.Operation) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.gate.Authorize(ctx, caller, op)
	return err
}

// GetAllUsers lists every identity holding a role.
func (s *Service) GetAllUsers(ctx context.Context, caller domain.Identity) ([]domain.Identity, error) {
	return call(ctx, s, caller, access.OpListUsers, shared, func(access.Role) ([]domain.Identity, error) {
		return s.gate.Identities(ctx)
	})
}

// DeleteUser removes target's role, profiles, applications, interests and
// matches. Messages are kept. Unknown identities fail with NotFound before
// anything is removed.
func (s *Service) DeleteUser(ctx context.Context, caller, target domain.Identity) error {
	return exec(ctx, s, caller, access.OpDeleteUser, exclusive, func(access.Role) error {
		if err := s.purge(ctx, target); err != nil {
			return err
		}
		s.logger.Info("user deleted",
			zap.String("identity", target.String()),
			zap.String("by", caller.String()),
		)
		return nil
	})
}

func (s *Service) purge(ctx context.Context, target domain.Identity) error {
	if s.purger != nil {
		return s.purger.PurgeIdentity(ctx, target)
	}

	known, err := s.gate.Known(ctx, target)
	if err != nil {
		return err
	}
	if !known {
		return access.ErrRoleNotFound
	}
	// Every step below is idempotent and the role goes last, so an
	// interrupted delete leaves target listed and a retry finishes it.
	if err := s.profiles.Delete(ctx, target); err != nil {
		return err
	}
	if err := s.catalog.RemoveApplicant(ctx, target); err != nil {
		return err
	}
	if err := s.matrimony.RemoveIdentity(ctx, target); err != nil {
		return err
	}
	return s.gate.Remove(ctx, target)
}
