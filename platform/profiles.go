package platform

import (
	"context"

	"jobmatrimony/access"
	"jobmatrimony/domain"
	"jobmatrimony/profile"
)

// SaveCallerUserProfile replaces the caller's whole profile.
func (s *Service) SaveCallerUserProfile(ctx context.Context, caller domain.Identity, p profile.UserProfile) error {
	return exec(ctx, s, caller, access.OpSaveProfile, exclusive, func(access.Role) error {
		return s.profiles.Save(ctx, caller, p)
	})
}

func (s *Service) GetCallerUserProfile(ctx context.Context, caller domain.Identity) (profile.UserProfile, error) {
	return call(ctx, s, caller, access.OpGetProfile, shared, func(access.Role) (profile.UserProfile, error) {
		return s.profiles.Get(ctx, caller)
	})
}

func (s *Service) GetUserProfile(ctx context.Context, caller, target domain.Identity) (profile.UserProfile, error) {
	return call(ctx, s, caller, access.OpGetOtherProfile, shared, func(access.Role) (profile.UserProfile, error) {
		return s.profiles.Get(ctx, target)
	})
}

func (s *Service) GetJobProfile(ctx context.Context, caller, target domain.Identity) (profile.JobProfile, error) {
	return call(ctx, s, caller, access.OpGetOtherProfile, shared, func(access.Role) (profile.JobProfile, error) {
		return s.profiles.Job(ctx, target)
	})
}

func (s *Service) GetMatrimonialProfile(ctx context.Context, caller, target domain.Identity) (profile.MatrimonialProfile, error) {
	return call(ctx, s, caller, access.OpGetOtherProfile, shared, func(access.Role) (profile.MatrimonialProfile, error) {
		return s.profiles.Matrimonial(ctx, target)
	})
}

// CreateOrUpdateJobProfile replaces the caller's job sub-profile.
func (s *Service) CreateOrUpdateJobProfile(ctx context.Context, caller domain.Identity, p profile.JobProfile) error {
	return exec(ctx, s, caller, access.OpPutJobProfile, exclusive, func(access.Role) error {
		return s.profiles.SaveJob(ctx, caller, p)
	})
}

// CreateOrUpdateMatrimonialProfile replaces the caller's matrimonial sub-profile.
func (s *Service) CreateOrUpdateMatrimonialProfile(ctx context.Context, caller domain.Identity, p profile.MatrimonialProfile) error {
	return exec(ctx, s, caller, access.OpPutMatrimonial, exclusive, func(access.Role) error {
		return s.profiles.SaveMatrimonial(ctx, caller, p)
	})
}
