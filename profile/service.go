package profile

import (
	"context"

	"go.uber.org/zap"

	"jobmatrimony/domain"
)

// Service validates profiles before they reach the repository, so readers
// such as the recommendation engine never observe an inverted range.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService builds a Service using the provided repository.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("profile")}
}

// Get returns the full profile of id.
func (s *Service) Get(ctx context.Context, id domain.Identity) (UserProfile, error) {
	return s.repo.Get(ctx, id)
}

// Job returns the job sub-profile of id.
func (s *Service) Job(ctx context.Context, id domain.Identity) (JobProfile, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return JobProfile{}, err
	}
	if p.Job == nil {
		return JobProfile{}, ErrJobProfileNotFound
	}
	return *p.Job, nil
}

// Matrimonial returns the matrimonial sub-profile of id.
func (s *Service) Matrimonial(ctx context.Context, id domain.Identity) (MatrimonialProfile, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return MatrimonialProfile{}, err
	}
	if p.Matrimonial == nil {
		return MatrimonialProfile{}, ErrMatrimonialProfileNotFound
	}
	return *p.Matrimonial, nil
}

// HasMatrimonial reports whether id owns a matrimonial profile.
func (s *Service) HasMatrimonial(ctx context.Context, id domain.Identity) (bool, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if domain.Kind(err) == domain.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return p.Matrimonial != nil, nil
}

// Save replaces the whole profile of id.
func (s *Service) Save(ctx context.Context, id domain.Identity, p UserProfile) error {
	if err := Validate(&p); err != nil {
		return err
	}
	if err := s.repo.Put(ctx, id, p); err != nil {
		return err
	}
	s.logger.Info("profile saved",
		zap.String("identity", id.String()),
		zap.Bool("job", p.Job != nil),
		zap.Bool("matrimonial", p.Matrimonial != nil),
	)
	return nil
}

// SaveJob replaces the job sub-profile, leaving the matrimonial one intact.
func (s *Service) SaveJob(ctx context.Context, id domain.Identity, p JobProfile) error {
	if err := ValidateJob(&p); err != nil {
		return err
	}
	if err := s.repo.PutJob(ctx, id, p); err != nil {
		return err
	}
	s.logger.Info("job profile saved", zap.String("identity", id.String()))
	return nil
}

// SaveMatrimonial replaces the matrimonial sub-profile.
func (s *Service) SaveMatrimonial(ctx context.Context, id domain.Identity, p MatrimonialProfile) error {
	if err := ValidateMatrimonial(&p); err != nil {
		return err
	}
	if err := s.repo.PutMatrimonial(ctx, id, p); err != nil {
		return err
	}
	s.logger.Info("matrimonial profile saved", zap.String("identity", id.String()))
	return nil
}

// Candidates lists every matrimonial profile.
func (s *Service) Candidates(ctx context.Context) ([]Candidate, error) {
	return s.repo.ListMatrimonial(ctx)
}

// Delete drops every profile of id.
func (s *Service) Delete(ctx context.Context, id domain.Identity) error {
	return s.repo.Delete(ctx, id)
}
