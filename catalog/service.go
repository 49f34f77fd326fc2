package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobmatrimony/domain"
)

// Service validates catalog writes and stamps application dates.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger.Named("catalog"),
		now:    time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateListing stores l under a fresh id, ignoring l.ID.
func (s *Service) CreateListing(ctx context.Context, l Listing) (Listing, error) {
	if err := ValidateListing(&l); err != nil {
		return Listing{}, err
	}
	l.ID = 0
	created, err := s.repo.CreateListing(ctx, l)
	if err != nil {
		return Listing{}, err
	}
	s.logger.Info("listing created", zap.Int64("job_id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// UpdateListing replaces the listing stored under id.
func (s *Service) UpdateListing(ctx context.Context, id int64, l Listing) (Listing, error) {
	if err := ValidateListing(&l); err != nil {
		return Listing{}, err
	}
	l.ID = id
	updated, err := s.repo.UpdateListing(ctx, l)
	if err != nil {
		return Listing{}, err
	}
	s.logger.Info("listing updated", zap.Int64("job_id", id))
	return updated, nil
}

// DeleteListing removes the listing and its applications.
func (s *Service) DeleteListing(ctx context.Context, id int64) error {
	if err := s.repo.DeleteListing(ctx, id); err != nil {
		return err
	}
	s.logger.Info("listing deleted", zap.Int64("job_id", id))
	return nil
}

func (s *Service) Listing(ctx context.Context, id int64) (Listing, error) {
	return s.repo.GetListing(ctx, id)
}

// Listings returns every listing ordered by id.
func (s *Service) Listings(ctx context.Context) ([]Listing, error) {
	return s.repo.ListListings(ctx)
}

// Apply records a submitted application of applicant to jobID.
func (s *Service) Apply(ctx context.Context, applicant domain.Identity, jobID int64) (Application, error) {
	if applicant.IsAnonymous() {
		return Application{}, fmt.Errorf("catalog: applicant required: %w", domain.ErrInvalidInput)
	}
	app, err := s.repo.CreateApplication(ctx, Application{
		JobID:       jobID,
		Applicant:   applicant,
		Status:      StatusSubmitted,
		DateApplied: s.now().UTC(),
	})
	if err != nil {
		return Application{}, err
	}
	s.logger.Info("application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("job_id", jobID),
		zap.String("applicant", applicant.String()),
	)
	return app, nil
}

func (s *Service) ApplicationsByApplicant(ctx context.Context, applicant domain.Identity) ([]Application, error) {
	return s.repo.ApplicationsByApplicant(ctx, applicant)
}

// ApplicationsByJob fails with ErrListingNotFound for unknown listings.
func (s *Service) ApplicationsByJob(ctx context.Context, jobID int64) ([]Application, error) {
	if _, err := s.repo.GetListing(ctx, jobID); err != nil {
		return nil, err
	}
	return s.repo.ApplicationsByJob(ctx, jobID)
}

// UpdateApplicationStatus parses status and applies the transition.
func (s *Service) UpdateApplicationStatus(ctx context.Context, id int64, status string) (Application, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return Application{}, err
	}
	app, err := s.repo.TransitionApplication(ctx, id, next)
	if err != nil {
		return Application{}, err
	}
	s.logger.Info("application status changed",
		zap.Int64("application_id", id),
		zap.String("status", string(next)),
	)
	return app, nil
}

// RemoveApplicant drops every application made by applicant.
func (s *Service) RemoveApplicant(ctx context.Context, applicant domain.Identity) error {
	return s.repo.DeleteApplicationsByApplicant(ctx, applicant)
}
