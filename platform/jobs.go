package platform

import (
	"context"

	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/events"
)

func (s *Service) CreateJobListing(ctx context.Context, caller domain.Identity, l catalog.Listing) (catalog.Listing, error) {
	return call(ctx, s, caller, access.OpCreateListing, exclusive, func(access.Role) (catalog.Listing, error) {
		return s.catalog.CreateListing(ctx, l)
	})
}

func (s *Service) UpdateJobListing(ctx context.Context, caller domain.Identity, id int64, l catalog.Listing) (catalog.Listing, error) {
	return call(ctx, s, caller, access.OpUpdateListing, exclusive, func(access.Role) (catalog.Listing, error) {
		return s.catalog.UpdateListing(ctx, id, l)
	})
}

// DeleteJobListing removes the listing and every application made to it.
func (s *Service) DeleteJobListing(ctx context.Context, caller domain.Identity, id int64) error {
	return exec(ctx, s, caller, access.OpDeleteListing, exclusive, func(access.Role) error {
		return s.catalog.DeleteListing(ctx, id)
	})
}

func (s *Service) GetJobListings(ctx context.Context, caller domain.Identity) ([]catalog.Listing, error) {
	return call(ctx, s, caller, access.OpListListings, shared, func(access.Role) ([]catalog.Listing, error) {
		return s.catalog.Listings(ctx)
	})
}

func (s *Service) GetJobListingByID(ctx context.Context, caller domain.Identity, id int64) (catalog.Listing, error) {
	return call(ctx, s, caller, access.OpGetListing, shared, func(access.Role) (catalog.Listing, error) {
		return s.catalog.Listing(ctx, id)
	})
}

// ApplyForJob records a submitted application of the caller to jobID.
func (s *Service) ApplyForJob(ctx context.Context, caller domain.Identity, jobID int64) (catalog.Application, error) {
	app, err := call(ctx, s, caller, access.OpApply, exclusive, func(access.Role) (catalog.Application, error) {
		return s.catalog.Apply(ctx, caller, jobID)
	})
	if err != nil {
		return catalog.Application{}, err
	}
	s.emit(ctx, events.New(events.TypeApplicationSubmitted, caller, app.DateApplied, map[string]any{
		"applicationId": app.ID,
		"jobId":         app.JobID,
	}))
	return app, nil
}

func (s *Service) GetCallerJobApplications(ctx context.Context, caller domain.Identity) ([]catalog.Application, error) {
	return call(ctx, s, caller, access.OpCallerApplications, shared, func(access.Role) ([]catalog.Application, error) {
		return s.catalog.ApplicationsByApplicant(ctx, caller)
	})
}

// GetJobApplicationsByApplicant is readable by the applicant and by admins.
func (s *Service) GetJobApplicationsByApplicant(ctx context.Context, caller, applicant domain.Identity) ([]catalog.Application, error) {
	return call(ctx, s, caller, access.OpApplicantApps, shared, func(role access.Role) ([]catalog.Application, error) {
		if caller != applicant && role != access.RoleAdmin {
			return nil, ErrNotOwner
		}
		return s.catalog.ApplicationsByApplicant(ctx, applicant)
	})
}

func (s *Service) GetJobApplicationsByJobID(ctx context.Context, caller domain.Identity, jobID int64) ([]catalog.Application, error) {
	return call(ctx, s, caller, access.OpJobApplications, shared, func(access.Role) ([]catalog.Application, error) {
		return s.catalog.ApplicationsByJob(ctx, jobID)
	})
}

func (s *Service) UpdateApplicationStatus(ctx context.Context, caller domain.Identity, id int64, status string) (catalog.Application, error) {
	return call(ctx, s, caller, access.OpUpdateAppStatus, exclusive, func(access.Role) (catalog.Application, error) {
		return s.catalog.UpdateApplicationStatus(ctx, id, status)
	})
}
