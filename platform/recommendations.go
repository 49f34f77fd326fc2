package platform

import (
	"context"
	"errors"

	"jobmatrimony/access"
	"jobmatrimony/domain"
	"jobmatrimony/profile"
	"jobmatrimony/recommend"
)

// snapshot captures everything a recommendation for caller depends on. It
// runs under the shared lock, so it never observes half of a write. Ranking
// happens after the lock is released.
func (s *Service) snapshot(ctx context.Context, caller domain.Identity) (recommend.Snapshot, error) {
	return call(ctx, s, caller, access.OpRecommend, shared, func(access.Role) (recommend.Snapshot, error) {
		snap := recommend.Snapshot{Caller: caller}

		p, err := s.profiles.Get(ctx, caller)
		switch {
		case err == nil:
			snap.Profile = p
		case errors.Is(err, domain.ErrNotFound):
			snap.Profile = profile.UserProfile{}
		default:
			return recommend.Snapshot{}, err
		}

		if snap.Listings, err = s.catalog.Listings(ctx); err != nil {
			return recommend.Snapshot{}, err
		}
		if snap.Candidates, err = s.profiles.Candidates(ctx); err != nil {
			return recommend.Snapshot{}, err
		}
		matched, err := s.matrimony.MatchedWith(ctx, caller)
		if err != nil {
			return recommend.Snapshot{}, err
		}
		snap.Matched = make([]domain.Identity, 0, len(matched))
		for id := range matched {
			snap.Matched = append(snap.Matched, id)
		}
		return snap, nil
	})
}

func (s *Service) GetRecommendedJobsForCaller(ctx context.Context, caller domain.Identity) ([]recommend.JobRecommendation, error) {
	snap, err := s.snapshot(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.engine.Jobs(ctx, snap), nil
}

func (s *Service) GetRecommendedMatchesForCaller(ctx context.Context, caller domain.Identity) ([]recommend.MatrimonialRecommendation, error) {
	snap, err := s.snapshot(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.engine.Matches(ctx, snap), nil
}

func (s *Service) GetRecommendationsForCaller(ctx context.Context, caller domain.Identity) (recommend.Result, error) {
	snap, err := s.snapshot(ctx, caller)
	if err != nil {
		return recommend.Result{}, err
	}
	return s.engine.Recommend(ctx, snap), nil
}
