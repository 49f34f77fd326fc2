package matrimony

import (
	"context"
	"time"

	"go.uber.org/zap"

	"jobmatrimony/domain"
)

// ProfileChecker reports whether an identity can receive interests.
type ProfileChecker interface {
	HasMatrimonial(ctx context.Context, id domain.Identity) (bool, error)
}

// Scorer computes the compatibility score stored on a match created by an
// accepted interest.
type Scorer func(ctx context.Context, a, b domain.Identity) (int, error)

// Service drives the interest to match state machine.
type Service struct {
	repo     Repository
	profiles ProfileChecker
	scorer   Scorer
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, profiles ProfileChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		profiles: profiles,
		scorer:   func(context.Context, domain.Identity, domain.Identity) (int, error) { return 0, nil },
		logger:   logger.Named("matrimony"),
		now:      time.Now,
	}
}

func (s *Service) WithScorer(scorer Scorer) *Service {
	s.scorer = scorer
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SendInterest creates a pending interest from sender to recipient.
func (s *Service) SendInterest(ctx context.Context, sender, recipient domain.Identity) (Interest, error) {
	if recipient.IsAnonymous() {
		return Interest{}, ErrRecipientRequired
	}
	if sender == recipient {
		return Interest{}, ErrSelfInterest
	}
	ok, err := s.profiles.HasMatrimonial(ctx, recipient)
	if err != nil {
		return Interest{}, err
	}
	if !ok {
		return Interest{}, ErrRecipientWithoutProfile
	}

	in, err := s.repo.CreateInterest(ctx, Interest{
		Sender:    sender,
		Recipient: recipient,
		Status:    InterestPending,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return Interest{}, err
	}
	s.logger.Info("interest sent",
		zap.Int64("interest_id", in.ID),
		zap.String("sender", sender.String()),
		zap.String("recipient", recipient.String()),
	)
	return in, nil
}

// AcceptInterest accepts a pending interest addressed to actor and matches
// the pair. An existing match for the pair is kept as is.
func (s *Service) AcceptInterest(ctx context.Context, actor domain.Identity, id int64) (AcceptResult, error) {
	in, err := s.repo.GetInterest(ctx, id)
	if err != nil {
		return AcceptResult{}, err
	}
	if err := CheckRespond(in, actor); err != nil {
		return AcceptResult{}, err
	}

	score, err := s.scorer(ctx, in.Sender, in.Recipient)
	if err != nil {
		return AcceptResult{}, err
	}
	score = clampScore(score)

	res, err := s.repo.AcceptInterest(ctx, id, actor, score, s.now().UTC())
	if err != nil {
		return AcceptResult{}, err
	}
	s.logger.Info("interest accepted",
		zap.Int64("interest_id", id),
		zap.Int64("match_id", res.Match.ID),
		zap.Bool("match_created", res.MatchCreated),
		zap.Int("score", res.Match.CompatibilityScore),
	)
	return res, nil
}

// RejectInterest rejects a pending interest addressed to actor.
func (s *Service) RejectInterest(ctx context.Context, actor domain.Identity, id int64) (Interest, error) {
	in, err := s.repo.RejectInterest(ctx, id, actor, s.now().UTC())
	if err != nil {
		return Interest{}, err
	}
	s.logger.Info("interest rejected", zap.Int64("interest_id", id))
	return in, nil
}

func (s *Service) Sent(ctx context.Context, id domain.Identity) ([]Interest, error) {
	return s.repo.InterestsSentBy(ctx, id)
}

func (s *Service) Received(ctx context.Context, id domain.Identity) ([]Interest, error) {
	return s.repo.InterestsReceivedBy(ctx, id)
}

func (s *Service) Matches(ctx context.Context, id domain.Identity) ([]Match, error) {
	return s.repo.MatchesOf(ctx, id)
}

// MatchedWith returns the set of identities already matched with id.
func (s *Service) MatchedWith(ctx context.Context, id domain.Identity) (map[domain.Identity]struct{}, error) {
	matches, err := s.repo.MatchesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Identity]struct{}, len(matches))
	for _, m := range matches {
		out[m.Other(id)] = struct{}{}
	}
	return out, nil
}

// SaveMatch records a match with a caller supplied score.
func (s *Service) SaveMatch(ctx context.Context, caller, other domain.Identity, score int) (Match, error) {
	if other.IsAnonymous() || caller == other || !ValidScore(score) {
		return Match{}, ErrInvalidMatch
	}
	m, err := s.repo.CreateMatch(ctx, NewMatch(caller, other, score, s.now().UTC()))
	if err != nil {
		return Match{}, err
	}
	s.logger.Info("match saved",
		zap.Int64("match_id", m.ID),
		zap.String("user1", m.User1.String()),
		zap.String("user2", m.User2.String()),
		zap.Int("score", score),
	)
	return m, nil
}

// RemoveIdentity drops every interest and match involving id.
func (s *Service) RemoveIdentity(ctx context.Context, id domain.Identity) error {
	return s.repo.DeleteIdentity(ctx, id)
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
