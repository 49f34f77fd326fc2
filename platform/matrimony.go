package platform

import (
	"context"

	"jobmatrimony/access"
	"jobmatrimony/domain"
	"jobmatrimony/events"
	"jobmatrimony/matrimony"
)

func (s *Service) SendInterest(ctx context.Context, caller, recipient domain.Identity) (matrimony.Interest, error) {
	in, err := call(ctx, s, caller, access.OpSendInterest, exclusive, func(access.Role) (matrimony.Interest, error) {
		return s.matrimony.SendInterest(ctx, caller, recipient)
	})
	if err != nil {
		return matrimony.Interest{}, err
	}
	s.emit(ctx, events.New(events.TypeInterestSent, caller, in.CreatedAt, map[string]any{
		"interestId": in.ID,
		"recipient":  in.Recipient.String(),
	}))
	return in, nil
}

// AcceptInterest accepts a pending interest addressed to the caller and
// matches the pair unless it is already matched.
func (s *Service) AcceptInterest(ctx context.Context, caller domain.Identity, id int64) (matrimony.AcceptResult, error) {
	res, err := call(ctx, s, caller, access.OpAcceptInterest, exclusive, func(access.Role) (matrimony.AcceptResult, error) {
		return s.matrimony.AcceptInterest(ctx, caller, id)
	})
	if err != nil {
		return matrimony.AcceptResult{}, err
	}

	at := s.now()
	if res.Interest.RespondedAt != nil {
		at = *res.Interest.RespondedAt
	}
	evs := []events.Event{events.New(events.TypeInterestAccepted, caller, at, map[string]any{
		"interestId": res.Interest.ID,
		"sender":     res.Interest.Sender.String(),
	})}
	if res.MatchCreated {
		evs = append(evs, matchCreated(caller, res.Match))
	}
	s.emit(ctx, evs...)
	return res, nil
}

func (s *Service) RejectInterest(ctx context.Context, caller domain.Identity, id int64) (matrimony.Interest, error) {
	in, err := call(ctx, s, caller, access.OpRejectInterest, exclusive, func(access.Role) (matrimony.Interest, error) {
		return s.matrimony.RejectInterest(ctx, caller, id)
	})
	if err != nil {
		return matrimony.Interest{}, err
	}
	at := s.now()
	if in.RespondedAt != nil {
		at = *in.RespondedAt
	}
	s.emit(ctx, events.New(events.TypeInterestRejected, caller, at, map[string]any{
		"interestId": in.ID,
		"sender":     in.Sender.String(),
	}))
	return in, nil
}

func (s *Service) GetCallerSentInterests(ctx context.Context, caller domain.Identity) ([]matrimony.Interest, error) {
	return call(ctx, s, caller, access.OpListInterests, shared, func(access.Role) ([]matrimony.Interest, error) {
		return s.matrimony.Sent(ctx, caller)
	})
}

func (s *Service) GetCallerReceivedInterests(ctx context.Context, caller domain.Identity) ([]matrimony.Interest, error) {
	return call(ctx, s, caller, access.OpListInterests, shared, func(access.Role) ([]matrimony.Interest, error) {
		return s.matrimony.Received(ctx, caller)
	})
}

func (s *Service) GetCallerMatches(ctx context.Context, caller domain.Identity) ([]matrimony.Match, error) {
	return call(ctx, s, caller, access.OpListMatches, shared, func(access.Role) ([]matrimony.Match, error) {
		return s.matrimony.Matches(ctx, caller)
	})
}

// SaveMatch records a match between the caller and other with the caller's
// score.
func (s *Service) SaveMatch(ctx context.Context, caller, other domain.Identity, score int) (matrimony.Match, error) {
	m, err := call(ctx, s, caller, access.OpSaveMatch, exclusive, func(access.Role) (matrimony.Match, error) {
		return s.matrimony.SaveMatch(ctx, caller, other, score)
	})
	if err != nil {
		return matrimony.Match{}, err
	}
	s.emit(ctx, matchCreated(caller, m))
	return m, nil
}

func matchCreated(actor domain.Identity, m matrimony.Match) events.Event {
	return events.New(events.TypeMatchCreated, actor, m.CreatedAt, map[string]any{
		"matchId": m.ID,
		"user1":   m.User1.String(),
		"user2":   m.User2.String(),
		"score":   m.CompatibilityScore,
	})
}
