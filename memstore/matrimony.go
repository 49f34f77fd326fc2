package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobmatrimony/domain"
	"jobmatrimony/matrimony"
)

type pairKey struct {
	a, b domain.Identity
}

// Matrimony keeps interests and matches under one lock so accepting an
// interest and creating its match are a single step.
type Matrimony struct {
	mu           sync.RWMutex
	interests    map[int64]matrimony.Interest
	matches      map[pairKey]matrimony.Match
	nextInterest int64
	nextMatch    int64
}

func NewMatrimony() *Matrimony {
	return &Matrimony{
		interests: make(map[int64]matrimony.Interest),
		matches:   make(map[pairKey]matrimony.Match),
	}
}

func canonical(a, b domain.Identity) pairKey {
	u1, u2 := domain.Pair(a, b)
	return pairKey{a: u1, b: u2}
}

func (m *Matrimony) CreateInterest(_ context.Context, in matrimony.Interest) (matrimony.Interest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.interests {
		if existing.Sender == in.Sender && existing.Recipient == in.Recipient && existing.Status == matrimony.InterestPending {
			return matrimony.Interest{}, matrimony.ErrDuplicateInterest
		}
	}
	m.nextInterest++
	in.ID = m.nextInterest
	m.interests[in.ID] = in
	return in, nil
}

func (m *Matrimony) GetInterest(_ context.Context, id int64) (matrimony.Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.interests[id]
	if !ok {
		return matrimony.Interest{}, matrimony.ErrInterestNotFound
	}
	return in, nil
}

func (m *Matrimony) AcceptInterest(_ context.Context, id int64, actor domain.Identity, score int, at time.Time) (matrimony.AcceptResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, err := m.respondLocked(id, actor, matrimony.InterestAccepted, at)
	if err != nil {
		return matrimony.AcceptResult{}, err
	}

	res := matrimony.AcceptResult{Interest: in}
	key := canonical(in.Sender, in.Recipient)
	if existing, ok := m.matches[key]; ok {
		res.Match = existing
		return res, nil
	}
	res.Match = m.insertMatchLocked(matrimony.NewMatch(in.Sender, in.Recipient, score, at))
	res.MatchCreated = true
	return res, nil
}

func (m *Matrimony) RejectInterest(_ context.Context, id int64, actor domain.Identity, at time.Time) (matrimony.Interest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.respondLocked(id, actor, matrimony.InterestRejected, at)
}

func (m *Matrimony) InterestsSentBy(_ context.Context, id domain.Identity) ([]matrimony.Interest, error) {
	return m.filterInterests(func(in matrimony.Interest) bool { return in.Sender == id }), nil
}

func (m *Matrimony) InterestsReceivedBy(_ context.Context, id domain.Identity) ([]matrimony.Interest, error) {
	return m.filterInterests(func(in matrimony.Interest) bool { return in.Recipient == id }), nil
}

func (m *Matrimony) CreateMatch(_ context.Context, match matrimony.Match) (matrimony.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[canonical(match.User1, match.User2)]; ok {
		return matrimony.Match{}, matrimony.ErrMatchExists
	}
	return m.insertMatchLocked(matrimony.NewMatch(match.User1, match.User2, match.CompatibilityScore, match.CreatedAt)), nil
}

func (m *Matrimony) MatchesOf(_ context.Context, id domain.Identity) ([]matrimony.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]matrimony.Match, 0, 4)
	for _, match := range m.matches {
		if match.Involves(id) {
			out = append(out, match)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Matrimony) DeleteIdentity(_ context.Context, id domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for iid, in := range m.interests {
		if in.Sender == id || in.Recipient == id {
			delete(m.interests, iid)
		}
	}
	for key, match := range m.matches {
		if match.Involves(id) {
			delete(m.matches, key)
		}
	}
	return nil
}

func (m *Matrimony) respondLocked(id int64, actor domain.Identity, status matrimony.InterestStatus, at time.Time) (matrimony.Interest, error) {
	in, ok := m.interests[id]
	if !ok {
		return matrimony.Interest{}, matrimony.ErrInterestNotFound
	}
	if err := matrimony.CheckRespond(in, actor); err != nil {
		return matrimony.Interest{}, err
	}
	in.Status = status
	in.RespondedAt = &at
	m.interests[id] = in
	return in, nil
}

func (m *Matrimony) insertMatchLocked(match matrimony.Match) matrimony.Match {
	m.nextMatch++
	match.ID = m.nextMatch
	m.matches[canonical(match.User1, match.User2)] = match
	return match
}

func (m *Matrimony) filterInterests(keep func(matrimony.Interest) bool) []matrimony.Interest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]matrimony.Interest, 0, 8)
	for _, in := range m.interests {
		if keep(in) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
