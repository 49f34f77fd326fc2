package memstore

import (
	"context"
	"sort"
	"sync"

	"jobmatrimony/domain"
	"jobmatrimony/profile"
)

// Profiles stores deep copies so callers can never alias stored state.
type Profiles struct {
	mu       sync.RWMutex
	profiles map[domain.Identity]profile.UserProfile
}

func NewProfiles() *Profiles {
	return &Profiles{profiles: make(map[domain.Identity]profile.UserProfile)}
}

func (r *Profiles) Get(_ context.Context, id domain.Identity) (profile.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok || p.Empty() {
		return profile.UserProfile{}, profile.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *Profiles) Put(_ context.Context, id domain.Identity, p profile.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[id] = cloneProfile(p)
	return nil
}

func (r *Profiles) PutJob(_ context.Context, id domain.Identity, p profile.JobProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.profiles[id]
	current.Job = cloneJob(&p)
	r.profiles[id] = current
	return nil
}

func (r *Profiles) PutMatrimonial(_ context.Context, id domain.Identity, p profile.MatrimonialProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.profiles[id]
	current.Matrimonial = cloneMatrimonial(&p)
	r.profiles[id] = current
	return nil
}

func (r *Profiles) ListMatrimonial(context.Context) ([]profile.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]profile.Candidate, 0, len(r.profiles))
	for id, p := range r.profiles {
		if p.Matrimonial == nil {
			continue
		}
		out = append(out, profile.Candidate{Identity: id, Profile: *cloneMatrimonial(p.Matrimonial)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out, nil
}

func (r *Profiles) Delete(_ context.Context, id domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, id)
	return nil
}

func cloneProfile(p profile.UserProfile) profile.UserProfile {
	return profile.UserProfile{Job: cloneJob(p.Job), Matrimonial: cloneMatrimonial(p.Matrimonial)}
}

func cloneJob(p *profile.JobProfile) *profile.JobProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Resume = cloneBlob(p.Resume)
	return &c
}

func cloneMatrimonial(p *profile.MatrimonialProfile) *profile.MatrimonialProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Picture = cloneBlob(p.Picture)
	return &c
}

func cloneBlob(b *domain.BlobRef) *domain.BlobRef {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
