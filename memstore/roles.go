// Package memstore implements every repository in process memory. It backs
// the memory store driver and the service tests; all state is lost on exit.
package memstore

import (
	"context"
	"sort"
	"sync"

	"jobmatrimony/access"
	"jobmatrimony/domain"
)

type Roles struct {
	mu    sync.RWMutex
	roles map[domain.Identity]access.Role
}

func NewRoles() *Roles {
	return &Roles{roles: make(map[domain.Identity]access.Role)}
}

func (r *Roles) GetRole(_ context.Context, id domain.Identity) (access.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[id]
	if !ok {
		return "", access.ErrRoleNotFound
	}
	return role, nil
}

func (r *Roles) InsertRoleIfAbsent(_ context.Context, id domain.Identity, role access.Role) (access.Role, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.roles[id]; ok {
		return current, false, nil
	}
	r.roles[id] = role
	return role, true, nil
}

func (r *Roles) SetRole(_ context.Context, id domain.Identity, role access.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[id] = role
	return nil
}

func (r *Roles) ListIdentities(context.Context) ([]domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Identity, 0, len(r.roles))
	for id := range r.roles {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *Roles) DeleteRole(_ context.Context, id domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return access.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}
