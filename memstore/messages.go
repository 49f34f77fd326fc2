package memstore

import (
	"context"
	"sort"
	"sync"

	"jobmatrimony/domain"
	"jobmatrimony/messaging"
)

// Messages is an append-only log indexed by unordered pair.
type Messages struct {
	mu     sync.RWMutex
	byPair map[pairKey][]messaging.Message
	seq    int64
}

func NewMessages() *Messages {
	return &Messages{byPair: make(map[pairKey][]messaging.Message)}
}

func (r *Messages) Append(_ context.Context, m messaging.Message) (messaging.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.Seq = r.seq
	key := canonical(m.From, m.To)
	r.byPair[key] = append(r.byPair[key], m)
	return m, nil
}

func (r *Messages) ListBetween(_ context.Context, a, b domain.Identity) ([]messaging.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byPair[canonical(a, b)]
	out := make([]messaging.Message, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool { return messaging.Less(out[i], out[j]) })
	return out, nil
}
