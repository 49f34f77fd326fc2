package recommend

import (
	"context"
	"encoding/json"
	"slices"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/metrics"
	"jobmatrimony/profile"
)

// Snapshot is the read-only state one recommendation call is computed from.
// Callers take it under a read lock so it never mixes two writes.
type Snapshot struct {
	Caller     domain.Identity     `json:"caller"`
	Profile    profile.UserProfile `json:"profile"`
	Listings   []catalog.Listing   `json:"listings"`
	Candidates []profile.Candidate `json:"candidates"`
	Matched    []domain.Identity   `json:"matched"`
}

func (s Snapshot) matchedSet() map[domain.Identity]struct{} {
	out := make(map[domain.Identity]struct{}, len(s.Matched))
	for _, id := range s.Matched {
		out[id] = struct{}{}
	}
	return out
}

// normalized returns a copy with sorted collections so equal states
// fingerprint identically.
func (s Snapshot) normalized() Snapshot {
	s.Listings = slices.Clone(s.Listings)
	s.Candidates = slices.Clone(s.Candidates)
	s.Matched = slices.Clone(s.Matched)
	sort.Slice(s.Listings, func(i, j int) bool { return s.Listings[i].ID < s.Listings[j].ID })
	sort.Slice(s.Candidates, func(i, j int) bool { return s.Candidates[i].Identity < s.Candidates[j].Identity })
	sort.Slice(s.Matched, func(i, j int) bool { return s.Matched[i] < s.Matched[j] })
	return s
}

const (
	kindJobs    = "jobs"
	kindMatches = "matches"
	kindAll     = "all"
)

// Engine ranks recommendations from snapshots. It never writes domain state;
// the optional cache only memoizes results.
type Engine struct {
	limit  int
	cache  Cache
	logger *zap.Logger
	tracer trace.Tracer
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger: logger.Named("recommend"),
		tracer: otel.Tracer("jobmatrimony/recommend"),
	}
}

// WithLimit truncates each ranked list to n entries; n <= 0 keeps all.
func (e *Engine) WithLimit(n int) *Engine {
	e.limit = n
	return e
}

func (e *Engine) WithCache(c Cache) *Engine {
	e.cache = c
	return e
}

// Jobs ranks the snapshot's listings for the caller's job profile.
func (e *Engine) Jobs(ctx context.Context, snap Snapshot) []JobRecommendation {
	ctx, span := e.tracer.Start(ctx, "recommend.Jobs")
	defer span.End()
	span.SetAttributes(attribute.Int("recommend.listings", len(snap.Listings)))

	return cached(ctx, e, kindJobs, snap, func() []JobRecommendation {
		return truncate(RankJobs(snap.Profile.Job, snap.Listings), e.limit)
	})
}

// Matches ranks the candidate pool for the caller's matrimonial profile.
func (e *Engine) Matches(ctx context.Context, snap Snapshot) []MatrimonialRecommendation {
	ctx, span := e.tracer.Start(ctx, "recommend.Matches")
	defer span.End()
	span.SetAttributes(attribute.Int("recommend.candidates", len(snap.Candidates)))

	return cached(ctx, e, kindMatches, snap, func() []MatrimonialRecommendation {
		return truncate(RankMatches(snap.Caller, snap.Profile.Matrimonial, snap.Candidates, snap.matchedSet()), e.limit)
	})
}

// Recommend returns both ranked lists and the flattened explanations.
func (e *Engine) Recommend(ctx context.Context, snap Snapshot) Result {
	ctx, span := e.tracer.Start(ctx, "recommend.Recommend")
	defer span.End()

	return cached(ctx, e, kindAll, snap, func() Result {
		jobs := truncate(RankJobs(snap.Profile.Job, snap.Listings), e.limit)
		matches := truncate(RankMatches(snap.Caller, snap.Profile.Matrimonial, snap.Candidates, snap.matchedSet()), e.limit)
		return Combine(jobs, matches)
	})
}

// cached consults the cache before computing. Cache failures are logged and
// the result is computed as if the cache were absent.
func cached[T any](ctx context.Context, e *Engine, kind string, snap Snapshot, compute func() T) T {
	if e.cache == nil {
		return compute()
	}

	key, err := Fingerprint(kind, e.limit, snap.normalized())
	if err != nil {
		e.logger.Warn("fingerprint failed", zap.Error(err))
		return compute()
	}
	span := trace.SpanFromContext(ctx)

	raw, ok, err := e.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecommendationCache.WithLabelValues("error").Inc()
		e.logger.Warn("recommendation cache read failed", zap.String("kind", kind), zap.Error(err))
	case ok:
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			metrics.RecommendationCache.WithLabelValues("hit").Inc()
			span.SetAttributes(attribute.Bool("recommend.cache_hit", true))
			return out
		}
		e.logger.Warn("recommendation cache entry undecodable", zap.String("kind", kind))
	default:
		metrics.RecommendationCache.WithLabelValues("miss").Inc()
	}

	out := compute()
	span.SetAttributes(attribute.Bool("recommend.cache_hit", false))
	payload, err := json.Marshal(out)
	if err != nil {
		e.logger.Warn("recommendation encode failed", zap.Error(err))
		return out
	}
	if err := e.cache.Set(ctx, key, payload); err != nil {
		e.logger.Warn("recommendation cache write failed", zap.String("kind", kind), zap.Error(err))
	}
	return out
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
