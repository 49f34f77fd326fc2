package platform_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/events"
	"jobmatrimony/matrimony"
	"jobmatrimony/memstore"
	"jobmatrimony/platform"
	"jobmatrimony/profile"
	"jobmatrimony/recommend"
)

const (
	admin = domain.Identity("root")
	alice = domain.Identity("alice")
	bob   = domain.Identity("bob")
	carol = domain.Identity("carol")
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc    *platform.Service
	store  *memstore.Store
	events *events.Recorder
}

func newHarness(t *testing.T, users ...domain.Identity) harness {
	t.Helper()
	return newHarnessWith(t, nil, users...)
}

// newHarnessWith lets a test swap repositories before the service is built.
func newHarnessWith(t *testing.T, adjust func(*platform.Repositories), users ...domain.Identity) harness {
	t.Helper()
	store := memstore.New()
	rec := &events.Recorder{}
	repos := platform.Repositories{
		Roles:     store.Roles,
		Profiles:  store.Profiles,
		Catalog:   store.Catalog,
		Matrimony: store.Matrimony,
		Messages:  store.Messages,
	}
	if adjust != nil {
		adjust(&repos)
	}
	svc := platform.New(platform.Deps{
		Repos:           repos,
		BootstrapAdmins: []string{string(admin)},
		Publisher:       rec,
		Logger:          zaptest.NewLogger(t),
	}).WithClock(func() time.Time { return fixedNow })

	ctx := context.Background()
	for _, id := range append([]domain.Identity{admin}, users...) {
		_, err := svc.InitializeAccessControl(ctx, id)
		require.NoError(t, err)
	}
	return harness{svc: svc, store: store, events: rec}
}

func matrimonial(name string, age int, religion, location, occupation string) profile.MatrimonialProfile {
	return profile.MatrimonialProfile{
		Name:              name,
		Age:               age,
		Religion:          religion,
		Occupation:        occupation,
		PreferredLocation: location,
		MinAge:            25,
		MaxAge:            35,
	}
}

func TestInitializeAccessControl(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.InitializeAccessControl(ctx, domain.Anonymous)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	role, err := h.svc.InitializeAccessControl(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, access.RoleUser, role)

	require.NoError(t, h.svc.AssignCallerUserRole(ctx, admin, alice, "admin"))
	role, err = h.svc.InitializeAccessControl(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, role, "re-initialization must not downgrade")

	isAdmin, err := h.svc.IsCallerAdmin(ctx, admin)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	role, err = h.svc.GetCallerUserRole(ctx, "stranger")
	require.NoError(t, err)
	assert.Equal(t, access.RoleGuest, role)
}

func TestRoleChecksRejectBeforeMutation(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	err := h.svc.SaveCallerUserProfile(ctx, "stranger", profile.UserProfile{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.svc.CreateJobListing(ctx, alice, catalog.Listing{Title: "Chef"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	listings, err := h.svc.GetJobListings(ctx, domain.Anonymous)
	require.NoError(t, err)
	assert.Empty(t, listings)

	assert.ErrorIs(t, h.svc.AssignCallerUserRole(ctx, alice, alice, "admin"), domain.ErrUnauthorized)
	assert.ErrorIs(t, h.svc.AssignCallerUserRole(ctx, admin, alice, "owner"), domain.ErrInvalidInput)
	assert.ErrorIs(t, h.svc.AssignCallerUserRole(ctx, admin, "", "user"), domain.ErrInvalidInput)
}

func TestRecommendedJobsForBackendEngineer(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	require.NoError(t, h.svc.CreateOrUpdateJobProfile(ctx, alice, profile.JobProfile{
		Name:       "Alice",
		Location:   "Bangalore",
		Profession: "Backend Engineer",
		Experience: 4,
		MinSalary:  1_000_000,
		MaxSalary:  2_000_000,
	}))

	unrelated, err := h.svc.CreateJobListing(ctx, admin, catalog.Listing{
		Title:           "Pastry Chef",
		Location:        "Paris",
		Category:        "Hospitality",
		ExperienceLevel: "Senior",
		SalaryMin:       10,
		SalaryMax:       20,
	})
	require.NoError(t, err)
	backend, err := h.svc.CreateJobListing(ctx, admin, catalog.Listing{
		Title:           "Backend Engineer",
		Location:        "Bangalore",
		Category:        "Engineering",
		ExperienceLevel: "Mid",
		SalaryMin:       1_500_000,
		SalaryMax:       2_500_000,
	})
	require.NoError(t, err)

	recs, err := h.svc.GetRecommendedJobsForCaller(ctx, alice)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, backend.ID, recs[0].Job.ID)
	assert.Equal(t, unrelated.ID, recs[1].Job.ID)
	assert.Greater(t, recs[0].MatchScore, recs[1].MatchScore)

	_, err = h.svc.GetRecommendedJobsForCaller(ctx, "stranger")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRecommendationsWithoutProfileAreEmpty(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()

	_, err := h.svc.CreateJobListing(ctx, admin, catalog.Listing{Title: "Designer"})
	require.NoError(t, err)

	res, err := h.svc.GetRecommendationsForCaller(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations.Jobs)
	assert.Empty(t, res.Recommendations.Matches)
	assert.Empty(t, res.Explanations)
}

func TestInterestAcceptCreatesScoredMatch(t *testing.T) {
	h := newHarness(t, alice, bob, carol)
	ctx := context.Background()

	pa := matrimonial("Alice", 29, "Hindu", "Pune", "software engineer")
	pb := matrimonial("Bob", 31, "hindu", "pune", "civil engineer")
	require.NoError(t, h.svc.CreateOrUpdateMatrimonialProfile(ctx, alice, pa))
	require.NoError(t, h.svc.CreateOrUpdateMatrimonialProfile(ctx, bob, pb))

	_, err := h.svc.SendInterest(ctx, alice, carol)
	assert.ErrorIs(t, err, domain.ErrConflict, "carol has no matrimonial profile")

	in, err := h.svc.SendInterest(ctx, alice, bob)
	require.NoError(t, err)

	_, err = h.svc.AcceptInterest(ctx, carol, in.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res, err := h.svc.AcceptInterest(ctx, bob, in.ID)
	require.NoError(t, err)
	assert.True(t, res.MatchCreated)
	assert.Equal(t, recommend.Compatibility(pa, pb), res.Match.CompatibilityScore)
	assert.Equal(t, matrimony.InterestAccepted, res.Interest.Status)

	_, err = h.svc.RejectInterest(ctx, bob, in.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	matches, err := h.svc.GetCallerMatches(ctx, alice)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	recs, err := h.svc.GetRecommendedMatchesForCaller(ctx, alice)
	require.NoError(t, err)
	for _, r := range recs {
		assert.NotEqual(t, bob, r.Identity, "matched identities are excluded")
	}

	assert.Equal(t, []string{
		events.TypeInterestSent,
		events.TypeInterestAccepted,
		events.TypeMatchCreated,
	}, h.events.Types())
}

func TestAcceptKeepsExistingMatch(t *testing.T) {
	h := newHarness(t, alice, bob)
	ctx := context.Background()
	require.NoError(t, h.svc.CreateOrUpdateMatrimonialProfile(ctx, bob, matrimonial("Bob", 30, "", "", "")))

	saved, err := h.svc.SaveMatch(ctx, alice, bob, 42)
	require.NoError(t, err)

	in, err := h.svc.SendInterest(ctx, alice, bob)
	require.NoError(t, err)
	res, err := h.svc.AcceptInterest(ctx, bob, in.ID)
	require.NoError(t, err)
	assert.False(t, res.MatchCreated)
	assert.Equal(t, saved.ID, res.Match.ID)
	assert.Equal(t, 42, res.Match.CompatibilityScore)

	matches, err := h.svc.GetCallerMatches(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestConcurrentAcceptsCreateOneMatch(t *testing.T) {
	h := newHarness(t, alice, bob)
	ctx := context.Background()
	require.NoError(t, h.svc.CreateOrUpdateMatrimonialProfile(ctx, bob, matrimonial("Bob", 30, "", "", "")))

	in, err := h.svc.SendInterest(ctx, alice, bob)
	require.NoError(t, err)

	const attempts = 8
	results := make([]error, attempts)
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, results[i] = h.svc.AcceptInterest(ctx, bob, in.ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInvalidState):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	matches, err := h.svc.GetCallerMatches(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestApplicationOwnership(t *testing.T) {
	h := newHarness(t, alice, bob)
	ctx := context.Background()

	l, err := h.svc.CreateJobListing(ctx, admin, catalog.Listing{Title: "Analyst"})
	require.NoError(t, err)
	app, err := h.svc.ApplyForJob(ctx, alice, l.ID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, app.DateApplied)

	_, err = h.svc.ApplyForJob(ctx, alice, l.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = h.svc.GetJobApplicationsByApplicant(ctx, bob, alice)
	assert.ErrorIs(t, err, platform.ErrNotOwner)

	own, err := h.svc.GetJobApplicationsByApplicant(ctx, alice, alice)
	require.NoError(t, err)
	assert.Len(t, own, 1)
	byAdmin, err := h.svc.GetJobApplicationsByApplicant(ctx, admin, alice)
	require.NoError(t, err)
	assert.Len(t, byAdmin, 1)

	_, err = h.svc.GetJobApplicationsByJobID(ctx, alice, l.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.svc.UpdateApplicationStatus(ctx, admin, app.ID, "accepted")
	require.NoError(t, err)
	_, err = h.svc.UpdateApplicationStatus(ctx, admin, app.ID, "reviewed")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	require.NoError(t, h.svc.DeleteJobListing(ctx, admin, l.ID))
	mine, err := h.svc.GetCallerJobApplications(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, mine, "deleting a listing cascades to its applications")
}

func TestMessagesReadableByParticipantsAndAdmins(t *testing.T) {
	h := newHarness(t, alice, bob, carol)
	ctx := context.Background()

	_, err := h.svc.SendMessage(ctx, alice, bob, "hi bob")
	require.NoError(t, err)
	_, err = h.svc.SendMessage(ctx, bob, alice, "hi alice")
	require.NoError(t, err)

	_, err = h.svc.GetMessages(ctx, carol, alice, bob)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	byAdmin, err := h.svc.GetMessages(ctx, admin, bob, alice)
	require.NoError(t, err)
	mine, err := h.svc.GetCallerMessages(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, byAdmin, mine)
	require.Len(t, mine, 2)
	assert.Equal(t, "hi bob", mine[0].Content)
}

func TestDeleteUser(t *testing.T) {
	h := newHarness(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, h.svc.CreateOrUpdateMatrimonialProfile(ctx, alice, matrimonial("Alice", 28, "", "", "")))
	require.NoError(t, h.svc.CreateOrUpdateMatrimonialProfile(ctx, bob, matrimonial("Bob", 30, "", "", "")))
	l, err := h.svc.CreateJobListing(ctx, admin, catalog.Listing{Title: "Nurse"})
	require.NoError(t, err)
	_, err = h.svc.ApplyForJob(ctx, alice, l.ID)
	require.NoError(t, err)
	_, err = h.svc.SendInterest(ctx, bob, alice)
	require.NoError(t, err)
	_, err = h.svc.SaveMatch(ctx, alice, bob, 70)
	require.NoError(t, err)
	_, err = h.svc.SendMessage(ctx, alice, bob, "bye")
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.DeleteUser(ctx, bob, alice), domain.ErrUnauthorized)
	assert.ErrorIs(t, h.svc.DeleteUser(ctx, admin, "ghost"), domain.ErrNotFound)
	require.NoError(t, h.svc.DeleteUser(ctx, admin, alice))

	users, err := h.svc.GetAllUsers(ctx, admin)
	require.NoError(t, err)
	assert.NotContains(t, users, alice)

	_, err = h.svc.GetUserProfile(ctx, bob, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	apps, err := h.svc.GetJobApplicationsByJobID(ctx, admin, l.ID)
	require.NoError(t, err)
	assert.Empty(t, apps)
	sent, err := h.svc.GetCallerSentInterests(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, sent)
	matches, err := h.svc.GetCallerMatches(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, matches)

	msgs, err := h.svc.GetMessages(ctx, admin, alice, bob)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "messages are retained")
}

// flakyProfiles fails the next Delete calls, then behaves normally.
type flakyProfiles struct {
	profile.Repository
	failures int
}

func (f *flakyProfiles) Delete(ctx context.Context, id domain.Identity) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	return f.Repository.Delete(ctx, id)
}

func TestDeleteUserInterruptedCanBeRetried(t *testing.T) {
	h := newHarnessWith(t, func(r *platform.Repositories) {
		r.Profiles = &flakyProfiles{Repository: r.Profiles, failures: 1}
	}, alice, bob)
	ctx := context.Background()

	require.NoError(t, h.svc.CreateOrUpdateMatrimonialProfile(ctx, alice, matrimonial("Alice", 30, "", "", "")))

	err := h.svc.DeleteUser(ctx, admin, alice)
	require.Error(t, err)
	assert.Nil(t, domain.Kind(err), "infrastructure failure must not look like a domain error")

	users, err := h.svc.GetAllUsers(ctx, admin)
	require.NoError(t, err)
	assert.Contains(t, users, alice, "a failed delete keeps the user listed")
	_, err = h.svc.GetMatrimonialProfile(ctx, bob, alice)
	require.NoError(t, err)

	require.NoError(t, h.svc.DeleteUser(ctx, admin, alice))

	users, err = h.svc.GetAllUsers(ctx, admin)
	require.NoError(t, err)
	assert.NotContains(t, users, alice)
	_, err = h.svc.GetMatrimonialProfile(ctx, bob, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.svc.SendInterest(ctx, bob, alice)
	assert.ErrorIs(t, err, domain.ErrConflict, "a deleted user cannot receive interests")
}

type stubPurger struct {
	err    error
	purged []domain.Identity
}

func (p *stubPurger) PurgeIdentity(_ context.Context, id domain.Identity) error {
	p.purged = append(p.purged, id)
	return p.err
}

func TestDeleteUserDelegatesToPurger(t *testing.T) {
	purger := &stubPurger{err: access.ErrRoleNotFound}
	h := newHarnessWith(t, func(r *platform.Repositories) { r.Purger = purger }, alice)
	ctx := context.Background()

	assert.ErrorIs(t, h.svc.DeleteUser(ctx, admin, "ghost"), domain.ErrNotFound)
	assert.Equal(t, []domain.Identity{"ghost"}, purger.purged)

	purger.err = nil
	require.NoError(t, h.svc.DeleteUser(ctx, admin, alice))
	assert.Equal(t, []domain.Identity{"ghost", alice}, purger.purged)

	users, err := h.svc.GetAllUsers(ctx, admin)
	require.NoError(t, err)
	assert.Contains(t, users, alice, "the purger owns every delete")
}
