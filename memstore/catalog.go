package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jobmatrimony/catalog"
	"jobmatrimony/domain"
)

// Catalog keeps listings and applications. Ids are strictly increasing and
// never reused.
type Catalog struct {
	mu              sync.RWMutex
	listings        map[int64]catalog.Listing
	applications    map[int64]catalog.Application
	nextListingID   int64
	nextApplication int64
}

func NewCatalog() *Catalog {
	return &Catalog{
		listings:     make(map[int64]catalog.Listing),
		applications: make(map[int64]catalog.Application),
	}
}

func (c *Catalog) CreateListing(_ context.Context, l catalog.Listing) (catalog.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextListingID++
	l.ID = c.nextListingID
	c.listings[l.ID] = l
	return l, nil
}

func (c *Catalog) UpdateListing(_ context.Context, l catalog.Listing) (catalog.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.listings[l.ID]; !ok {
		return catalog.Listing{}, catalog.ErrListingNotFound
	}
	c.listings[l.ID] = l
	return l, nil
}

func (c *Catalog) DeleteListing(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.listings[id]; !ok {
		return catalog.ErrListingNotFound
	}
	delete(c.listings, id)
	for appID, app := range c.applications {
		if app.JobID == id {
			delete(c.applications, appID)
		}
	}
	return nil
}

func (c *Catalog) GetListing(_ context.Context, id int64) (catalog.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.listings[id]
	if !ok {
		return catalog.Listing{}, catalog.ErrListingNotFound
	}
	return l, nil
}

func (c *Catalog) ListListings(context.Context) ([]catalog.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]catalog.Listing, 0, len(c.listings))
	for _, l := range c.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *Catalog) CreateApplication(_ context.Context, app catalog.Application) (catalog.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.listings[app.JobID]; !ok {
		return catalog.Application{}, catalog.ErrListingNotFound
	}
	for _, existing := range c.applications {
		if existing.JobID == app.JobID && existing.Applicant == app.Applicant {
			return catalog.Application{}, catalog.ErrDuplicateApplication
		}
	}
	c.nextApplication++
	app.ID = c.nextApplication
	c.applications[app.ID] = app
	return app, nil
}

func (c *Catalog) ApplicationsByApplicant(_ context.Context, applicant domain.Identity) ([]catalog.Application, error) {
	return c.filterApplications(func(a catalog.Application) bool { return a.Applicant == applicant }), nil
}

func (c *Catalog) ApplicationsByJob(_ context.Context, jobID int64) ([]catalog.Application, error) {
	return c.filterApplications(func(a catalog.Application) bool { return a.JobID == jobID }), nil
}

func (c *Catalog) TransitionApplication(_ context.Context, id int64, next catalog.ApplicationStatus) (catalog.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	app, ok := c.applications[id]
	if !ok {
		return catalog.Application{}, catalog.ErrApplicationNotFound
	}
	if !catalog.CanTransition(app.Status, next) {
		return catalog.Application{}, fmt.Errorf("%w: %s -> %s", catalog.ErrInvalidTransition, app.Status, next)
	}
	app.Status = next
	c.applications[id] = app
	return app, nil
}

func (c *Catalog) DeleteApplicationsByApplicant(_ context.Context, applicant domain.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, app := range c.applications {
		if app.Applicant == applicant {
			delete(c.applications, id)
		}
	}
	return nil
}

func (c *Catalog) filterApplications(keep func(catalog.Application) bool) []catalog.Application {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]catalog.Application, 0, 8)
	for _, app := range c.applications {
		if keep(app) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
