package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmatrimony/db"
	"jobmatrimony/domain"
)

var (
	// ErrListingNotFound signals an unknown listing id.
	ErrListingNotFound = fmt.Errorf("catalog: listing not found: %w", domain.ErrNotFound)
	// ErrApplicationNotFound signals an unknown application id.
	ErrApplicationNotFound = fmt.Errorf("catalog: application not found: %w", domain.ErrNotFound)
	// ErrDuplicateApplication signals a second application by the same identity to one listing.
	ErrDuplicateApplication = fmt.Errorf("catalog: already applied: %w", domain.ErrConflict)
	// ErrUnknownStatus signals a status outside the application vocabulary.
	ErrUnknownStatus = fmt.Errorf("catalog: unknown application status: %w", domain.ErrInvalidInput)
	// ErrInvalidTransition signals a status change not allowed from the current status.
	ErrInvalidTransition = fmt.Errorf("catalog: invalid application transition: %w", domain.ErrInvalidState)
)

// Repository stores listings and the applications made to them. Deleting a
// listing deletes its applications.
type Repository interface {
	CreateListing(ctx context.Context, l Listing) (Listing, error)
	UpdateListing(ctx context.Context, l Listing) (Listing, error)
	DeleteListing(ctx context.Context, id int64) error
	GetListing(ctx context.Context, id int64) (Listing, error)
	ListListings(ctx context.Context) ([]Listing, error)

	CreateApplication(ctx context.Context, app Application) (Application, error)
	ApplicationsByApplicant(ctx context.Context, applicant domain.Identity) ([]Application, error)
	ApplicationsByJob(ctx context.Context, jobID int64) ([]Application, error)
	// TransitionApplication moves an application to next, failing with
	// ErrInvalidTransition when CanTransition disallows it.
	TransitionApplication(ctx context.Context, id int64, next ApplicationStatus) (Application, error)
	DeleteApplicationsByApplicant(ctx context.Context, applicant domain.Identity) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const listingColumns = `id, title, company, location, category, job_type, experience_level, salary_min, salary_max`

const applicationColumns = `id, job_id, applicant, status, date_applied`

func (r *PGRepository) CreateListing(ctx context.Context, l Listing) (Listing, error) {
	query := `
		INSERT INTO job_listings (title, company, location, category, job_type, experience_level, salary_min, salary_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + listingColumns

	row := r.pool.QueryRow(ctx, query,
		l.Title,
		l.Company,
		l.Location,
		l.Category,
		l.JobType,
		l.ExperienceLevel,
		l.SalaryMin,
		l.SalaryMax,
	)
	created, err := scanListing(row)
	if err != nil {
		return Listing{}, fmt.Errorf("catalog: insert listing: %w", err)
	}
	return created, nil
}

func (r *PGRepository) UpdateListing(ctx context.Context, l Listing) (Listing, error) {
	query := `
		UPDATE job_listings
		SET title = $2,
		    company = $3,
		    location = $4,
		    category = $5,
		    job_type = $6,
		    experience_level = $7,
		    salary_min = $8,
		    salary_max = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + listingColumns

	row := r.pool.QueryRow(ctx, query,
		l.ID,
		l.Title,
		l.Company,
		l.Location,
		l.Category,
		l.JobType,
		l.ExperienceLevel,
		l.SalaryMin,
		l.SalaryMax,
	)
	updated, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrListingNotFound
		}
		return Listing{}, fmt.Errorf("catalog: update listing: %w", err)
	}
	return updated, nil
}

// DeleteListing relies on ON DELETE CASCADE to drop applications.
func (r *PGRepository) DeleteListing(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM job_listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *PGRepository) GetListing(ctx context.Context, id int64) (Listing, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM job_listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrListingNotFound
		}
		return Listing{}, fmt.Errorf("catalog: get listing: %w", err)
	}
	return l, nil
}

func (r *PGRepository) ListListings(ctx context.Context) ([]Listing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM job_listings ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list listings: %w", err)
	}
	defer rows.Close()

	listings := make([]Listing, 0, 32)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate listings: %w", err)
	}
	return listings, nil
}

// CreateApplication locks the listing row so a concurrent delete cannot
// orphan the new application.
func (r *PGRepository) CreateApplication(ctx context.Context, app Application) (Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int64
	if err := tx.QueryRow(ctx, `SELECT id FROM job_listings WHERE id = $1 FOR SHARE`, app.JobID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrListingNotFound
		}
		return Application{}, fmt.Errorf("catalog: ensure listing: %w", err)
	}

	query := `
		INSERT INTO job_applications (job_id, applicant, status, date_applied)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + applicationColumns
	created, err := scanApplication(tx.QueryRow(ctx, query, app.JobID, string(app.Applicant), app.Status, app.DateApplied))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Application{}, ErrDuplicateApplication
		}
		return Application{}, fmt.Errorf("catalog: insert application: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Application{}, fmt.Errorf("catalog: commit application: %w", err)
	}
	return created, nil
}

func (r *PGRepository) ApplicationsByApplicant(ctx context.Context, applicant domain.Identity) ([]Application, error) {
	return r.queryApplications(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE applicant = $1 ORDER BY id ASC`, string(applicant))
}

func (r *PGRepository) ApplicationsByJob(ctx context.Context, jobID int64) ([]Application, error) {
	return r.queryApplications(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE job_id = $1 ORDER BY id ASC`, jobID)
}

func (r *PGRepository) TransitionApplication(ctx context.Context, id int64, next ApplicationStatus) (Application, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanApplication(tx.QueryRow(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrApplicationNotFound
		}
		return Application{}, fmt.Errorf("catalog: lock application: %w", err)
	}
	if !CanTransition(current.Status, next) {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
	}

	if _, err := tx.Exec(ctx, `UPDATE job_applications SET status = $2 WHERE id = $1`, id, next); err != nil {
		return Application{}, fmt.Errorf("catalog: update application status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Application{}, fmt.Errorf("catalog: commit transition: %w", err)
	}

	current.Status = next
	return current, nil
}

func (r *PGRepository) DeleteApplicationsByApplicant(ctx context.Context, applicant domain.Identity) error {
	return DeleteApplicationsTx(ctx, r.pool, applicant)
}

// DeleteApplicationsTx removes every application of applicant on q.
func DeleteApplicationsTx(ctx context.Context, q db.Execer, applicant domain.Identity) error {
	if _, err := q.Exec(ctx, `DELETE FROM job_applications WHERE applicant = $1`, string(applicant)); err != nil {
		return fmt.Errorf("catalog: delete applications: %w", err)
	}
	return nil
}

func (r *PGRepository) queryApplications(ctx context.Context, query string, arg any) ([]Application, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("catalog: list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0, 8)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate applications: %w", err)
	}
	return apps, nil
}

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Company,
		&l.Location,
		&l.Category,
		&l.JobType,
		&l.ExperienceLevel,
		&l.SalaryMin,
		&l.SalaryMax,
	)
	return l, err
}

func scanApplication(row pgx.Row) (Application, error) {
	var (
		app       Application
		applicant string
		status    string
	)
	if err := row.Scan(&app.ID, &app.JobID, &applicant, &status, &app.DateApplied); err != nil {
		return Application{}, err
	}
	app.Applicant = domain.Identity(applicant)
	app.Status = ApplicationStatus(status)
	return app, nil
}

var _ Repository = (*PGRepository)(nil)
