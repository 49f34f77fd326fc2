package catalog

import (
	"strings"
	"time"

	"jobmatrimony/domain"
)

// Defaults applied to blank listing attributes.
const (
	DefaultCategory        = "General"
	DefaultJobType         = "Full-time"
	DefaultExperienceLevel = "Entry Level"
)

// Listing is a job posting. ID is assigned by the catalog; any caller
// supplied value is ignored on create.
type Listing struct {
	ID              int64  `json:"id"`
	Title           string `json:"title" validate:"required"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	Category        string `json:"category"`
	JobType         string `json:"jobType"`
	ExperienceLevel string `json:"experienceLevel"`
	SalaryMin       int64  `json:"salaryMin" validate:"gte=0"`
	SalaryMax       int64  `json:"salaryMax" validate:"gte=0,gtefield=SalaryMin"`
}

func (l *Listing) normalize() {
	l.Title = strings.TrimSpace(l.Title)
	l.Company = strings.TrimSpace(l.Company)
	l.Location = strings.TrimSpace(l.Location)
	l.Category = orDefault(l.Category, DefaultCategory)
	l.JobType = orDefault(l.JobType, DefaultJobType)
	l.ExperienceLevel = orDefault(l.ExperienceLevel, DefaultExperienceLevel)
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// ValidateListing fills defaults and rejects malformed listings.
func ValidateListing(l *Listing) error {
	l.normalize()
	return domain.Validate(l)
}

type ApplicationStatus string

const (
	StatusSubmitted ApplicationStatus = "submitted"
	StatusReviewed  ApplicationStatus = "reviewed"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
)

// transitions lists the statuses reachable from each state. Accepted and
// rejected are terminal.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted: {StatusReviewed, StatusAccepted, StatusRejected},
	StatusReviewed:  {StatusAccepted, StatusRejected},
}

// ParseStatus rejects values outside the closed status vocabulary.
func ParseStatus(s string) (ApplicationStatus, error) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusSubmitted, StatusReviewed, StatusAccepted, StatusRejected:
		return status, nil
	default:
		return "", ErrUnknownStatus
	}
}

// CanTransition reports whether an application may move from current to next.
func CanTransition(current, next ApplicationStatus) bool {
	for _, allowed := range transitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application is one identity applying to one listing.
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"jobId"`
	Applicant   domain.Identity   `json:"applicant"`
	Status      ApplicationStatus `json:"status"`
	DateApplied time.Time         `json:"dateApplied"`
}
