package profile

import (
	"strings"

	"jobmatrimony/domain"
)

// JobProfile describes a job seeker. Salary bounds are annual amounts in the
// platform currency.
type JobProfile struct {
	Name       string          `json:"name" validate:"required"`
	Education  string          `json:"education"`
	Location   string          `json:"location"`
	Profession string          `json:"profession"`
	Experience int             `json:"experience" validate:"gte=0"`
	MinSalary  int64           `json:"minSalary" validate:"gte=0"`
	MaxSalary  int64           `json:"maxSalary" validate:"gte=0,gtefield=MinSalary"`
	Resume     *domain.BlobRef `json:"resume,omitempty"`
}

// MatrimonialProfile describes a member looking for a partner. MinAge and
// MaxAge bound the desired partner age.
type MatrimonialProfile struct {
	Name              string          `json:"name" validate:"required"`
	Age               int             `json:"age" validate:"gt=0"`
	Religion          string          `json:"religion"`
	Occupation        string          `json:"occupation"`
	PreferredLocation string          `json:"preferredLocation"`
	MinAge            int             `json:"minAge" validate:"gt=0"`
	MaxAge            int             `json:"maxAge" validate:"gt=0,gtefield=MinAge"`
	Picture           *domain.BlobRef `json:"profilePicture,omitempty"`
}

// UserProfile holds the optional sub-profiles of one identity. A nil field
// means the sub-profile was never created.
type UserProfile struct {
	Job         *JobProfile         `json:"jobProfile,omitempty"`
	Matrimonial *MatrimonialProfile `json:"matrimonialProfile,omitempty"`
}

// Empty reports whether neither sub-profile is present.
func (p UserProfile) Empty() bool {
	return p.Job == nil && p.Matrimonial == nil
}

// Candidate pairs a matrimonial profile with its owner.
type Candidate struct {
	Identity domain.Identity
	Profile  MatrimonialProfile
}

func (p *JobProfile) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Education = strings.TrimSpace(p.Education)
	p.Location = strings.TrimSpace(p.Location)
	p.Profession = strings.TrimSpace(p.Profession)
}

func (p *MatrimonialProfile) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Religion = strings.TrimSpace(p.Religion)
	p.Occupation = strings.TrimSpace(p.Occupation)
	p.PreferredLocation = strings.TrimSpace(p.PreferredLocation)
}

// ValidateJob normalizes p in place and rejects malformed ranges or a missing
// name with domain.ErrInvalidInput.
func ValidateJob(p *JobProfile) error {
	if p == nil {
		return errNilProfile
	}
	p.normalize()
	return domain.Validate(p)
}

// ValidateMatrimonial is the matrimonial counterpart of ValidateJob.
func ValidateMatrimonial(p *MatrimonialProfile) error {
	if p == nil {
		return errNilProfile
	}
	p.normalize()
	return domain.Validate(p)
}

// Validate checks every present sub-profile.
func Validate(p *UserProfile) error {
	if p.Job != nil {
		if err := ValidateJob(p.Job); err != nil {
			return err
		}
	}
	if p.Matrimonial != nil {
		if err := ValidateMatrimonial(p.Matrimonial); err != nil {
			return err
		}
	}
	return nil
}
