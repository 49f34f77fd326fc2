package recommend

import (
	"jobmatrimony/catalog"
	"jobmatrimony/profile"
)

// partialLocationFit is credited when both sides name a location but they
// differ.
const partialLocationFit = 0.3

// Factor is one weighted attribute comparison. Fit lies in [0, 1].
type Factor struct {
	Name   string
	Weight float64
	Fit    float64
}

// Points is the factor's contribution to the 0..100 score.
func (f Factor) Points() float64 {
	return f.Weight * f.Fit
}

// Job factor weights sum to 100.
const (
	WeightJobLocation   = 25
	WeightJobSalary     = 30
	WeightJobExperience = 25
	WeightJobProfession = 20
)

// Matrimonial factor weights sum to 100.
const (
	WeightAge        = 35
	WeightReligion   = 25
	WeightLocation   = 20
	WeightOccupation = 20
)

func locationFit(a, b string) float64 {
	if isBlank(a) || isBlank(b) {
		return 0
	}
	if sameText(a, b) {
		return 1
	}
	return partialLocationFit
}

// salaryFit is the overlap of the two ranges divided by their union.
func salaryFit(aMin, aMax, bMin, bMax int64) float64 {
	lo := max(aMin, bMin)
	hi := min(aMax, bMax)
	if hi < lo {
		return 0
	}
	span := max(aMax, bMax) - min(aMin, bMin)
	if span == 0 {
		return 1
	}
	return float64(hi-lo) / float64(span)
}

// band is an experience range in years. Open bands have no upper bound.
type band struct {
	min  int
	max  int
	open bool
}

var experienceBands = map[string]band{
	"entry":        {min: 0, max: 2},
	"junior":       {min: 0, max: 2},
	"intern":       {min: 0, max: 2},
	"mid":          {min: 3, max: 5},
	"intermediate": {min: 3, max: 5},
	"associate":    {min: 3, max: 5},
	"senior":       {min: 6, max: 10},
	"lead":         {min: 8, open: true},
	"staff":        {min: 8, open: true},
	"principal":    {min: 8, open: true},
	"director":     {min: 12, open: true},
	"executive":    {min: 12, open: true},
	"head":         {min: 12, open: true},
}

// lookupBand resolves the first recognized word of level.
func lookupBand(level string) (band, bool) {
	for _, t := range orderedTokens(level) {
		if b, ok := experienceBands[t]; ok {
			return b, true
		}
	}
	return band{}, false
}

// experienceFit loses a quarter per year outside the band.
func experienceFit(years int, level string) float64 {
	b, ok := lookupBand(level)
	if !ok {
		return 0
	}
	outside := 0
	switch {
	case years < b.min:
		outside = b.min - years
	case !b.open && years > b.max:
		outside = years - b.max
	}
	return max(0, 1-0.25*float64(outside))
}

// professionFit is the share of profession words found in the listing title
// or category.
func professionFit(profession, title, category string) float64 {
	want := tokens(profession)
	if len(want) == 0 {
		return 0
	}
	have := union(tokens(title), tokens(category))
	return float64(intersection(want, have)) / float64(len(want))
}

func ageFit(a, b profile.MatrimonialProfile) float64 {
	aAcceptsB := b.Age >= a.MinAge && b.Age <= a.MaxAge
	bAcceptsA := a.Age >= b.MinAge && a.Age <= b.MaxAge
	switch {
	case aAcceptsB && bAcceptsA:
		return 1
	case aAcceptsB || bAcceptsA:
		return 0.5
	default:
		return 0
	}
}

func religionFit(a, b string) float64 {
	if isBlank(a) || isBlank(b) || !sameText(a, b) {
		return 0
	}
	return 1
}

// jaccard is |A∩B| / |A∪B| over word sets; two empty sets score 0.
func jaccard(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	all := len(union(ta, tb))
	if all == 0 {
		return 0
	}
	return float64(intersection(ta, tb)) / float64(all)
}

// JobFactors evaluates every job factor for p against l in reason order.
func JobFactors(p profile.JobProfile, l catalog.Listing) []Factor {
	return []Factor{
		{Name: "location", Weight: WeightJobLocation, Fit: locationFit(p.Location, l.Location)},
		{Name: "salary range", Weight: WeightJobSalary, Fit: salaryFit(p.MinSalary, p.MaxSalary, l.SalaryMin, l.SalaryMax)},
		{Name: "experience", Weight: WeightJobExperience, Fit: experienceFit(p.Experience, l.ExperienceLevel)},
		{Name: "profession", Weight: WeightJobProfession, Fit: professionFit(p.Profession, l.Title, l.Category)},
	}
}

// MatrimonialFactors evaluates every compatibility factor. Each factor is
// symmetric in a and b.
func MatrimonialFactors(a, b profile.MatrimonialProfile) []Factor {
	return []Factor{
		{Name: "age preference", Weight: WeightAge, Fit: ageFit(a, b)},
		{Name: "religion", Weight: WeightReligion, Fit: religionFit(a.Religion, b.Religion)},
		{Name: "location", Weight: WeightLocation, Fit: locationFit(a.PreferredLocation, b.PreferredLocation)},
		{Name: "occupation", Weight: WeightOccupation, Fit: jaccard(a.Occupation, b.Occupation)},
	}
}
