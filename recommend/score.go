package recommend

import (
	"math"
	"sort"

	"jobmatrimony/catalog"
	"jobmatrimony/profile"
)

// NoStrongFactors is the reason given when no factor contributed.
const NoStrongFactors = "no strong match factors"

// Score sums factor points, rounds half away from zero and clamps to 0..100.
func Score(factors []Factor) int {
	total := 0.0
	for _, f := range factors {
		total += f.Points()
	}
	s := int(math.Round(total))
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return s
	}
}

// Reason names the two factors that contributed the most points, preferring
// the earlier factor on ties.
func Reason(factors []Factor) string {
	top := make([]Factor, 0, len(factors))
	for _, f := range factors {
		if f.Points() > 0 {
			top = append(top, f)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Points() > top[j].Points()
	})

	switch len(top) {
	case 0:
		return NoStrongFactors
	case 1:
		return top[0].Name + " match"
	default:
		return top[0].Name + " and " + top[1].Name + " match"
	}
}

// JobScore scores listing l for profile p.
func JobScore(p profile.JobProfile, l catalog.Listing) int {
	return Score(JobFactors(p, l))
}

// Compatibility scores two matrimonial profiles. The result does not depend
// on argument order.
func Compatibility(a, b profile.MatrimonialProfile) int {
	return Score(MatrimonialFactors(a, b))
}
