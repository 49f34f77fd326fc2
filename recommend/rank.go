package recommend

import (
	"sort"

	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/profile"
)

type JobRecommendation struct {
	Job        catalog.Listing `json:"job"`
	MatchScore int             `json:"matchScore"`
	Reason     string          `json:"reason"`
}

type MatrimonialRecommendation struct {
	Identity           domain.Identity            `json:"identity"`
	Profile            profile.MatrimonialProfile `json:"profile"`
	CompatibilityScore int                        `json:"compatibilityScore"`
	Reason             string                     `json:"reason"`
}

type Recommendations struct {
	Jobs    []JobRecommendation         `json:"jobs"`
	Matches []MatrimonialRecommendation `json:"matches"`
}

// Result bundles both ranked lists with their reasons flattened in order,
// job reasons first.
type Result struct {
	Recommendations Recommendations `json:"recommendations"`
	Explanations    []string        `json:"explanations"`
}

// RankJobs scores every listing against p, best first, ties by listing id.
// A nil profile yields an empty list.
func RankJobs(p *profile.JobProfile, listings []catalog.Listing) []JobRecommendation {
	out := make([]JobRecommendation, 0, len(listings))
	if p == nil {
		return out
	}
	for _, l := range listings {
		factors := JobFactors(*p, l)
		out = append(out, JobRecommendation{
			Job:        l,
			MatchScore: Score(factors),
			Reason:     Reason(factors),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		return out[i].Job.ID < out[j].Job.ID
	})
	return out
}

// RankMatches scores the candidate pool against self's profile, skipping
// self and anyone in matched. Best first, ties by identity.
func RankMatches(self domain.Identity, p *profile.MatrimonialProfile, pool []profile.Candidate, matched map[domain.Identity]struct{}) []MatrimonialRecommendation {
	out := make([]MatrimonialRecommendation, 0, len(pool))
	if p == nil {
		return out
	}
	for _, c := range pool {
		if c.Identity == self {
			continue
		}
		if _, ok := matched[c.Identity]; ok {
			continue
		}
		factors := MatrimonialFactors(*p, c.Profile)
		out = append(out, MatrimonialRecommendation{
			Identity:           c.Identity,
			Profile:            c.Profile,
			CompatibilityScore: Score(factors),
			Reason:             Reason(factors),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompatibilityScore != out[j].CompatibilityScore {
			return out[i].CompatibilityScore > out[j].CompatibilityScore
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}

// Combine builds the aggregate result from both ranked lists.
func Combine(jobs []JobRecommendation, matches []MatrimonialRecommendation) Result {
	explanations := make([]string, 0, len(jobs)+len(matches))
	for _, j := range jobs {
		explanations = append(explanations, j.Reason)
	}
	for _, m := range matches {
		explanations = append(explanations, m.Reason)
	}
	return Result{
		Recommendations: Recommendations{Jobs: jobs, Matches: matches},
		Explanations:    explanations,
	}
}
