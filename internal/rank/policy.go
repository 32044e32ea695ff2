package rank

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Priority regime boundaries: above blendUpper safety alone decides, at or
// below blendLower duration alone decides, in between the two factors blend.
const (
	blendUpper = 5.0
	blendLower = 3.0
)

// ValidatePriority checks the safety priority range.
func ValidatePriority(p float64) error {
	if p < 0 || p > 10 {
		return eris.Errorf("rank: safety priority %.1f outside [0, 10]", p)
	}
	return nil
}

// Order sorts candidates in place by the safety priority policy. All sorts
// are stable: ties keep the provider's original alternative order. Under the
// blended regime each candidate's CombinedScore is populated.
func Order(candidates []Candidate, priority float64) {
	switch {
	case priority > blendUpper:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].SafetyScore > candidates[j].SafetyScore
		})
	case priority > blendLower:
		blend(candidates, priority)
		sort.SliceStable(candidates, func(i, j int) bool {
			return *candidates[i].CombinedScore > *candidates[j].CombinedScore
		})
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].DurationSeconds < candidates[j].DurationSeconds
		})
	}
}

// blend computes combined scores: safety weighted by priority/10, time by the
// remainder. Time factors normalize against the slowest candidate, so with a
// single candidate the blend collapses to pure safety.
func blend(candidates []Candidate, priority float64) {
	var maxDuration float64
	for _, c := range candidates {
		if c.DurationSeconds > maxDuration {
			maxDuration = c.DurationSeconds
		}
	}

	safetyWeight := priority / 10
	for i := range candidates {
		timeFactor := 0.0
		if maxDuration > 0 {
			timeFactor = 1 - candidates[i].DurationSeconds/maxDuration
		}
		safetyFactor := candidates[i].SafetyScore / 100
		combined := safetyWeight*safetyFactor + (1-safetyWeight)*timeFactor
		candidates[i].CombinedScore = &combined
	}
}
