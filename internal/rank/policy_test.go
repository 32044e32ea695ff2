package rank

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetyshield/saferoute/internal/route"
)

func candidate(safety, duration float64) Candidate {
	return Candidate{
		Route:       route.Route{DurationSeconds: duration},
		SafetyScore: safety,
	}
}

func TestOrder_HighPrioritySafetyDescending(t *testing.T) {
	candidates := []Candidate{
		candidate(70, 100),
		candidate(95, 400),
		candidate(80, 200),
	}
	Order(candidates, 10)

	scores := []float64{candidates[0].SafetyScore, candidates[1].SafetyScore, candidates[2].SafetyScore}
	assert.True(t, sort.IsSorted(sort.Reverse(sort.Float64Slice(scores))))
	assert.Nil(t, candidates[0].CombinedScore)
}

func TestOrder_LowPriorityDurationAscending(t *testing.T) {
	candidates := []Candidate{
		candidate(95, 400),
		candidate(70, 100),
		candidate(80, 200),
	}
	Order(candidates, 0)

	durations := []float64{
		candidates[0].DurationSeconds,
		candidates[1].DurationSeconds,
		candidates[2].DurationSeconds,
	}
	assert.True(t, sort.Float64sAreSorted(durations))
	assert.Nil(t, candidates[0].CombinedScore)

	// Priority 3 is still the duration regime.
	Order(candidates, 3)
	assert.InDelta(t, 100, candidates[0].DurationSeconds, 1e-9)
}

func TestOrder_BlendedReproducible(t *testing.T) {
	candidates := []Candidate{
		candidate(70, 100),
		candidate(95, 400),
		candidate(80, 200),
	}
	Order(candidates, 5)

	// Recomputing the blend from the returned candidates reproduces the
	// order.
	var maxDuration float64
	for _, c := range candidates {
		if c.DurationSeconds > maxDuration {
			maxDuration = c.DurationSeconds
		}
	}
	for i, c := range candidates {
		require.NotNil(t, c.CombinedScore)
		expected := 0.5*(c.SafetyScore/100) + 0.5*(1-c.DurationSeconds/maxDuration)
		assert.InDelta(t, expected, *c.CombinedScore, 1e-9, "candidate %d", i)
		if i > 0 {
			assert.GreaterOrEqual(t, *candidates[i-1].CombinedScore, *c.CombinedScore)
		}
	}
}

func TestOrder_SingleCandidateBlendCollapsesToSafety(t *testing.T) {
	candidates := []Candidate{candidate(80, 300)}
	Order(candidates, 4)

	// The lone candidate is the slowest, so its time factor is zero and the
	// blend is priority-weighted safety alone.
	require.NotNil(t, candidates[0].CombinedScore)
	assert.InDelta(t, 0.4*0.8, *candidates[0].CombinedScore, 1e-9)
}

func TestOrder_StableTieBreak(t *testing.T) {
	first := candidate(90, 100)
	first.Encoded = "first"
	second := candidate(90, 100)
	second.Encoded = "second"

	candidates := []Candidate{first, second}
	Order(candidates, 10)
	assert.Equal(t, "first", candidates[0].Encoded)

	Order(candidates, 0)
	assert.Equal(t, "first", candidates[0].Encoded)

	Order(candidates, 5)
	assert.Equal(t, "first", candidates[0].Encoded)
}

func TestValidatePriority(t *testing.T) {
	assert.NoError(t, ValidatePriority(0))
	assert.NoError(t, ValidatePriority(10))
	assert.Error(t, ValidatePriority(-0.1))
	assert.Error(t, ValidatePriority(10.1))
}
