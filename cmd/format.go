package main

import (
	"fmt"
	"io"

	"github.com/safetyshield/saferoute/internal/rank"
)

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func formatDuration(seconds float64) string {
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%.0f min", minutes)
	}
	h := int(minutes) / 60
	m := int(minutes) % 60
	return fmt.Sprintf("%dh %02dm", h, m)
}

func renderCandidates(w io.Writer, routes []rank.RankedRoute, withSteps bool) {
	for i, r := range routes {
		label := fmt.Sprintf("Option %d", i+1)
		if i == 0 {
			label = "Recommended"
		}
		fmt.Fprintf(w, "%s: %s, %s, safety %.1f/100", label,
			formatDistance(r.DistanceM), formatDuration(r.DurationS), r.SafetyScore)
		if r.CombinedScore != nil {
			fmt.Fprintf(w, ", combined %.3f", *r.CombinedScore)
		}
		fmt.Fprintln(w)

		if withSteps {
			for _, s := range r.Steps {
				fmt.Fprintf(w, "  - %s (%s)\n", s.Instruction, formatDistance(s.DistanceM))
			}
		}
	}
}
