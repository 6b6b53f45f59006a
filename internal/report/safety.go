// Package report derives the aggregate safety score shown next to the risk bars.
package report

import (
	"math"

	"TOSAnalyzer/internal/domain"
)

// Status buckets the safety percentage.
type Status string

const (
	StatusSafe              Status = "Safe"
	StatusPotentiallyUnsafe Status = "Potentially Unsafe"
	StatusUnsafe            Status = "Unsafe"
)

const (
	maxRiskScore     = 5
	safeThreshold    = 60
	warningThreshold = 30
)

// Safety is the aggregate view of a list of risk dimensions.
type Safety struct {
	AverageRisk float64 `json:"averageRisk"`
	Percentage  int     `json:"safetyPercentage"`
	Status      Status  `json:"status"`
}

// Derive averages the clamped scores; an empty list averages to 0.
func Derive(dims []domain.RiskDimension) Safety {
	avg := AverageRisk(dims)
	pct := Percentage(avg)
	return Safety{AverageRisk: avg, Percentage: pct, Status: Classify(pct)}
}

// AverageRisk returns the mean score with each score clamped to [0,5].
func AverageRisk(dims []domain.RiskDimension) float64 {
	if len(dims) == 0 {
		return 0
	}
	total := 0
	for _, d := range dims {
		total += min(max(d.Score, 0), maxRiskScore)
	}
	return float64(total) / float64(len(dims))
}

// Percentage maps an average risk to a 0..100 safety percentage, rounding
// halves up like the browser does.
func Percentage(avg float64) int {
	return int(math.Floor((1-avg/maxRiskScore)*100 + 0.5))
}

// Classify buckets a safety percentage.
func Classify(pct int) Status {
	switch {
	case pct >= safeThreshold:
		return StatusSafe
	case pct >= warningThreshold:
		return StatusPotentiallyUnsafe
	default:
		return StatusUnsafe
	}
}
