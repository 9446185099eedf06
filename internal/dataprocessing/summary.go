package dataprocessing

import (
	"epldash/pkg/contracts/domain"
)

// DistributionBins is the number of unit-width score buckets over [0, 20]
const DistributionBins = 20

// Bin is one bucket of the score distribution
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Summary holds the ungrouped metrics of a view
type Summary struct {
	Records      int       `json:"records"`
	Students     int       `json:"students"`
	Mean         NullFloat `json:"mean"`
	Median       NullFloat `json:"median"`
	Std          NullFloat `json:"std"`
	PassRate     NullFloat `json:"pass_rate"`
	Distribution []Bin     `json:"distribution"`
}

// Summarize computes the global metrics of a view
func Summarize(view *View) Summary {
	scores := view.Scores()
	stats := ComputeStats(scores)

	students := make(map[string]struct{})
	for _, r := range view.records {
		students[r.StudentID] = struct{}{}
	}

	return Summary{
		Records:      len(scores),
		Students:     len(students),
		Mean:         stats.Mean,
		Median:       stats.Median,
		Std:          stats.Std,
		PassRate:     stats.PassRate,
		Distribution: Histogram(scores),
	}
}

// Histogram buckets scores into DistributionBins equal-width bins.
// The last bin is closed so that the maximum score is counted.
func Histogram(scores []float64) []Bin {
	width := (domain.MaxScore - domain.MinScore) / DistributionBins
	bins := make([]Bin, DistributionBins)
	for i := range bins {
		bins[i].Lower = domain.MinScore + float64(i)*width
		bins[i].Upper = bins[i].Lower + width
	}
	for _, s := range scores {
		idx := int((s - domain.MinScore) / width)
		if idx >= DistributionBins {
			idx = DistributionBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}
