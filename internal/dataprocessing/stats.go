package dataprocessing

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"epldash/pkg/contracts/domain"
)

// NullFloat is a statistic that may be undefined (empty group, std with n < 2).
// It never carries NaN.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Defined wraps a computed value
func Defined(f float64) NullFloat {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: f, Valid: true}
}

// Undefined returns the undefined marker
func Undefined() NullFloat {
	return NullFloat{}
}

// MarshalJSON encodes undefined values as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes null as undefined
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Defined(f)
	return nil
}

// String formats the value with two decimals, or "" when undefined
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', 2, 64)
}

// Mean returns the arithmetic mean
func Mean(scores []float64) NullFloat {
	if len(scores) == 0 {
		return Undefined()
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return Defined(sum / float64(len(scores)))
}

// Median returns the 50th percentile, interpolating between the two middle
// order statistics for even-sized samples
func Median(scores []float64) NullFloat {
	n := len(scores)
	if n == 0 {
		return Undefined()
	}
	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return Defined(sorted[mid])
	}
	return Defined(sorted[mid-1] + (sorted[mid]-sorted[mid-1])*0.5)
}

// StdDev returns the sample standard deviation (divisor n-1).
// Undefined for fewer than two observations.
func StdDev(scores []float64) NullFloat {
	n := len(scores)
	if n < 2 {
		return Undefined()
	}
	mean := Mean(scores).Float64
	var ss float64
	for _, s := range scores {
		d := s - mean
		ss += d * d
	}
	return Defined(math.Sqrt(ss / float64(n-1)))
}

// PassRate returns the percentage of scores at or above the pass threshold
func PassRate(scores []float64) NullFloat {
	if len(scores) == 0 {
		return Undefined()
	}
	passed := 0
	for _, s := range scores {
		if s >= domain.PassThreshold {
			passed++
		}
	}
	return Defined(100 * float64(passed) / float64(len(scores)))
}

// GroupStats holds every metric of one group
type GroupStats struct {
	Count    int       `json:"count"`
	Mean     NullFloat `json:"mean"`
	Median   NullFloat `json:"median"`
	Std      NullFloat `json:"std"`
	PassRate NullFloat `json:"pass_rate"`
}

// ComputeStats evaluates all metrics over a set of scores
func ComputeStats(scores []float64) GroupStats {
	return GroupStats{
		Count:    len(scores),
		Mean:     Mean(scores),
		Median:   Median(scores),
		Std:      StdDev(scores),
		PassRate: PassRate(scores),
	}
}

// Metric returns the named metric
func (g GroupStats) Metric(m Metric) NullFloat {
	switch m {
	case MetricMean:
		return g.Mean
	case MetricMedian:
		return g.Median
	case MetricStd:
		return g.Std
	case MetricCount:
		return Defined(float64(g.Count))
	case MetricPassRate:
		return g.PassRate
	}
	return Undefined()
}
