package dataprocessing

import (
	"encoding/json"
	"sort"
	"strings"

	"epldash/pkg/contracts/domain"
)

// Metric names a per-group statistic over the score column
type Metric string

const (
	MetricMean     Metric = "mean"
	MetricMedian   Metric = "median"
	MetricStd      Metric = "std"
	MetricCount    Metric = "count"
	MetricPassRate Metric = "pass_rate"
)

// AllMetrics lists every supported metric
var AllMetrics = []Metric{MetricMean, MetricMedian, MetricStd, MetricCount, MetricPassRate}

// Row is one group of an aggregation result
type Row struct {
	Key   []string
	Stats GroupStats
}

// Table is an aggregation result keyed by one or more grouping columns
type Table struct {
	Keys    []string
	Metrics []Metric
	Rows    []Row
}

// Header returns the column names: grouping keys followed by metrics
func (t Table) Header() []string {
	header := make([]string, 0, len(t.Keys)+len(t.Metrics))
	header = append(header, t.Keys...)
	for _, m := range t.Metrics {
		header = append(header, string(m))
	}
	return header
}

// Values returns the metric values of row i in Metrics order
func (t Table) Values(i int) []NullFloat {
	values := make([]NullFloat, len(t.Metrics))
	for j, m := range t.Metrics {
		values[j] = t.Rows[i].Stats.Metric(m)
	}
	return values
}

// Len returns the number of groups
func (t Table) Len() int {
	return len(t.Rows)
}

// TotalCount returns the sum of group counts
func (t Table) TotalCount() int {
	total := 0
	for _, r := range t.Rows {
		total += r.Stats.Count
	}
	return total
}

// MarshalJSON encodes the table as a column list and positional rows
func (t Table) MarshalJSON() ([]byte, error) {
	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]any, 0, len(t.Keys)+len(t.Metrics))
		for _, k := range r.Key {
			cells = append(cells, k)
		}
		for _, v := range t.Values(i) {
			if v.Valid {
				cells = append(cells, v.Float64)
			} else {
				cells = append(cells, nil)
			}
		}
		rows[i] = cells
	}
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{
		Columns: t.Header(),
		Rows:    rows,
	})
}

const keySeparator = "\x1f"

// Aggregate partitions the view by the values at groupKeys and computes the
// requested metrics over the scores of each group. Only observed groups are
// emitted, each exactly once, ordered ascending by key.
func Aggregate(view *View, groupKeys []string, metrics []Metric) Table {
	keys := make([]string, len(groupKeys))
	for i, k := range groupKeys {
		keys[i] = domain.CanonicalColumn(k)
	}

	table := Table{
		Keys:    keys,
		Metrics: append([]Metric(nil), metrics...),
		Rows:    []Row{},
	}

	type group struct {
		key    []string
		scores []float64
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, r := range view.records {
		tuple := make([]string, len(keys))
		for i, k := range keys {
			tuple[i], _ = r.Value(k)
		}
		id := strings.Join(tuple, keySeparator)
		g, ok := groups[id]
		if !ok {
			g = &group{key: tuple}
			groups[id] = g
			order = append(order, id)
		}
		g.scores = append(g.scores, r.Score)
	}

	for _, id := range order {
		g := groups[id]
		table.Rows = append(table.Rows, Row{Key: g.key, Stats: ComputeStats(g.scores)})
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return compareKeys(table.Rows[i].Key, table.Rows[j].Key) < 0
	})
	return table
}

// Rank returns the per-student mean table sorted by descending mean.
// Ties are broken by ascending student identifier.
func Rank(view *View) Table {
	table := Aggregate(view, []string{domain.ColumnStudentID}, []Metric{MetricMean})
	SortByMean(table)
	return table
}

// SortByMean orders rows by descending mean, ties by ascending key
func SortByMean(table Table) {
	sort.SliceStable(table.Rows, func(i, j int) bool {
		a, b := table.Rows[i].Stats.Mean, table.Rows[j].Stats.Mean
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && a.Float64 != b.Float64 {
			return a.Float64 > b.Float64
		}
		return compareKeys(table.Rows[i].Key, table.Rows[j].Key) < 0
	})
}
