package dataprocessing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epldash/pkg/contracts/domain"
)

func keysOf(table Table) [][]string {
	keys := make([][]string, len(table.Rows))
	for i, r := range table.Rows {
		keys[i] = r.Key
	}
	return keys
}

func TestAggregate_ByDepartment(t *testing.T) {
	view := newSampleStore(t).View()

	table := Aggregate(view, []string{domain.ColumnDepartment}, AllMetrics)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, [][]string{{"Maths"}, {"Physique"}}, keysOf(table))
	assert.Equal(t, []string{"department", "mean", "median", "std", "count", "pass_rate"}, table.Header())

	maths := table.Rows[0].Stats
	assert.Equal(t, 4, maths.Count)
	assert.InDelta(t, 12.5, maths.Mean.Float64, 1e-9)
	assert.InDelta(t, 13.0, maths.Median.Float64, 1e-9)
	assert.InDelta(t, 3.4157, maths.Std.Float64, 1e-4)
	assert.InDelta(t, 75.0, maths.PassRate.Float64, 1e-9)

	physique := table.Rows[1].Stats
	assert.Equal(t, 3, physique.Count)
	assert.InDelta(t, 12.5, physique.Mean.Float64, 1e-9)
	assert.InDelta(t, 10.0, physique.Median.Float64, 1e-9)
	assert.InDelta(t, 4.7697, physique.Std.Float64, 1e-4)
	assert.InDelta(t, 66.6667, physique.PassRate.Float64, 1e-4)
}

func TestAggregate_PartitionIsComplete(t *testing.T) {
	store := newSampleStore(t)
	groupings := [][]string{
		{domain.ColumnDepartment},
		{domain.ColumnInstructor},
		{domain.ColumnStudentID},
		{domain.ColumnDepartment, domain.ColumnUnit, domain.ColumnSubject},
	}

	for _, keys := range groupings {
		for _, view := range []*View{
			store.View(),
			store.Filter(Predicates{"department": {"Maths"}}),
			store.Filter(Predicates{"instructor": {"Prof C"}}),
		} {
			table := Aggregate(view, keys, []Metric{MetricCount})
			assert.Equal(t, view.Len(), table.TotalCount(), "keys %v", keys)

			seen := make(map[string]bool)
			for _, r := range table.Rows {
				id := fmtKey(r.Key)
				assert.False(t, seen[id], "duplicate group %v", r.Key)
				seen[id] = true
				assert.Positive(t, r.Stats.Count)
			}
		}
	}
}

func fmtKey(key []string) string {
	b, _ := json.Marshal(key)
	return string(b)
}

func TestAggregate_EmptyView(t *testing.T) {
	view := newSampleStore(t).Filter(Predicates{"department": {"Chimie"}})
	require.Zero(t, view.Len())

	table := Aggregate(view, []string{domain.ColumnDepartment}, AllMetrics)
	assert.Zero(t, table.Len())
	assert.NotNil(t, table.Rows)

	summary := Summarize(view)
	assert.Zero(t, summary.Records)
	assert.False(t, summary.Mean.Valid)

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["department","mean","median","std","count","pass_rate"],"rows":[]}`, string(data))
}

func TestAggregate_SingleRecordGroup(t *testing.T) {
	view := newSampleStore(t).View()

	table := Aggregate(view, []string{domain.ColumnDepartment, "UE", domain.ColumnSubject}, AllMetrics)
	require.Equal(t, 4, table.Len())
	assert.Equal(t, [][]string{
		{"Maths", "UE1", "Algèbre"},
		{"Maths", "UE2", "Analyse"},
		{"Physique", "UE1", "Mécanique"},
		{"Physique", "UE2", "Thermodynamique"},
	}, keysOf(table))
	assert.Equal(t, "unit", table.Keys[1])

	thermo := table.Rows[3].Stats
	assert.Equal(t, 1, thermo.Count)
	assert.Equal(t, 10.0, thermo.Mean.Float64)
	assert.Equal(t, 10.0, thermo.Median.Float64)
	assert.False(t, thermo.Std.Valid)
	assert.Equal(t, 100.0, thermo.PassRate.Float64)

	data, err := json.Marshal(table)
	require.NoError(t, err)
	var decoded struct {
		Rows [][]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.Rows[3][5], "undefined std encodes as null")
}

func TestAggregate_NumericKeyOrder(t *testing.T) {
	store, err := NewStore(fullSchema(), withOptional(sampleRecords()))
	require.NoError(t, err)

	table := Aggregate(store.View(), []string{domain.ColumnAge}, []Metric{MetricMean, MetricCount})
	assert.Equal(t, [][]string{{"19"}, {"20"}, {"21"}}, keysOf(table))
	assert.Equal(t, 3, table.Rows[0].Stats.Count)
	assert.InDelta(t, 14.0, table.Rows[0].Stats.Mean.Float64, 1e-9)

	ids := Aggregate(store.View(), []string{domain.ColumnStudentID}, []Metric{MetricCount})
	assert.Equal(t, [][]string{{"1"}, {"2"}, {"3"}, {"10"}}, keysOf(ids))
}

func TestAggregate_AbsentOptionalKey(t *testing.T) {
	records := withOptional(sampleRecords()[:2])
	records[1].Age = nil
	store, err := NewStore(fullSchema(), records)
	require.NoError(t, err)

	// records without the value form their own group so counts still add up
	table := Aggregate(store.View(), []string{domain.ColumnAge}, []Metric{MetricCount})
	assert.Equal(t, [][]string{{"19"}, {""}}, keysOf(table))
	assert.Equal(t, store.Len(), table.TotalCount())
}

func TestCompareValues_TotalOrder(t *testing.T) {
	values := []string{"", "0", "00", "01", "1", "1.5", "2", "9", "10", "1a", "1e3", "0x10", "Inf", "NaN", "-1", "a", "b2", "1."}

	for _, a := range values {
		assert.Zero(t, compareValues(a, a), a)
		for _, b := range values {
			assert.Equal(t, -sign(compareValues(a, b)), sign(compareValues(b, a)), "%q vs %q", a, b)
			for _, c := range values {
				if compareValues(a, b) < 0 && compareValues(b, c) < 0 {
					assert.Negative(t, compareValues(a, c), "%q < %q < %q", a, b, c)
				}
			}
		}
	}

	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "1a", -1},
		{"9", "1a", -1},
		{"01", "1", -1},
		{"1.5", "2", -1},
		{"NaN", "1", 1},
		{"1e3", "2", 1},
		{"19", "", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sign(compareValues(tt.a, tt.b)), "%q vs %q", tt.a, tt.b)
	}
}

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}

func TestAggregate_Idempotent(t *testing.T) {
	view := newSampleStore(t).Filter(Predicates{"unit": {"UE1"}})

	first := Aggregate(view, []string{domain.ColumnInstructor}, AllMetrics)
	second := Aggregate(view, []string{domain.ColumnInstructor}, AllMetrics)
	assert.Equal(t, first, second)
}

func TestRank(t *testing.T) {
	t.Run("descending mean", func(t *testing.T) {
		table := Rank(newSampleStore(t).View())
		assert.Equal(t, [][]string{{"10"}, {"2"}, {"1"}, {"3"}}, keysOf(table))
		assert.Equal(t, []Metric{MetricMean}, table.Metrics)
		assert.InDelta(t, 9.75, table.Rows[3].Stats.Mean.Float64, 1e-9)
	})

	t.Run("ties broken by ascending student id", func(t *testing.T) {
		store, err := NewStore(baseSchema, []domain.Record{
			rec("10", "Maths", "UE1", "Algèbre", "Prof A", 12),
			rec("2", "Maths", "UE1", "Algèbre", "Prof A", 12),
			rec("1", "Maths", "UE1", "Algèbre", "Prof A", 10),
			rec("1", "Maths", "UE2", "Analyse", "Prof B", 14),
			rec("7", "Maths", "UE1", "Algèbre", "Prof A", 15),
		})
		require.NoError(t, err)

		table := Rank(store.View())
		assert.Equal(t, [][]string{{"7"}, {"1"}, {"2"}, {"10"}}, keysOf(table))
	})

	t.Run("mixed identifiers rank the same for every row order", func(t *testing.T) {
		ids := []string{"9", "10", "1a", "NaN", "01", "1", "b2"}
		want := [][]string{{"01"}, {"1"}, {"9"}, {"10"}, {"1a"}, {"NaN"}, {"b2"}}

		for shift := 0; shift < len(ids); shift++ {
			for _, reverse := range []bool{false, true} {
				records := make([]domain.Record, len(ids))
				for i := range ids {
					idx := (i + shift) % len(ids)
					if reverse {
						idx = len(ids) - 1 - idx
					}
					records[i] = rec(ids[idx], "Maths", "UE1", "Algèbre", "Prof A", 12)
				}
				store, err := NewStore(baseSchema, records)
				require.NoError(t, err)

				assert.Equal(t, want, keysOf(Rank(store.View())), "shift %d reverse %v", shift, reverse)
			}
		}
	})

	t.Run("empty view", func(t *testing.T) {
		table := Rank(newSampleStore(t).Filter(Predicates{"subject": {"Chimie"}}))
		assert.Zero(t, table.Len())
	})
}

func TestSortByMean_Instructors(t *testing.T) {
	table := Aggregate(newSampleStore(t).View(), []string{domain.ColumnInstructor}, []Metric{MetricMean})
	assert.Equal(t, [][]string{{"Prof A"}, {"Prof B"}, {"Prof C"}}, keysOf(table))

	SortByMean(table)
	assert.Equal(t, [][]string{{"Prof B"}, {"Prof C"}, {"Prof A"}}, keysOf(table))
	assert.InDelta(t, 15.0, table.Rows[0].Stats.Mean.Float64, 1e-9)
	assert.InDelta(t, 13.75, table.Rows[1].Stats.Mean.Float64, 1e-9)
	assert.InDelta(t, 10.0, table.Rows[2].Stats.Mean.Float64, 1e-9)
}
