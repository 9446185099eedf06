package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epldash/pkg/contracts/domain"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		predicates Predicates
		wantLen    int
	}{
		{"nil predicates return the whole store", nil, 7},
		{"empty value sets place no restriction", Predicates{"department": {}, "instructor": nil}, 7},
		{"single department", Predicates{"department": {"Maths"}}, 4},
		{"values within a column are OR-ed", Predicates{"instructor": {"Prof A", "Prof C"}}, 5},
		{"columns are AND-ed", Predicates{"department": {"Maths"}, "instructor": {"Prof A"}}, 2},
		{"UE alias maps to unit", Predicates{"UE": {"UE2"}}, 3},
		{"unknown column is ignored", Predicates{"campus": {"Nord"}}, 7},
		{"absent optional column is ignored", Predicates{"sex": {"F"}}, 7},
		{"non-categorical column is ignored", Predicates{"score": {"8"}}, 7},
		{"value outside the domain matches nothing", Predicates{"department": {"Chimie"}}, 0},
		{"empty intersection", Predicates{"department": {"Maths"}, "instructor": {"Prof C"}}, 0},
	}

	store := newSampleStore(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := store.Filter(tt.predicates)
			assert.Equal(t, tt.wantLen, view.Len())
		})
	}
}

func TestApply_Soundness(t *testing.T) {
	store := newSampleStore(t)
	predicates := Predicates{
		"department": {"Maths", "Physique"},
		"unit":       {"UE1"},
		"instructor": {"Prof A", "Prof C"},
	}

	view := store.Filter(predicates)
	require.NotZero(t, view.Len())

	all := store.Records()
	for _, r := range view.Records() {
		assert.Contains(t, all, r, "view must be a subset of the store")
		for col, allowed := range predicates {
			val, ok := r.Value(col)
			require.True(t, ok)
			assert.Contains(t, allowed, val)
		}
	}
}

func TestApply_DoesNotMutateSource(t *testing.T) {
	store := newSampleStore(t)
	before := store.Records()

	_ = store.Filter(Predicates{"department": {"Maths"}})
	_ = Apply(store.View(), Predicates{"instructor": {"Prof B"}})

	assert.Equal(t, before, store.Records())
	assert.Equal(t, 7, store.View().Len())
}

func TestApply_Chained(t *testing.T) {
	store := newSampleStore(t)
	first := store.Filter(Predicates{"department": {"Physique"}})
	second := Apply(first, Predicates{"instructor": {"Prof C"}})

	assert.Equal(t, 3, first.Len())
	assert.Equal(t, 2, second.Len())
}

func TestApply_OptionalColumns(t *testing.T) {
	store, err := NewStore(fullSchema(), withOptional(sampleRecords()))
	require.NoError(t, err)

	view := store.Filter(Predicates{domain.ColumnSex: {"M"}})
	assert.Equal(t, 3, view.Len())
	assert.True(t, view.Capabilities().Has(domain.ColumnSex))

	byCard := store.Filter(Predicates{domain.ColumnReportCard: {"S1"}})
	assert.Equal(t, 4, byCard.Len())
}

func TestPredicates_IsEmpty(t *testing.T) {
	assert.True(t, Predicates(nil).IsEmpty())
	assert.True(t, Predicates{"department": nil}.IsEmpty())
	assert.False(t, Predicates{"department": {"Maths"}}.IsEmpty())
}
