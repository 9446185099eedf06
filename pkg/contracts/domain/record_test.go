package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalColumn(t *testing.T) {
	assert.Equal(t, ColumnUnit, CanonicalColumn("UE"))
	assert.Equal(t, ColumnUnit, CanonicalColumn("ue"))
	assert.Equal(t, ColumnUnit, CanonicalColumn(ColumnUnit))
	assert.Equal(t, "campus", CanonicalColumn("campus"))
}

func TestIsCategorical(t *testing.T) {
	for _, col := range append(append([]string(nil), RequiredColumns...), OptionalColumns...) {
		assert.Equal(t, col != ColumnScore, IsCategorical(col), col)
	}
	assert.False(t, IsCategorical("UE"))
	assert.False(t, IsCategorical("campus"))
}

func TestRecord_Value(t *testing.T) {
	r := Record{
		StudentID:  "7",
		Department: "Maths",
		Unit:       "UE1",
		Subject:    "Algèbre",
		Instructor: "Prof A",
		Score:      12,
		Age:        FloatPtr(19),
		Sex:        StringPtr("F"),
	}

	tests := []struct {
		column string
		want   string
		wantOK bool
	}{
		{ColumnStudentID, "7", true},
		{ColumnUnit, "UE1", true},
		{ColumnAge, "19", true},
		{ColumnSex, "F", true},
		{ColumnReportCard, "", false},
		{ColumnScore, "", false},
		{"UE", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := r.Value(tt.column)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
