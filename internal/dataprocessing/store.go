package dataprocessing

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"epldash/pkg/contracts/domain"
)

// Capabilities is the set of optional columns available in a dataset.
// It is computed once per store or view and drives optional report sections.
type Capabilities map[string]bool

// Has reports whether the optional column is available
func (c Capabilities) Has(column string) bool {
	return c[column]
}

// List returns the available optional columns in canonical order
func (c Capabilities) List() []string {
	list := make([]string, 0, len(c))
	for _, col := range domain.OptionalColumns {
		if c[col] {
			list = append(list, col)
		}
	}
	return list
}

func capabilitiesOf(schema domain.Schema) Capabilities {
	caps := make(Capabilities, len(domain.OptionalColumns))
	for _, col := range domain.OptionalColumns {
		if schema.Has(col) {
			caps[col] = true
		}
	}
	return caps
}

// Store is the immutable in-memory table of one uploaded dataset
type Store struct {
	schema  domain.Schema
	records []domain.Record
	caps    Capabilities
}

// NewStore validates the schema and records and builds a store.
// Missing required columns are reported together as a *SchemaError before
// any record is inspected.
func NewStore(schema domain.Schema, records []domain.Record) (*Store, error) {
	if missing := schema.Missing(); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	for i, r := range records {
		if strings.TrimSpace(r.StudentID) == "" {
			return nil, &RecordError{Index: i, Err: ErrMissingStudentID}
		}
		if math.IsNaN(r.Score) || r.Score < domain.MinScore || r.Score > domain.MaxScore {
			return nil, &RecordError{Index: i, StudentID: r.StudentID, Err: ErrScoreOutOfRange}
		}
	}

	s := &Store{
		schema:  append(domain.Schema(nil), schema...),
		records: append([]domain.Record(nil), records...),
		caps:    capabilitiesOf(schema),
	}
	return s, nil
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Schema returns a copy of the dataset schema
func (s *Store) Schema() domain.Schema {
	return append(domain.Schema(nil), s.schema...)
}

// Capabilities returns the optional columns present in the dataset
func (s *Store) Capabilities() Capabilities {
	return s.caps
}

// Records returns a copy of every record
func (s *Store) Records() []domain.Record {
	return append([]domain.Record(nil), s.records...)
}

// View returns an unfiltered view of the whole store
func (s *Store) View() *View {
	return newView(s.schema, s.records)
}

// Filter applies predicates to the store
func (s *Store) Filter(p Predicates) *View {
	return Apply(s.View(), p)
}

// Domain returns the sorted distinct values of a column
func (s *Store) Domain(column string) []string {
	return s.View().Domain(column)
}

// View is a read-only projection of a store
type View struct {
	schema  domain.Schema
	records []domain.Record
	caps    Capabilities
}

func newView(schema domain.Schema, records []domain.Record) *View {
	return &View{
		schema:  schema,
		records: records,
		caps:    capabilitiesOf(schema),
	}
}

// Len returns the number of records in the view
func (v *View) Len() int {
	return len(v.records)
}

// Schema returns the columns of the view
func (v *View) Schema() domain.Schema {
	return append(domain.Schema(nil), v.schema...)
}

// Capabilities returns the optional columns available in the view
func (v *View) Capabilities() Capabilities {
	return v.caps
}

// Records returns a copy of the records in the view
func (v *View) Records() []domain.Record {
	return append([]domain.Record(nil), v.records...)
}

// Scores returns the score column
func (v *View) Scores() []float64 {
	scores := make([]float64, len(v.records))
	for i, r := range v.records {
		scores[i] = r.Score
	}
	return scores
}

// Domain returns the sorted distinct values of a column in the view.
// Unknown or absent columns yield nil.
func (v *View) Domain(column string) []string {
	column = domain.CanonicalColumn(column)
	if !v.schema.Has(column) || !domain.IsCategorical(column) {
		return nil
	}
	seen := make(map[string]bool)
	var values []string
	for _, r := range v.records {
		val, ok := r.Value(column)
		if !ok || seen[val] {
			continue
		}
		seen[val] = true
		values = append(values, val)
	}
	sort.Slice(values, func(i, j int) bool {
		return compareValues(values[i], values[j]) < 0
	})
	return values
}

// compareValues is a total order over key values: plain decimal numbers
// come first in numeric order, then every other value in lexical order.
// Numbers of equal value ("01", "1") fall back to lexical order.
func compareValues(a, b string) int {
	na, nb := isDecimal(a), isDecimal(b)
	switch {
	case na && !nb:
		return -1
	case !na && nb:
		return 1
	case na && nb:
		fa, _ := strconv.ParseFloat(a, 64)
		fb, _ := strconv.ParseFloat(b, 64)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// isDecimal reports whether s is digits with at most one inner decimal point
func isDecimal(s string) bool {
	digits, dot := 0, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot && digits > 0 && i < len(s)-1:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

// compareKeys orders key tuples component by component
func compareKeys(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
