package dataprocessing

import "epldash/pkg/contracts/domain"

// Predicates maps a column name to its accepted values.
// Values within a column are OR-combined, columns are AND-combined, and an
// absent or empty set places no restriction on the column.
type Predicates map[string][]string

// IsEmpty reports whether no column is restricted
func (p Predicates) IsEmpty() bool {
	for _, vals := range p {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Apply returns the records of view matching every predicate.
// Columns unknown to the view's schema are ignored so that datasets without
// optional columns accept the same filter set, as are non-categorical
// columns such as score. The source view is never modified.
func Apply(view *View, p Predicates) *View {
	sets := make(map[string]map[string]bool, len(p))
	for col, allowed := range p {
		if len(allowed) == 0 {
			continue
		}
		col = domain.CanonicalColumn(col)
		if !view.schema.Has(col) || !domain.IsCategorical(col) {
			continue
		}
		set, ok := sets[col]
		if !ok {
			set = make(map[string]bool, len(allowed))
			sets[col] = set
		}
		for _, v := range allowed {
			set[v] = true
		}
	}

	if len(sets) == 0 {
		return newView(view.schema, view.records)
	}

	matched := make([]domain.Record, 0, len(view.records))
	for _, r := range view.records {
		pass := true
		for col, set := range sets {
			val, ok := r.Value(col)
			if !ok || !set[val] {
				pass = false
				break
			}
		}
		if pass {
			matched = append(matched, r)
		}
	}

	return newView(view.schema, matched)
}
