// Package dataprocessing implements the statistics core of the EPL dashboard:
// the record store, the filter engine and the aggregator.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Store: the immutable table of one uploaded dataset, validated once
// 2. Filter: equality / set-membership predicates producing a View
// 3. Aggregator: grouped and global statistics over a View
//
// # Usage
//
//	store, err := dataprocessing.NewStore(schema, records)
//	if err != nil {
//	    // *SchemaError when a required column is absent
//	}
//
//	view := store.Filter(dataprocessing.Predicates{
//	    "department": {"Maths", "Physique"},
//	})
//
//	byDept := dataprocessing.Aggregate(view, []string{"department"},
//	    []dataprocessing.Metric{dataprocessing.MetricMean, dataprocessing.MetricStd})
//	ranking := dataprocessing.Rank(view)
//
// # Data Flow
//
//	Records → Store → Filter → View → Aggregate / Rank / Summarize → Table
//
// # Undefined statistics
//
// Statistics that cannot be computed (mean of an empty view, standard
// deviation of a single observation) are NullFloat values with Valid=false.
// They encode to JSON null and to empty cells on export; NaN is never produced.
//
// Everything here is a pure function of its inputs. Callers own any session
// or selection state.
package dataprocessing
