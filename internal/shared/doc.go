// Package shared holds code used across the dashboard packages that belongs
// to no single layer.
//
// The testutil subpackage provides:
//
//	- dataset fixtures (schemas, records, CSV files in the French layout)
//	- a buffered slog handler for asserting on log output
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    store, err := dataprocessing.NewStore(testutil.BaseSchema(), testutil.SampleRecords())
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing here may import the domain packages it serves except
// pkg/contracts.
package shared
