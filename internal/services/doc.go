// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP and WebSocket handlers and the pure report
// pipeline (dataprocessing and report), owning the state the pipeline
// refuses to hold.
//
// # Dataset Sessions
//
// Each uploaded file becomes a session identified by a UUID. A session
// holds an immutable Store; every query filters a fresh View from it, so
// concurrent requests never observe each other's predicates. When the
// configured limit is reached the least recently used session is evicted.
//
//	svc := services.NewStatsService(cfg.Report.MaxSessions, metrics, logger)
//
//	info, err := svc.LoadDataset(ctx, "notes.csv", file)
//	if err != nil {
//	    return err
//	}
//
//	summary, err := svc.Summary(ctx, info.ID, dataprocessing.Predicates{
//	    "department": {"Maths"},
//	})
//
// # Available Services
//
//	- StatsService: dataset sessions, summaries, sections, reports and exports
//	- HealthService: liveness, readiness and runtime statistics
//
// # Error Handling
//
// Services return sentinel errors that handlers map to problem responses:
//
//	- ErrInvalidDatasetID for malformed ids
//	- ErrSessionNotFound for unknown or evicted datasets
//	- ErrSectionUnavailable when an optional column is missing
//
// Ingestion and schema errors from the ingest and dataprocessing packages
// pass through unchanged.
//
// # Observability
//
// Queries run inside "filter", "aggregate" and "assemble" spans and record
// build durations and selection sizes through the infrastructure metrics.
package services
