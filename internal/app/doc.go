// Package app wires the dashboard together and runs it.
//
// NewApplication resolves the data directories, initializes OpenTelemetry,
// creates the dataset session service, the websocket hub and the health
// service, and builds the chi router:
//
//	/ws/datasets/{id}      RequestID, RealIP only (the connection is hijacked)
//	/api/health, /api/version, /api/datasets
//	                       + OTel, Logger, Recoverer, SecurityHeaders, CORS, RateLimit
//	/metrics               Prometheus exposition
//
// Usage:
//
//	cfg, err := config.Load()
//	logger, err := infrastructure.InitializeLogger(cfg.Logging)
//	application, err := app.NewApplication(cfg, logger, nil)
//	if err := application.Run(); err != nil {
//	    ...
//	}
//
// Run blocks until SIGINT or SIGTERM, then shuts the HTTP server down within
// Server.ShutdownTimeout, disconnects websocket clients and flushes the
// OpenTelemetry providers.
package app
