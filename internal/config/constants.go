package config

import "time"

// Application constants
const (
	AppName   = "Tableau de bord EPL"
	AppVendor = "EPL"

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"

	// Report defaults
	DefaultMaxUploadBytes = 32 << 20
	DefaultMaxSessions    = 64
	DefaultWorkbookName   = "rapport_EPL.xlsx"
	DefaultBulletinsName  = "bulletins_etudiants.csv"
	DefaultDatasetName    = "dataset_etudiants.csv"

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second
	WebSocketWriteWait  = 10 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50
)

// API Endpoints
const (
	APIPrefix         = "/api"
	DatasetsEndpoint  = "/api/datasets"
	HealthEndpoint    = "/api/health"
	VersionEndpoint   = "/api/version"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws/datasets"
)

// Content types for downloads
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)
