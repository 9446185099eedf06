// Package http implements the HTTP handlers of the dashboard API.
// Handlers stay thin: they decode and validate request contracts, call the
// service layer and render either a JSON envelope or an RFC 7807 problem.
//
// # Routes
//
//	POST   /api/datasets                          upload a CSV or XLSX file (multipart "file")
//	GET    /api/datasets                          list loaded datasets
//	GET    /api/datasets/{id}                     dataset info
//	DELETE /api/datasets/{id}                     drop a dataset
//	GET    /api/datasets/{id}/filters             distinct values of filterable columns
//	POST   /api/datasets/{id}/summary             global metrics of the filtered records
//	POST   /api/datasets/{id}/sections/{section}  one aggregation table
//	POST   /api/datasets/{id}/report              assembled report
//	POST   /api/datasets/{id}/export/xlsx         workbook download
//	POST   /api/datasets/{id}/export/bulletins    report cards CSV download
//	GET    /api/health[/ready|/live|/stats]       health checks
//	GET    /api/version                           build information
//
// # Responses
//
// Successful responses use a small envelope:
//
//	{"status": "success", "data": ..., "count": 3}
//
// Errors follow RFC 7807 and carry the request id as trace_id:
//
//	{
//	    "type": "/errors/dataset/schema-mismatch",
//	    "title": "Schema Mismatch",
//	    "status": 422,
//	    "detail": "schema mismatch: missing required columns: unit, instructor",
//	    "instance": "/api/datasets",
//	    "missing_columns": ["unit", "instructor"]
//	}
//
// Service sentinels (unknown dataset, unavailable section) are translated
// here; ingestion and validation errors are classified by the shared
// ErrorHandler.
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// DatasetServiceInterface.
package http
