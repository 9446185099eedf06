package websocket

import (
	"context"
	"time"

	"epldash/internal/dataprocessing"
	"epldash/internal/report"
	"epldash/internal/services"
)

// Connection defines the subset of a WebSocket connection the client uses.
// This allows for proper mocking in tests.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// QueryService answers live filter queries against a loaded dataset
type QueryService interface {
	Dataset(id string) (services.DatasetInfo, error)
	Summary(ctx context.Context, id string, predicates dataprocessing.Predicates) (dataprocessing.Summary, error)
	Section(ctx context.Context, id string, name report.SectionName, predicates dataprocessing.Predicates) (report.Section, error)
}
