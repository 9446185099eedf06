// Package events contains the message contracts of the live filter
// WebSocket channel.
package events

import (
	"time"

	api "epldash/pkg/contracts/api/v1"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeFilter  MessageType = "filter"
	MessageTypeSection MessageType = "section"
	MessageTypePing    MessageType = "ping"

	// Server to client
	MessageTypeConnect MessageType = "connect"
	MessageTypeSummary MessageType = "summary"
	MessageTypeTable   MessageType = "table"
	MessageTypePong    MessageType = "pong"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is a server to client message
type WebSocketMessage struct {
	BaseMessage
	DatasetID string      `json:"dataset_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ClientMessage is a client to server request.
// Section is only read for section messages.
type ClientMessage struct {
	ID      string            `json:"id,omitempty"`
	Type    MessageType       `json:"type"`
	Filters api.FilterRequest `json:"filters"`
	Section string            `json:"section,omitempty"`
}

// ErrorData is the payload of an error message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// NewMessage stamps a server message
func NewMessage(msgType MessageType, datasetID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
		},
		DatasetID: datasetID,
		Data:      data,
	}
}
