package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"epldash/internal/config"
	"epldash/internal/dataprocessing"
	apierrors "epldash/internal/errors"
	"epldash/internal/infrastructure"
	"epldash/internal/middleware"
	"epldash/internal/report"
	"epldash/internal/services"
	"epldash/pkg/contracts/events"
)

const (
	// Maximum message size allowed from peer
	maxMessageSize = 16 << 10

	// Outbound messages buffered per client
	sendBuffer = 32

	// Upper bound for one query
	queryTimeout = 30 * time.Second
)

// Error codes only used on the live channel
const (
	CodeUnknownMessage = "UNKNOWN_MESSAGE"
	CodeInvalidMessage = "INVALID_MESSAGE"
)

var messageValidator = middleware.NewValidator()

// Client is a middleman between one websocket connection and the query
// service. Every client watches a single dataset.
type Client struct {
	hub     *Hub
	conn    Connection
	service QueryService
	send    chan []byte

	done      chan struct{}
	closeOnce sync.Once

	id          string
	datasetID   string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration

	logger *slog.Logger
}

// NewClient creates a client for datasetID over conn
func NewClient(hub *Hub, conn Connection, service QueryService, datasetID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
		id:          id,
		datasetID:   datasetID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		writeWait:   config.WebSocketWriteWait,
		pongWait:    config.WebSocketPongWait,
		pingPeriod:  config.WebSocketPingPeriod,
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
			slog.String("dataset_id", datasetID),
		),
	}
}

// WithTrace tags the client with the request id of its upgrade request
func (c *Client) WithTrace(traceID string) *Client {
	c.traceID = traceID
	return c
}

// WithTimings overrides the keepalive timings. pingPeriod must be less
// than pongWait.
func (c *Client) WithTimings(pingPeriod, pongWait time.Duration) *Client {
	if pingPeriod > 0 && pongWait > pingPeriod {
		c.pingPeriod = pingPeriod
		c.pongWait = pongWait
	}
	return c
}

// ID returns the client id
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// close stops the write pump; safe to call more than once
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue marshals msg and queues it without blocking. Messages to a full
// or closed client are dropped.
func (c *Client) enqueue(ctx context.Context, msg events.WebSocketMessage) bool {
	if msg.TraceID == "" {
		msg.TraceID = c.traceID
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("message_type", string(msg.Type)),
			slog.String("error", err.Error()))
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		c.hub.metrics.RecordDroppedMessage(ctx, string(msg.Type))
		c.logger.WarnContext(ctx, "Client send buffer full, dropping message",
			slog.String("message_type", string(msg.Type)))
		return false
	}
}

// ReadPump reads client requests and answers them until the connection fails
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}

		reply := c.handle(data)
		c.enqueue(c.context(), reply)
		// the write pump flushes the reply and closes the connection
		if ed, ok := reply.Data.(events.ErrorData); ok && ed.Fatal {
			c.close()
		}
	}
}

// handle answers one client message
func (c *Client) handle(data []byte) events.WebSocketMessage {
	ctx, cancel := context.WithTimeout(c.context(), queryTimeout)
	defer cancel()

	var msg events.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.hub.metrics.RecordMessage(ctx, "in", "invalid", len(data))
		return c.errorMessage("", CodeInvalidMessage, "message is not valid JSON", false)
	}
	c.hub.metrics.RecordMessage(ctx, "in", string(msg.Type), len(data))

	start := time.Now()
	var reply events.WebSocketMessage
	var err error

	switch msg.Type {
	case events.MessageTypePing:
		return c.reply(msg.ID, events.MessageTypePong, nil)

	case events.MessageTypeFilter:
		var summary dataprocessing.Summary
		if err = messageValidator.Struct(msg.Filters); err == nil {
			summary, err = c.service.Summary(ctx, c.datasetID, msg.Filters.Predicates())
		}
		reply = c.reply(msg.ID, events.MessageTypeSummary, summary)

	case events.MessageTypeSection:
		var name report.SectionName
		var section report.Section
		if name, err = report.ParseSection(msg.Section); err == nil {
			if err = messageValidator.Struct(msg.Filters); err == nil {
				section, err = c.service.Section(ctx, c.datasetID, name, msg.Filters.Predicates())
			}
		}
		reply = c.reply(msg.ID, events.MessageTypeTable, section)

	default:
		return c.errorMessage(msg.ID, CodeUnknownMessage, "unknown message type "+string(msg.Type), false)
	}

	c.hub.metrics.RecordQuery(ctx, string(msg.Type), time.Since(start), err)
	if err != nil {
		return c.queryError(ctx, msg.ID, err)
	}
	return reply
}

func (c *Client) reply(id string, msgType events.MessageType, data interface{}) events.WebSocketMessage {
	msg := events.NewMessage(msgType, c.datasetID, data)
	msg.ID = id
	return msg
}

func (c *Client) errorMessage(id, code, message string, fatal bool) events.WebSocketMessage {
	return c.reply(id, events.MessageTypeError, events.ErrorData{Code: code, Message: message, Fatal: fatal})
}

// queryError maps a failed query to an error message. A dataset that is
// gone ends the session.
func (c *Client) queryError(ctx context.Context, id string, err error) events.WebSocketMessage {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		return c.errorMessage(id, apierrors.CodeValidationFailed, err.Error(), false)
	case errors.Is(err, report.ErrUnknownSection):
		return c.errorMessage(id, apierrors.CodeInvalidSection, err.Error(), false)
	case errors.Is(err, services.ErrSectionUnavailable):
		return c.errorMessage(id, apierrors.CodeSectionMissing, err.Error(), false)
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrInvalidDatasetID):
		return c.errorMessage(id, apierrors.CodeDatasetNotFound, "dataset not found or expired", true)
	}

	c.logger.ErrorContext(ctx, "Live query failed", slog.String("error", err.Error()))
	return c.errorMessage(id, apierrors.CodeInternal, "query failed", false)
}

// WritePump writes queued messages and keepalive pings to the connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if !c.write(websocket.TextMessage, message) {
				return
			}

		case <-c.done:
			// flush what is already queued, then say goodbye
			for drained := false; !drained; {
				select {
				case message := <-c.send:
					if !c.write(websocket.TextMessage, message) {
						return
					}
				default:
					drained = true
				}
			}
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.DebugContext(c.context(), "Error writing to WebSocket",
			slog.Int("message_type", messageType),
			slog.String("error", err.Error()))
		return false
	}
	if messageType == websocket.TextMessage {
		c.hub.metrics.RecordMessage(c.context(), "out", "text", len(data))
	}
	return true
}
