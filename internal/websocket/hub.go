package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apierrors "epldash/internal/errors"
	"epldash/internal/infrastructure"
	"epldash/pkg/contracts/events"
)

// Hub maintains the set of live filter clients, grouped by dataset
type Hub struct {
	// Registered clients per dataset id
	clients map[string]map[*Client]struct{}

	register     chan *Client
	unregister   chan *Client
	closeDataset chan string

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *OTelMetrics

	totalConnections int64

	quit    chan struct{}
	stopped chan struct{}
	running bool
}

// NewHub creates a new Hub. A nil metrics set disables metric recording.
func NewHub(logger *slog.Logger, metrics *OTelMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:      make(map[string]map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		closeDataset: make(chan string),
		logger:       logger.With(slog.String("component", "websocket.hub")),
		metrics:      metrics,
		quit:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop
func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case <-h.quit:
			h.shutdown()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.datasetID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.datasetID] = set
			}
			set[client] = struct{}{}
			h.totalConnections++
			count := h.countLocked()
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.RecordConnection(ctx, client.datasetID)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("dataset_id", client.datasetID),
				slog.String("remote_addr", client.remoteAddr))

		case client := <-h.unregister:
			if h.remove(client) {
				ctx := client.context()
				h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), "client")
				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", h.ClientCount()),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case datasetID := <-h.closeDataset:
			h.mu.Lock()
			set := h.clients[datasetID]
			delete(h.clients, datasetID)
			h.mu.Unlock()

			for client := range set {
				msg := events.NewMessage(events.MessageTypeError, datasetID, events.ErrorData{
					Code:    apierrors.CodeDatasetNotFound,
					Message: "dataset was removed",
					Fatal:   true,
				})
				client.enqueue(client.context(), msg)
				client.close()
				h.metrics.RecordDisconnection(client.context(), time.Since(client.connectedAt), "dataset_closed")
			}
			if len(set) > 0 {
				h.logger.Info("Disconnected clients of removed dataset",
					slog.String("dataset_id", datasetID),
					slog.Int("clients", len(set)))
			}
		}
	}
}

// remove drops a client and reports whether it was registered
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.datasetID]
	if !ok {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.datasetID)
	}
	client.close()
	return true
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for datasetID, set := range h.clients {
		for client := range set {
			client.close()
			h.metrics.RecordDisconnection(context.Background(), time.Since(client.connectedAt), "shutdown")
		}
		delete(h.clients, datasetID)
	}
}

// Register adds a client. It returns false once the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// CloseDataset disconnects every client watching a dataset
func (h *Hub) CloseDataset(datasetID string) {
	select {
	case h.closeDataset <- datasetID:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// DatasetClientCount returns the number of clients watching one dataset
func (h *Hub) DatasetClientCount(datasetID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[datasetID])
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Stop disconnects all clients and waits for the loop to exit
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.stopped
}

// GetHubMetrics returns current hub counters
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    h.countLocked(),
		"datasets_watched":  len(h.clients),
		"total_connections": h.totalConnections,
	}
}
