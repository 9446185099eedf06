package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"epldash/internal/config"
	apierrors "epldash/internal/errors"
	"epldash/internal/services"
	"epldash/pkg/contracts/events"
)

// Handler upgrades GET /ws/datasets/{id} to a live filter channel
type Handler struct {
	hub          *Hub
	service      QueryService
	upgrader     websocket.Upgrader
	cfg          config.WebSocketConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHandler creates the upgrade handler. Origins not in allowedOrigins are
// refused unless the list contains "*".
func NewHandler(hub *Hub, service QueryService, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *Handler {
	h := &Handler{
		hub:          hub,
		service:      service,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "websocket.handler")),
		errorHandler: errorHandler,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker accepts requests without an Origin header, same-host
// origins and the configured list
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}
	_, wildcard := set["*"]

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		if _, ok := set[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ServeHTTP validates the dataset, upgrades the connection and starts the pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reqID := chimiddleware.GetReqID(r.Context())

	info, err := h.service.Dataset(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDatasetID):
			err = apierrors.ErrValidation("id", fmt.Sprintf("Dataset id %q is not a valid UUID", id))
		case errors.Is(err, services.ErrSessionNotFound):
			err = apierrors.DatasetNotFoundError(id)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("request_id", reqID),
			slog.String("dataset_id", id),
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), h.service, info.ID, h.logger).
		WithTrace(reqID).
		WithTimings(h.cfg.PingPeriod, h.cfg.PongWait)

	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	client.enqueue(r.Context(), events.NewMessage(events.MessageTypeConnect, info.ID, map[string]interface{}{
		"client_id": client.ID(),
		"dataset":   info,
	}))

	go client.WritePump()
	go client.ReadPump()
}
