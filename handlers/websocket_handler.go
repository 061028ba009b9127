package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/contest-system/realtime"
	"github.com/Dosada05/contest-system/services"
)

type WebSocketHandler struct {
	hub            *realtime.Hub
	contestService services.ContestService
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewWebSocketHandler принимает список разрешенных Origin; "*" разрешает любые.
func NewWebSocketHandler(hub *realtime.Hub, cs services.ContestService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:            hub,
		contestService: cs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWs подписывает клиента на события конкурса.
// @Summary Подписка на события конкурса
// @Tags realtime
// @Param contestID path int true "Contest ID"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} map[string]string "Конкурс не найден"
// @Router /ws/contests/{contestID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.contestService.GetByID(r.Context(), contestID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("failed to upgrade websocket connection", slog.Int("contest_id", contestID), slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, realtime.ContestRoom(contestID))
	if !h.hub.Register(r.Context(), client) {
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client subscribed", slog.String("room", client.Room()))
}
