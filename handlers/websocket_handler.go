package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/rank-ladder/notify"
)

type WebSocketHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *notify.Hub, allowedOrigins []string) *WebSocketHandler {
	allowAll := slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs subscribes the connection to live events of one team.
// @Summary Live ladder and challenge events of a team
// @Tags ladder
// @Param teamID path int true "Team ID"
// @Router /ws/teams/{teamID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.Int("team_id", teamID), slog.Any("error", err))
		return
	}

	h.hub.Attach(conn, notify.TeamRoom(teamID))
}
