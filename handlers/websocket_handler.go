package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/eventbus"
)

// Message types sent to websocket clients, one per event topic.
const (
	MessageGamesGenerated  = "GAMES_GENERATED"
	MessageResultsUpdated  = "RESULTS_UPDATED"
	MessageTeamsProgressed = "TEAMS_PROGRESSED"
)

var messageTypes = map[string]string{
	eventbus.TopicGamesGenerated:  MessageGamesGenerated,
	eventbus.TopicResultsUpdated:  MessageResultsUpdated,
	eventbus.TopicTeamsProgressed: MessageTeamsProgressed,
}

// RoomID names the hub room of a tournament.
func RoomID(tournamentID string) string {
	return "tournament_" + tournamentID
}

type WebSocketHandler struct {
	hub      *brackets.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" accepts any origin.
func NewWebSocketHandler(hub *brackets.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	anyOrigin := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if anyOrigin || origin == "" {
					return true
				}
				return slices.ContainsFunc(allowedOrigins, func(o string) bool { return strings.EqualFold(o, origin) })
			},
		},
	}
}

// ServeWs handles /ws/tournaments/{tournamentID}. Clients receive every change made to
// that tournament from the moment they connect.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		http.Error(w, "Missing tournamentID", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: RoomID(tournamentID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// EventSubscriber is the part of eventbus.Bus RelayEvents needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, handle func(eventbus.Event)) error
}

// RelayEvents forwards every bus event to the hub room of its tournament until ctx is done.
func RelayEvents(ctx context.Context, bus EventSubscriber, hub *brackets.Hub) error {
	for _, topic := range eventbus.Topics {
		messageType := messageTypes[topic]
		err := bus.Subscribe(ctx, topic, func(ev eventbus.Event) {
			room := RoomID(ev.TournamentID)
			hub.BroadcastToRoom(room, brackets.WebSocketMessage{
				Type:    messageType,
				Payload: ev.Payload,
				RoomID:  room,
			})
		})
		if err != nil {
			return fmt.Errorf("relaying %s: %w", topic, err)
		}
	}
	return nil
}
