package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/pickleball-league/live"
	"github.com/Dosada05/pickleball-league/scoring"
	"github.com/Dosada05/pickleball-league/services"
)

type WebSocketHandler struct {
	hub          *live.Hub
	matchService services.MatchService
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewWebSocketHandler builds the display feed handler. An empty origin list
// or "*" accepts every origin.
func NewWebSocketHandler(hub *live.Hub, ms services.MatchService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		matchService: ms,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeMatch handles GET /ws/matches/{matchID}. The client first receives the
// current scoreboard, then every update of the match.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	board, err := h.matchService.Scoreboard(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.serve(w, r, live.MatchRoom(matchID), &live.Message{Type: live.MessageSnapshot, Payload: board})
}

// ServeTournament handles GET /ws/tournaments/{tournamentID}. The snapshot
// lists the scoreboard of every match in the tournament.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListTournamentMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	boards := make([]scoring.Scoreboard, 0, len(matches))
	for _, m := range matches {
		boards = append(boards, scoring.Summarize(m))
	}

	h.serve(w, r, live.TournamentRoom(tournamentID), &live.Message{Type: live.MessageSnapshot, Payload: boards})
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, roomID string, initial *live.Message) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("websocket upgrade failed", slog.String("room", roomID), slog.Any("error", err))
		return
	}
	h.hub.Serve(conn, roomID, initial)
	h.logger.Debug("websocket client joined", slog.String("room", roomID))
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
