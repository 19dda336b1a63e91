package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/pickleball-league/middleware"
	"github.com/Dosada05/pickleball-league/models"
	"github.com/Dosada05/pickleball-league/services"
)

// ScoringHandler exposes the umpire console actions. Every action answers
// with the full session view.
type ScoringHandler struct {
	scoringService services.ScoringService
	logger         *slog.Logger
}

func NewScoringHandler(ss services.ScoringService, logger *slog.Logger) *ScoringHandler {
	return &ScoringHandler{
		scoringService: ss,
		logger:         logger,
	}
}

type setGamesInput struct {
	GamesCount int `json:"gamesCount"`
}

type setPointsInput struct {
	Game   int `json:"game"`
	Points int `json:"points"`
}

// SessionHandler handles GET /matches/{matchID}/session
func (h *ScoringHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		return h.scoringService.Session(r.Context(), matchID)
	})
}

// SetGamesHandler handles PUT /matches/{matchID}/setup/games
func (h *ScoringHandler) SetGamesHandler(w http.ResponseWriter, r *http.Request) {
	var input setGamesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		return h.scoringService.SetGamesCount(r.Context(), matchID, input.GamesCount)
	})
}

// SetPointsHandler handles PUT /matches/{matchID}/setup/points
func (h *ScoringHandler) SetPointsHandler(w http.ResponseWriter, r *http.Request) {
	var input setPointsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		return h.scoringService.SetPointsPerGame(r.Context(), matchID, input.Game, input.Points)
	})
}

// CompleteSetupHandler handles POST /matches/{matchID}/setup/complete
func (h *ScoringHandler) CompleteSetupHandler(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		return h.scoringService.CompleteSetup(r.Context(), matchID)
	})
}

// ScoreHandler handles POST /matches/{matchID}/score
func (h *ScoringHandler) ScoreHandler(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		return h.scoringService.UpdateScore(r.Context(), matchID, input)
	})
}

// ServeHandler handles POST /matches/{matchID}/serve
func (h *ScoringHandler) ServeHandler(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		return h.scoringService.ChangeServe(r.Context(), matchID)
	})
}

// SubstitutionOptionsHandler handles
// GET /matches/{matchID}/substitutions/options?team=team1&playerOut=<id>
func (h *ScoringHandler) SubstitutionOptionsHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	team := models.TeamSlot(query.Get("team"))
	if !team.Valid() {
		badRequestResponse(w, r, errors.New("team query parameter must be team1 or team2"))
		return
	}

	opts, err := h.scoringService.SubstitutionOptions(r.Context(), matchID, team, query.Get("playerOut"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"options": opts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubstituteHandler handles POST /matches/{matchID}/substitutions
func (h *ScoringHandler) SubstituteHandler(w http.ResponseWriter, r *http.Request) {
	var input services.SubstitutionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		return h.scoringService.RequestSubstitution(r.Context(), matchID, input)
	})
}

// EndHandler handles POST /matches/{matchID}/end
func (h *ScoringHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(matchID string) (*services.SessionView, error) {
		view, err := h.scoringService.EndMatch(r.Context(), matchID)
		if err != nil {
			return nil, err
		}
		umpireID, _ := middleware.GetUserIDFromContext(r.Context())
		h.logger.Info("match ended",
			slog.String("match_id", matchID),
			slog.String("umpire_id", umpireID),
			slog.String("winner", view.Match.Winner),
			slog.String("final_score", view.Match.FinalScore))
		return view, nil
	})
}

func (h *ScoringHandler) run(w http.ResponseWriter, r *http.Request, action func(matchID string) (*services.SessionView, error)) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := action(matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
