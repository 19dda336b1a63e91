package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/pickleball-league/handlers"
	"github.com/Dosada05/pickleball-league/middleware"
	"github.com/Dosada05/pickleball-league/models"
)

// Options configures cross-cutting behaviour of the router.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(
	router chi.Router,
	matchHandler *handlers.MatchHandler,
	scoringHandler *handlers.ScoringHandler,
	webSocketHandler *handlers.WebSocketHandler,
	opts Options,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	umpireOnly := middleware.Authorize(string(models.RoleUmpire), string(models.RoleAdmin))
	adminOnly := middleware.Authorize(string(models.RoleAdmin))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/ws", func(r chi.Router) {
		r.Get("/matches/{matchID}", webSocketHandler.ServeMatch)
		r.Get("/tournaments/{tournamentID}", webSocketHandler.ServeTournament)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(10 * time.Second))
			r.Get("/", matchHandler.GetHandler)
			r.Get("/scoreboard", matchHandler.ScoreboardHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(umpireOnly)

			r.Get("/session", scoringHandler.SessionHandler)
			r.Put("/setup/games", scoringHandler.SetGamesHandler)
			r.Put("/setup/points", scoringHandler.SetPointsHandler)
			r.Post("/setup/complete", scoringHandler.CompleteSetupHandler)
			r.Post("/score", scoringHandler.ScoreHandler)
			r.Post("/serve", scoringHandler.ServeHandler)
			r.Get("/substitutions/options", scoringHandler.SubstitutionOptionsHandler)
			r.Post("/substitutions", scoringHandler.SubstituteHandler)
			r.Post("/end", scoringHandler.EndHandler)
		})
	})

	router.Route("/tournaments/{tournamentID}/matches", func(r chi.Router) {
		r.Get("/", matchHandler.ListTournamentMatchesHandler)
		r.With(authenticate, adminOnly).Post("/", matchHandler.CreateHandler)
	})

	router.With(authenticate, adminOnly).Post("/players", matchHandler.RegisterPlayerHandler)
}
