package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/tournament-generator/handlers"
	"github.com/Dosada05/tournament-generator/middleware"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	// Metrics serves /metrics when set.
	Metrics http.Handler
	// ExportDir is served under /exports when set.
	ExportDir string
}

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Bracket    *handlers.BracketHandler
	Simulation *handlers.SimulationHandler
	Export     *handlers.ExportHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}
	if opts.ExportDir != "" {
		router.Handle("/exports/*", http.StripPrefix("/exports/", http.FileServer(http.Dir(opts.ExportDir))))
	}

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		if opts.RateLimitRPS > 0 {
			r.Use(middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Handler)
		}

		r.Post("/simulations", h.Simulation.EstimateHandler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.With(middleware.Authenticate(opts.JWTSecret), middleware.Authorize(middleware.RoleOrganizer)).
				Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetHandler)
				r.Get("/standings", h.Bracket.StandingsHandler)
				r.Get("/simulations", h.Simulation.HistoryHandler)
				r.Get("/schedule.xlsx", h.Export.WorkbookHandler)
				r.Get("/charts/rounds.png", h.Export.RoundChartHandler)
				r.Get("/charts/durations.png", h.Export.DurationChartHandler)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Authenticate(opts.JWTSecret))
					r.Use(middleware.Authorize(middleware.RoleOrganizer))

					r.Delete("/", h.Tournament.DeleteHandler)
					r.Post("/rounds/{round}/games", h.Bracket.GenerateGamesHandler)
					r.Post("/rounds/{round}/progress", h.Bracket.ProgressHandler)
					r.Delete("/rounds/{round}/progress", h.Bracket.ResetProgressionHandler)
					r.Put("/games/{gameID}/results", h.Bracket.SetResultsHandler)
					r.Delete("/games/{gameID}/results", h.Bracket.ResetResultsHandler)
					r.Post("/simulations", h.Simulation.SimulateTournamentHandler)
					r.Post("/publish", h.Export.PublishHandler)
				})
			})
		})
	})
}
