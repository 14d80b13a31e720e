// Package server provides the HTTP server and routing for Mars Command.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/mars-command/internal/config"
	"github.com/aristath/mars-command/internal/di"
	historyhandlers "github.com/aristath/mars-command/internal/modules/history/handlers"
	robothandlers "github.com/aristath/mars-command/internal/modules/robots/handlers"
	worldhandlers "github.com/aristath/mars-command/internal/modules/world/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container    // DI container with all services
	Jobs      *di.JobInstances // nil disables manual backups
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	var backups BackupRunner
	if cfg.Jobs != nil && cfg.Jobs.Backup != nil {
		backups = cfg.Jobs.Backup
	}

	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Container.Databases(),
			cfg.Container.Scheduler,
			backups,
			cfg.Container.BackupService,
		),
		eventsStream: NewEventsStreamHandler(cfg.Container.EventBus, cfg.Log),
	}

	s.setupMiddleware()
	s.setupRoutes()

	// No Read/WriteTimeout: websocket streams outlive any fixed deadline.
	// Regular routes are bounded by middleware.Timeout instead.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware shared by every route
func (s *Server) setupMiddleware() {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", robothandlers.HeaderUser, robothandlers.HeaderSession},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false, // identity travels in headers, not cookies
		MaxAge:           300,
	}))
}

// requestMiddleware is applied to every route except the event stream
func (s *Server) requestMiddleware(r chi.Router) {
	r.Use(middleware.Timeout(60 * time.Second))
	if !s.cfg.DevMode {
		r.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	worldHandler := worldhandlers.NewHandler(s.container.World, s.container.EventManager, s.log)
	robotHandler := robothandlers.NewHandler(
		s.container.RobotService,
		s.container.RobotRepo,
		s.container.EventManager,
		s.cfg.DefaultUser,
		s.log,
	)
	historyHandler := historyhandlers.NewHandler(s.container.HistoryService, s.log)

	s.router.Group(func(r chi.Router) {
		s.requestMiddleware(r)

		r.Get("/", s.handleWelcome)
		r.Get("/health", s.handleHealth)

		worldHandler.RegisterRoutes(r)
		robotHandler.RegisterRoutes(r)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/events/ws", s.eventsStream.ServeHTTP)

		r.Group(func(r chi.Router) {
			s.requestMiddleware(r)

			historyHandler.RegisterRoutes(r)

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/jobs", s.systemHandlers.HandleJobs)
				r.Post("/jobs/{name}/run", s.systemHandlers.HandleRunJob)
				r.Get("/backups", s.systemHandlers.HandleListBackups)
				r.Post("/backup", s.systemHandlers.HandleRunBackup)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
