package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/open-wander/samplerate/internal/config"
	"github.com/open-wander/samplerate/internal/store"
)

// bodyLimit caps uploaded datasets. Only the first rows are read, but the
// body arrives in full.
const bodyLimit = 16 * 1024 * 1024

// Server represents the HTTP server instance
type Server struct {
	app    *fiber.App
	config *config.Config
	store  *store.Store
	logger *slog.Logger
}

// New creates a new Server. Estimation defaults (delimiter, column, rows,
// modes) come from cfg and can be overridden per request.
func New(cfg *config.Config, st *store.Store) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "samplerate",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})

	s := &Server{
		app:    app,
		config: cfg,
		store:  st,
		logger: slog.Default().With("component", "server"),
	}

	// Registered ahead of the auth middleware so probes need no credentials.
	s.app.Get("/healthz", s.handleHealth)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the application
func (s *Server) setupMiddleware() {
	if authMiddleware := s.createAuthMiddleware(); authMiddleware != nil {
		s.app.Use(authMiddleware)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")
	api.Get("/patterns", s.handlePatterns)
	api.Post("/guess", s.handleGuess)
	api.Post("/estimate", s.handleEstimate)
	api.Get("/estimates", s.handleListEstimates)
	api.Get("/estimates/:id", s.handleGetEstimate)
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting server", "listen", s.config.Listen)
	return s.app.Listen(s.config.Listen)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down server")
	return s.app.Shutdown()
}
