// Package server exposes a learning session over HTTP.
package server

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"studymate/internal/domain"
)

// Learner is the session surface served over HTTP.
type Learner interface {
	Load(path string) (*domain.Document, error)
	Chat(ctx context.Context, message string) (string, error)
	Summarize(ctx context.Context) (string, error)
	Review(ctx context.Context) (string, error)
	Progress() (domain.ProgressReport, error)
}

// Config configures the HTTP server.
type Config struct {
	UploadDir   string
	ChunkDir    string
	BodyLimitMB int
}

// Server serialises all session access behind one mutex.
type Server struct {
	app     *fiber.App
	cfg     Config
	mu      sync.Mutex
	learner Learner
	log     zerolog.Logger
}

// New creates the fiber app and registers routes.
func New(cfg Config, learner Learner, log zerolog.Logger) *Server {
	if cfg.BodyLimitMB <= 0 {
		cfg.BodyLimitMB = 16
	}
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.BodyLimitMB * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})
	s := &Server{app: app, cfg: cfg, learner: learner, log: log}
	s.registerRoutes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Post("/upload", s.uploadChunk)
	s.app.Post("/upload/complete", s.completeUpload)
	s.app.Post("/chat", s.chat)
	s.app.Post("/summary", s.summary)
	s.app.Post("/review", s.review)
	s.app.Get("/progress", s.progress)
}
