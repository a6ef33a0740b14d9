// Package api serves the task web page and its JSON API.
package api

import (
	"context"
	"embed"
	"errors"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nissyi-gh/remind/internal/query"
	"github.com/nissyi-gh/remind/internal/reminder"
	"github.com/nissyi-gh/remind/internal/store"
)

//go:embed static/index.html static/service-worker.js
var staticFS embed.FS

// TaskWriter is the mutating half of the task store.
type TaskWriter interface {
	Add(ctx context.Context, title, description, deadline, owner string) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	Toggle(ctx context.Context, id string) (bool, error)
}

// Reminder runs one reminder pass on demand.
type Reminder interface {
	Run(ctx context.Context) (reminder.Result, error)
}

// Server wires the HTTP routes to the store, the query service and the
// reminder job.
type Server struct {
	app      *fiber.App
	tasks    TaskWriter
	query    *query.Service
	reminder Reminder
	apiKey   string
	logger   *log.Logger
}

// New builds the server and its routes. An empty apiKey disables the
// send-email endpoint.
func New(tasks TaskWriter, q *query.Service, r Reminder, apiKey string, logger *log.Logger) *Server {
	s := &Server{
		tasks:    tasks,
		query:    q,
		reminder: r,
		apiKey:   apiKey,
		logger:   logger,
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())
	s.routes()
	return s
}

// App exposes the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown stops accepting requests and waits for in-flight ones, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/", s.staticFile("static/index.html", fiber.MIMETextHTMLCharsetUTF8))
	s.app.Get("/service-worker.js", s.staticFile("static/service-worker.js", fiber.MIMEApplicationJavaScriptCharsetUTF8))
	s.app.Get("/health", s.health)

	api := s.app.Group("/api")
	api.Get("/tasks", s.listTasks)
	api.Post("/tasks", s.addTask)
	api.Get("/tasks/:id", s.getTask)
	api.Delete("/tasks/:id", s.deleteTask)
	api.Post("/tasks/:id/toggle", s.toggleTask)
	api.Get("/stats", s.stats)
	api.Post("/send-email", s.requireAPIKey(), s.sendEmail)
}

// errorHandler maps handler errors onto the JSON error envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fe *fiber.Error
	switch {
	case store.IsValidation(err):
		code = fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		code = fiber.StatusNotFound
		message = store.ErrNotFound.Error()
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(errorResponse{Success: false, Error: message})
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

func (s *Server) staticFile(name, contentType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := staticFS.ReadFile(name)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(body)
	}
}
