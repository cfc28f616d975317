// Package server exposes the refinement pipeline over HTTP for clients
// that record audio themselves.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chaz8081/gostt-refine/internal/config"
	"github.com/chaz8081/gostt-refine/internal/refine"
)

// Refiner runs one refinement request.
type Refiner interface {
	Refine(ctx context.Context, a refine.Audio, style refine.Style) (refine.Result, error)
}

// Server wraps the fiber app.
type Server struct {
	app          *fiber.App
	refiner      Refiner
	defaultStyle refine.Style
	logger       *slog.Logger
}

// New builds the HTTP app. Requests that omit the style field use
// defaultStyle.
func New(cfg *config.ServerConfig, refiner Refiner, defaultStyle refine.Style, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{refiner: refiner, defaultStyle: defaultStyle, logger: logger}

	limit := cfg.MaxUploadMiB
	if limit <= 0 {
		limit = 25
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "gostt-refine",
		BodyLimit:             limit << 20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	api := s.app.Group("/api")
	api.Get("/styles", s.handleStyles)
	api.Post("/refine", s.handleRefine)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("[server] listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleStyles(c *fiber.Ctx) error {
	return c.JSON(refine.Styles())
}

func (s *Server) handleRefine(c *fiber.Ctx) error {
	style := refine.Style(strings.ToLower(strings.TrimSpace(c.FormValue("style"))))
	if style == "" {
		style = s.defaultStyle
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "audio file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "could not read the uploaded audio")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "could not read the uploaded audio")
	}

	a := refine.Audio{Data: data, MIMEType: fh.Header.Get("Content-Type")}
	res, err := s.refiner.Refine(c.UserContext(), a, style)
	if err != nil {
		s.logger.Warn("[server] refine failed", "style", string(style), "error", err)
		return toHTTPError(err)
	}
	return c.JSON(res)
}

// toHTTPError maps a refinement failure onto a status code. Client-side
// problems are 400; remote and response problems are 502.
func toHTTPError(err error) error {
	var rerr *refine.Error
	if !errors.As(err, &rerr) {
		return fiber.NewError(http.StatusInternalServerError, "An unexpected error occurred.")
	}
	switch rerr.Kind {
	case refine.KindStyle, refine.KindEncoding:
		return fiber.NewError(http.StatusBadRequest, rerr.Message)
	default:
		return fiber.NewError(http.StatusBadGateway, rerr.Message)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	msg := "An unexpected error occurred."
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code, msg = ferr.Code, ferr.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
