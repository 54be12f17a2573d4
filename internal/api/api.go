// Package api exposes batch verification over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/optimode/mailprobe"
)

// BatchVerifier verifies a list of addresses. *mailprobe.Verifier implements it.
type BatchVerifier interface {
	VerifyMany(ctx context.Context, emails []string, opts ...mailprobe.ConcurrencyOptions) ([]mailprobe.Result, error)
}

// Config configures the HTTP surface.
type Config struct {
	Concurrency mailprobe.ConcurrencyOptions
	// MaxBatch caps the number of addresses in one request. Default: 1000
	MaxBatch int
	Logger   zerolog.Logger
}

type handler struct {
	cfg      Config
	verifier BatchVerifier
}

// New builds the fiber app serving POST /verify, GET /metrics and GET /healthz.
func New(v BatchVerifier, cfg Config) *fiber.App {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 1000
	}
	h := &handler{cfg: cfg, verifier: v}

	app := fiber.New(fiber.Config{
		AppName:               "mailprobe",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(h.logRequests)

	app.Post("/verify", h.verify)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	return app
}

// verify takes a JSON array of addresses and answers {address: classification}.
func (h *handler) verify(c *fiber.Ctx) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 || body[0] != '[' {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "request body must be a JSON array of email addresses",
		})
	}
	var emails []string
	if err := json.Unmarshal(body, &emails); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "request body must be a JSON array of email addresses",
		})
	}
	if len(emails) > h.cfg.MaxBatch {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "too many addresses in one request",
		})
	}

	results, err := h.verifier.VerifyMany(c.UserContext(), emails, h.cfg.Concurrency)
	if err != nil {
		h.cfg.Logger.Error().Err(err).Int("count", len(emails)).Msg("batch verification failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "verification failed",
		})
	}
	return c.JSON(mailprobe.Classifications(results))
}

func (h *handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.cfg.Logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return err
}
