package handlers

import (
	"time"

	"produtoapi/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	ping func() error
	log  *logger.Logger
}

// NewHealthHandler creates a HealthHandler that checks the database with ping.
func NewHealthHandler(ping func() error, log *logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HealthHandler{ping: ping, log: log}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when the database is reachable and 503 otherwise.
// The ping error is logged, never returned to the client.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"database": "up",
		"time":     time.Now().Format(time.RFC3339),
	}

	if err := h.ping(); err != nil {
		h.log.Error().Err(err).Msg("database health check failed")
		status = fiber.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "down"
	}

	return c.Status(status).JSON(body)
}
