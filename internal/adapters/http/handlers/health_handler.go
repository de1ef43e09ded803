package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"padyai-portal/internal/config"
	"padyai-portal/internal/pkg/response"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	rdb *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(rdb *redis.Client) *HealthHandler {
	return &HealthHandler{rdb: rdb}
}

// Root returns a liveness banner for the bare domain
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "Padyai Portal API v1.0",
		"mode":    config.AppConfig.AppMode,
	})
}

// Check returns service health
// @Summary Health check
// @Description Check API, database and session store health
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := config.HealthCheck(); err != nil {
		dbStatus = "down"
	}

	redisStatus := "ok"
	if h.rdb != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	data := fiber.Map{
		"status":    "ok",
		"database":  dbStatus,
		"redis":     redisStatus,
		"timestamp": time.Now().UTC(),
	}

	if dbStatus != "ok" || redisStatus != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Response{
			Success: false,
			Message: "Service degraded",
			Data:    data,
		})
	}

	return response.Success(c, "Service healthy", data)
}
