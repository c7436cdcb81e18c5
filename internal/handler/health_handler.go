package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/utils"
)

// HealthHandler reports liveness and dependency reachability.
type HealthHandler struct {
	db    *gorm.DB
	cache *redis.Client
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB, cache *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Register mounts the health route.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.check)
}

func (h *HealthHandler) check(c *fiber.Ctx) error {
	checks := fiber.Map{
		"database": h.databaseStatus(c),
		"cache":    h.cacheStatus(c),
	}

	for _, status := range checks {
		if status != "ok" {
			return utils.SendSuccessWithStatus(c, fiber.StatusServiceUnavailable, "degraded", checks)
		}
	}

	return utils.SendSuccess(c, "healthy", checks)
}

func (h *HealthHandler) databaseStatus(c *fiber.Ctx) string {
	if h.db == nil {
		return "not configured"
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return "error"
	}
	if err := sqlDB.PingContext(c.Context()); err != nil {
		return "error"
	}

	return "ok"
}

func (h *HealthHandler) cacheStatus(c *fiber.Ctx) string {
	if h.cache == nil {
		return "not configured"
	}
	if err := h.cache.Ping(c.Context()).Err(); err != nil {
		return "error"
	}

	return "ok"
}
