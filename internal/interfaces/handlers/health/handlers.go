package health

import (
	"crypto/subtle"
	"encoding/json"
	"strconv"
	"time"

	healthsvc "yuime-backend/internal/health"
	"yuime-backend/internal/middleware"
	"yuime-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const serviceName = "yuime-console-api"

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	Checker        *healthsvc.Checker
	HealthAdminKey string
}

// Reset clears the traffic and invitation counters and restarts the uptime
// clock. Requires ?key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if h.HealthAdminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.HealthAdminKey)) != 1 {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	ctx := c.UserContext()
	_, err := h.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, healthsvc.ResetKeys...)
		p.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0)
		return nil
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	log.Ctx(ctx).Info().Msg("Health stats reset")
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns the collected health data.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := h.Checker.Collect(c.UserContext())
	return c.JSON(fiber.Map{
		"service":      serviceName,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"invitations":  result.Invitations,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the most recent server errors, newest first. ?limit=
// narrows the list (1..50); unreadable entries are skipped.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", middleware.ErrorLogSize)
	if limit < 1 || limit > middleware.ErrorLogSize {
		limit = middleware.ErrorLogSize
	}
	raw, err := h.Rdb.LRange(c.UserContext(), middleware.KeyErrorLog, 0, int64(limit-1)).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]middleware.ErrorEntry{})
	}
	entries := make([]middleware.ErrorEntry, 0, len(raw))
	for _, s := range raw {
		var e middleware.ErrorEntry
		if json.Unmarshal([]byte(s), &e) == nil {
			entries = append(entries, e)
		}
	}
	return c.JSON(entries)
}
