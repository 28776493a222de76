package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis keys of the traffic counters read by the health service.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

const statsTimeout = time.Second

// HealthMarker records request stats in Redis. Health, metrics and favicon
// requests are not counted.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || path == "/metrics" || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		last, _ := json.Marshal(map[string]any{
			"time":       start,
			"ip":         c.IP(),
			"path":       c.OriginalURL(),
			"method":     c.Method(),
			"session_id": GetConsoleSessionID(c),
		})

		ms := time.Since(start).Milliseconds()
		failed := c.Response().StatusCode() >= fiber.StatusInternalServerError
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()
		_, perr := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, KeyLastReq, last, 0)
			p.Incr(ctx, KeyReqTotal)
			p.Incr(ctx, KeyResCount)
			p.IncrByFloat(ctx, KeyResTime, float64(ms))
			if failed {
				p.Incr(ctx, KeyReqErrors)
			}
			return nil
		})
		if perr != nil {
			log.Debug().Err(perr).Msg("Traffic stats not recorded")
		}
		return err
	}
}
