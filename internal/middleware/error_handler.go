package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"yuime-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrorLogSize is how many 5xx errors the health error log keeps.
const ErrorLogSize = 50

// ErrorHandler returns the global error handler. It answers in the standard
// error format and, when rdb is set, keeps the last 5xx errors in the health
// error log.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("Unhandled error")
			if rdb != nil {
				recordError(rdb, c, err)
			}
		}
		return response.Error(c, message, code, nil)
	}
}

// ErrorEntry is one record of the health error log.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Message string    `json:"message"`
	TraceID string    `json:"trace_id,omitempty"`
}

func recordError(rdb *redis.Client, c *fiber.Ctx, err error) {
	b, _ := json.Marshal(ErrorEntry{
		Time:    time.Now(),
		Method:  c.Method(),
		Path:    c.OriginalURL(),
		Message: err.Error(),
		TraceID: GetTraceID(c),
	})
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()
	_, _ = rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, KeyErrorLog, b)
		p.LTrim(ctx, KeyErrorLog, 0, ErrorLogSize-1)
		return nil
	})
}
