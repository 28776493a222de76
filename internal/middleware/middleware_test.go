package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestConsoleSession_GeneratesAndEchoes(t *testing.T) {
	app := fiber.New()
	app.Use(ConsoleSession())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetConsoleSessionID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	sid := resp.Header.Get(ConsoleSessionHeader)
	_, err = uuid.Parse(sid)
	assert.NoError(t, err)
	assert.Equal(t, sid, string(body))

	existing := uuid.New().String()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(ConsoleSessionHeader, existing)
	resp2, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, existing, resp2.Header.Get(ConsoleSessionHeader))
}

func TestConsoleSession_ReplacesMalformedID(t *testing.T) {
	app := fiber.New()
	app.Use(ConsoleSession())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(ConsoleSessionHeader, "../../etc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "../../etc", resp.Header.Get(ConsoleSessionHeader))
}

func TestTracing_ReusesIncomingID(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Trace-Id"))
}

func TestTracing_AttachesLoggerToUserContext(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error {
		log.Ctx(c.UserContext()).Info().Msg("inside handler")
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "trace-42")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"trace_id":"trace-42"`)
}

func TestErrorHandler_RecordsServerErrors(t *testing.T) {
	rdb := setupRedis(t)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(rdb)})
	app.Use(Tracing())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "Not Found") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Internal Server Error", out["error"].(map[string]interface{})["message"])

	resp2, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp2.StatusCode)

	entries, err := rdb.LRange(context.Background(), KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "db exploded")
}

func TestHealthMarker_CountsRequests(t *testing.T) {
	rdb := setupRedis(t)
	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/api/v1/staff", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/fail", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadGateway) })

	for _, path := range []string{"/api/v1/staff", "/health/json", "/fail"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	ctx := context.Background()
	total, _ := rdb.Get(ctx, KeyReqTotal).Int()
	errs, _ := rdb.Get(ctx, KeyReqErrors).Int()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, errs)
}

func TestCORS_SuffixAndDevPassword(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".yuime.jp", DevPassword: "pw"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://console.yuime.jp")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), ConsoleSessionHeader)

	req2 := httptest.NewRequest("GET", "/", nil)
	req2.Header.Set("Origin", "https://evil.example.com")
	resp2, err := app.Test(req2)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp2.StatusCode)

	req3 := httptest.NewRequest("GET", "/", nil)
	req3.Header.Set("Origin", "https://evil.example.com")
	req3.Header.Set("dev-password", "pw")
	resp3, err := app.Test(req3)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp3.StatusCode)
}

func TestCORS_PreflightForAllowedOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".yuime.jp"}))
	app.Put("/api/v1/staff/filters/search", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/api/v1/staff/filters/search", nil)
	req.Header.Set("Origin", "https://console.yuime.jp")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PUT")
}
