package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ConsoleSessionHeader carries the console session ID. Filter state is scoped
// to it; the login cookie itself is handled by the gateway in front of us.
const ConsoleSessionHeader = "X-Console-Session"

const consoleSessionLocal = "console_session_id"

// ConsoleSession reads the console session ID from the header, generating one
// when it is missing or malformed, and echoes it on the response.
func ConsoleSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Get(ConsoleSessionHeader)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.New().String()
		}
		c.Locals(consoleSessionLocal, sid)
		c.Set(ConsoleSessionHeader, sid)
		return c.Next()
	}
}

// GetConsoleSessionID returns the session ID set by ConsoleSession.
func GetConsoleSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(consoleSessionLocal).(string)
	return sid
}
