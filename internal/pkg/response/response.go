// Package response writes the console API's JSON envelopes.
package response

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Data     any    `json:"data"`
	Metadata any    `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object. TraceID lets the console show an
// ID the operator can hand to support.
type ErrorDetail struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Details    any    `json:"details,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"

	// Same local the tracing middleware stores the request's trace ID under.
	traceIDLocal = "trace_id"
)

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data, metadata any) error {
	if metadata == nil {
		metadata = fiber.Map{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details any) error {
	if details == nil {
		details = fiber.Map{}
	}
	traceID, _ := c.Locals(traceIDLocal).(string)
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
			TraceID:    traceID,
		},
	})
}

// BadRequest sends 400 with details describing which input was rejected.
func BadRequest(c *fiber.Ctx, message string, details any) error {
	return Error(c, message, fiber.StatusBadRequest, details)
}
