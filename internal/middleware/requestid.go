package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDLocal  = "request_id"
)

// RequestID propagates the caller's X-Request-ID or mints one, and echoes it
// on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(requestIDLocal, reqID)
		return c.Next()
	}
}

// RequestIDFrom returns the id stored by RequestID, if any.
func RequestIDFrom(c *fiber.Ctx) string {
	reqID, _ := c.Locals(requestIDLocal).(string)
	return reqID
}
