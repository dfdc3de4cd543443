package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/awesomegic/gicbank/internal/interest"
)

// RegisterInterestRoutes wires interest rule endpoints.
func RegisterInterestRoutes(r fiber.Router, h *interest.Handler) {
	r.Post("/interest-rules", h.Define)
	r.Get("/interest-rules", h.List)
}
