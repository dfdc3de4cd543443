package interest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
)

// Handler exposes interest rule HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an interest rule handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type defineRequest struct {
	Date   string `json:"date"`
	RuleID string `json:"rule_id"`
	Rate   string `json:"rate"`
}

type ruleResponse struct {
	Date   string `json:"date"`
	RuleID string `json:"rule_id"`
	Rate   string `json:"rate"`
}

// Define creates or replaces the rule for the given effective date.
func (h *Handler) Define(c *fiber.Ctx) error {
	var req defineRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(req.Rate))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, ErrInvalidRate.Error())
	}

	rules, err := h.service.Define(c.UserContext(), DefineInput{Date: date, RuleID: strings.TrimSpace(req.RuleID), Rate: rate})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRate), errors.Is(err, ErrInvalidRuleID):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"rules": toResponses(rules)})
}

// List returns the rule table.
func (h *Handler) List(c *fiber.Ctx) error {
	rules, err := h.service.Rules(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"rules": toResponses(rules)})
}

func toResponses(rules []Rule) []ruleResponse {
	out := make([]ruleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleResponse{
			Date:   calendar.Compact(r.Date),
			RuleID: r.ID,
			Rate:   r.Rate.StringFixed(2),
		})
	}
	return out
}
