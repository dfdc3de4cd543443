package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
	"github.com/awesomegic/gicbank/internal/ledger"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type recordRequest struct {
	Date   string `json:"date"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

type transactionResponse struct {
	Date          string `json:"date"`
	TransactionID string `json:"txn_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
}

// Record posts a deposit or withdrawal and echoes the account's history.
func (h *Handler) Record(c *fiber.Ctx) error {
	var req recordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	kind, err := ledger.ParseKind(req.Type)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, ledger.ErrInvalidAmount.Error())
	}

	res, err := h.service.Record(c.UserContext(), RecordInput{
		AccountID: c.Params("accountId"),
		Date:      date,
		Kind:      kind,
		Amount:    amount,
	})
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"account_id":   res.Transaction.AccountID,
		"transaction":  toResponse(res.Transaction),
		"transactions": toResponses(res.History),
	})
}

// Transactions lists the account's postings.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	history, err := h.service.Transactions(c.UserContext(), accountID)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id":   accountID,
		"transactions": toResponses(history),
	})
}

// Balance returns the account's current balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	balance, err := h.service.Balance(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id": balance.AccountID,
		"balance":    balance.Amount.StringFixed(2),
		"timestamp":  balance.AsOf,
	})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidKind),
		errors.Is(err, ledger.ErrInvalidAccount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

func toResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		Date:          calendar.Compact(tx.Date),
		TransactionID: tx.ID,
		Type:          string(tx.Kind),
		Amount:        tx.Amount.StringFixed(2),
	}
}

func toResponses(history []ledger.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(history))
	for _, tx := range history {
		out = append(out, toResponse(tx))
	}
	return out
}
