package statement

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/awesomegic/gicbank/internal/calendar"
	"github.com/awesomegic/gicbank/internal/ledger"
)

// Handler exposes statement HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a statement handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type lineResponse struct {
	Date          string `json:"date"`
	TransactionID string `json:"txn_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Balance       string `json:"balance"`
	EODBalance    string `json:"eod_balance"`
}

type periodResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
	Rate string `json:"rate"`
}

type statementResponse struct {
	AccountID string           `json:"account_id"`
	Month     string           `json:"month"`
	Opening   string           `json:"opening_balance"`
	Lines     []lineResponse   `json:"lines"`
	Interest  string           `json:"interest"`
	Closing   string           `json:"closing_balance"`
	Periods   []periodResponse `json:"interest_periods"`
}

// Get renders the statement for an account and month (YYYYMM or YYYY-MM).
func (h *Handler) Get(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	month, err := calendar.ParseMonth(c.Params("month"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	st, err := h.service.Build(c.UserContext(), accountID, month)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(toResponse(st))
}

func toResponse(st Statement) statementResponse {
	resp := statementResponse{
		AccountID: st.AccountID,
		Month:     st.Month.String(),
		Opening:   st.Opening.StringFixed(2),
		Lines:     make([]lineResponse, 0, len(st.Lines)),
		Interest:  st.Interest.StringFixed(2),
		Closing:   st.Closing.StringFixed(2),
		Periods:   make([]periodResponse, 0, len(st.Periods)),
	}
	for _, l := range st.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			Date:          calendar.Compact(l.Date),
			TransactionID: l.TransactionID,
			Type:          string(l.Kind),
			Amount:        l.Amount.StringFixed(2),
			Balance:       l.Balance.StringFixed(2),
			EODBalance:    l.EOD.StringFixed(2),
		})
	}
	for _, p := range st.Periods {
		resp.Periods = append(resp.Periods, periodResponse{
			From: calendar.Compact(p.Start),
			To:   calendar.Compact(p.End),
			Days: p.Days(),
			Rate: p.Rate.StringFixed(2),
		})
	}
	return resp
}
