package statement

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
	"github.com/awesomegic/gicbank/internal/interest"
	"github.com/awesomegic/gicbank/internal/ledger"
)

// Line is one row of a statement. Balance is the balance right after the
// posting; EOD is the balance at the end of the posting's day. Interest lines
// carry no transaction id.
type Line struct {
	Date          civil.Date
	TransactionID string
	Kind          ledger.Kind
	Amount        decimal.Decimal
	Balance       decimal.Decimal
	EOD           decimal.Decimal
}

// Statement is the monthly report for one account.
type Statement struct {
	AccountID string
	Month     calendar.Month
	Opening   decimal.Decimal
	Lines     []Line
	Interest  decimal.Decimal
	Closing   decimal.Decimal
	Periods   []Period
	EOD       EODBalances
}

// Service assembles statements from the ledger and the interest rule table.
type Service struct {
	ledger ledger.Ledger
	rules  interest.Table
	logger *slog.Logger
}

// NewService builds a statement service.
func NewService(ledger ledger.Ledger, rules interest.Table, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, rules: rules, logger: logger}
}

// Build produces the statement of accountID for month. Transactions keep
// their recording order. An interest line dated the month's last day is
// appended when interest was earned.
func (s *Service) Build(ctx context.Context, accountID string, month calendar.Month) (Statement, error) {
	history, err := s.ledger.Transactions(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}
	rules, err := s.rules.RulesOnOrBefore(ctx, month.Last())
	if err != nil {
		return Statement{}, fmt.Errorf("load interest rules: %w", err)
	}

	eod := ProjectEOD(history, month)
	accrual := AccrueInterest(eod, rules, month)

	var lines []Line
	sameDay := make(map[civil.Date]decimal.Decimal)
	for _, tx := range history {
		if !month.Contains(tx.Date) {
			continue
		}
		moved, ok := sameDay[tx.Date]
		if !ok {
			moved = decimal.Zero
		}
		moved = moved.Add(tx.Signed())
		sameDay[tx.Date] = moved

		lines = append(lines, Line{
			Date:          tx.Date,
			TransactionID: tx.ID,
			Kind:          tx.Kind,
			Amount:        tx.Amount,
			Balance:       eod.On(tx.Date.AddDays(-1)).Add(moved),
			EOD:           eod.On(tx.Date),
		})
	}

	closing := eod.Closing().Add(accrual.Interest)
	if accrual.Interest.IsPositive() {
		lines = append(lines, Line{
			Date:    month.Last(),
			Kind:    ledger.KindInterest,
			Amount:  accrual.Interest,
			Balance: closing,
			EOD:     closing,
		})
	}

	if s.logger != nil {
		s.logger.Info("statement.build",
			slog.String("account_id", accountID),
			slog.String("month", month.String()),
			slog.Int("lines", len(lines)),
			slog.String("interest", accrual.Interest.StringFixed(2)),
		)
	}

	return Statement{
		AccountID: accountID,
		Month:     month,
		Opening:   eod.Opening,
		Lines:     lines,
		Interest:  accrual.Interest,
		Closing:   closing,
		Periods:   accrual.Periods,
		EOD:       eod,
	}, nil
}
