package statement

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
	"github.com/awesomegic/gicbank/internal/ledger"
)

// EODBalances holds the end-of-day balance for every calendar day of a month,
// indexed by the day's offset from the 1st.
type EODBalances struct {
	Month   calendar.Month
	Opening decimal.Decimal
	days    []decimal.Decimal
}

// Len is the number of days covered.
func (b EODBalances) Len() int {
	return len(b.days)
}

// At returns the balance at the given zero-based day offset.
func (b EODBalances) At(offset int) decimal.Decimal {
	return b.days[offset]
}

// On returns the balance at the end of d. Days before the month report the
// opening balance and days after it report the closing balance.
func (b EODBalances) On(d civil.Date) decimal.Decimal {
	offset := b.Month.Offset(d)
	switch {
	case offset < 0:
		return b.Opening
	case offset >= len(b.days):
		return b.Closing()
	default:
		return b.days[offset]
	}
}

// Closing is the balance at the end of the month's last day.
func (b EODBalances) Closing() decimal.Decimal {
	if len(b.days) == 0 {
		return b.Opening
	}
	return b.days[len(b.days)-1]
}

// ProjectEOD computes the end-of-day balance for each day of month. Postings
// dated before the month form the opening balance; postings after it are
// ignored. A day without postings carries the previous day's balance.
func ProjectEOD(transactions []ledger.Transaction, month calendar.Month) EODBalances {
	first := month.First()
	opening := decimal.Zero
	movements := make([]decimal.Decimal, month.Days())
	for i := range movements {
		movements[i] = decimal.Zero
	}

	for _, tx := range transactions {
		switch {
		case tx.Date.Before(first):
			opening = opening.Add(tx.Signed())
		case month.Contains(tx.Date):
			offset := month.Offset(tx.Date)
			movements[offset] = movements[offset].Add(tx.Signed())
		}
	}

	days := make([]decimal.Decimal, len(movements))
	running := opening
	for i, movement := range movements {
		running = running.Add(movement)
		days[i] = running
	}

	return EODBalances{Month: month, Opening: opening, days: days}
}
