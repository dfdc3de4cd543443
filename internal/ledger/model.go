package ledger

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
)

// Kind classifies a ledger posting.
type Kind string

const (
	// KindDeposit credits the account.
	KindDeposit Kind = "D"
	// KindWithdrawal debits the account.
	KindWithdrawal Kind = "W"
	// KindInterest marks interest lines on statements. It is never recorded.
	KindInterest Kind = "I"
)

// ParseKind maps the D/W codes, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindDeposit:
		return KindDeposit, nil
	case KindWithdrawal:
		return KindWithdrawal, nil
	default:
		return "", ErrInvalidKind
	}
}

// Transaction is an immutable posting against a single account.
type Transaction struct {
	ID        string
	AccountID string
	Date      civil.Date
	Kind      Kind
	Amount    decimal.Decimal
	Sequence  int
}

// Signed returns the amount as it affects the balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionID renders the display id <YYYYMMDD>-<NN>.
func TransactionID(date civil.Date, sequence int) string {
	return fmt.Sprintf("%s-%02d", calendar.Compact(date), sequence)
}
