package ledger

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount occurs when a posting amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidKind occurs when a posting is neither a deposit nor a withdrawal.
	ErrInvalidKind = errors.New("transaction type must be D or W")

	// ErrInvalidAccount occurs when the account identifier is blank.
	ErrInvalidAccount = errors.New("account id is required")

	// ErrInsufficientFunds occurs when a withdrawal would take the account
	// balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound indicates no transaction was ever recorded for the account.
	ErrAccountNotFound = errors.New("account not found")
)

// Ledger defines the contract implemented by ledger backends.
//
// Transactions are kept in the order they were recorded; the ledger never
// reorders them by date. Balances are always derived by folding over that
// sequence.
type Ledger interface {
	Record(ctx context.Context, accountID string, date civil.Date, kind Kind, amount decimal.Decimal) (Transaction, error)
	Transactions(ctx context.Context, accountID string) ([]Transaction, error)
	Balance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// BalanceOf folds deposits and withdrawals into a balance.
func BalanceOf(transactions []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range transactions {
		balance = balance.Add(tx.Signed())
	}
	return balance
}

func validatePosting(accountID string, kind Kind, amount decimal.Decimal) error {
	if strings.TrimSpace(accountID) == "" {
		return ErrInvalidAccount
	}
	if kind != KindDeposit && kind != KindWithdrawal {
		return ErrInvalidKind
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// nextSequence returns the 1-based occurrence number of a new posting dated
// date among the account's existing postings.
func nextSequence(transactions []Transaction, date civil.Date) int {
	seq := 1
	for _, tx := range transactions {
		if tx.Date == date {
			seq++
		}
	}
	return seq
}
