package ledger

import (
	"context"
	"slices"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	accounts map[string][]Transaction
}

// NewInMemory creates a concurrency-safe in-memory ledger.
func NewInMemory() Ledger {
	return &inMemoryLedger{accounts: make(map[string][]Transaction)}
}

func (l *inMemoryLedger) Record(_ context.Context, accountID string, date civil.Date, kind Kind, amount decimal.Decimal) (Transaction, error) {
	if err := validatePosting(accountID, kind, amount); err != nil {
		return Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.accounts[accountID]
	if kind == KindWithdrawal && amount.GreaterThan(BalanceOf(history)) {
		return Transaction{}, ErrInsufficientFunds
	}

	seq := nextSequence(history, date)
	tx := Transaction{
		ID:        TransactionID(date, seq),
		AccountID: accountID,
		Date:      date,
		Kind:      kind,
		Amount:    amount,
		Sequence:  seq,
	}
	l.accounts[accountID] = append(history, tx)
	return tx, nil
}

func (l *inMemoryLedger) Transactions(_ context.Context, accountID string) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	history, ok := l.accounts[accountID]
	if !ok || len(history) == 0 {
		return nil, ErrAccountNotFound
	}
	return slices.Clone(history), nil
}

func (l *inMemoryLedger) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	history, err := l.Transactions(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return BalanceOf(history), nil
}
