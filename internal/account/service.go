package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/ledger"
	"github.com/awesomegic/gicbank/internal/notification"
)

// Service exposes account operations backed by the ledger.
type Service struct {
	ledger   ledger.Ledger
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds an account service instance.
func NewService(ledger ledger.Ledger, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, notifier: notifier, logger: logger}
}

// RecordInput captures a deposit or withdrawal request.
type RecordInput struct {
	AccountID string
	Date      civil.Date
	Kind      ledger.Kind
	Amount    decimal.Decimal
}

// RecordResult is the posted transaction and the account's full history
// after it.
type RecordResult struct {
	Transaction ledger.Transaction
	History     []ledger.Transaction
}

// Balance is the derived balance of an account.
type Balance struct {
	AccountID string
	Amount    decimal.Decimal
	AsOf      time.Time
}

// Record posts a transaction against the account.
func (s *Service) Record(ctx context.Context, input RecordInput) (RecordResult, error) {
	tx, err := s.ledger.Record(ctx, input.AccountID, input.Date, input.Kind, input.Amount)
	if err != nil {
		return RecordResult{}, err
	}

	if s.logger != nil {
		s.logger.Info("ledger.record",
			slog.String("account_id", tx.AccountID),
			slog.String("txn_id", tx.ID),
			slog.String("type", string(tx.Kind)),
			slog.String("amount", tx.Amount.StringFixed(2)),
		)
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransactionRecorded,
			Destination: tx.AccountID,
			Body:        fmt.Sprintf("%s %s %s", tx.ID, tx.Kind, tx.Amount.StringFixed(2)),
		})
	}

	history, err := s.ledger.Transactions(ctx, input.AccountID)
	if err != nil {
		return RecordResult{}, err
	}
	return RecordResult{Transaction: tx, History: history}, nil
}

// Transactions returns the account's postings in recording order.
func (s *Service) Transactions(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	return s.ledger.Transactions(ctx, accountID)
}

// Balance returns the current ledger balance for the account.
func (s *Service) Balance(ctx context.Context, accountID string) (Balance, error) {
	amount, err := s.ledger.Balance(ctx, accountID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{AccountID: accountID, Amount: amount, AsOf: time.Now().UTC()}, nil
}
