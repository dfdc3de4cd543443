package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/ledger"
	"github.com/awesomegic/gicbank/internal/logging"
	"github.com/awesomegic/gicbank/internal/notification"
)

type testNotifier struct {
	last  notification.Message
	count int
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	n.count++
	return nil
}

func TestServiceRecordReturnsHistory(t *testing.T) {
	notifier := &testNotifier{}
	svc := NewService(ledger.NewInMemory(), notifier, logging.Discard())
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordInput{AccountID: "AC001", Date: civil.Date{Year: 2023, Month: time.June, Day: 1}, Kind: ledger.KindDeposit, Amount: decimal.NewFromInt(100)}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	res, err := svc.Record(ctx, RecordInput{AccountID: "AC001", Date: civil.Date{Year: 2023, Month: time.June, Day: 1}, Kind: ledger.KindWithdrawal, Amount: decimal.NewFromInt(40)})
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}

	if res.Transaction.ID != "20230601-02" {
		t.Fatalf("expected 20230601-02, got %s", res.Transaction.ID)
	}
	if len(res.History) != 2 {
		t.Fatalf("expected 2 transactions in history, got %d", len(res.History))
	}
	if notifier.count != 2 || notifier.last.Kind != notification.KindTransactionRecorded || notifier.last.Destination != "AC001" {
		t.Fatalf("unexpected notifications: %d, last %+v", notifier.count, notifier.last)
	}

	balance, err := svc.Balance(ctx, "AC001")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Amount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected balance 60, got %s", balance.Amount)
	}
}

func TestServiceRejectedWithdrawalNotifiesNobody(t *testing.T) {
	notifier := &testNotifier{}
	svc := NewService(ledger.NewInMemory(), notifier, logging.Discard())

	_, err := svc.Record(context.Background(), RecordInput{AccountID: "AC001", Date: civil.Date{Year: 2023, Month: time.June, Day: 1}, Kind: ledger.KindWithdrawal, Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if notifier.count != 0 {
		t.Fatalf("expected no notification, got %d", notifier.count)
	}
}
