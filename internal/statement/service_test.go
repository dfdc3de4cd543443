package statement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/awesomegic/gicbank/internal/calendar"
	"github.com/awesomegic/gicbank/internal/interest"
	"github.com/awesomegic/gicbank/internal/ledger"
	"github.com/awesomegic/gicbank/internal/logging"
)

func newFixture(t *testing.T) (ledger.Ledger, interest.Table, *Service) {
	t.Helper()
	led := ledger.NewInMemory()
	rules := interest.NewInMemory()
	return led, rules, NewService(led, rules, logging.Discard())
}

func mustRecord(t *testing.T, l ledger.Ledger, account, date string, kind ledger.Kind, amt string) {
	t.Helper()
	d, err := calendar.ParseDate(date)
	if err != nil {
		t.Fatalf("parse %s: %v", date, err)
	}
	if _, err := l.Record(context.Background(), account, d, kind, dec(amt)); err != nil {
		t.Fatalf("record %s %s %s: %v", date, kind, amt, err)
	}
}

func mustRule(t *testing.T, table interest.Table, date, id, rate string) {
	t.Helper()
	d, err := calendar.ParseDate(date)
	if err != nil {
		t.Fatalf("parse %s: %v", date, err)
	}
	if err := table.Upsert(context.Background(), interest.Rule{Date: d, ID: id, Rate: dec(rate)}); err != nil {
		t.Fatalf("upsert %s: %v", id, err)
	}
}

func TestBuild_ScenarioWithRateChange(t *testing.T) {
	led, rules, svc := newFixture(t)
	mustRecord(t, led, "AC001", "20230601", ledger.KindDeposit, "100.00")
	mustRecord(t, led, "AC001", "20230610", ledger.KindWithdrawal, "30.00")
	mustRule(t, rules, "20230601", "RULE01", "5.00")
	mustRule(t, rules, "20230615", "RULE02", "6.00")

	st, err := svc.Build(context.Background(), "AC001", june2023)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(st.Lines) != 3 {
		t.Fatalf("expected 2 transactions and 1 interest line, got %d", len(st.Lines))
	}
	if st.Lines[0].TransactionID != "20230601-01" || !st.Lines[0].Balance.Equal(dec("100")) {
		t.Fatalf("unexpected first line %+v", st.Lines[0])
	}
	if st.Lines[1].TransactionID != "20230610-01" || !st.Lines[1].Balance.Equal(dec("70")) {
		t.Fatalf("unexpected second line %+v", st.Lines[1])
	}
	interestLine := st.Lines[2]
	if interestLine.Kind != ledger.KindInterest || interestLine.TransactionID != "" {
		t.Fatalf("expected trailing interest line, got %+v", interestLine)
	}
	if interestLine.Date != june2023.Last() {
		t.Fatalf("interest line must be dated %s, got %s", june2023.Last(), interestLine.Date)
	}
	if !st.Interest.Equal(dec("0.36")) || !st.Closing.Equal(dec("70.36")) {
		t.Fatalf("expected interest 0.36 closing 70.36, got %s / %s", st.Interest, st.Closing)
	}
}

func TestBuild_ReferenceStatement(t *testing.T) {
	led, rules, svc := newFixture(t)
	mustRecord(t, led, "AC001", "20230505", ledger.KindDeposit, "100.00")
	mustRecord(t, led, "AC001", "20230601", ledger.KindDeposit, "150.00")
	mustRecord(t, led, "AC001", "20230626", ledger.KindWithdrawal, "20.00")
	mustRecord(t, led, "AC001", "20230626", ledger.KindWithdrawal, "100.00")
	mustRule(t, rules, "20230101", "RULE01", "1.95")
	mustRule(t, rules, "20230520", "RULE02", "1.90")
	mustRule(t, rules, "20230615", "RULE03", "2.20")

	st, err := svc.Build(context.Background(), "AC001", june2023)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []struct {
		id, balance, eod string
	}{
		{"20230601-01", "250", "250"},
		{"20230626-01", "230", "130"},
		{"20230626-02", "130", "130"},
		{"", "130.39", "130.39"},
	}
	if len(st.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(st.Lines))
	}
	for i, w := range want {
		l := st.Lines[i]
		if l.TransactionID != w.id || !l.Balance.Equal(dec(w.balance)) || !l.EOD.Equal(dec(w.eod)) {
			t.Fatalf("line %d: expected %s %s/%s, got %s %s/%s", i, w.id, w.balance, w.eod, l.TransactionID, l.Balance, l.EOD)
		}
	}
	if !st.Opening.Equal(dec("100")) {
		t.Fatalf("expected opening 100, got %s", st.Opening)
	}
}

func TestBuild_ClosingEqualsMonthEndBalancePlusInterest(t *testing.T) {
	led, rules, svc := newFixture(t)
	mustRecord(t, led, "AC001", "20230415", ledger.KindDeposit, "500.00")
	mustRecord(t, led, "AC001", "20230503", ledger.KindWithdrawal, "120.25")
	mustRecord(t, led, "AC001", "20230519", ledger.KindDeposit, "33.10")
	mustRule(t, rules, "20230401", "R", "2.5")

	may := calendar.Month{Year: 2023, Month: time.May}
	st, err := svc.Build(context.Background(), "AC001", may)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	history, _ := led.Transactions(context.Background(), "AC001")
	var upToMonthEnd []ledger.Transaction
	for _, tx := range history {
		if !tx.Date.After(may.Last()) {
			upToMonthEnd = append(upToMonthEnd, tx)
		}
	}
	want := ledger.BalanceOf(upToMonthEnd).Add(st.Interest)
	if !st.Closing.Equal(want) {
		t.Fatalf("expected closing %s, got %s", want, st.Closing)
	}
}

func TestBuild_OnlyLaterTransactions(t *testing.T) {
	led, rules, svc := newFixture(t)
	mustRecord(t, led, "AC001", "20230801", ledger.KindDeposit, "100.00")
	mustRule(t, rules, "20230101", "R", "5")

	st, err := svc.Build(context.Background(), "AC001", june2023)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(st.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(st.Lines))
	}
	for i := 0; i < st.EOD.Len(); i++ {
		if !st.EOD.At(i).IsZero() {
			t.Fatalf("day offset %d: expected 0, got %s", i, st.EOD.At(i))
		}
	}
	if !st.Interest.IsZero() || !st.Closing.IsZero() {
		t.Fatalf("expected zero interest and closing, got %s / %s", st.Interest, st.Closing)
	}
}

func TestBuild_UnknownAccount(t *testing.T) {
	_, _, svc := newFixture(t)
	if _, err := svc.Build(context.Background(), "NOPE", june2023); !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBuild_NoInterestLineWhenNothingEarned(t *testing.T) {
	led, _, svc := newFixture(t)
	mustRecord(t, led, "AC001", "20230601", ledger.KindDeposit, "100.00")

	st, err := svc.Build(context.Background(), "AC001", june2023)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, l := range st.Lines {
		if l.Kind == ledger.KindInterest {
			t.Fatalf("unexpected interest line %+v", l)
		}
	}
	if !st.Closing.Equal(dec("100")) {
		t.Fatalf("expected closing 100, got %s", st.Closing)
	}
}

func TestBuild_LaterRuleUpsertOnSameDateWins(t *testing.T) {
	led, rules, svc := newFixture(t)
	mustRecord(t, led, "AC001", "20230501", ledger.KindDeposit, "1000.00")
	mustRule(t, rules, "20230601", "FIRST", "10")
	mustRule(t, rules, "20230601", "SECOND", "3.65")

	st, err := svc.Build(context.Background(), "AC001", june2023)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 1000 * 3.65% * 30 / 365
	if !st.Interest.Equal(dec("3")) {
		t.Fatalf("expected 3.00 from the replacing rule, got %s", st.Interest)
	}
}

func TestBuild_BackdatedPostingKeepsRecordingOrder(t *testing.T) {
	led, _, svc := newFixture(t)
	mustRecord(t, led, "AC001", "20230620", ledger.KindDeposit, "50.00")
	mustRecord(t, led, "AC001", "20230605", ledger.KindDeposit, "10.00")

	st, err := svc.Build(context.Background(), "AC001", june2023)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if st.Lines[0].TransactionID != "20230620-01" || st.Lines[1].TransactionID != "20230605-01" {
		t.Fatalf("expected recording order, got %s then %s", st.Lines[0].TransactionID, st.Lines[1].TransactionID)
	}
	if !st.Lines[1].Balance.Equal(dec("10")) || !st.Lines[0].Balance.Equal(dec("60")) {
		t.Fatalf("balances must follow the calendar: %s, %s", st.Lines[0].Balance, st.Lines[1].Balance)
	}
}
