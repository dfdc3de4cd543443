package interest

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInMemoryTable_UpsertKeepsRulesSorted(t *testing.T) {
	table := NewInMemory()
	ctx := context.Background()

	for _, r := range []Rule{
		{Date: day(2023, time.June, 15), ID: "RULE03", Rate: rate("2.20")},
		{Date: day(2023, time.January, 1), ID: "RULE01", Rate: rate("1.95")},
		{Date: day(2023, time.May, 20), ID: "RULE02", Rate: rate("1.90")},
	} {
		if err := table.Upsert(ctx, r); err != nil {
			t.Fatalf("upsert %s: %v", r.ID, err)
		}
	}

	rules, err := table.Rules(ctx)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	want := []string{"RULE01", "RULE02", "RULE03"}
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, id := range want {
		if rules[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, rules[i].ID)
		}
	}
}

func TestInMemoryTable_SameDateReplaces(t *testing.T) {
	table := NewInMemory()
	ctx := context.Background()
	d := day(2023, time.June, 15)

	if err := table.Upsert(ctx, Rule{Date: d, ID: "RULE03", Rate: rate("2.20")}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := table.Upsert(ctx, Rule{Date: d, ID: "RULE03", Rate: rate("2.20")}); err != nil {
		t.Fatalf("repeat upsert: %v", err)
	}
	rules, _ := table.Rules(ctx)
	if len(rules) != 1 {
		t.Fatalf("expected idempotent upsert to keep 1 rule, got %d", len(rules))
	}

	if err := table.Upsert(ctx, Rule{Date: d, ID: "RULE04", Rate: rate("3.00")}); err != nil {
		t.Fatalf("replacing upsert: %v", err)
	}
	rules, _ = table.Rules(ctx)
	if len(rules) != 1 {
		t.Fatalf("expected replacement, got %d rules", len(rules))
	}
	if rules[0].ID != "RULE04" || !rules[0].Rate.Equal(rate("3")) {
		t.Fatalf("expected RULE04 at 3.00, got %s at %s", rules[0].ID, rules[0].Rate)
	}
}

func TestInMemoryTable_RejectsInvalidRules(t *testing.T) {
	table := NewInMemory()
	ctx := context.Background()
	d := day(2023, time.June, 1)

	cases := []struct {
		rule Rule
		want error
	}{
		{Rule{Date: d, ID: "R", Rate: decimal.Zero}, ErrInvalidRate},
		{Rule{Date: d, ID: "R", Rate: rate("-1")}, ErrInvalidRate},
		{Rule{Date: d, ID: "R", Rate: rate("100")}, ErrInvalidRate},
		{Rule{Date: d, ID: " ", Rate: rate("5")}, ErrInvalidRuleID},
	}
	for _, tc := range cases {
		if err := table.Upsert(ctx, tc.rule); !errors.Is(err, tc.want) {
			t.Fatalf("rule %+v: expected %v, got %v", tc.rule, tc.want, err)
		}
	}
	rules, _ := table.Rules(ctx)
	if len(rules) != 0 {
		t.Fatalf("rejected rules must not be stored, got %d", len(rules))
	}

	if err := table.Upsert(ctx, Rule{Date: d, ID: "R", Rate: rate("99.99")}); err != nil {
		t.Fatalf("99.99 should be accepted: %v", err)
	}
}

func TestInMemoryTable_RulesOnOrBefore(t *testing.T) {
	table := NewInMemory()
	ctx := context.Background()
	table.Upsert(ctx, Rule{Date: day(2023, time.June, 1), ID: "A", Rate: rate("5")})
	table.Upsert(ctx, Rule{Date: day(2023, time.June, 15), ID: "B", Rate: rate("6")})
	table.Upsert(ctx, Rule{Date: day(2023, time.July, 1), ID: "C", Rate: rate("7")})

	rules, err := table.RulesOnOrBefore(ctx, day(2023, time.June, 30))
	if err != nil {
		t.Fatalf("rules on or before: %v", err)
	}
	if len(rules) != 2 || rules[0].ID != "A" || rules[1].ID != "B" {
		t.Fatalf("unexpected rules: %+v", rules)
	}

	none, _ := table.RulesOnOrBefore(ctx, day(2023, time.May, 31))
	if len(none) != 0 {
		t.Fatalf("expected no rules before june, got %d", len(none))
	}

	inclusive, _ := table.RulesOnOrBefore(ctx, day(2023, time.June, 15))
	if len(inclusive) != 2 {
		t.Fatalf("boundary date must be inclusive, got %d rules", len(inclusive))
	}
}

func TestRateOnStepFunction(t *testing.T) {
	rules := []Rule{
		{Date: day(2023, time.June, 1), ID: "A", Rate: rate("5")},
		{Date: day(2023, time.June, 15), ID: "B", Rate: rate("6")},
	}
	cases := []struct {
		on   civil.Date
		want string
	}{
		{day(2023, time.May, 31), "0"},
		{day(2023, time.June, 1), "5"},
		{day(2023, time.June, 14), "5"},
		{day(2023, time.June, 15), "6"},
		{day(2024, time.January, 1), "6"},
	}
	for _, tc := range cases {
		if got := RateOn(rules, tc.on); !got.Equal(rate(tc.want)) {
			t.Fatalf("rate on %s: expected %s, got %s", tc.on, tc.want, got)
		}
	}
}
