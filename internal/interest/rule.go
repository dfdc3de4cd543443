package interest

import (
	"errors"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
)

var (
	// ErrInvalidRate occurs when an annual rate is not strictly between 0 and 100.
	ErrInvalidRate = errors.New("rate must be greater than 0 and less than 100")
	// ErrInvalidRuleID occurs when the rule identifier is blank.
	ErrInvalidRuleID = errors.New("rule id is required")
)

var maxRate = decimal.NewFromInt(100)

// Rule is an annual interest rate, in percent, effective from Date until the
// next rule takes over.
type Rule struct {
	Date civil.Date
	ID   string
	Rate decimal.Decimal
}

// Validate checks the rule id and rate bounds.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrInvalidRuleID
	}
	if !r.Rate.IsPositive() || r.Rate.GreaterThanOrEqual(maxRate) {
		return ErrInvalidRate
	}
	return nil
}

// Sort orders rules ascending by effective date.
func Sort(rules []Rule) {
	slices.SortStableFunc(rules, func(a, b Rule) int {
		return calendar.Compare(a.Date, b.Date)
	})
}

// OnOrBefore keeps the rules effective on or before day. The input must be
// sorted; the result shares its backing array.
func OnOrBefore(rules []Rule, day civil.Date) []Rule {
	n := 0
	for n < len(rules) && !rules[n].Date.After(day) {
		n++
	}
	return rules[:n]
}

// RateOn returns the rate in effect on day: the latest rule dated on or
// before it, or zero when none is.
func RateOn(rules []Rule, day civil.Date) decimal.Decimal {
	applicable := OnOrBefore(rules, day)
	if len(applicable) == 0 {
		return decimal.Zero
	}
	return applicable[len(applicable)-1].Rate
}
