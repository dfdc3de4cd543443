package statement

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/awesomegic/gicbank/internal/calendar"
	"github.com/awesomegic/gicbank/internal/interest"
)

var (
	daysPerYear = decimal.NewFromInt(365)
	hundred     = decimal.NewFromInt(100)
)

// Period is a run of days in the month during which one annual rate applies.
// Accrued is the sum of balance*rate/100 over its days, before the division
// by the days in a year.
type Period struct {
	Start   civil.Date
	End     civil.Date
	Rate    decimal.Decimal
	Accrued decimal.Decimal
}

// Days is the number of days covered by the period.
func (p Period) Days() int {
	return p.End.DaysSince(p.Start) + 1
}

// Accrual is the interest earned over a month.
type Accrual struct {
	Periods []Period
	// Total is the unrounded sum of the periods' accruals.
	Total decimal.Decimal
	// Interest is Total/365 rounded half-to-even to cents.
	Interest decimal.Decimal
}

// AccrueInterest integrates the rate schedule over the month's end-of-day
// balances. Rules effective after the month's last day are ignored; the rate
// on the 1st is that of the latest rule effective on or before it.
func AccrueInterest(eod EODBalances, rules []interest.Rule, month calendar.Month) Accrual {
	first, last := month.First(), month.Last()

	sorted := append([]interest.Rule(nil), rules...)
	interest.Sort(sorted)
	applicable := interest.OnOrBefore(sorted, last)
	if len(applicable) == 0 {
		return Accrual{Total: decimal.Zero, Interest: decimal.Zero}
	}

	var periods []Period
	start := first
	rate := interest.RateOn(applicable, first)
	for _, rule := range applicable {
		if !rule.Date.After(first) {
			continue
		}
		periods = append(periods, accruePeriod(eod, start, rule.Date.AddDays(-1), rate))
		start, rate = rule.Date, rule.Rate
	}
	periods = append(periods, accruePeriod(eod, start, last, rate))

	total := decimal.Zero
	for _, p := range periods {
		total = total.Add(p.Accrued)
	}

	return Accrual{
		Periods:  periods,
		Total:    total,
		Interest: total.Div(daysPerYear).RoundBank(2),
	}
}

func accruePeriod(eod EODBalances, start, end civil.Date, rate decimal.Decimal) Period {
	accrued := decimal.Zero
	for d := start; !d.After(end); d = d.AddDays(1) {
		accrued = accrued.Add(eod.On(d).Mul(rate).Div(hundred))
	}
	return Period{Start: start, End: end, Rate: rate, Accrued: accrued}
}
