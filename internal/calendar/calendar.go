package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	compactDateLayout  = "20060102"
	compactMonthLayout = "200601"
	isoMonthLayout     = "2006-01"
)

var (
	// ErrInvalidDate is returned when a calendar date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidMonth is returned when a year-month cannot be parsed.
	ErrInvalidMonth = errors.New("invalid month")
)

// ParseDate accepts YYYYMMDD or ISO YYYY-MM-DD.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "-") {
		d, err := civil.ParseDate(s)
		if err != nil || !d.IsValid() {
			return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return d, nil
	}
	t, err := time.Parse(compactDateLayout, s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return civil.DateOf(t), nil
}

// Compact formats a date as YYYYMMDD.
func Compact(d civil.Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// Compare orders two dates like strings.Compare.
func Compare(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d civil.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth accepts YYYYMM or YYYY-MM.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	layout := compactMonthLayout
	if strings.Contains(s, "-") {
		layout = isoMonthLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (m Month) First() civil.Date {
	return civil.Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Last returns the last day of the month.
func (m Month) Last() civil.Date {
	return m.Next().First().AddDays(-1)
}

// Next returns the following month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Days reports how many calendar days the month has.
func (m Month) Days() int {
	return m.Last().Day
}

// Contains reports whether d falls inside the month.
func (m Month) Contains(d civil.Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// Offset is the zero-based index of d within the month.
func (m Month) Offset(d civil.Date) int {
	return d.DaysSince(m.First())
}

// String renders the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(data []byte) error {
	parsed, err := ParseMonth(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
