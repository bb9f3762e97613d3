package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// DaysPerMonth is the length of one simulation tick in days
const DaysPerMonth = 30

// Month is a simulation calendar month stored as a month index (year*12 + month-1).
// The simulation never looks at wall-clock time; every date inside the core is a Month.
type Month int

// NewMonth creates a Month from a calendar year and a 1-based month of year
func NewMonth(year, month int) Month {
	return Month(year*12 + (month - 1))
}

// ParseMonth parses "YYYY-MM" or "YYYY-MM-DD" (the day is ignored)
func ParseMonth(s string) (Month, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month out of range in %q", s)
	}

	return NewMonth(year, month), nil
}

// MustParseMonth parses a month and panics on error (fixtures and tests only)
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Year returns the calendar year
func (m Month) Year() int {
	return floorDiv(int(m), 12)
}

// MonthOfYear returns the 1-based month within the year
func (m Month) MonthOfYear() int {
	return int(m) - m.Year()*12 + 1
}

// AddMonths returns the month n months later (n may be negative)
func (m Month) AddMonths(n int) Month {
	return m + Month(n)
}

// Sub returns the number of months from o to m
func (m Month) Sub(o Month) int {
	return int(m - o)
}

// Before reports whether m is strictly earlier than o
func (m Month) Before(o Month) bool {
	return m < o
}

// After reports whether m is strictly later than o
func (m Month) After(o Month) bool {
	return m > o
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year(), m.MonthOfYear())
}

// MarshalText encodes the month as "YYYY-MM" so snapshots stay readable
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes "YYYY-MM"
func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DaysToMonths converts a day-denominated lag into whole ticks, rounding up.
// Zero or negative lags settle in the same month.
func DaysToMonths(days int) int {
	if days <= 0 {
		return 0
	}
	return (days + DaysPerMonth - 1) / DaysPerMonth
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
