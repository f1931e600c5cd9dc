// Package fiscal models the Nepali fiscal period tags carried on ledger entries.
// The tags are independent of the transaction's settlement date: an entry settled
// in one Gregorian month can belong to a different fiscal month.
package fiscal

import (
	"fmt"
	"time"
)

// Period is a Nepali fiscal month/year pair.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Valid reports whether the period carries a usable year and month.
func (p Period) Valid() bool {
	return p.Year > 0 && ValidMonth(p.Month)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// ValidMonth reports whether m is a fiscal month between Baishakh (1) and Chaitra (12).
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// ValidQuarter reports whether q is a fiscal quarter 1..4.
func ValidQuarter(q int) bool {
	return q >= 1 && q <= 4
}

// QuarterMonths expands a fiscal quarter into its three constituent months.
func QuarterMonths(q int) ([3]int, error) {
	if !ValidQuarter(q) {
		return [3]int{}, fmt.Errorf("fiscal: quarter %d out of range", q)
	}
	first := (q-1)*3 + 1
	return [3]int{first, first + 1, first + 2}, nil
}

// MonthInQuarter reports whether month falls inside quarter q.
func MonthInQuarter(month, q int) bool {
	months, err := QuarterMonths(q)
	if err != nil {
		return false
	}
	return month == months[0] || month == months[1] || month == months[2]
}

// EndOfDay returns the last representable instant of t's calendar day.
// Statement date ranges treat the upper bound as inclusive, so queries
// compare against this instant rather than midnight.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
