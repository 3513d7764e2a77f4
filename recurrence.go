package moneta

import (
	"fmt"
	"strings"
	"time"
)

// Frequency describes how often a budget entry recurs.
type Frequency int

const (
	Once Frequency = iota
	EveryDay
	EveryWeek
	EveryMonth
	EveryYear
)

func (f Frequency) String() string {
	switch f {
	case Once:
		return "once"
	case EveryDay:
		return "daily"
	case EveryWeek:
		return "weekly"
	case EveryMonth:
		return "monthly"
	case EveryYear:
		return "yearly"
	default:
		return "unknown"
	}
}

// ParseFrequency parses a frequency name.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "once":
		return Once, nil
	case "daily", "day":
		return EveryDay, nil
	case "weekly", "week":
		return EveryWeek, nil
	case "monthly", "month":
		return EveryMonth, nil
	case "yearly", "year":
		return EveryYear, nil
	default:
		return Once, fmt.Errorf("unknown frequency %q", s)
	}
}

// NextOccurrence computes the earliest occurrence strictly after the
// reference date for the given frequency.
//
// For monthly entries, dayOfMonth beyond the length of the target month is
// clamped to the last day of that month: day 31 scheduled from January 31
// lands on the last day of February, never rolling over into March. Naive
// date addition would silently overflow, which is why the clamp is explicit.
//
// Once entries do not recur; NextOccurrence returns the zero Date for them
// and callers deactivate the entry after it fires.
func NextOccurrence(freq Frequency, dayOfMonth int, after Date) Date {
	switch freq {
	case Once:
		return Date{}
	case EveryDay:
		return after.Add(1)
	case EveryWeek:
		return after.Add(7)
	case EveryMonth:
		return nextMonthlyOccurrence(dayOfMonth, after)
	case EveryYear:
		return NewDate(after.Year()+1, after.Month(), after.Day())
	default:
		panic("unknown frequency")
	}
}

func nextMonthlyOccurrence(dayOfMonth int, after Date) Date {
	if dayOfMonth < 1 {
		dayOfMonth = after.Day()
	}
	// Try the target day in the reference month first, then roll forward
	// month by month until strictly after the reference date.
	for add := 0; ; add++ {
		first := NewDate(after.Year(), after.Month()+time.Month(add), 1)
		day := dayOfMonth
		if last := first.DaysIn(); day > last {
			day = last // clamp, don't overflow into the next month
		}
		candidate := NewDate(first.Year(), first.Month(), day)
		if candidate.After(after) {
			return candidate
		}
	}
}

// CurrentPeriod returns the calendar window an entry's actual spending is
// measured over, for the period containing 'on'. Monthly budgets measure the
// current calendar month, weekly the current week, and so on. Once entries
// have no recurrence, so they measure the current month too.
func CurrentPeriod(freq Frequency, on Date) Range {
	switch freq {
	case EveryDay:
		return Daily.Range(on)
	case EveryWeek:
		return Weekly.Range(on)
	case EveryYear:
		return Yearly.Range(on)
	default: // EveryMonth and Once
		return Monthly.Range(on)
	}
}
