// Package usage describes generation token consumption over a reporting period.
package usage

import (
	"fmt"
	"time"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod converts a string into a Period. Empty means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodDay:
		return PeriodDay, nil
	default:
		return "", fmt.Errorf("unknown usage period %q", s)
	}
}

// Report is the generation token usage for one period.
// Limit is 0 and Remaining is -1 when the period is unlimited.
type Report struct {
	Period    Period
	Start     time.Time
	End       time.Time
	Tokens    int64
	Limit     int64
	Remaining int64
}

// Exhausted reports whether a limited budget has no tokens left.
func (r Report) Exhausted() bool {
	return r.Limit > 0 && r.Remaining <= 0
}
