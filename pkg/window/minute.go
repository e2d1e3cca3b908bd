package window

import (
	"fmt"
	"time"

	"rntap/pkg/state"
)

// Minute advances the window in minute steps within explicit clock bounds
type Minute struct{}

func (Minute) Type() state.CadenceType { return state.CadenceMinute }

// Advance moves the window increment minutes past the last known until-bound.
// The new date range collapses to the day the advanced instant lands on, so a
// step across midnight rolls the date forward.
func (Minute) Advance(f *state.Filter, increment int) error {
	if len(f.DateRanges) != 1 || len(f.TimeRanges) != 1 {
		return fmt.Errorf("minute cadence requires one date range and one time range")
	}

	year, month, dom, err := parseDay(f.DateRanges[0].LastDay)
	if err != nil {
		return err
	}
	hour, minute, err := parseClock(f.TimeRanges[0].Until)
	if err != nil {
		return err
	}

	next := time.Date(year, time.Month(month), dom, hour, minute, 0, 0, time.UTC).
		Add(time.Duration(increment) * time.Minute)

	day := formatDay(next.Year(), int(next.Month()), next.Day())
	f.DateRanges[0].FirstDay = day
	f.DateRanges[0].LastDay = day
	f.TimeRanges[0].From = formatClock(hour, minute)
	f.TimeRanges[0].Until = formatClock(next.Hour(), next.Minute())

	return nil
}

func (Minute) Groups() []Group {
	return minuteGroups
}

func (Minute) Span(f *state.Filter) Span {
	return Span{
		FromDate: f.DateRanges[0].FirstDay,
		TillDate: f.DateRanges[0].LastDay,
		FromTime: f.TimeRanges[0].From,
		TillTime: f.TimeRanges[0].Until,
	}
}
