package window

import (
	"fmt"
	"time"

	"rntap/pkg/state"
)

// Day advances the window in whole-day steps. The time range stays a named
// "store_hours" range the API resolves itself.
type Day struct{}

func (Day) Type() state.CadenceType { return state.CadenceDay }

// Advance moves both day bounds increment days past the last known last-day
func (Day) Advance(f *state.Filter, increment int) error {
	if len(f.DateRanges) != 1 {
		return fmt.Errorf("day cadence requires one date range")
	}

	year, month, dom, err := parseDay(f.DateRanges[0].LastDay)
	if err != nil {
		return err
	}

	next := time.Date(year, time.Month(month), dom, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, increment)

	day := formatDay(next.Year(), int(next.Month()), next.Day())
	f.DateRanges[0].FirstDay = day
	f.DateRanges[0].LastDay = day

	return nil
}

func (Day) Groups() []Group {
	return dayGroups
}

func (Day) Span(f *state.Filter) Span {
	return Span{
		FromDate: f.DateRanges[0].FirstDay,
		TillDate: f.DateRanges[0].LastDay,
	}
}
