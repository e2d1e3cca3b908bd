package state

import "errors"

// DateRange is a closed day interval. Days are formatted YYYY-MM-DD.
type DateRange struct {
	FirstDay string `json:"first_day"`
	LastDay  string `json:"last_day"`
}

// TimeRange is either an explicit clock interval (minute cadence) or a named
// range like "store_hours" the API resolves itself (day cadence).
type TimeRange struct {
	Type  string `json:"type,omitempty"`
	From  string `json:"from,omitempty"`
	Until string `json:"until,omitempty"`
}

// GroupBy controls the grouping of returned data points
type GroupBy struct {
	Group string `json:"group,omitempty"`
	Unit  string `json:"unit,omitempty"`
	Value int    `json:"value,omitempty"`
}

// Filter is the query descriptor posted to the datamine endpoint. The window
// planner rewrites its date and time ranges once per run; the extractor then
// rewrites only Locations and Metrics between requests.
type Filter struct {
	Locations  []string    `json:"locations"`
	Metrics    []string    `json:"metrics"`
	DateRanges []DateRange `json:"date_ranges"`
	TimeRanges []TimeRange `json:"time_ranges,omitempty"`
	GroupBys   []GroupBy   `json:"group_bys,omitempty"`
}

// Validate checks the structural invariant every query shares: exactly one
// active date range.
func (f *Filter) Validate() error {
	if f == nil {
		return errors.New("filter is missing")
	}
	if len(f.DateRanges) != 1 {
		return errors.New("filter must carry exactly one date range")
	}
	return nil
}
