// Package window advances the query window between extraction passes.
// The two cadences share one interface: advance the filter's ranges by the
// checkpoint increment, supply the metric taxonomy, and describe the window
// bounds stamped onto every output row.
package window

import (
	"fmt"
	"strconv"
	"strings"

	"rntap/pkg/state"
)

// Group is a named bundle of metric identifiers queried in one request
type Group struct {
	Name    string
	Metrics []string
}

// Span holds the window bounds copied onto every emitted metric row.
// FromTime/TillTime are empty on day cadence.
type Span struct {
	FromDate string
	TillDate string
	FromTime string
	TillTime string
}

// Cadence is the window-advancement strategy for one extraction granularity
type Cadence interface {
	Type() state.CadenceType
	// Advance mutates the filter's date and time ranges by increment units.
	// Pure apart from that mutation: no I/O, deterministic.
	Advance(f *state.Filter, increment int) error
	Groups() []Group
	Span(f *state.Filter) Span
}

// ForType returns the cadence implementation for a checkpoint type
func ForType(t state.CadenceType) (Cadence, error) {
	switch t {
	case state.CadenceMinute:
		return Minute{}, nil
	case state.CadenceDay:
		return Day{}, nil
	default:
		return nil, fmt.Errorf("unknown cadence %q", t)
	}
}

// parseDay splits a YYYY-MM-DD value into its components. Splitting keeps
// tolerance for unpadded components in old resume blobs.
func parseDay(day string) (year, month, dom int, err error) {
	parts := strings.Split(day, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed day %q", day)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		nums[i], err = strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("malformed day %q: %w", day, err)
		}
	}
	return nums[0], nums[1], nums[2], nil
}

// parseClock splits an HH:MM value, tolerating unpadded components
func parseClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time %q", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed time %q: %w", clock, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed time %q: %w", clock, err)
	}
	return hour, minute, nil
}

func formatDay(year, month, dom int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, dom)
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
