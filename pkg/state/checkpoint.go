package state

import (
	"encoding/json"
	"fmt"
	"time"
)

// CadenceType selects the extraction granularity
type CadenceType string

const (
	CadenceMinute CadenceType = "minute"
	CadenceDay    CadenceType = "day"
)

// Checkpoint is the resumable cursor: the live filter plus the cadence
// metadata needed to advance it. It is emitted as the run's state snapshot
// after a completed pass and read back verbatim by the next run.
type Checkpoint struct {
	Filter    *Filter     `json:"filter"`
	Increment int         `json:"increment"`
	Type      CadenceType `json:"type"`
}

// Seed builds the initial checkpoint from a configured start instant. The
// first window advance moves increment minutes or days past this point.
func Seed(cadence CadenceType, increment int, start time.Time) *Checkpoint {
	day := start.Format("2006-01-02")

	filter := &Filter{
		DateRanges: []DateRange{{FirstDay: day, LastDay: day}},
	}

	switch cadence {
	case CadenceDay:
		filter.TimeRanges = []TimeRange{{Type: "store_hours"}}
		filter.GroupBys = []GroupBy{{Group: "time", Unit: "day", Value: 1}}
	default:
		clock := start.Format("15:04")
		filter.TimeRanges = []TimeRange{{From: clock, Until: clock}}
		filter.GroupBys = []GroupBy{{Group: "time", Unit: "minute", Value: increment}}
	}

	return &Checkpoint{
		Filter:    filter,
		Increment: increment,
		Type:      cadence,
	}
}

// Parse decodes a previously persisted checkpoint blob. Unknown fields (run
// metadata stamped on the snapshot) are ignored.
func Parse(blob []byte) (*Checkpoint, error) {
	var cp Checkpoint
	if err := json.Unmarshal(blob, &cp); err != nil {
		return nil, fmt.Errorf("failed to decode resume state: %w", err)
	}
	if err := cp.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resume state: %w", err)
	}
	return &cp, nil
}

// Validate checks that the checkpoint can drive a run
func (c *Checkpoint) Validate() error {
	if err := c.Filter.Validate(); err != nil {
		return err
	}
	if c.Increment <= 0 {
		return fmt.Errorf("increment must be positive, got %d", c.Increment)
	}
	switch c.Type {
	case CadenceMinute:
		if len(c.Filter.TimeRanges) != 1 || c.Filter.TimeRanges[0].Until == "" {
			return fmt.Errorf("minute cadence requires one time range with an until bound")
		}
	case CadenceDay:
	default:
		return fmt.Errorf("unknown cadence %q", c.Type)
	}
	return nil
}
