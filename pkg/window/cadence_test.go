package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rntap/pkg/state"
)

func minuteFilter(day, from, until string) *state.Filter {
	return &state.Filter{
		DateRanges: []state.DateRange{{FirstDay: day, LastDay: day}},
		TimeRanges: []state.TimeRange{{From: from, Until: until}},
	}
}

func TestForType(t *testing.T) {
	minute, err := ForType(state.CadenceMinute)
	require.NoError(t, err)
	assert.Equal(t, state.CadenceMinute, minute.Type())

	day, err := ForType(state.CadenceDay)
	require.NoError(t, err)
	assert.Equal(t, state.CadenceDay, day.Type())

	_, err = ForType("hourly")
	assert.Error(t, err)
}

func TestMinuteAdvance(t *testing.T) {
	f := minuteFilter("2024-03-01", "08:45", "09:00")

	require.NoError(t, Minute{}.Advance(f, 15))

	assert.Equal(t, "2024-03-01", f.DateRanges[0].FirstDay)
	assert.Equal(t, "2024-03-01", f.DateRanges[0].LastDay)
	assert.Equal(t, "09:00", f.TimeRanges[0].From)
	assert.Equal(t, "09:15", f.TimeRanges[0].Until)
}

func TestMinuteAdvanceAcrossMidnight(t *testing.T) {
	f := minuteFilter("2024-03-10", "23:35", "23:50")

	require.NoError(t, Minute{}.Advance(f, 15))

	assert.Equal(t, "2024-03-11", f.DateRanges[0].FirstDay)
	assert.Equal(t, "2024-03-11", f.DateRanges[0].LastDay)
	assert.Equal(t, "23:50", f.TimeRanges[0].From)
	assert.Equal(t, "00:05", f.TimeRanges[0].Until)
}

func TestMinuteAdvanceAcrossMonthEnd(t *testing.T) {
	f := minuteFilter("2024-02-29", "23:50", "23:55")

	require.NoError(t, Minute{}.Advance(f, 15))

	assert.Equal(t, "2024-03-01", f.DateRanges[0].LastDay)
	assert.Equal(t, "00:10", f.TimeRanges[0].Until)
}

func TestMinuteAdvanceToleratesUnpaddedState(t *testing.T) {
	// Resume blobs written by older runs may carry unpadded components
	f := minuteFilter("2024-3-1", "08:45", "9:5")

	require.NoError(t, Minute{}.Advance(f, 15))

	assert.Equal(t, "2024-03-01", f.DateRanges[0].LastDay)
	assert.Equal(t, "09:05", f.TimeRanges[0].From)
	assert.Equal(t, "09:20", f.TimeRanges[0].Until)
}

func TestMinuteAdvanceRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		f    *state.Filter
	}{
		{"missing time range", &state.Filter{DateRanges: []state.DateRange{{FirstDay: "2024-03-01", LastDay: "2024-03-01"}}}},
		{"garbage day", minuteFilter("yesterday", "09:00", "09:15")},
		{"garbage clock", minuteFilter("2024-03-01", "09:00", "quarter past")},
		{"missing clock separator", minuteFilter("2024-03-01", "09:00", "0915")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Minute{}.Advance(tt.f, 15))
		})
	}
}

func TestDayAdvance(t *testing.T) {
	f := &state.Filter{
		DateRanges: []state.DateRange{{FirstDay: "2024-03-01", LastDay: "2024-03-01"}},
		TimeRanges: []state.TimeRange{{Type: "store_hours"}},
	}

	require.NoError(t, Day{}.Advance(f, 1))

	assert.Equal(t, "2024-03-02", f.DateRanges[0].FirstDay)
	assert.Equal(t, "2024-03-02", f.DateRanges[0].LastDay)
	assert.Equal(t, "store_hours", f.TimeRanges[0].Type)
}

func TestDayAdvanceAcrossYearEnd(t *testing.T) {
	f := &state.Filter{
		DateRanges: []state.DateRange{{FirstDay: "2023-12-31", LastDay: "2023-12-31"}},
	}

	require.NoError(t, Day{}.Advance(f, 1))

	assert.Equal(t, "2024-01-01", f.DateRanges[0].LastDay)
}

func TestMinuteSpan(t *testing.T) {
	f := minuteFilter("2024-03-01", "09:00", "09:15")

	span := Minute{}.Span(f)
	assert.Equal(t, Span{
		FromDate: "2024-03-01",
		TillDate: "2024-03-01",
		FromTime: "09:00",
		TillTime: "09:15",
	}, span)
}

func TestDaySpan(t *testing.T) {
	f := &state.Filter{
		DateRanges: []state.DateRange{{FirstDay: "2024-03-02", LastDay: "2024-03-02"}},
		TimeRanges: []state.TimeRange{{Type: "store_hours"}},
	}

	span := Day{}.Span(f)
	assert.Equal(t, "2024-03-02", span.FromDate)
	assert.Equal(t, "2024-03-02", span.TillDate)
	assert.Empty(t, span.FromTime)
	assert.Empty(t, span.TillTime)
}

func TestGroupOrderIsStable(t *testing.T) {
	first := Minute{}.Groups()
	second := Minute{}.Groups()

	require.Equal(t, first, second)
	for _, g := range first {
		assert.NotEmpty(t, g.Name)
		assert.NotEmpty(t, g.Metrics)
	}
}
