package extractor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rntap/pkg/errors"
	"rntap/pkg/ratelimit"
	"rntap/pkg/retailnext"
	"rntap/pkg/state"
	"rntap/pkg/window"
)

// scriptedQuerier answers queries from a script keyed by location and first
// metric of the requested group
type scriptedQuerier struct {
	responses map[string]queryResult
	queries   []*state.Filter
}

type queryResult struct {
	resp *retailnext.MetricsResponse
	err  error
}

func (q *scriptedQuerier) QueryMetrics(f *state.Filter) (*retailnext.MetricsResponse, error) {
	// The extractor mutates the filter in place between requests, so record
	// a snapshot of what each query saw
	snapshot := *f
	snapshot.Locations = append([]string(nil), f.Locations...)
	snapshot.Metrics = append([]string(nil), f.Metrics...)
	q.queries = append(q.queries, &snapshot)

	key := fmt.Sprintf("%s/%s", f.Locations[0], f.Metrics[0])
	if result, ok := q.responses[key]; ok {
		return result.resp, result.err
	}
	return &retailnext.MetricsResponse{Metrics: []retailnext.Metric{}}, nil
}

// recordingSink collects emitted records
type recordingSink struct {
	records []Record
	failAt  int
}

func (s *recordingSink) WriteRecord(stream string, record interface{}) error {
	if s.failAt > 0 && len(s.records)+1 >= s.failAt {
		return fmt.Errorf("sink closed")
	}
	s.records = append(s.records, record.(Record))
	return nil
}

func minuteCheckpoint() *state.Checkpoint {
	return &state.Checkpoint{
		Filter: &state.Filter{
			DateRanges: []state.DateRange{{FirstDay: "2024-03-01", LastDay: "2024-03-01"}},
			TimeRanges: []state.TimeRange{{From: "09:00", Until: "09:15"}},
			GroupBys:   []state.GroupBy{{Group: "time", Unit: "minute", Value: 15}},
		},
		Increment: 15,
		Type:      state.CadenceMinute,
	}
}

func dataPoint(value float64) retailnext.DataPoint {
	return retailnext.DataPoint{
		Group: &retailnext.MetricGroup{
			Start:  "2024-03-01T09:00:00",
			Finish: "2024-03-01T09:15:00",
			Type:   "time",
		},
		Value: value,
	}
}

func TestExtractAssignsOrdinalKeys(t *testing.T) {
	querier := &scriptedQuerier{responses: map[string]queryResult{
		"leaf-1/traffic_in": {resp: &retailnext.MetricsResponse{Metrics: []retailnext.Metric{
			{Name: "traffic_in", Data: []retailnext.DataPoint{dataPoint(10), dataPoint(11)}},
			{Name: "traffic_out", Data: []retailnext.DataPoint{dataPoint(8)}},
		}}},
		"leaf-2/traffic_in": {resp: &retailnext.MetricsResponse{Metrics: []retailnext.Metric{
			{Name: "traffic_in", Data: []retailnext.DataPoint{dataPoint(3)}},
		}}},
	}}
	sink := &recordingSink{}

	ext := New(querier, sink, window.Minute{}, nil, "2024-03-01T10:00:00Z", nil)
	emitted, err := ext.Extract([]string{"leaf-1", "leaf-2"}, minuteCheckpoint())

	require.NoError(t, err)
	assert.Equal(t, 4, emitted)
	require.Len(t, sink.records, 4)

	for i, rec := range sink.records {
		assert.Equal(t, i+1, rec.Key)
	}

	first := sink.records[0]
	assert.Equal(t, "traffic_in", first.Name)
	assert.Equal(t, "leaf-1", first.RID)
	assert.Equal(t, "time", first.Type)
	assert.Equal(t, "2024-03-01T09:00:00", first.Start)
	assert.Equal(t, float64(10), first.Value)
	assert.Equal(t, "2024-03-01T10:00:00Z", first.ExecutionDate)
	assert.Equal(t, "2024-03-01", first.FromDate)
	assert.Equal(t, "09:00", first.FromTime)
	assert.Equal(t, "09:15", first.TillTime)

	assert.Equal(t, "leaf-2", sink.records[3].RID)
}

func TestExtractQueriesEveryGroupPerLeaf(t *testing.T) {
	querier := &scriptedQuerier{}
	sink := &recordingSink{}

	ext := New(querier, sink, window.Minute{}, nil, "2024-03-01T10:00:00Z", nil)
	_, err := ext.Extract([]string{"leaf-1", "leaf-2"}, minuteCheckpoint())

	require.NoError(t, err)

	groups := window.Minute{}.Groups()
	require.Len(t, querier.queries, 2*len(groups))

	// Leaf-major, group-minor order
	for i, q := range querier.queries {
		wantLeaf := "leaf-1"
		if i >= len(groups) {
			wantLeaf = "leaf-2"
		}
		assert.Equal(t, []string{wantLeaf}, q.Locations)
		assert.Equal(t, groups[i%len(groups)].Metrics, q.Metrics)
	}
}

func TestExtractAbortsOnQueryFailure(t *testing.T) {
	groups := window.Minute{}.Groups()
	querier := &scriptedQuerier{responses: map[string]queryResult{
		// Second group of the first leaf fails
		fmt.Sprintf("leaf-1/%s", groups[1].Metrics[0]): {err: &errors.Error{
			Type: errors.ErrorTypeServerError,
			Code: 500,
		}},
	}}
	sink := &recordingSink{}

	ext := New(querier, sink, window.Minute{}, nil, "2024-03-01T10:00:00Z", nil)
	_, err := ext.Extract([]string{"leaf-1", "leaf-2"}, minuteCheckpoint())

	require.Error(t, err)
	// Nothing past the failing group was queried
	assert.Len(t, querier.queries, 2)
}

func TestExtractSkipsGroupWithoutMetricsKey(t *testing.T) {
	querier := &scriptedQuerier{responses: map[string]queryResult{
		"leaf-1/traffic_in": {resp: &retailnext.MetricsResponse{}},
		"leaf-1/engagement_rate": {resp: &retailnext.MetricsResponse{Metrics: []retailnext.Metric{
			{Name: "engagement_rate", Data: []retailnext.DataPoint{dataPoint(0.4)}},
		}}},
	}}
	sink := &recordingSink{}

	ext := New(querier, sink, window.Minute{}, nil, "2024-03-01T10:00:00Z", nil)
	emitted, err := ext.Extract([]string{"leaf-1"}, minuteCheckpoint())

	require.NoError(t, err)
	assert.Equal(t, 1, emitted)
	require.Len(t, sink.records, 1)
	assert.Equal(t, "engagement_rate", sink.records[0].Name)
	assert.Equal(t, 1, sink.records[0].Key)

	// Every group was still queried
	assert.Len(t, querier.queries, len(window.Minute{}.Groups()))
}

func TestExtractSkipsDataPointWithoutGroup(t *testing.T) {
	querier := &scriptedQuerier{responses: map[string]queryResult{
		"leaf-1/traffic_in": {resp: &retailnext.MetricsResponse{Metrics: []retailnext.Metric{
			{Name: "traffic_in", Data: []retailnext.DataPoint{
				dataPoint(10),
				{Value: 99}, // no group, cannot place in time
				dataPoint(12),
			}},
		}}},
	}}
	sink := &recordingSink{}

	ext := New(querier, sink, window.Minute{}, nil, "2024-03-01T10:00:00Z", nil)
	emitted, err := ext.Extract([]string{"leaf-1"}, minuteCheckpoint())

	require.NoError(t, err)
	assert.Equal(t, 2, emitted)
	require.Len(t, sink.records, 2)
	assert.Equal(t, float64(10), sink.records[0].Value)
	assert.Equal(t, float64(12), sink.records[1].Value)
	assert.Equal(t, 2, sink.records[1].Key)
}

func TestExtractEmptyMetricsListEmitsNothing(t *testing.T) {
	querier := &scriptedQuerier{}
	sink := &recordingSink{}

	ext := New(querier, sink, window.Minute{}, nil, "2024-03-01T10:00:00Z", nil)
	emitted, err := ext.Extract([]string{"leaf-1"}, minuteCheckpoint())

	require.NoError(t, err)
	assert.Zero(t, emitted)
	assert.Empty(t, sink.records)
}

func TestExtractStopsWhenSinkFails(t *testing.T) {
	querier := &scriptedQuerier{responses: map[string]queryResult{
		"leaf-1/traffic_in": {resp: &retailnext.MetricsResponse{Metrics: []retailnext.Metric{
			{Name: "traffic_in", Data: []retailnext.DataPoint{dataPoint(1), dataPoint(2)}},
		}}},
	}}
	sink := &recordingSink{failAt: 1}

	ext := New(querier, sink, window.Minute{}, nil, "2024-03-01T10:00:00Z", nil)
	_, err := ext.Extract([]string{"leaf-1"}, minuteCheckpoint())

	assert.ErrorContains(t, err, "sink closed")
}

func TestExtractPausesBetweenLeaves(t *testing.T) {
	querier := &scriptedQuerier{}
	sink := &recordingSink{}
	pacer := ratelimit.NewFixedDelay(40 * time.Millisecond)

	ext := New(querier, sink, window.Minute{}, pacer, "2024-03-01T10:00:00Z", nil)
	start := time.Now()
	_, err := ext.Extract([]string{"leaf-1", "leaf-2"}, minuteCheckpoint())

	require.NoError(t, err)
	// The pause applies between the first and second leaf already
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestExtractSingleLeafSkipsPause(t *testing.T) {
	querier := &scriptedQuerier{}
	sink := &recordingSink{}
	pacer := ratelimit.NewFixedDelay(200 * time.Millisecond)

	ext := New(querier, sink, window.Minute{}, pacer, "2024-03-01T10:00:00Z", nil)
	start := time.Now()
	_, err := ext.Extract([]string{"leaf-1"}, minuteCheckpoint())

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestExtractDayCadenceOmitsClockBounds(t *testing.T) {
	querier := &scriptedQuerier{responses: map[string]queryResult{
		"leaf-1/traffic_in": {resp: &retailnext.MetricsResponse{Metrics: []retailnext.Metric{
			{Name: "traffic_in", Data: []retailnext.DataPoint{dataPoint(42)}},
		}}},
	}}
	sink := &recordingSink{}

	cp := &state.Checkpoint{
		Filter: &state.Filter{
			DateRanges: []state.DateRange{{FirstDay: "2024-03-02", LastDay: "2024-03-02"}},
			TimeRanges: []state.TimeRange{{Type: "store_hours"}},
			GroupBys:   []state.GroupBy{{Group: "time", Unit: "day", Value: 1}},
		},
		Increment: 1,
		Type:      state.CadenceDay,
	}

	ext := New(querier, sink, window.Day{}, nil, "2024-03-02T23:00:00Z", nil)
	emitted, err := ext.Extract([]string{"leaf-1"}, cp)

	require.NoError(t, err)
	assert.Equal(t, 1, emitted)

	rec := sink.records[0]
	assert.Equal(t, "2024-03-02", rec.FromDate)
	assert.Equal(t, "2024-03-02", rec.TillDate)
	assert.Empty(t, rec.FromTime)
	assert.Empty(t, rec.TillTime)
}
