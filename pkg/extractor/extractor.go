package extractor

import (
	"rntap/pkg/emitter"
	"rntap/pkg/logger"
	"rntap/pkg/ratelimit"
	"rntap/pkg/retailnext"
	"rntap/pkg/state"
	"rntap/pkg/window"
)

// Querier is the slice of the API client the extractor needs
type Querier interface {
	QueryMetrics(filter *state.Filter) (*retailnext.MetricsResponse, error)
}

// RecordWriter receives flattened metric records
type RecordWriter interface {
	WriteRecord(stream string, record interface{}) error
}

// Extractor runs the per-leaf, per-group metric queries for one advanced
// window and flattens the responses into keyed records. Queries run strictly
// in sequence; record ordinals depend on that ordering.
type Extractor struct {
	client        Querier
	out           RecordWriter
	cadence       window.Cadence
	pacer         ratelimit.Limiter
	logger        logger.Logger
	executionDate string
}

// New creates an extractor. pacer may be nil when no pause between leaves is
// wanted (day cadence).
func New(client Querier, out RecordWriter, cadence window.Cadence, pacer ratelimit.Limiter, executionDate string, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{
		client:        client,
		out:           out,
		cadence:       cadence,
		pacer:         pacer,
		logger:        log,
		executionDate: executionDate,
	}
}

// Extract queries every metric group for every leaf against the checkpoint's
// current window and emits one record per data point, keyed 1..K in arrival
// order. It returns the number of records emitted. Any API failure aborts
// immediately; a response without a metrics key skips just that group.
func (e *Extractor) Extract(leafIDs []string, cp *state.Checkpoint) (int, error) {
	span := e.cadence.Span(cp.Filter)
	groups := e.cadence.Groups()

	counter := 0
	for i, leaf := range leafIDs {
		if e.pacer != nil && i > 0 {
			e.pacer.Wait()
		}

		cp.Filter.Locations = []string{leaf}

		for _, group := range groups {
			cp.Filter.Metrics = group.Metrics

			resp, err := e.client.QueryMetrics(cp.Filter)
			if err != nil {
				e.logger.ErrorWithFields("metric query failed", map[string]interface{}{
					"location": leaf,
					"group":    group.Name,
					"error":    err.Error(),
				})
				return counter, err
			}

			if !resp.HasMetrics() {
				e.logger.WarnWithFields("no data for metrics", map[string]interface{}{
					"location": leaf,
					"group":    group.Name,
				})
				continue
			}

			for _, metric := range resp.Metrics {
				for _, point := range metric.Data {
					if point.Group == nil {
						e.logger.WarnWithFields("data point without group, skipping", map[string]interface{}{
							"location": leaf,
							"metric":   metric.Name,
						})
						continue
					}

					counter++
					rec := Record{
						Key:           counter,
						Name:          metric.Name,
						RID:           leaf,
						Type:          point.Group.Type,
						Start:         point.Group.Start,
						Finish:        point.Group.Finish,
						Validity:      point.Validity,
						Value:         point.Value,
						Index:         point.Index,
						ExecutionDate: e.executionDate,
						FromDate:      span.FromDate,
						TillDate:      span.TillDate,
						FromTime:      span.FromTime,
						TillTime:      span.TillTime,
					}
					if err := e.out.WriteRecord(emitter.StreamMetrics, rec); err != nil {
						return counter, err
					}
				}
			}
		}
	}

	return counter, nil
}
