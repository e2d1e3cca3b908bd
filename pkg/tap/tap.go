// Package tap orchestrates one extraction pass: resolve the location
// hierarchy, derive leaves, advance the window, run the metric queries and
// persist the resume state.
package tap

import (
	"io"
	"time"

	"github.com/google/uuid"

	"rntap/pkg/config"
	"rntap/pkg/emitter"
	"rntap/pkg/extractor"
	"rntap/pkg/locations"
	"rntap/pkg/logger"
	"rntap/pkg/ratelimit"
	"rntap/pkg/retailnext"
	"rntap/pkg/state"
	"rntap/pkg/window"
)

// Client is the API surface one run needs
type Client interface {
	GetLocations(pageStart string) (*retailnext.LocationsPage, string, error)
	QueryMetrics(filter *state.Filter) (*retailnext.MetricsResponse, error)
}

// Tap runs extraction passes
type Tap struct {
	client        Client
	cfg           *config.Config
	out           *emitter.Emitter
	logger        logger.Logger
	runID         string
	executionDate string
}

// Snapshot is the state message payload: the checkpoint plus run metadata.
// Checkpoint fields stay at the top level so the next run parses the blob
// back directly.
type Snapshot struct {
	*state.Checkpoint
	RunID         string `json:"run_id"`
	ExecutionDate string `json:"execution_date"`
}

// New creates a tap writing its message stream to out
func New(cfg *config.Config, client Client, out io.Writer, log logger.Logger) *Tap {
	if log == nil {
		log = logger.GetLogger()
	}
	runID := uuid.NewString()
	return &Tap{
		client:        client,
		cfg:           cfg,
		out:           emitter.New(out),
		logger:        log.WithField("run_id", runID),
		runID:         runID,
		executionDate: time.Now().UTC().Format(time.RFC3339),
	}
}

// Run executes one pass against the given checkpoint. On success the
// checkpoint has been advanced and emitted as the final state message; on
// failure no state is emitted and the caller's checkpoint must not be reused.
//
// An account with no leaf locations is not an error: the run ends quietly
// without advancing the window, so the next run retries the same span.
func (t *Tap) Run(cp *state.Checkpoint) error {
	cadence, err := window.ForType(cp.Type)
	if err != nil {
		return err
	}

	t.logger.InfoWithFields("starting extraction pass", map[string]interface{}{
		"cadence":   string(cp.Type),
		"increment": cp.Increment,
	})

	if err := t.out.WriteSchema(emitter.StreamLocations, emitter.LocationSchema(), emitter.LocationKeyProperties()); err != nil {
		return err
	}

	resolver := locations.NewResolver(t.client, t.logger)
	all, err := resolver.Resolve(t.executionDate, func(loc locations.Location) error {
		return t.out.WriteRecord(emitter.StreamLocations, loc)
	})
	if err != nil {
		return err
	}

	leaves := locations.Leaves(all)
	if len(leaves) == 0 {
		t.logger.Info("no leaf locations, nothing to extract")
		return nil
	}

	if err := cadence.Advance(cp.Filter, cp.Increment); err != nil {
		return err
	}

	if err := t.out.WriteSchema(emitter.StreamMetrics, emitter.MetricSchema(), emitter.MetricKeyProperties()); err != nil {
		return err
	}

	var pacer ratelimit.Limiter
	if cp.Type == state.CadenceMinute && t.cfg.Extract.LeafPause > 0 {
		pacer = ratelimit.NewFixedDelay(t.cfg.Extract.LeafPause)
	}

	ext := extractor.New(t.client, t.out, cadence, pacer, t.executionDate, t.logger)
	emitted, err := ext.Extract(leaves, cp)
	if err != nil {
		return err
	}

	t.logger.InfoWithFields("extraction pass complete", map[string]interface{}{
		"leaves":  len(leaves),
		"records": emitted,
	})

	return t.out.WriteState(Snapshot{
		Checkpoint:    cp,
		RunID:         t.runID,
		ExecutionDate: t.executionDate,
	})
}
