// Package history keeps an optional Postgres log of gated generation
// requests. Recording is best effort: the service never fails a request
// because the log insert failed, and with no database configured the
// recorder is a no-op.
package history

import (
	"context"
	"time"

	"sketchrender/internal/infra"
	"sketchrender/internal/sqlinline"
)

// Outcome labels persisted with each event.
const (
	OutcomeOK            = "ok"
	OutcomeDenied        = "denied"
	OutcomeThrottled     = "throttled"
	OutcomeInvalid       = "invalid_params"
	OutcomePipelineError = "pipeline_error"
	OutcomeEmpty         = "empty_result"
	OutcomeError         = "error"
)

// Event is one gated request outcome.
type Event struct {
	Identity string
	Prompt   string
	Width    int
	Height   int
	Outcome  string
	Latency  time.Duration
}

// Recorder inserts events through a SQLExecutor. A nil Recorder (or one
// built without an executor) records nothing.
type Recorder struct {
	sql infra.SQLExecutor
}

func NewRecorder(sql infra.SQLExecutor) *Recorder {
	return &Recorder{sql: sql}
}

func (r *Recorder) Record(ctx context.Context, ev Event) error {
	if r == nil || r.sql == nil {
		return nil
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGenerationEvent,
		ev.Identity, ev.Prompt, ev.Width, ev.Height, ev.Outcome, ev.Latency.Milliseconds())
	return err
}
