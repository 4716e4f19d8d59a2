// Package progress reports staged completion percentages for
// multi-page operations (load, export, split). A run moves through
// loading, processing, and finalizing before completing; failure can
// interrupt any stage. The percentage never decreases within a run,
// and nothing is emitted after the terminal event, so a consumer can
// drive a progress bar without defensive clamping.
package progress

import (
	"github.com/pagedeck/pagedeck/observability"
)

// Stage identifies where in its lifecycle an operation is.
type Stage int

const (
	StageLoading Stage = iota
	StageProcessing
	StageFinalizing
	StageCompleted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageLoading:
		return "loading"
	case StageProcessing:
		return "processing"
	case StageFinalizing:
		return "finalizing"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// Percentage bands reserved per stage. Processing work scales into
// [processingStart, finalizingStart).
const (
	processingStart = 10.0
	finalizingStart = 90.0
)

// Event is one progress notification.
type Event struct {
	Stage   Stage
	Percent float64
	Message string
}

// Func receives progress events.
type Func func(Event)

// Reporter emits events for one run. The zero value is not usable; use
// NewReporter. A nil emit function is allowed and discards events.
// Reporters are single-use: after Completed or Failed all further calls
// are ignored.
type Reporter struct {
	emit   Func
	logger observability.Logger
	last   float64
	done   bool
}

// NewReporter builds a Reporter delivering events to emit. logger may
// be nil.
func NewReporter(emit Func, logger observability.Logger) *Reporter {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Reporter{emit: emit, logger: logger}
}

// Loading reports the initial stage at 0%.
func (r *Reporter) Loading(msg string) {
	r.send(StageLoading, 0, msg)
}

// Processing reports page progress scaled into the processing band.
// total must be positive; done is clamped to [0, total].
func (r *Reporter) Processing(done, total int, msg string) {
	if total <= 0 {
		return
	}
	if done < 0 {
		done = 0
	}
	if done > total {
		done = total
	}
	pct := processingStart + (finalizingStart-processingStart)*float64(done)/float64(total)
	r.send(StageProcessing, pct, msg)
}

// Finalizing reports the start of the finalizing band.
func (r *Reporter) Finalizing(msg string) {
	r.send(StageFinalizing, finalizingStart, msg)
}

// Completed terminates the run at 100%. No further events are emitted.
func (r *Reporter) Completed(msg string) {
	r.send(StageCompleted, 100, msg)
	r.done = true
}

// Failed terminates the run at the last reported percentage. No
// further events are emitted.
func (r *Reporter) Failed(msg string) {
	r.send(StageFailed, r.last, msg)
	r.done = true
	r.logger.Warn("operation failed", observability.String("message", msg))
}

// send enforces monotonicity and the terminal-state guarantee.
func (r *Reporter) send(stage Stage, pct float64, msg string) {
	if r.done {
		return
	}
	if pct < r.last {
		pct = r.last
	}
	r.last = pct
	if r.emit != nil {
		r.emit(Event{Stage: stage, Percent: pct, Message: msg})
	}
}
