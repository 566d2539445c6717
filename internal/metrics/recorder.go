// Package metrics records conversion activity.
package metrics

import "time"

// Outcome labels for processed documents.
const (
	OutcomeWritten   = "written"
	OutcomeUnchanged = "unchanged"
	OutcomeNoop      = "noop"
	OutcomeFailed    = "failed"
)

// Recorder receives pipeline observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncDocument(outcome string)
	AddConstructs(kind string, n int)
	AddPrunedLines(n int)
	ObserveRun(d time.Duration, err error)
}

// NoopRecorder discards everything; it is the default.
type NoopRecorder struct{}

func (NoopRecorder) IncDocument(string) {}
func (NoopRecorder) AddConstructs(string, int) {}
func (NoopRecorder) AddPrunedLines(int) {}
func (NoopRecorder) ObserveRun(time.Duration, error) {}
