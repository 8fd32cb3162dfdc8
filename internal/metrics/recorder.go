// Package metrics records build observations. The builder always holds a
// Recorder; NoopRecorder is used when nothing scrapes the numbers.
package metrics

import "time"

// Outcome is the final status of one build run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome Outcome)
	SetArticles(n int)
	AddPages(kind string, n int)
	IncWarning(kind string)
}

type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(Outcome)                    {}
func (NoopRecorder) SetArticles(int)                            {}
func (NoopRecorder) AddPages(string, int)                       {}
func (NoopRecorder) IncWarning(string)                          {}
