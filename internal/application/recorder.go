package application

import "time"

// Recorder receives use-case level measurements. The prometheus collectors in
// middleware implement it; NopRecorder is used when metrics are off.
type Recorder interface {
	AnalysisOutcome(outcome string)
	UpstreamDuration(provider string, d time.Duration)
}

type NopRecorder struct{}

func (NopRecorder) AnalysisOutcome(string)                 {}
func (NopRecorder) UpstreamDuration(string, time.Duration) {}
