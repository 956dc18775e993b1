package domain

import "time"

// RunSummary accumulates the counters reported at the end of a parse run.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	FilesResolved int
	FilesParsed   int
	FilesFailed   int
	FilesSkipped  int // unchanged per state store

	RecordsParsed   int
	RecordsExported int // after the optional portWwn filter
}

// Duration is the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// CollectSummary accumulates the counters reported at the end of a
// collection run.
type CollectSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	ArraysRequested int // 0 means discovery was used
	ArraysResolved  int
	ArraysCollected int
	ArraysFailed    int
}

// Duration is the wall time of the run.
func (s *CollectSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
