package models

import "time"

// LoadResult summarises one catalog load.
type LoadResult struct {
	Source       string
	Raw          []RawKit
	Bytes        int
	StartTime    time.Time
	EndTime      time.Time
	RequestCount int
	RetryCount   int
	ErrorCount   int
	ErrorsByType map[string]int
}

// Duration is the wall time spent loading.
func (r *LoadResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
