// Package types contains common types used across the application
package types

// Stats is a point-in-time view of the assessment pipeline.
type Stats struct {
	CardiacAssessments int64 `json:"cardiac_assessments"`
	FatigueAssessments int64 `json:"fatigue_assessments"`
	ValidationFailures int64 `json:"validation_failures"`
	DuplicateRequests  int64 `json:"duplicate_requests"`

	HistoryEnabled bool   `json:"history_enabled"`
	HistoryBackend string `json:"history_backend,omitempty"`
	HistoryRecords int    `json:"history_records"`
	QueueSize      int    `json:"queue_size"`
	QueueCapacity  int    `json:"queue_capacity"`
	QueueDropped   int64  `json:"queue_dropped"`
	WorkerCount    int    `json:"worker_count"`
	DedupeKeys     int64  `json:"dedupe_keys"`

	UptimeSeconds float64 `json:"uptime_seconds"`
}

// TotalAssessments returns the number of scored requests of any kind.
func (s Stats) TotalAssessments() int64 {
	return s.CardiacAssessments + s.FatigueAssessments
}
