package repository

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusAborted   RunStatus = "aborted"
)

// Run is one pass through the remote assist pipeline, from run-start to
// run-end.
type Run struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	Status     RunStatus
	ErrorCode  string
	EventCount int
}

type RunEvent struct {
	RunID      string
	Seq        int
	Kind       string
	Text       string
	URL        string
	Code       string
	Message    string
	OccurredAt time.Time
}
