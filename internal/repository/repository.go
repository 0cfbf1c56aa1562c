package repository

import (
	"context"
	"time"
)

type CreateRunInput struct {
	ID        string
	StartedAt time.Time
}

type CompleteRunInput struct {
	ID        string
	EndedAt   time.Time
	Status    RunStatus
	ErrorCode string
}

type InsertEventInput struct {
	RunID      string
	Seq        int
	Kind       string
	Text       string
	URL        string
	Code       string
	Message    string
	OccurredAt time.Time
}

type RunRepository interface {
	CreateRun(ctx context.Context, input CreateRunInput) error
	CompleteRun(ctx context.Context, input CompleteRunInput) error
	// CloseOrphanRuns marks runs left running by a previous process as
	// aborted and reports how many were closed.
	CloseOrphanRuns(ctx context.Context, endedAt time.Time) (int64, error)
	GetRun(ctx context.Context, id string) (*Run, error)
}

type RunEventRepository interface {
	InsertEvent(ctx context.Context, input InsertEventInput) error
	ListEventsByRunID(ctx context.Context, runID string) ([]RunEvent, error)
}

type Repository interface {
	RunRepository
	RunEventRepository
}
