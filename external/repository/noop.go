package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/repository"
)

// NoopRepository discards everything. It backs the journal when no
// database is configured.
type NoopRepository struct{}

func (NoopRepository) CreateRun(context.Context, repository.CreateRunInput) error     { return nil }
func (NoopRepository) CompleteRun(context.Context, repository.CompleteRunInput) error { return nil }
func (NoopRepository) CloseOrphanRuns(context.Context, time.Time) (int64, error)    { return 0, nil }
func (NoopRepository) GetRun(context.Context, string) (*repository.Run, error)      { return nil, nil }
func (NoopRepository) InsertEvent(context.Context, repository.InsertEventInput) error {
	return nil
}
func (NoopRepository) ListEventsByRunID(context.Context, string) ([]repository.RunEvent, error) {
	return nil, nil
}
