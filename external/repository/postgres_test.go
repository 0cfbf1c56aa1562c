package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func newTestRepository(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := RunMigration(ctx, pool); err != nil {
		t.Fatalf("migration: %v", err)
	}
	return NewPostgresRepository(pool)
}

func TestPostgresRepository_RunLifecycle(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	id := uuid.NewString()
	startedAt := time.Now().UTC().Truncate(time.Millisecond)

	if err := r.CreateRun(ctx, repository.CreateRunInput{ID: id, StartedAt: startedAt}); err != nil {
		t.Fatalf("create run: %v", err)
	}
	events := []repository.InsertEventInput{
		{RunID: id, Seq: 0, Kind: "stt-end", Text: "hello", OccurredAt: startedAt.Add(time.Second)},
		{RunID: id, Seq: 1, Kind: "error", Code: "E1", Message: "boom", OccurredAt: startedAt.Add(2 * time.Second)},
	}
	for _, ev := range events {
		if err := r.InsertEvent(ctx, ev); err != nil {
			t.Fatalf("insert event: %v", err)
		}
	}
	if err := r.CompleteRun(ctx, repository.CompleteRunInput{
		ID: id, EndedAt: startedAt.Add(3 * time.Second), Status: repository.RunStatusFailed, ErrorCode: "E1",
	}); err != nil {
		t.Fatalf("complete run: %v", err)
	}

	run, err := r.GetRun(ctx, id)
	if err != nil || run == nil {
		t.Fatalf("get run: %v %v", run, err)
	}
	if run.Status != repository.RunStatusFailed || run.ErrorCode != "E1" || run.EventCount != 2 || run.EndedAt == nil {
		t.Fatalf("unexpected run: %+v", run)
	}

	got, err := r.ListEventsByRunID(ctx, id)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 2 || got[0].Text != "hello" || got[1].Code != "E1" {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestPostgresRepository_CloseOrphanRuns(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()
	id := uuid.NewString()
	if err := r.CreateRun(ctx, repository.CreateRunInput{ID: id, StartedAt: time.Now()}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	closed, err := r.CloseOrphanRuns(ctx, time.Now())
	if err != nil {
		t.Fatalf("close orphans: %v", err)
	}
	if closed < 1 {
		t.Fatalf("expected at least one orphan, got %d", closed)
	}
	run, err := r.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != repository.RunStatusAborted {
		t.Fatalf("expected aborted, got %s", run.Status)
	}
}

func TestGetRun_Missing(t *testing.T) {
	r := newTestRepository(t)
	run, err := r.GetRun(context.Background(), uuid.NewString())
	if err != nil || run != nil {
		t.Fatalf("expected nil run without error, got %v %v", run, err)
	}
}
