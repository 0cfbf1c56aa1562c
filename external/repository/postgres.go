package repository

import (
	"context"
	"errors"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateRun(ctx context.Context, input repository.CreateRunInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO runs (id, started_at, status) VALUES ($1, $2, 'running')`,
		input.ID, input.StartedAt)
	return err
}

func (r *PostgresRepository) CompleteRun(ctx context.Context, input repository.CompleteRunInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE runs SET status = $2, ended_at = $3, error_code = $4 WHERE id = $1 AND status = 'running'`,
		input.ID, string(input.Status), input.EndedAt, input.ErrorCode)
	return err
}

func (r *PostgresRepository) CloseOrphanRuns(ctx context.Context, endedAt time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE runs SET status = 'aborted', ended_at = $1 WHERE status = 'running'`,
		endedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) GetRun(ctx context.Context, id string) (*repository.Run, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT r.id::text, r.started_at, r.ended_at, r.status::text, r.error_code,
		        (SELECT COUNT(*) FROM run_events e WHERE e.run_id = r.id)
		 FROM runs r WHERE r.id = $1`,
		id)
	var run repository.Run
	var status string
	err := row.Scan(&run.ID, &run.StartedAt, &run.EndedAt, &status, &run.ErrorCode, &run.EventCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	run.Status = repository.RunStatus(status)
	return &run, nil
}

func (r *PostgresRepository) InsertEvent(ctx context.Context, input repository.InsertEventInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO run_events (run_id, seq, kind, text, url, code, message, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		input.RunID, input.Seq, input.Kind, input.Text, input.URL, input.Code, input.Message, input.OccurredAt)
	return err
}

func (r *PostgresRepository) ListEventsByRunID(ctx context.Context, runID string) ([]repository.RunEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT run_id::text, seq, kind, text, url, code, message, occurred_at
		 FROM run_events WHERE run_id = $1 ORDER BY seq ASC`,
		runID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.RunEvent, error) {
		var e repository.RunEvent
		err := row.Scan(&e.RunID, &e.Seq, &e.Kind, &e.Text, &e.URL, &e.Code, &e.Message, &e.OccurredAt)
		return e, err
	})
}

// Shutdown releases the connection pool.
func (r *PostgresRepository) Shutdown() {
	r.pool.Close()
}
