package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/notify"
	"github.com/foxseedlab/voicesatellite/internal/pipeline"
	"github.com/foxseedlab/voicesatellite/internal/repository"
	"github.com/google/uuid"
)

const (
	writeQueueSize = 128
	writeTimeout   = 5 * time.Second
	drainTimeout   = 3 * time.Second
)

type write func(ctx context.Context, repo repository.Repository) error

// Recorder journals every pipeline run and its events. Notifications only
// enqueue writes, under r.mu so they keep their order, and a single worker
// applies them.
type Recorder struct {
	repo  repository.Repository
	queue chan write
	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	run     *openRun
	lastRun string
}

type openRun struct {
	id        string
	seq       int
	errorCode string
}

func NewRecorder(repo repository.Repository) *Recorder {
	return &Recorder{
		repo:  repo,
		queue: make(chan write, writeQueueSize),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (r *Recorder) Triggers() notify.Triggers {
	return notify.Triggers{
		OnStart: r.startRun,
		OnEnd:   r.endRun,
		OnSTTEnd: func(text string) {
			r.recordEvent(repository.InsertEventInput{Kind: pipeline.KindSTTEnd.String(), Text: text})
		},
		OnTTSStart: func(text string) {
			r.recordEvent(repository.InsertEventInput{Kind: pipeline.KindTTSStart.String(), Text: text})
		},
		OnTTSEnd: func(url string) {
			r.recordEvent(repository.InsertEventInput{Kind: pipeline.KindTTSEnd.String(), URL: url})
		},
		OnError: func(code, message string) {
			r.recordEvent(repository.InsertEventInput{Kind: pipeline.KindError.String(), Code: code, Message: message})
		},
	}
}

// Run closes runs orphaned by a previous process, then applies queued writes
// until ctx is canceled. Whatever is still queued gets a short grace period.
func (r *Recorder) Run(ctx context.Context) {
	r.closeOrphans(ctx)
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case w := <-r.queue:
			r.apply(ctx, w)
		}
	}
}

func (r *Recorder) startRun() {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run != nil {
		r.enqueue(completeRun(r.run, now, repository.RunStatusAborted))
	}
	r.openRunLocked(now)
}

func (r *Recorder) endRun() {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	run := r.run
	if run == nil {
		// run-end without run-start still gets a record.
		run = r.openRunLocked(now)
	}
	r.run = nil

	status := repository.RunStatusCompleted
	if run.errorCode != "" {
		status = repository.RunStatusFailed
	}
	r.enqueue(insertEvent(run.nextEvent(repository.InsertEventInput{Kind: pipeline.KindRunEnd.String()}, now)))
	r.enqueue(completeRun(run, now, status))
}

func (r *Recorder) recordEvent(input repository.InsertEventInput) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == nil {
		r.openRunLocked(now)
	}
	if input.Kind == pipeline.KindError.String() {
		r.run.errorCode = input.Code
		if r.run.errorCode == "" {
			r.run.errorCode = "unknown"
		}
	}
	r.enqueue(insertEvent(r.run.nextEvent(input, now)))
}

func (r *Recorder) openRunLocked(at time.Time) *openRun {
	r.run = &openRun{id: r.newID()}
	r.lastRun = r.run.id
	r.enqueue(createRun(r.run.id, at))
	return r.run
}

// RunSummary is what status displays show about the most recent run.
type RunSummary struct {
	Run            repository.Run
	LastTranscript string
}

// LastRun reads the most recent run back from the repository. Writes still
// queued are not visible yet. It returns nil when nothing is journaled.
func (r *Recorder) LastRun(ctx context.Context) (*RunSummary, error) {
	r.mu.Lock()
	id := r.lastRun
	r.mu.Unlock()
	if id == "" {
		return nil, nil
	}

	run, err := r.repo.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	if run == nil {
		return nil, nil
	}
	events, err := r.repo.ListEventsByRunID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list events of run %s: %w", id, err)
	}
	summary := &RunSummary{Run: *run}
	for _, ev := range events {
		if ev.Kind == pipeline.KindSTTEnd.String() {
			summary.LastTranscript = ev.Text
		}
	}
	return summary, nil
}

func (o *openRun) nextEvent(input repository.InsertEventInput, at time.Time) repository.InsertEventInput {
	input.RunID = o.id
	input.Seq = o.seq
	input.OccurredAt = at
	o.seq++
	return input
}

func createRun(id string, at time.Time) write {
	return func(ctx context.Context, repo repository.Repository) error {
		return repo.CreateRun(ctx, repository.CreateRunInput{ID: id, StartedAt: at})
	}
}

func insertEvent(ev repository.InsertEventInput) write {
	return func(ctx context.Context, repo repository.Repository) error {
		return repo.InsertEvent(ctx, ev)
	}
}

func completeRun(run *openRun, at time.Time, status repository.RunStatus) write {
	input := repository.CompleteRunInput{ID: run.id, EndedAt: at, Status: status, ErrorCode: run.errorCode}
	return func(ctx context.Context, repo repository.Repository) error {
		return repo.CompleteRun(ctx, input)
	}
}

func (r *Recorder) enqueue(w write) {
	select {
	case r.queue <- w:
	default:
		slog.Warn("journal queue full; dropping write")
	}
}

func (r *Recorder) apply(parent context.Context, w write) {
	ctx, cancel := context.WithTimeout(parent, writeTimeout)
	defer cancel()
	if err := w(ctx, r.repo); err != nil {
		slog.Error("journal write failed", "error", err)
	}
}

func (r *Recorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case w := <-r.queue:
			r.apply(ctx, w)
		default:
			return
		}
	}
}

func (r *Recorder) closeOrphans(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	n, err := r.repo.CloseOrphanRuns(ctx, r.now())
	if err != nil {
		slog.Error("failed to close orphaned runs", "error", err)
		return
	}
	if n > 0 {
		slog.Info("closed orphaned runs", "count", n)
	}
}
