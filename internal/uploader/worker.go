package uploader

import (
	"context"
	"log/slog"
	"time"

	"github.com/sebas/callview/internal/calllog"
)

// Sink is the remote upload endpoint collaborator
type Sink interface {
	Upload(ctx context.Context, entry calllog.Entry) error
}

// NoopSink accepts every upload without sending anywhere (demo runs)
type NoopSink struct{}

func (NoopSink) Upload(ctx context.Context, entry calllog.Entry) error { return nil }

// Worker drains the scheduler queue and syncs entries. Processing is
// idempotent: an entry already marked synced is skipped, so replayed jobs
// after a restart are no-ops.
type Worker struct {
	store     calllog.Store
	sink      Sink
	scheduler *ChannelScheduler
	retryWait time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates an upload worker over the channel scheduler
func NewWorker(store calllog.Store, sink Sink, scheduler *ChannelScheduler) *Worker {
	return &Worker{
		store:     store,
		sink:      sink,
		scheduler: scheduler,
		retryWait: 2 * time.Second,
		done:      make(chan struct{}),
	}
}

// Start launches the worker loop. On startup it re-schedules every
// unsynced entry so nothing persisted before a crash is lost.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	entries, err := w.store.Unsynced(ctx)
	if err != nil {
		slog.Warn("[Uploader] Startup sweep failed", "error", err)
	}
	for _, e := range entries {
		w.scheduler.ScheduleEntry(e.ID)
	}

	go w.run(ctx)
}

// Stop halts the worker loop
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.scheduler.Jobs():
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	entry, found, err := w.store.Get(ctx, job.EntryID)
	if err != nil {
		slog.Warn("[Uploader] Entry read failed", "entry_id", job.EntryID, "error", err)
		return
	}
	if !found || entry.Synced {
		return
	}

	if err := w.sink.Upload(ctx, entry); err != nil {
		job.Attempt++
		if job.Attempt >= job.MaxAttempts {
			slog.Warn("[Uploader] Giving up on entry", "entry_id", job.EntryID, "attempts", job.Attempt, "error", err)
			return
		}
		slog.Debug("[Uploader] Upload failed, retrying", "entry_id", job.EntryID, "attempt", job.Attempt, "error", err)
		go func() {
			select {
			case <-time.After(w.retryWait):
				w.scheduler.Schedule(job)
			case <-ctx.Done():
			}
		}()
		return
	}

	if err := w.store.MarkSynced(ctx, entry.ID); err != nil {
		slog.Warn("[Uploader] Mark synced failed", "entry_id", entry.ID, "error", err)
		return
	}
	slog.Info("[Uploader] Entry synced", "entry_id", entry.ID)
}
