// Package syncq pushes optimistic local writes to the document store in the
// background, retrying failures with exponential backoff and keeping a
// per-record sync status the UI can show.
package syncq

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Status of a single record.
type Status string

const (
	Pending Status = "pending"
	Synced  Status = "synced"
	Failed  Status = "failed"
)

// State of the queue as a whole.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateFailed  State = "failed"
)

// ErrClosed is returned by Enqueue and Flush after Close.
var ErrClosed = errors.New("sync queue closed")

// Job is one remote write. Apply must be idempotent: it may run more than once.
type Job struct {
	Collection string
	ID         string
	Op         Op
	Apply      func(ctx context.Context) error
}

func (j Job) key() string { return j.Collection + "/" + j.ID }

type Options struct {
	MaxAttempts int           // default 5
	BaseDelay   time.Duration // default 500ms
	MaxDelay    time.Duration // default 15s
	Logger      *slog.Logger
	Now         func() time.Time
}

// Summary is the aggregate view for the status bar.
type Summary struct {
	State      State
	Pending    int
	Failed     int
	LastSynced time.Time
	LastError  error
}

type Queue struct {
	opts Options

	mu         sync.Mutex
	jobs       []Job
	busy       bool
	status     map[string]Status
	failed     map[string]Job
	lastSynced time.Time
	lastErr    error
	closed     bool
	idle       *sync.Cond

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts Options) *Queue {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		opts:   opts,
		status: make(map[string]Status),
		failed: make(map[string]Job),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	q.idle = sync.NewCond(&q.mu)
	go q.worker()
	return q
}

// Enqueue records the job as pending and hands it to the worker.
func (q *Queue) Enqueue(j Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.pushLocked(j)
	q.mu.Unlock()
	q.signal()
	return nil
}

func (q *Queue) pushLocked(j Job) {
	q.jobs = append(q.jobs, j)
	q.status[j.key()] = Pending
	delete(q.failed, j.key())
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// RecordStatus returns the sync status of one record, and false if the queue
// has never seen it.
func (q *Queue) RecordStatus(collection, id string) (Status, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.status[collection+"/"+id]
	return s, ok
}

func (q *Queue) Summary() Summary {
	q.mu.Lock()
	defer q.mu.Unlock()
	sum := Summary{
		Pending:    len(q.jobs),
		Failed:     len(q.failed),
		LastSynced: q.lastSynced,
		LastError:  q.lastErr,
	}
	if q.busy {
		sum.Pending++
	}
	switch {
	case sum.Pending > 0:
		sum.State = StateSyncing
	case sum.Failed > 0:
		sum.State = StateFailed
	default:
		sum.State = StateIdle
	}
	return sum
}

// Retry re-queues every failed job and returns how many were queued.
func (q *Queue) Retry() int {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	n := len(q.failed)
	for _, j := range q.failed {
		q.pushLocked(j)
	}
	q.mu.Unlock()

	if n > 0 {
		q.signal()
	}
	return n
}

// Flush blocks until every queued job has been attempted or ctx is done.
func (q *Queue) Flush(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.idle.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.jobs) > 0 || q.busy {
		if q.closed {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		q.idle.Wait()
	}
	return nil
}

// Close stops accepting jobs, cancels any in-flight retry wait and waits for
// the worker to exit. Jobs still queued are dropped and logged.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	<-q.done

	q.mu.Lock()
	if n := len(q.jobs); n > 0 {
		q.opts.Logger.Warn("sync queue closed with pending writes", "count", n)
	}
	q.jobs = nil
	q.idle.Broadcast()
	q.mu.Unlock()
}

func (q *Queue) worker() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.idle.Broadcast()
			q.mu.Unlock()
			select {
			case <-q.ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		j := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.busy = true
		q.mu.Unlock()

		err := q.run(j)

		q.mu.Lock()
		q.busy = false
		switch {
		case err == nil:
			q.status[j.key()] = Synced
			q.lastSynced = q.opts.Now()
		case errors.Is(err, context.Canceled) && q.ctx.Err() != nil:
			// Shutting down; leave the record pending.
		default:
			q.status[j.key()] = Failed
			q.failed[j.key()] = j
			q.lastErr = err
			q.opts.Logger.Error("sync failed", "collection", j.Collection, "id", j.ID, "op", j.Op, "err", err)
		}
		q.mu.Unlock()

		if q.ctx.Err() != nil {
			return
		}
	}
}

// run applies j, retrying with exponential backoff.
func (q *Queue) run(j Job) error {
	delay := q.opts.BaseDelay
	var err error
	for attempt := 1; attempt <= q.opts.MaxAttempts; attempt++ {
		if err = j.Apply(q.ctx); err == nil {
			return nil
		}
		if attempt == q.opts.MaxAttempts {
			break
		}
		q.opts.Logger.Debug("sync attempt failed", "collection", j.Collection, "id", j.ID, "attempt", attempt, "err", err)
		select {
		case <-time.After(delay):
		case <-q.ctx.Done():
			return q.ctx.Err()
		}
		delay *= 2
		if delay > q.opts.MaxDelay {
			delay = q.opts.MaxDelay
		}
	}
	return err
}
