// Package audit writes login trail entries. Sign-in entries are queued and
// written by background workers so a slow database never delays a login;
// sign-out entries are written synchronously by the caller.
package audit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pesio-ai/be-plt-login/internal/logger"
	"github.com/pesio-ai/be-plt-login/internal/metrics"
	"github.com/pesio-ai/be-plt-login/internal/repository"
)

// ErrClosed is returned by Record after Close
var ErrClosed = errors.New("audit recorder closed")

// TrailStore persists login trail entries
type TrailStore interface {
	Append(ctx context.Context, trail *repository.LoginTrail) (*repository.LoginTrail, error)
}

// Config controls queueing behavior
type Config struct {
	BufferSize   int
	Workers      int
	WriteTimeout time.Duration
}

// Recorder queues and writes login trail entries
type Recorder struct {
	store   TrailStore
	log     *logger.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	ch        chan repository.LoginTrail
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewRecorder starts cfg.Workers background writers
func NewRecorder(cfg Config, store TrailStore, log *logger.Logger, m *metrics.Metrics) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		store:   store,
		log:     log,
		metrics: m,
		timeout: cfg.WriteTimeout,
		ch:      make(chan repository.LoginTrail, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.run()
	}

	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for {
		select {
		case trail := <-r.ch:
			r.write(trail)
		case <-r.done:
			for {
				select {
				case trail := <-r.ch:
					r.write(trail)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(trail repository.LoginTrail) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Interface("panic", rec).
				Str("user_id", trail.UserID).
				Str("type", trail.Type).
				Msg("Panic while writing login trail")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	_, err := r.store.Append(ctx, &trail)
	r.metrics.ObserveTrailWrite(trail.Type, err)
	if err != nil {
		r.log.Error().
			Err(err).
			Str("user_id", trail.UserID).
			Str("type", trail.Type).
			Msg("Failed to write login trail")
	}
}

// Record writes the entry synchronously and returns the persisted record
func (r *Recorder) Record(ctx context.Context, trail *repository.LoginTrail) (*repository.LoginTrail, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	saved, err := r.store.Append(ctx, trail)
	r.metrics.ObserveTrailWrite(trail.Type, err)
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// RecordAsync queues the entry without blocking. The entry is dropped with a
// warning when the queue is full or the recorder is closed.
func (r *Recorder) RecordAsync(trail *repository.LoginTrail) {
	if r.closed.Load() {
		r.drop(trail, "closed")
		return
	}

	select {
	case r.ch <- *trail:
	case <-r.done:
		r.drop(trail, "closed")
	default:
		r.drop(trail, "queue full")
	}
}

func (r *Recorder) drop(trail *repository.LoginTrail, reason string) {
	r.dropped.Add(1)
	r.metrics.TrailDropped()
	r.log.Warn().
		Str("user_id", trail.UserID).
		Str("type", trail.Type).
		Str("reason", reason).
		Msg("Login trail dropped")
}

// Dropped returns the number of entries dropped so far
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close stops accepting entries and waits for queued ones to be written
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.done)
		r.wg.Wait()
	})
}
