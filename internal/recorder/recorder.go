// Package recorder is the fire-and-forget click pipeline. Submitting a
// click never blocks the redirect path; every recording failure is logged
// and dropped. Delivery is at-most-effort: no retries, no ordering.
package recorder

import (
	"ShortLinks-Backend/internal/domain"
	"ShortLinks-Backend/internal/repository"
	"ShortLinks-Backend/pkg/useragent"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Click carries the metadata of one redirect event into the pipeline.
type Click struct {
	Code      string
	LinkID    int64
	IPAddress *string
	UserAgent *string
	Referrer  *string
	ClickedAt time.Time
}

// Config holds worker pool configuration for the recorder.
type Config struct {
	Workers         int           // number of worker goroutines
	BufferSize      int           // size of the job queue buffer
	OpTimeout       time.Duration // per-storage-operation timeout
	ShutdownTimeout time.Duration // time to wait for graceful shutdown
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         3,
		BufferSize:      1000,
		OpTimeout:       10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Recorder runs the click recording worker pool.
type Recorder struct {
	config  Config
	storage repository.Storage
	parser  *useragent.Parser // nil when no regexes file is configured
	log     *zap.Logger
	queue   chan Click
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.RWMutex
}

// New creates a recorder. parser may be nil; the recorder then falls back
// to keyword-based device classification.
func New(storage repository.Storage, parser *useragent.Parser, log *zap.Logger, config Config) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())

	return &Recorder{
		config:  config,
		storage: storage,
		parser:  parser,
		log:     log,
		queue:   make(chan Click, config.BufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recorder already started")
	}

	r.log.Info("starting click recorder",
		zap.Int("workers", r.config.Workers),
		zap.Int("buffer_size", r.config.BufferSize))

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	return nil
}

// Stop drains the queue and shuts the workers down, bounded by the
// configured shutdown timeout. Clicks still queued past the timeout are
// lost, which the delivery policy allows.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	r.log.Info("stopping click recorder")

	close(r.queue)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("click recorder stopped")
	case <-time.After(r.config.ShutdownTimeout):
		r.log.Warn("click recorder shutdown timeout reached, dropping queued clicks",
			zap.Int("queue_length", len(r.queue)))
	}
	r.cancel()

	r.started = false
	return nil
}

// Submit queues a click for recording. It never blocks: a full queue drops
// the click with an error log and a non-nil return, which callers are free
// to ignore.
func (r *Recorder) Submit(click Click) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	select {
	case r.queue <- click:
		return nil
	default:
		r.log.Error("click queue is full, dropping click",
			zap.String("code", click.Code),
			zap.Int("queue_size", len(r.queue)))
		return fmt.Errorf("click queue is full")
	}
}

// Stats returns queue and pool statistics for the metrics endpoint.
func (r *Recorder) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"started":        r.started,
		"queue_length":   len(r.queue),
		"queue_capacity": cap(r.queue),
		"worker_count":   r.config.Workers,
	}
}

func (r *Recorder) worker(workerID int) {
	defer r.wg.Done()

	log := r.log.With(zap.Int("worker_id", workerID))
	log.Debug("click recorder worker started")

	for click := range r.queue {
		select {
		case <-r.ctx.Done():
			log.Debug("click recorder worker cancelled")
			return
		default:
		}
		r.record(log, click)
	}

	log.Debug("click recorder worker stopped")
}

// record runs the two independent sub-operations for one click. Each gets
// its own timeout context and each failure is logged and dropped, so one
// failing never suppresses the other and nothing ever reaches the caller.
func (r *Recorder) record(log *zap.Logger, click Click) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.OpTimeout)
	if err := r.storage.IncrementClickCount(ctx, click.Code); err != nil {
		log.Warn("click counter increment failed",
			zap.String("code", click.Code),
			zap.Error(err))
	}
	cancel()

	record := r.buildRecord(click)
	ctx, cancel = context.WithTimeout(context.Background(), r.config.OpTimeout)
	if err := r.storage.InsertClickRecord(ctx, record); err != nil {
		log.Warn("click detail insert failed",
			zap.String("code", click.Code),
			zap.Error(err))
	}
	cancel()
}

// buildRecord converts a click into its append-only detail row, enriching
// it from the User-Agent when one was captured.
func (r *Recorder) buildRecord(click Click) *domain.LinkClick {
	record := &domain.LinkClick{
		LinkID:    click.LinkID,
		IPAddress: click.IPAddress,
		UserAgent: click.UserAgent,
		Referrer:  click.Referrer,
		ClickedAt: click.ClickedAt,
	}
	if record.ClickedAt.IsZero() {
		record.ClickedAt = time.Now()
	}

	if click.UserAgent == nil {
		return record
	}

	if r.parser != nil {
		info := r.parser.Parse(*click.UserAgent)
		record.DeviceType = &info.DeviceType
		record.Browser = &info.Browser
		record.OS = &info.OS
	} else {
		deviceType := useragent.ClassifyDeviceType(*click.UserAgent)
		record.DeviceType = &deviceType
	}

	return record
}
