package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrPermanent marks a failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so the runner parks the action instead of retrying it.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

type Handler interface {
	Handle(ctx context.Context, payload []byte) error
}

type HandlerFunc func(ctx context.Context, payload []byte) error

func (f HandlerFunc) Handle(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}

type Config struct {
	PollInterval time.Duration
	Workers      int
	BatchSize    int
	MaxAttempts  int
	RetryInitial time.Duration
	RetryMax     time.Duration
}

// Runner polls the queue and hands due actions to a pool of workers.
type Runner struct {
	queue  *Queue
	cfg    Config
	logger log.FieldLogger

	mu       sync.RWMutex
	handlers map[string]Handler

	workCh   chan Job
	stopCh   chan struct{}
	pollWG   sync.WaitGroup
	workerWG sync.WaitGroup
	cancel   context.CancelFunc
	started  bool
	stopped  bool
}

func NewRunner(queue *Queue, cfg Config, logger log.FieldLogger) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Runner{
		queue:    queue,
		cfg:      cfg,
		logger:   logger,
		handlers: make(map[string]Handler),
		workCh:   make(chan Job, cfg.BatchSize),
		stopCh:   make(chan struct{}),
	}
}

// Register routes actions of kind to h. Later registrations replace earlier ones.
func (r *Runner) Register(kind string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

// Start recovers actions interrupted by a crash and begins polling.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("runner already started")
	}
	r.started = true
	r.mu.Unlock()

	n, err := r.queue.Recover(ctx)
	if err != nil {
		return fmt.Errorf("recover deferred actions: %w", err)
	}
	if n > 0 {
		r.logger.WithField("count", n).Warn("requeued deferred actions interrupted by shutdown")
	}

	ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.cfg.Workers; i++ {
		r.workerWG.Add(1)
		go r.worker(ctx, i)
	}
	r.pollWG.Add(1)
	go r.pollLoop(ctx)

	r.logger.WithFields(log.Fields{
		"workers":  r.cfg.Workers,
		"interval": r.cfg.PollInterval,
	}).Info("deferred action runner started")
	return nil
}

// Stop stops polling and waits for in-flight actions to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.stopCh)
	r.mu.Unlock()

	r.pollWG.Wait()
	close(r.workCh)
	r.workerWG.Wait()
	r.cancel()
	r.logger.Info("deferred action runner stopped")
}

// RunDue claims and executes due actions on the calling goroutine until none
// are left. It returns how many actions were executed.
func (r *Runner) RunDue(ctx context.Context) (int, error) {
	total := 0
	for {
		jobs, err := r.queue.Claim(ctx, r.cfg.BatchSize)
		if err != nil {
			return total, err
		}
		if len(jobs) == 0 {
			return total, nil
		}
		for _, job := range jobs {
			r.execute(ctx, job)
		}
		total += len(jobs)
	}
}

func (r *Runner) pollLoop(ctx context.Context) {
	defer r.pollWG.Done()
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		r.poll(ctx)
		select {
		case <-ticker.C:
		case <-r.stopCh:
			return
		}
	}
}

func (r *Runner) poll(ctx context.Context) {
	jobs, err := r.queue.Claim(ctx, r.cfg.BatchSize)
	if err != nil {
		r.logger.WithError(err).Error("claim deferred actions failed")
		return
	}
	for i, job := range jobs {
		select {
		case r.workCh <- job:
		case <-r.stopCh:
			// unclaimed leftovers go back to pending for the next start
			for _, rest := range jobs[i:] {
				if err := r.queue.Retry(context.Background(), rest.ID, rest.Attempts, time.Now(), nil); err != nil {
					r.logger.WithError(err).WithField("job", rest.ID).Error("release deferred action failed")
				}
			}
			return
		}
	}
}

func (r *Runner) worker(ctx context.Context, id int) {
	defer r.workerWG.Done()
	for job := range r.workCh {
		r.logger.WithFields(log.Fields{"worker": id, "job": job.ID, "kind": job.Kind}).Debug("running deferred action")
		r.execute(ctx, job)
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	entry := r.logger.WithFields(log.Fields{"job": job.ID, "kind": job.Kind, "tag": job.Tag})
	attempts := job.Attempts + 1

	r.mu.RLock()
	h, ok := r.handlers[job.Kind]
	r.mu.RUnlock()
	if !ok {
		entry.Error("no handler registered for deferred action")
		if err := r.queue.Fail(ctx, job.ID, attempts, fmt.Errorf("no handler for kind %q", job.Kind)); err != nil {
			entry.WithError(err).Error("mark deferred action failed")
		}
		return
	}

	err := safeHandle(ctx, h, job.Payload)
	switch {
	case err == nil:
		if err := r.queue.Complete(ctx, job.ID); err != nil {
			entry.WithError(err).Error("complete deferred action failed")
		}
	case errors.Is(err, ErrPermanent) || attempts >= r.cfg.MaxAttempts:
		entry.WithError(err).WithField("attempt", attempts).Error("deferred action failed")
		if err := r.queue.Fail(ctx, job.ID, attempts, err); err != nil {
			entry.WithError(err).Error("mark deferred action failed")
		}
	default:
		delay := exponentialBackoff(attempts, r.cfg.RetryInitial, r.cfg.RetryMax)
		entry.WithError(err).WithFields(log.Fields{"attempt": attempts, "retry_in": delay}).Warn("deferred action will be retried")
		if err := r.queue.Retry(ctx, job.ID, attempts, r.queue.now().Add(delay), err); err != nil {
			entry.WithError(err).Error("reschedule deferred action failed")
		}
	}
}

func safeHandle(ctx context.Context, h Handler, payload []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h.Handle(ctx, payload)
}

func exponentialBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		if initial <= 0 {
			return time.Second
		}
		return initial
	}
	if initial <= 0 {
		initial = time.Second
	}
	if max <= 0 {
		max = 10 * time.Second
	}
	backoff := float64(initial) * math.Pow(2, float64(attempt-1))
	if backoff > float64(max) {
		backoff = float64(max)
	}
	jitter := 0.2 * backoff
	return time.Duration(backoff + (rand.Float64()-0.5)*2*jitter)
}
