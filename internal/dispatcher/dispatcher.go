// Package dispatcher delivers outbox events to their handlers with at-least-once
// semantics. Events are claimed with a lease; a crashed dispatcher's events are
// returned to pending by the reaper once the lease expires.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/metrics"

	"github.com/google/uuid"
)

type Dispatcher struct {
	ID           string
	store        domain.OutboxRepository
	registry     *Registry
	wake         <-chan struct{}
	pollInterval time.Duration
	lease        time.Duration
	logger       *slog.Logger

	startDone     chan struct{}
	startDoneOnce sync.Once
}

// Options configures a Dispatcher. Wake may be nil, in which case the
// dispatcher relies on polling alone.
type Options struct {
	PollInterval time.Duration
	LeaseSeconds int
	Wake         <-chan struct{}
	Logger       *slog.Logger
}

func New(store domain.OutboxRepository, reg *Registry, opts Options) *Dispatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.LeaseSeconds <= 0 {
		opts.LeaseSeconds = 30
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Dispatcher{
		ID:           uuid.NewString(),
		store:        store,
		registry:     reg,
		wake:         opts.Wake,
		pollInterval: opts.PollInterval,
		lease:        time.Duration(opts.LeaseSeconds) * time.Second,
		logger:       opts.Logger,
		startDone:    make(chan struct{}),
	}
}

// Start runs the claim loop until ctx is canceled. Events are handled one at a time.
func (d *Dispatcher) Start(ctx context.Context) {
	defer d.startDoneOnce.Do(func() { close(d.startDone) })

	d.logger.Info("dispatcher starting",
		"dispatcher_id", d.ID,
		"event_types", d.registry.EventTypes())

	for {
		if ctx.Err() != nil {
			return
		}

		handled, err := d.ProcessOne(ctx)
		if err != nil {
			d.logger.Error("claim error", "err", err)
		}
		if handled {
			continue
		}
		d.idle(ctx)
	}
}

// Wait blocks until the claim loop exits or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	select {
	case <-d.startDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) idle(ctx context.Context) {
	timer := time.NewTimer(d.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-d.wake:
	}
}

// ProcessOne claims and handles a single due event. It reports whether an event
// was claimed.
func (d *Dispatcher) ProcessOne(ctx context.Context) (bool, error) {
	event, err := d.store.Claim(ctx, d.ID, d.lease)
	if err != nil {
		return false, err
	}
	if event == nil {
		return false, nil
	}

	d.handle(ctx, event)
	return true, nil
}

func (d *Dispatcher) handle(ctx context.Context, event *domain.OutboxEvent) {
	log := d.logger.With(
		"event_id", event.ID,
		"event_type", event.EventType,
		"aggregate_id", event.AggregateID,
		"attempt", event.Attempts,
	)

	handler, err := d.registry.Lookup(event.EventType)
	if err != nil {
		log.Error("unknown event type, marking dead", "err", err)
		d.markDead(ctx, event, err, log)
		return
	}

	// The handler must finish within the lease or another dispatcher may run it too.
	runCtx, cancel := context.WithTimeout(ctx, d.lease)
	start := time.Now()
	err = handler(runCtx, event.Payload)
	cancel()
	metrics.OutboxHandleDuration.WithLabelValues(event.EventType).Observe(time.Since(start).Seconds())

	if err == nil {
		updated, markErr := d.store.MarkCompleted(ctx, event.ID, d.ID)
		if markErr != nil {
			log.Error("failed to mark completed", "err", markErr)
			return
		}
		if !updated {
			log.Warn("stale completion ignored")
			return
		}
		metrics.OutboxEvents.WithLabelValues(event.EventType, "completed").Inc()
		log.Info("event handled")
		return
	}

	if ctx.Err() != nil {
		// Shutting down: leave the lease to expire so the event is reclaimed.
		log.Info("event abandoned due to shutdown", "err", err)
		return
	}

	var fatalErr *FatalError
	isFatal := errors.As(err, &fatalErr)
	if isFatal || event.Attempts >= event.MaxAttempts {
		d.markDead(ctx, event, err, log)
		return
	}

	delay := computeBackoff(event.Attempts)
	updated, markErr := d.store.MarkRetry(ctx, event.ID, d.ID, delay, err)
	if markErr != nil {
		log.Error("failed to mark retry", "err", markErr)
		return
	}
	if !updated {
		log.Warn("stale retry transition ignored")
		return
	}
	metrics.OutboxEvents.WithLabelValues(event.EventType, "retry").Inc()
	log.Warn("event failed, will retry",
		"err", err,
		"max_attempts", event.MaxAttempts,
		"retry_in", delay)
}

func (d *Dispatcher) markDead(ctx context.Context, event *domain.OutboxEvent, cause error, log *slog.Logger) {
	updated, err := d.store.MarkDead(ctx, event.ID, d.ID, cause)
	if err != nil {
		log.Error("failed to mark dead", "err", err)
		return
	}
	if !updated {
		log.Warn("stale dead transition ignored")
		return
	}
	metrics.OutboxEvents.WithLabelValues(event.EventType, "dead").Inc()
	log.Error("event dead", "err", cause)
}
