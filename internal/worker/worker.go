// Package worker assembles the outbox dispatcher with its reaper and the
// application counter reconciler. The API process embeds it when
// DISPATCHER_EMBEDDED is set; cmd/worker runs it on its own.
package worker

import (
	"context"
	"sync"
	"time"

	"go-hiring-backend/config"
	"go-hiring-backend/internal/dispatcher"
	"go-hiring-backend/internal/domain"
	"go-hiring-backend/internal/repository/postgres"
	"go-hiring-backend/internal/usecase"
	"go-hiring-backend/pkg/logger"
	"go-hiring-backend/pkg/redis"

	"github.com/jackc/pgx/v5/pgxpool"
)

const reapInterval = 30 * time.Second

// Runner owns the background loops started by Start.
type Runner struct {
	Dispatcher *dispatcher.Dispatcher
	wg         sync.WaitGroup
}

// Start launches the dispatcher, the lease reaper and the reconciler. They stop
// when ctx is canceled; Wait blocks until they have.
func Start(ctx context.Context, pool *pgxpool.Pool, notifier *redis.Notifier, cfg *config.Config) *Runner {
	outboxRepo := postgres.NewOutboxRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	hireUC := usecase.NewHireUsecase(postgres.NewWorkExperienceRepository(pool))

	registry := dispatcher.NewRegistry()
	registry.Register(domain.EventApplicationHired, hireUC.HandleHire)

	d := dispatcher.New(outboxRepo, registry, dispatcher.Options{
		PollInterval: cfg.DispatcherPollInterval,
		LeaseSeconds: cfg.DispatcherLeaseSeconds,
		Wake:         notifier.Subscribe(ctx),
		Logger:       logger.Log.With("component", "dispatcher"),
	})

	r := &Runner{Dispatcher: d}
	r.wg.Add(3)
	go func() {
		defer r.wg.Done()
		d.Start(ctx)
	}()
	go func() {
		defer r.wg.Done()
		dispatcher.RunReaper(ctx, outboxRepo, reapInterval, logger.Log.With("component", "reaper"))
	}()
	go func() {
		defer r.wg.Done()
		dispatcher.RunReconciler(ctx, jobRepo, cfg.ReconcileInterval, logger.Log.With("component", "reconciler"))
	}()
	return r
}

// Wait blocks until every loop has returned or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
