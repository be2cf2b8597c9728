package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/metrics"
)

const reapBatchSize = 100

// RunReaper periodically returns events with an expired lease to pending.
// Concurrent reapers are safe: each expired row is claimed with SKIP LOCKED.
func RunReaper(ctx context.Context, store domain.OutboxRepository, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reapOnce(ctx, store, logger)
		}
	}
}

func reapOnce(ctx context.Context, store domain.OutboxRepository, logger *slog.Logger) int64 {
	var total int64
	for {
		n, err := store.ReclaimExpired(ctx, reapBatchSize)
		if err != nil {
			logger.Error("reaper: reclaim failed", "err", err)
			return total
		}
		total += n
		if n < reapBatchSize {
			break
		}
	}
	if total > 0 {
		metrics.OutboxReclaimed.Add(float64(total))
		logger.Warn("reaper: reclaimed expired outbox leases", "count", total)
	}
	return total
}

// RunReconciler periodically recomputes job application counters. Counters are
// maintained transactionally; this corrects drift from manual data changes.
func RunReconciler(ctx context.Context, jobs domain.JobRepository, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reconcileOnce(ctx, jobs, logger)
		}
	}
}

func reconcileOnce(ctx context.Context, jobs domain.JobRepository, logger *slog.Logger) {
	fixed, err := jobs.ReconcileApplicationCounts(ctx)
	if err != nil {
		logger.Error("reconciler: recount failed", "err", err)
		return
	}
	if fixed > 0 {
		logger.Warn("reconciler: corrected application counters", "jobs", fixed)
	}
}
