package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackerops/tracker-audit/pkg/tracker"
)

// ProgressFunc receives per-queue progress while a run is executing.
type ProgressFunc func(current, total int, queueKey string)

// Auditor orchestrates a full audit run: queue enumeration, per-queue
// permission resolution, and access-issue bookkeeping. Execution is
// sequential; the client's pacing limiter governs the request rate.
type Auditor struct {
	client   *tracker.Client
	logger   *zap.SugaredLogger
	resolver *Resolver
	issues   *IssueTracker
	progress ProgressFunc
}

func New(client *tracker.Client, logger *zap.SugaredLogger) *Auditor {
	issues := NewIssueTracker()
	return &Auditor{
		client:   client,
		logger:   logger.Named("audit"),
		resolver: NewResolver(client, logger, issues),
		issues:   issues,
	}
}

// OnProgress registers a callback invoked once per queue, in audit order.
func (a *Auditor) OnProgress(fn ProgressFunc) {
	a.progress = fn
}

// Run executes a full audit. A failure on one queue contributes zero grants
// and does not stop the remaining queues; the fatal error classes abort
// immediately. The returned Result always carries whatever was gathered,
// including on cancellation, so a partial report stays possible.
func (a *Auditor) Run(ctx context.Context, scope Scope) (result *Result, err error) {
	result = &Result{
		RunID:     uuid.NewString(),
		Scope:     scope,
		StartedAt: time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
		result.Issues = a.issues.Issues()
		result.Statistics = a.client.Statistics()
	}()

	a.logger.Infow("starting audit run", "run_id", result.RunID, "scope", scope)

	queues, err := a.client.Queues().List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list queues: %w", err)
	}
	for _, q := range queues {
		result.Queues = append(result.Queues, NewQueueInfo(q))
	}
	a.logger.Infow("retrieved queues", "count", len(result.Queues))

	a.resolver.Preload(ctx, scope)

	total := len(result.Queues)
	for i, queue := range result.Queues {
		if ctx.Err() != nil {
			result.Interrupted = true
			return result, ctx.Err()
		}
		if a.progress != nil {
			a.progress(i+1, total, queue.Key)
		}

		grants, resolveErr := a.resolver.ResolveQueueAccess(ctx, queue.Key, scope)
		result.Grants = append(result.Grants, grants...)
		if resolveErr != nil {
			if ctx.Err() != nil {
				result.Interrupted = true
				return result, ctx.Err()
			}
			if tracker.IsFatal(resolveErr) {
				return result, resolveErr
			}
			a.logger.Warnw("queue audit failed, continuing", "queue", queue.Key, "error", resolveErr)
		}
	}

	a.logger.Infow("audit run complete",
		"run_id", result.RunID,
		"queues", len(result.Queues),
		"grants", len(result.Grants),
		"issues", a.issues.Len())
	return result, nil
}
