package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

// TokenSweepWorker periodically deletes expired session tokens
//
// Architecture assumptions:
// - Deleting the same expired token twice is harmless, so several server
//   instances may run the worker without coordination
type TokenSweepWorker struct {
	repo     interfaces.Repository
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewTokenSweepWorker creates a new worker for deleting expired tokens
func NewTokenSweepWorker(repo interfaces.Repository, interval time.Duration) *TokenSweepWorker {
	return &TokenSweepWorker{
		repo:     repo,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop without blocking server startup
func (w *TokenSweepWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("sweep interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("Token sweep worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *TokenSweepWorker) Stop() {
	logging.Default().Info("Token sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Token sweep worker stopped")
}

func (w *TokenSweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.Sweep(ctx); err != nil {
		logging.Default().Error("Initial token sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				logging.Default().Error("Token sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Token sweep worker context cancelled")
			return
		}
	}
}

// Sweep performs a single cycle and returns the number of deleted tokens
func (w *TokenSweepWorker) Sweep(ctx context.Context) (int, error) {
	startTime := w.now()

	count, err := w.repo.DeleteExpiredTokens(ctx, startTime)
	if err != nil {
		return count, goerr.Wrap(err, "failed to delete expired tokens")
	}

	if count > 0 {
		logging.Default().Info("Expired tokens deleted",
			"count", count,
			"duration", time.Since(startTime).String())
	}

	return count, nil
}
