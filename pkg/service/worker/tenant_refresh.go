package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
)

// TenantSyncer rebinds cached tenants to the workspaces stored in the repository
type TenantSyncer interface {
	Sync(ctx context.Context) (int, error)
}

// TenantRefreshWorker periodically re-syncs the tenant registry with a shared
// repository so that installs handled by other processes are picked up.
//
// With the memory backend there is nothing to pick up and the worker is not
// started.
type TenantRefreshWorker struct {
	syncer   TenantSyncer
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewTenantRefreshWorker creates a new worker for refreshing tenants
func NewTenantRefreshWorker(syncer TenantSyncer, interval time.Duration) *TenantRefreshWorker {
	return &TenantRefreshWorker{
		syncer:   syncer,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. It does not block.
func (w *TenantRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("tenant refresh interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("tenant refresh worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *TenantRefreshWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("tenant refresh worker stopped")
}

func (w *TenantRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("tenant refresh worker context cancelled")
			return
		}
	}
}

func (w *TenantRefreshWorker) refresh(ctx context.Context) {
	updated, err := w.syncer.Sync(ctx)
	if err != nil {
		// Retried on the next tick
		logging.Default().Error("tenant refresh failed", "error", err.Error())
		return
	}
	if updated > 0 {
		logging.Default().Info("tenants refreshed", "updated", updated)
	}
}
