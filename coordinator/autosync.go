package coordinator

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const syncHookAttempts = 3

// StartAutoSync launches the background synchronization loop. It is a no-op
// when auto sync is disabled in the configuration, and idempotent when the
// loop is already running.
func (c *Coordinator) StartAutoSync(ctx context.Context) error {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	if c.syncRunning {
		return nil
	}
	if !c.cfg.AutoSync.Enabled {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.syncCancel = cancel
	c.syncRunning = true

	c.syncWg.Add(1)
	go c.runAutoSync(loopCtx)

	c.logger.Info("Auto sync started", "interval", c.cfg.AutoSync.Interval)
	return nil
}

// StopAutoSync cancels the loop and waits for it to exit, so no tick fires
// after it returns. Stopping an already-stopped coordinator is a no-op.
func (c *Coordinator) StopAutoSync() {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	if !c.syncRunning {
		return
	}

	c.syncCancel()
	c.syncWg.Wait()
	c.syncRunning = false

	c.logger.Info("Auto sync stopped")
}

func (c *Coordinator) runAutoSync(ctx context.Context) {
	defer c.syncWg.Done()

	ticker := time.NewTicker(c.cfg.AutoSync.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runSync(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// runSync performs one synchronization attempt. Hook failures are retried a
// few times within the tick, then counted; they never stop the loop.
func (c *Coordinator) runSync(ctx context.Context) {
	runID := uuid.NewString()

	if c.cfg.SyncHook != nil {
		err := retry.Do(
			func() error { return c.cfg.SyncHook(ctx) },
			retry.Context(ctx),
			retry.Attempts(syncHookAttempts),
			retry.Delay(time.Second),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			c.syncErrors.Add(1)
			c.logger.Error("External sync failed", "run_id", runID, "error", err)
			return
		}
	}

	c.lastSyncNano.Store(time.Now().UTC().UnixNano())
	c.logger.Debug("External sync completed", "run_id", runID)
}
