package coordinator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncCoordinator(t *testing.T, hook SyncHook) *Coordinator {
	t.Helper()

	cfg := testConfig(afero.NewMemMapFs())
	cfg.AutoSync = AutoSyncConfig{Enabled: true, Interval: 10 * time.Millisecond}
	cfg.SyncHook = hook

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestAutoSync_InvokesHookAndRecordsTimestamp(t *testing.T) {
	var calls atomic.Int64
	c := newSyncCoordinator(t, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, c.StartAutoSync(context.Background()))

	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.NotNil(t, c.Stats().LastSyncAt)
	assert.Equal(t, uint64(0), c.Stats().SyncErrors)
}

func TestAutoSync_StopPreventsFurtherTicks(t *testing.T) {
	var calls atomic.Int64
	c := newSyncCoordinator(t, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, c.StartAutoSync(context.Background()))
	require.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)

	c.StopAutoSync()
	after := calls.Load()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestAutoSync_StartIsIdempotent(t *testing.T) {
	var calls atomic.Int64
	c := newSyncCoordinator(t, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, c.StartAutoSync(ctx))
	require.NoError(t, c.StartAutoSync(ctx))

	c.StopAutoSync()
	c.StopAutoSync()
}

func TestAutoSync_DisabledIsNoOp(t *testing.T) {
	cfg := testConfig(afero.NewMemMapFs())
	cfg.AutoSync = AutoSyncConfig{Enabled: false, Interval: 10 * time.Millisecond}
	var calls atomic.Int64
	cfg.SyncHook = func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.StartAutoSync(context.Background()))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestAutoSync_HookFailureCountsAndContinues(t *testing.T) {
	var calls atomic.Int64
	c := newSyncCoordinator(t, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("remote unavailable")
	})

	require.NoError(t, c.StartAutoSync(context.Background()))

	require.Eventually(t, func() bool {
		return c.Stats().SyncErrors >= 1
	}, 10*time.Second, 10*time.Millisecond)

	// The loop keeps running and retrying after a failed tick.
	assert.GreaterOrEqual(t, calls.Load(), int64(syncHookAttempts))
	assert.Nil(t, c.Stats().LastSyncAt)

	c.StopAutoSync()
}

func TestAutoSync_NilHookStillRecordsSync(t *testing.T) {
	c := newSyncCoordinator(t, nil)

	require.NoError(t, c.StartAutoSync(context.Background()))

	require.Eventually(t, func() bool {
		return c.Stats().LastSyncAt != nil
	}, 2*time.Second, 5*time.Millisecond)
}
