package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func(ctx context.Context) error
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	// Block until stopped
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond, "services did not start in time")

	cancel()

	assert.NoError(t, waitDone(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycle_ServiceExitShutsDown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	background := &mockService{}
	session := &mockService{startFn: func(context.Context) error { return nil }}
	lc.Add("background", background)
	lc.Add("session", session)

	assert.NoError(t, waitDone(t, runAsync(lc, context.Background())))
	assert.True(t, background.stopped.Load())
	assert.True(t, session.stopped.Load())
}

func TestLifecycle_ServiceErrorReturned(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	lc.Add("bad", &mockService{startFn: func(context.Context) error { return boom }})

	err := waitDone(t, runAsync(lc, context.Background()))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service bad")
}

func TestLifecycle_StartContextCancelledOnShutdown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var sawCancel atomic.Bool
	lc.Add("waiter", &FuncService{StartFn: func(ctx context.Context) error {
		<-ctx.Done()
		sawCancel.Store(true)
		return nil
	}})
	lc.Add("quitter", &FuncService{StartFn: func(context.Context) error { return nil }})

	require.NoError(t, waitDone(t, runAsync(lc, context.Background())))
	assert.Eventually(t, sawCancel.Load, 2*time.Second, 10*time.Millisecond)
}

func TestLifecycle_StopOrderIsReverse(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var mu sync.Mutex
	var order []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	block := func(ctx context.Context) error { <-ctx.Done(); return nil }
	lc.Add("first", &FuncService{StartFn: block, StopFn: record("first")})
	lc.Add("second", &FuncService{StartFn: block, StopFn: record("second")})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	cancel()
	require.NoError(t, waitDone(t, done))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start(context.Background()))
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)

	(&FuncService{StartFn: svc.StartFn}).Stop()
}
