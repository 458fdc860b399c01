package microtask

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func startLoop(t *testing.T, opts ...LoopOption) (*Loop, <-chan error) {
	t.Helper()
	opts = append([]LoopOption{WithLogger(zaptest.NewLogger(t))}, opts...)
	loop := NewLoop(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return loop, errc
}

func TestLoopDrainsMicrotasksAfterEachTask(t *testing.T) {
	loop, _ := startLoop(t)
	ctx := context.Background()

	var order []string
	require.NoError(t, loop.Submit(func() {
		order = append(order, "task 1")
		loop.Defer(func() { order = append(order, "micro 1") })
	}))
	require.NoError(t, loop.Submit(func() {
		order = append(order, "task 2")
	}))
	require.NoError(t, loop.Do(ctx, func() {}))

	assert.Equal(t, []string{"task 1", "micro 1", "task 2"}, order)
}

func TestLoopDoWaitsForMicrotasks(t *testing.T) {
	loop, _ := startLoop(t)

	done := false
	err := loop.Do(context.Background(), func() {
		loop.Defer(func() { done = true })
	})
	require.NoError(t, err)
	assert.True(t, done)
}

func TestLoopDoReturnsPanicAndKeepsRunning(t *testing.T) {
	loop, _ := startLoop(t)
	ctx := context.Background()

	cause := errors.New("listener failed")
	err := loop.Do(ctx, func() { panic(cause) })

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, cause, pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.ErrorIs(t, err, ErrPanicked)
	assert.ErrorIs(t, err, cause)

	assert.NoError(t, loop.Do(ctx, func() {}), "loop should survive a panic inside Do")
}

func TestLoopRunStopsOnSubmitPanic(t *testing.T) {
	loop, errc := startLoop(t)

	require.NoError(t, loop.Submit(func() { panic("boom") }))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrPanicked)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after a panic")
	}
	assert.ErrorIs(t, loop.Submit(func() {}), ErrLoopClosed)
}

func TestLoopFaultHandlerKeepsRunning(t *testing.T) {
	var mu sync.Mutex
	var faults []error
	loop, _ := startLoop(t, WithFaultHandler(func(err error) {
		mu.Lock()
		faults = append(faults, err)
		mu.Unlock()
	}))

	require.NoError(t, loop.Submit(func() { panic("boom") }))
	require.NoError(t, loop.Do(context.Background(), func() {}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, faults, 1)
	assert.ErrorIs(t, faults[0], ErrPanicked)
}

func TestLoopCloseRunsPendingTasks(t *testing.T) {
	loop := NewLoop()
	ran := 0
	require.NoError(t, loop.Submit(func() { ran++ }))
	require.NoError(t, loop.Submit(func() { ran++ }))
	loop.Close()

	assert.ErrorIs(t, loop.Submit(func() {}), ErrLoopClosed)
	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, 2, ran)
}

func TestLoopRunTwice(t *testing.T) {
	loop, _ := startLoop(t)
	require.NoError(t, loop.Do(context.Background(), func() {}))
	assert.ErrorIs(t, loop.Run(context.Background()), ErrLoopRunning)
}

func TestLoopCancelUnblocksDo(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, loop.Run(ctx), context.Canceled)

	err := loop.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrLoopClosed)
}

func TestLoopDoRespectsContext(t *testing.T) {
	loop := NewLoop() // never run
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := loop.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
