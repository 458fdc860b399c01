package microtask

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrainRunsInOrder(t *testing.T) {
	q := NewQueue()
	var order []int
	for i := 1; i <= 3; i++ {
		q.Defer(func() { order = append(order, i) })
	}

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, q.Len())
}

func TestQueueDrainRunsNestedDefers(t *testing.T) {
	q := NewQueue()
	var order []string
	q.Defer(func() {
		order = append(order, "outer")
		q.Defer(func() { order = append(order, "inner") })
	})
	q.Defer(func() { order = append(order, "second") })

	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []string{"outer", "second", "inner"}, order)
}

func TestQueueDeferIgnoresNil(t *testing.T) {
	q := NewQueue()
	q.Defer(nil)
	assert.Equal(t, 0, q.Len())
}

func TestQueuePanicLeavesRemainingTasks(t *testing.T) {
	q := NewQueue()
	ran := false
	q.Defer(func() { panic("boom") })
	q.Defer(func() { ran = true })

	require.PanicsWithValue(t, "boom", func() { q.Drain() })
	assert.False(t, ran)
	assert.Equal(t, 1, q.Len(), "the panicking task should be gone, the next one kept")

	assert.Equal(t, 1, q.Drain())
	assert.True(t, ran)
}

func TestDefaultQueue(t *testing.T) {
	ran := 0
	Default().Defer(func() { ran++ })
	Drain()
	assert.Equal(t, 1, ran)
	assert.Equal(t, 0, Default().Len())
}

func TestQueueConcurrentDeferAndDrain(t *testing.T) {
	q := NewQueue()
	var ran atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Defer(func() { ran.Add(1) })
				q.Drain()
			}
		}()
	}
	wg.Wait()

	q.Drain()
	assert.Equal(t, int64(800), ran.Load())
	assert.Equal(t, 0, q.Len())
}

func TestQueueDrainWaitsForOtherDrain(t *testing.T) {
	q := NewQueue()
	started := make(chan struct{})
	release := make(chan struct{})
	finished := false

	q.Defer(func() {
		close(started)
		<-release
		finished = true
	})
	go q.Drain()
	<-started

	done := make(chan struct{})
	go func() {
		q.Drain()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Drain returned while another drain was still running a task")
	default:
	}

	close(release)
	<-done
	assert.True(t, finished)
}
