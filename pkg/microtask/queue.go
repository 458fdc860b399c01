package microtask

import "sync"

// Scheduler defers a task until the current unit of work completes.
type Scheduler interface {
	Defer(task func())
}

// Queue is a FIFO of deferred tasks. It is safe for concurrent use: any
// goroutine may Defer, and drains are serialized, so a task runs on
// whichever goroutine drains it and finishes before a later Drain starts.
//
// A task must not call Drain on the queue that is running it.
type Queue struct {
	mu    sync.Mutex
	tasks []func()

	// running is held for the length of a Drain.
	running sync.Mutex
}

var _ Scheduler = (*Queue)(nil)

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Defer appends task to the queue. Nil tasks are ignored.
func (q *Queue) Defer(task func()) {
	if task == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs queued tasks in order until the queue is empty, including
// tasks deferred by the tasks it runs, and returns how many ran.
//
// A task is dequeued before it runs. If it panics the panic propagates to
// the caller and the tasks behind it stay queued for the next Drain.
func (q *Queue) Drain() int {
	q.running.Lock()
	defer q.running.Unlock()

	n := 0
	for {
		task := q.pop()
		if task == nil {
			return n
		}
		n++
		task()
	}
}

func (q *Queue) pop() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		q.tasks = nil
		return nil
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task
}

// defaultQueue backs cells that are not given a scheduler.
var defaultQueue = NewQueue()

// Default returns the process-wide queue used by cells created without
// an explicit scheduler. Every goroutine shares it; a goroutine that owns
// its own cells and wants their flushes to run on it alone should give
// them their own Queue or Loop.
func Default() *Queue {
	return defaultQueue
}

// Drain drains the default queue. Call it where a turn of work ends.
// When it returns, every task deferred before the call has finished.
func Drain() int {
	return defaultQueue.Drain()
}
