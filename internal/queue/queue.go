// Package queue implements the bounded FIFO task queue (spec component
// C2): a mutex-protected list of pending connections, signaled by a
// counting semaphore. Directly grounded on the original thread pool's
// append/run pair (threadpool.h): append locks, checks capacity, pushes,
// unlocks, then posts; take waits, locks, pops, unlocks.
package queue

import (
	"container/list"

	"github.com/zdb1357/webserver/internal/conn"
	"github.com/zdb1357/webserver/internal/syncutil"
)

// Queue is a FIFO of at most Capacity pending connections.
type Queue struct {
	mu       *syncutil.Mutex
	sem      *syncutil.Semaphore
	items    *list.List
	capacity int
	stopped  bool
}

// New constructs a Queue with the given capacity (spec.md's max_requests).
func New(capacity int) (*Queue, error) {
	mu, err := syncutil.NewMutex()
	if err != nil {
		return nil, err
	}
	sem, err := syncutil.NewSemaphore(0)
	if err != nil {
		return nil, err
	}
	return &Queue{
		mu:       mu,
		sem:      sem,
		items:    list.New(),
		capacity: capacity,
	}, nil
}

// Append enqueues c if the queue has room. Returns false without
// enqueueing if the queue is at capacity or has been stopped; per spec.md
// §4.2 the caller is responsible for closing c in that case.
func (q *Queue) Append(c *conn.Connection) bool {
	ok := false
	q.mu.With(func() {
		if q.stopped || q.items.Len() >= q.capacity {
			return
		}
		q.items.PushBack(c)
		ok = true
	})
	if ok {
		q.sem.Post()
	}
	return ok
}

// Take blocks until a connection is available and returns it, or returns
// (nil, false) once the queue has been stopped and drained.
func (q *Queue) Take() (*conn.Connection, bool) {
	for {
		q.sem.Wait()
		var c *conn.Connection
		drained := false
		q.mu.With(func() {
			front := q.items.Front()
			if front == nil {
				// Spurious wakeup (e.g. a sentinel post on Stop with an
				// already-empty queue): loop back to Wait.
				drained = true
				return
			}
			q.items.Remove(front)
			c = front.Value.(*conn.Connection)
		})
		if drained {
			if q.isStopped() {
				return nil, false
			}
			continue
		}
		return c, true
	}
}

func (q *Queue) isStopped() bool {
	stopped := false
	q.mu.With(func() { stopped = q.stopped })
	return stopped
}

// Stop marks the queue stopped and wakes every blocked Take so workers can
// exit. Per spec.md §4.3, the queue may still hold pending items after
// Stop; shutdown is terminal and does not guarantee they drain.
func (q *Queue) Stop(workers int) {
	q.mu.With(func() { q.stopped = true })
	for i := 0; i < workers; i++ {
		q.sem.Post()
	}
}

// Len reports the current queue length, for diagnostics only.
func (q *Queue) Len() int {
	n := 0
	q.mu.With(func() { n = q.items.Len() })
	return n
}
