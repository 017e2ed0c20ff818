// Package workerpool implements the fixed-size worker pool (spec
// component C3): N goroutines draining the bounded queue and invoking
// Process on each connection, mirroring the original thread pool's
// worker/run split (threadpool.h) with Go goroutines standing in for
// detached pthreads.
package workerpool

import (
	"sync"

	"github.com/zdb1357/webserver/internal/conn"
	"github.com/zdb1357/webserver/internal/logging"
	"github.com/zdb1357/webserver/internal/queue"
)

// Pool is a fixed number of workers draining a Queue.
type Pool struct {
	q       *queue.Queue
	log     *logging.Logger
	workers int
	wg      sync.WaitGroup
}

// New constructs a Pool. Construction never fails on Go (no thread
// creation can realistically fail the way pthread_create can), but the
// signature keeps the (Pool, error) shape the rest of the package uses so
// callers treat every subsystem's construction uniformly.
func New(workers int, q *queue.Queue, log *logging.Logger) (*Pool, error) {
	return &Pool{q: q, log: log, workers: workers}, nil
}

// Start spawns the worker goroutines. Each loops: take a connection,
// invoke Process, repeat, until the queue is stopped and drained.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		c, ok := p.q.Take()
		if !ok {
			return
		}
		if c == nil {
			continue
		}
		if err := c.Process(); err != nil {
			p.log.Debugf("process %s: %v", c.Peer, err)
			c.Close()
		}
	}
}

// Stop signals every worker to exit after its current Take returns, and
// waits for them to finish. Per spec.md §4.3, pending queue items are not
// guaranteed to drain; shutdown is terminal.
func (p *Pool) Stop() {
	p.q.Stop(p.workers)
	p.wg.Wait()
}
