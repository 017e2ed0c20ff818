// Package syncutil wraps the synchronization primitives the reactor and
// worker pool share: a scoped mutex, a counting semaphore, and a condition
// variable. None of the three are reentrant and none offer priority
// inheritance; callers are expected to hold a primitive for the shortest
// span that correctness requires.
package syncutil

import (
	"fmt"
	"sync"
)

// InitError is returned when a primitive cannot be constructed.
type InitError struct {
	Primitive string
	Reason    string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("syncutil: failed to initialize %s: %s", e.Primitive, e.Reason)
}

// Mutex is a scoped-acquisition wrapper around sync.Mutex. With releases
// on every exit path by construction; call With instead of Lock/Unlock
// wherever the critical section is a single function body.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex constructs a Mutex. It never fails on platforms Go supports, but
// keeps the (Mutex, error) shape the rest of the package uses so call sites
// can treat primitive construction uniformly.
func NewMutex() (*Mutex, error) {
	return &Mutex{}, nil
}

// Lock acquires the mutex. Prefer With for scoped acquisition.
func (m *Mutex) Lock() { m.mu.Lock() }

// Unlock releases the mutex.
func (m *Mutex) Unlock() { m.mu.Unlock() }

// With runs fn while holding the mutex, releasing it on every return path
// including a panic unwinding through fn.
func (m *Mutex) With(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// Semaphore is a counting semaphore: Wait blocks while the count is zero,
// Post increments it and wakes at most one waiter.
type Semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// NewSemaphore constructs a counting semaphore with the given initial
// count. A negative initial count is an InitError.
func NewSemaphore(initial int) (*Semaphore, error) {
	if initial < 0 {
		return nil, &InitError{Primitive: "semaphore", Reason: "negative initial count"}
	}
	s := &Semaphore{count: initial}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

// Wait decrements the semaphore, blocking while the count is zero.
func (s *Semaphore) Wait() {
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// Post increments the semaphore, waking at most one waiter.
func (s *Semaphore) Post() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

// CondVar is a standard condition variable: Wait atomically unlocks m and
// suspends, Signal wakes one waiter, Broadcast wakes all. Callers must
// re-check their predicate in a loop after Wait returns.
type CondVar struct {
	cond *sync.Cond
}

// NewCondVar constructs a condition variable bound to m's underlying lock.
func NewCondVar(m *Mutex) (*CondVar, error) {
	return &CondVar{cond: sync.NewCond(&m.mu)}, nil
}

// Wait unlocks the bound mutex, suspends until woken, then re-locks it.
// The caller must hold the mutex when calling Wait.
func (c *CondVar) Wait() { c.cond.Wait() }

// Signal wakes one waiter.
func (c *CondVar) Signal() { c.cond.Signal() }

// Broadcast wakes every waiter.
func (c *CondVar) Broadcast() { c.cond.Broadcast() }
