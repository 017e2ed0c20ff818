package syncutil

import (
	"sync"
	"testing"
	"time"
)

func TestMutex_With(t *testing.T) {
	m, err := NewMutex()
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.With(func() { n++ })
		}()
	}
	wg.Wait()
	if n != 100 {
		t.Fatalf("n = %d, want 100", n)
	}
}

func TestSemaphore_NegativeInitialRejected(t *testing.T) {
	if _, err := NewSemaphore(-1); err == nil {
		t.Fatal("NewSemaphore(-1) should fail")
	}
}

func TestSemaphore_WaitBlocksUntilPost(t *testing.T) {
	s, err := NewSemaphore(0)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Post")
	case <-time.After(20 * time.Millisecond):
	}

	s.Post()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait never unblocked after Post")
	}
}

func TestSemaphore_InitialCountAllowsImmediateWait(t *testing.T) {
	s, err := NewSemaphore(1)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait should return immediately with a nonzero initial count")
	}
}
