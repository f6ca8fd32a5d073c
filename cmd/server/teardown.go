package main

import "sync"

// teardown runs the shutdown sequence: cancel background work, wait for
// every tracked goroutine, then run the closers in registration order.
type teardown struct {
	cancel  func()
	wg      sync.WaitGroup
	closers []func()
}

// goTracked starts fn in a goroutine that run waits for.
func (t *teardown) goTracked(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

func (t *teardown) onClose(fn func()) { t.closers = append(t.closers, fn) }

func (t *teardown) run() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
	for _, c := range t.closers {
		c()
	}
}
