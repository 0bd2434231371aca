// File: reactor/waker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-thread wake channel. Foreign threads may touch exactly two things:
// the shared wake signal's atomics and the wake-request queue. Everything
// else in the driver stays single-threaded.

package reactor

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-reactor/api"
	"github.com/momentics/hioload-reactor/poll"
)

// EventWaker is the shared wake signal: an "is the reactor awake" flag plus
// the multiplexer's dedicated wake source. The driver is the sole logical
// owner; unpark handles hold it only through the closed guard, so an unpark
// after teardown is a defined no-op.
type EventWaker struct {
	mux   poll.Multiplexer
	awake atomic.Bool

	// mu keeps invalidate from completing while a foreign Wake is between
	// its closed check and the multiplexer trigger; the driver closes the
	// multiplexer only after invalidate returns, so Wake can never touch a
	// freed descriptor.
	mu     sync.RWMutex
	closed bool
}

func newEventWaker(mux poll.Multiplexer) *EventWaker {
	w := &EventWaker{mux: mux}
	w.awake.Store(true)
	return w
}

// Wake unblocks the reactor's wait. Skipped when the reactor is already
// awake (it will re-check the request queue before sleeping) or when the
// driver has been torn down.
func (w *EventWaker) Wake() error {
	if w.awake.Load() {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	return w.mux.Wakeup()
}

// invalidate marks the signal torn down. It returns only once no Wake is
// in flight, making it safe to close the multiplexer afterwards.
func (w *EventWaker) invalidate() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// UnparkHandle is a cross-thread-safe handle to a driver's wake signal.
// The zero value (and any handle outliving its driver) unparks nothing.
type UnparkHandle struct {
	waker *EventWaker
}

// Unpark requests that the reactor thread return from its current or next
// park promptly.
func (h UnparkHandle) Unpark() error {
	if h.waker == nil {
		return nil
	}
	return h.waker.Wake()
}

// wakeQueue is the unbounded multi-producer/single-consumer queue of
// foreign wake requests. Producers are arbitrary threads; the only consumer
// is the reactor thread draining it inside the park loop.
type wakeQueue struct {
	mu sync.Mutex
	q  *queue.Queue
}

func newWakeQueue() *wakeQueue {
	return &wakeQueue{q: queue.New()}
}

func (w *wakeQueue) push(waker api.Waker) {
	w.mu.Lock()
	w.q.Add(waker)
	w.mu.Unlock()
}

func (w *wakeQueue) pop() (api.Waker, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.q.Length() == 0 {
		return nil, false
	}
	return w.q.Remove().(api.Waker), true
}

// WakerSender delivers a waiting task's waker from a foreign thread to the
// reactor thread. Requests are never lost: the enqueue happens before the
// unpark, and the park loop drains the queue again after flipping the awake
// flag off.
type WakerSender struct {
	queue  *wakeQueue
	unpark UnparkHandle
}

// Send enqueues w and unparks the reactor so it is invoked promptly.
func (s *WakerSender) Send(w api.Waker) error {
	s.queue.push(w)
	return s.unpark.Unpark()
}
