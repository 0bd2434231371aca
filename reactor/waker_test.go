package reactor

import (
	"testing"
	"time"

	"github.com/momentics/hioload-reactor/api"
	"github.com/momentics/hioload-reactor/fake"
	"github.com/momentics/hioload-reactor/poll"
)

func TestEventWakerSkipsWhenAwake(t *testing.T) {
	m := fake.NewMultiplexer()
	w := newEventWaker(m)

	// Fresh signal reads as awake; wakes are free no-ops.
	if err := w.Wake(); err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if err := w.Wake(); err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if m.Wakeups() != 0 {
		t.Fatalf("awake signal still triggered %d wakeups", m.Wakeups())
	}
}

func TestEventWakerTriggersWhenParked(t *testing.T) {
	m := fake.NewMultiplexer()
	w := newEventWaker(m)
	w.awake.Store(false)

	if err := w.Wake(); err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if m.Wakeups() != 1 {
		t.Fatalf("wakeups = %d", m.Wakeups())
	}
}

func TestEventWakerNoopAfterInvalidate(t *testing.T) {
	m := fake.NewMultiplexer()
	w := newEventWaker(m)
	w.awake.Store(false)
	w.invalidate()

	if err := w.Wake(); err != nil {
		t.Fatalf("Wake after invalidate: %v", err)
	}
	if m.Wakeups() != 0 {
		t.Fatalf("torn-down signal triggered %d wakeups", m.Wakeups())
	}
}

// blockingMux parks Wakeup between two channels so a test can hold a wake
// in flight.
type blockingMux struct {
	entered chan struct{}
	release chan struct{}
	wakeups int
}

func (m *blockingMux) Add(fd, token int, interest poll.Interest) error { return nil }
func (m *blockingMux) Del(fd int) error                                { return nil }
func (m *blockingMux) Wait(events []poll.Event, timeout time.Duration) (int, error) {
	return 0, nil
}
func (m *blockingMux) Close() error { return nil }

func (m *blockingMux) Wakeup() error {
	m.entered <- struct{}{}
	<-m.release
	m.wakeups++
	return nil
}

func TestInvalidateWaitsForInFlightWake(t *testing.T) {
	m := &blockingMux{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	w := newEventWaker(m)
	w.awake.Store(false)

	wakeDone := make(chan error, 1)
	go func() { wakeDone <- w.Wake() }()
	<-m.entered // the wake is now inside the multiplexer trigger

	invDone := make(chan struct{})
	go func() {
		w.invalidate()
		close(invDone)
	}()

	// Teardown must not complete while the trigger is still running;
	// otherwise the driver would close the multiplexer under it.
	select {
	case <-invDone:
		t.Fatal("invalidate returned while a wake was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(m.release)
	if err := <-wakeDone; err != nil {
		t.Fatalf("Wake: %v", err)
	}
	<-invDone

	// Later wakes observe the teardown and never reach the multiplexer.
	if err := w.Wake(); err != nil {
		t.Fatalf("Wake after invalidate: %v", err)
	}
	if m.wakeups != 1 {
		t.Fatalf("wakeups = %d", m.wakeups)
	}
}

func TestZeroUnparkHandleIsNoop(t *testing.T) {
	var h UnparkHandle
	if err := h.Unpark(); err != nil {
		t.Fatalf("zero handle: %v", err)
	}
}

func TestWakeQueueFIFO(t *testing.T) {
	q := newWakeQueue()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		q.push(api.WakerFunc(func() { order = append(order, i) }))
	}
	for {
		w, ok := q.pop()
		if !ok {
			break
		}
		w.Wake()
	}
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("drain order %v", order)
	}
}

func TestWakerSenderEnqueuesThenUnparks(t *testing.T) {
	m := fake.NewMultiplexer()
	w := newEventWaker(m)
	w.awake.Store(false)
	q := newWakeQueue()
	s := &WakerSender{queue: q, unpark: UnparkHandle{waker: w}}

	woken := false
	if err := s.Send(api.WakerFunc(func() { woken = true })); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.Wakeups() != 1 {
		t.Fatalf("send did not unpark, wakeups=%d", m.Wakeups())
	}
	waker, ok := q.pop()
	if !ok {
		t.Fatal("request lost")
	}
	waker.Wake()
	if !woken {
		t.Fatal("wrong waker delivered")
	}
}
