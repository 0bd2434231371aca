package poll

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func mustPoller(t *testing.T) *Poller {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func mustPipe(t *testing.T) (int, int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestReadReadiness(t *testing.T) {
	p := mustPoller(t)
	r, w := mustPipe(t)

	const token = 7
	if err := p.Add(r, token, ReadInterest); err != nil {
		t.Fatalf("Add: %v", err)
	}

	events := make([]Event, 8)
	if n, err := p.Wait(events, 0); err != nil || n != 0 {
		t.Fatalf("idle pipe fired: n=%d err=%v", n, err)
	}

	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	n, err := p.Wait(events, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || events[0].Token != token || !events[0].Ready.Readable() {
		t.Fatalf("unexpected batch: n=%d ev=%+v", n, events[0])
	}

	if err := p.Del(r); err != nil {
		t.Fatalf("Del: %v", err)
	}
}

func TestPeerCloseTranslatesToReadClosed(t *testing.T) {
	p := mustPoller(t)
	r, w := mustPipe(t)

	if err := p.Add(r, 3, ReadInterest); err != nil {
		t.Fatalf("Add: %v", err)
	}
	unix.Close(w)

	events := make([]Event, 4)
	n, err := p.Wait(events, time.Second)
	if err != nil || n != 1 {
		t.Fatalf("Wait: n=%d err=%v", n, err)
	}
	if !events[0].Ready.Readable() {
		t.Fatalf("peer close not readable: %+v", events[0])
	}
}

func TestWakeupUnblocksWait(t *testing.T) {
	p := mustPoller(t)

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Wakeup()
	}()

	events := make([]Event, 4)
	n, err := p.Wait(events, -1)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || events[0].Token != TokenWakeup {
		t.Fatalf("expected wake event, got n=%d ev=%+v", n, events[0])
	}

	// The eventfd is drained; a zero-timeout wait must see nothing.
	if n, err := p.Wait(events, 0); err != nil || n != 0 {
		t.Fatalf("wake event refired: n=%d err=%v", n, err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	var ev unix.EpollEvent
	for _, token := range []int{0, 1, 1<<20 + 3, TokenWakeup} {
		putToken(&ev, token)
		if got := getToken(&ev); got != token {
			t.Errorf("token %d round-tripped to %d", token, got)
		}
	}
}
