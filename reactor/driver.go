// File: reactor/driver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Readiness-based fallback I/O driver. One thread owns the driver, its
// registration table and every readiness cell; the park loop is the only
// place the thread blocks. Foreign threads reach the driver exclusively
// through the wake channel in waker.go.

package reactor

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"code.cloudfoundry.org/lager"
	"github.com/google/uuid"

	"github.com/momentics/hioload-reactor/api"
	"github.com/momentics/hioload-reactor/internal/slab"
	"github.com/momentics/hioload-reactor/poll"
	"github.com/momentics/hioload-reactor/ready"
)

const defaultEntries = 1024

// Driver multiplexes readiness over registered descriptors and resumes the
// exact task waiting on each of them.
type Driver struct {
	ioDispatch *slab.Slab[scheduledIO]
	mux        poll.Multiplexer
	events     []poll.Event

	// Cross-thread wake channel; nil when disabled.
	shared       *EventWaker
	wakeRequests *wakeQueue
	sender       *WakerSender
	loopID       uint64

	logger lager.Logger
	closed bool
}

// New constructs a driver with the platform multiplexer unless one is
// injected. With cross-thread waking enabled (the default) the driver
// allocates a loop ID and registers its unpark handle and waker sender in
// the process-wide directory.
func New(opts ...Option) (*Driver, error) {
	cfg := config{entries: defaultEntries, crossWake: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.mux == nil {
		p, err := poll.New()
		if err != nil {
			return nil, fmt.Errorf("multiplexer: %w", err)
		}
		cfg.mux = p
	}
	if cfg.logger == nil {
		cfg.logger = lager.NewLogger("io-reactor")
	}

	d := &Driver{
		ioDispatch: slab.New[scheduledIO](),
		mux:        cfg.mux,
		events:     make([]poll.Event, cfg.entries),
		logger:     cfg.logger.Session("driver", lager.Data{"driver-id": uuid.NewString()}),
	}

	if cfg.crossWake {
		d.shared = newEventWaker(cfg.mux)
		d.wakeRequests = newWakeQueue()
		d.sender = &WakerSender{queue: d.wakeRequests, unpark: UnparkHandle{waker: d.shared}}
		d.loopID = allocLoopID()
		registerUnparkHandle(d.loopID, d.Unpark())
		registerWakerSender(d.loopID, d.sender)
	}

	d.logger.Debug("created", lager.Data{"entries": cfg.entries, "cross-wake": cfg.crossWake})
	return d, nil
}

// LoopID returns the directory key of this driver, or zero when
// cross-thread waking is disabled.
func (d *Driver) LoopID() uint64 { return d.loopID }

// Unpark returns a cross-thread-safe handle to this driver's wake signal.
// The zero handle is returned when cross-thread waking is disabled.
func (d *Driver) Unpark() UnparkHandle {
	return UnparkHandle{waker: d.shared}
}

// WakerSender returns the handle foreign threads use to deliver wakers to
// this loop, or nil when cross-thread waking is disabled.
func (d *Driver) WakerSender() *WakerSender { return d.sender }

// Register adds fd to the multiplexer and returns its registration token.
// On multiplexer failure the just-inserted table slot is rolled back so the
// table and the interest set never diverge.
func (d *Driver) Register(fd int, interest poll.Interest) (int, error) {
	if d.closed {
		return 0, api.ErrClosed
	}
	token := d.ioDispatch.Insert(scheduledIO{})
	if err := d.mux.Add(fd, token, interest); err != nil {
		d.ioDispatch.Remove(token)
		d.logger.Error("register", err, lager.Data{"fd": fd})
		return 0, err
	}
	return token, nil
}

// Deregister removes fd from the multiplexer first; the table slot is freed
// only on success, so a failed deregistration never orphans a live
// multiplexer entry.
func (d *Driver) Deregister(token, fd int) error {
	if d.closed {
		return api.ErrClosed
	}
	if err := d.mux.Del(fd); err != nil {
		d.logger.Error("deregister", err, lager.Data{"fd": fd, "token": token})
		return err
	}
	d.ioDispatch.Remove(token)
	return nil
}

// dispatch applies a readiness update to the cell behind token and wakes
// any waker whose direction it intersects. Unknown tokens are dropped:
// deregistration racing an in-flight event is expected and harmless.
func (d *Driver) dispatch(token int, r ready.Ready) {
	sio, ok := d.ioDispatch.Get(token)
	if !ok {
		return
	}
	sio.setReadiness(r)
	sio.wake(r)
}

// PollOp drives one step of the operation state machine. It reports
// done=false after arming w for the operation's direction; the caller must
// not retry until the waker fires.
func (d *Driver) PollOp(op api.OpAble, w api.Waker) (api.Completion, bool) {
	dir, token, ok := op.Interest()
	if !ok {
		// No fd dependency; perform the call immediately.
		n, err := op.Call()
		return api.Completion{Result: n, Err: err}, true
	}

	sio, found := d.ioDispatch.Get(token)
	if !found {
		return api.Completion{Err: fmt.Errorf("registration %d: %w", token, api.ErrClosed)}, true
	}

	r, armed := sio.pollReadiness(dir, w)
	if !armed {
		return api.Completion{}, false
	}

	if r.IsCanceled() {
		// Consume only the cancellation bit; other readiness survives.
		sio.clearReadiness(r & ready.Canceled)
		return api.Completion{Err: api.ErrCanceled}, true
	}

	n, err := op.Call()
	if err != nil && wouldBlock(err) {
		// Stale readiness hint. Clear the direction and re-arm.
		sio.clearReadiness(dir.Mask())
		sio.setWaker(dir, w)
		return api.Completion{}, false
	}
	return api.Completion{Result: n, Err: err}, true
}

// CancelOp marks dir on token as canceled through the normal dispatch path,
// so an armed waker observes the cancellation promptly.
func (d *Driver) CancelOp(token int, dir ready.Direction) {
	d.dispatch(token, dir.CancelMask())
}

// Park blocks until an event fires or a foreign thread unparks the loop.
func (d *Driver) Park() error {
	return d.innerPark(-1)
}

// ParkTimeout bounds the wait; a zero timeout polls without blocking.
func (d *Driver) ParkTimeout(timeout time.Duration) error {
	return d.innerPark(timeout)
}

// Submit drains pending wake requests and fired events without blocking.
func (d *Driver) Submit() error {
	return d.innerPark(0)
}

func (d *Driver) innerPark(timeout time.Duration) error {
	if d.closed {
		return api.ErrClosed
	}

	needWait := true
	if d.shared != nil {
		needWait = !d.drainWakeRequests()
		if needWait {
			// Publish "asleep" before the final drain; a request landing
			// between the two drains would otherwise be stranded until the
			// next real event.
			d.shared.awake.Store(false)
			if d.drainWakeRequests() {
				needWait = false
			}
		}
	}
	if !needWait {
		// New work is already runnable; poll instead of sleeping.
		timeout = 0
	}

	n, err := d.mux.Wait(d.events, timeout)
	if d.shared != nil {
		d.shared.awake.Store(true)
	}
	if err != nil {
		d.logger.Error("wait", err)
		return err
	}

	for i := 0; i < n; i++ {
		ev := d.events[i]
		if ev.Token == poll.TokenWakeup {
			// Exists only to unblock the wait.
			continue
		}
		d.dispatch(ev.Token, ev.Ready)
	}
	return nil
}

func (d *Driver) drainWakeRequests() bool {
	drained := false
	for {
		w, ok := d.wakeRequests.pop()
		if !ok {
			return drained
		}
		w.Wake()
		drained = true
	}
}

// Close tears the driver down: directory entries are removed, the shared
// wake signal is invalidated so late unparks no-op, and the multiplexer is
// released.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.shared != nil {
		unregisterUnparkHandle(d.loopID)
		unregisterWakerSender(d.loopID)
		d.shared.invalidate()
	}
	d.logger.Debug("closed")
	return d.mux.Close()
}

func wouldBlock(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
