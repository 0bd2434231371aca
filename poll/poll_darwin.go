//go:build darwin
// +build darwin

// File: poll/poll_darwin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Darwin kqueue(2) adapter. Read and write interest map to separate
// EVFILT_READ/EVFILT_WRITE filters with EV_CLEAR (edge-triggered). kqueue
// identifies events by fd, so the adapter keeps an fd-to-token map; it is
// touched only on the reactor thread. The wake source is an EVFILT_USER
// event triggered with NOTE_TRIGGER.

package poll

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reactor/ready"
)

const wakeIdent = 0

// Poller is the kqueue-backed Multiplexer.
type Poller struct {
	kq        int
	raw       []unix.Kevent_t
	tokens    map[int]int
	interests map[int]Interest
}

// New creates the kqueue instance and its user-event wake source.
func New() (*Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue: %w", err)
	}

	wake := unix.Kevent_t{
		Ident:  wakeIdent,
		Filter: unix.EVFILT_USER,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
	}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{wake}, nil, nil); err != nil {
		unix.Close(kq)
		return nil, fmt.Errorf("kevent add wake: %w", err)
	}

	return &Poller{
		kq:        kq,
		tokens:    make(map[int]int),
		interests: make(map[int]Interest),
	}, nil
}

// Add registers fd under token with per-direction kqueue filters.
func (p *Poller) Add(fd, token int, interest Interest) error {
	changes := make([]unix.Kevent_t, 0, 2)
	if interest&ReadInterest != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  unix.EV_ADD | unix.EV_CLEAR,
		})
	}
	if interest&WriteInterest != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_WRITE,
			Flags:  unix.EV_ADD | unix.EV_CLEAR,
		})
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return fmt.Errorf("kevent add: %w", err)
	}

	p.tokens[fd] = token
	p.interests[fd] = interest
	return nil
}

// Del removes fd's filters and forgets its token mapping.
func (p *Poller) Del(fd int) error {
	interest, known := p.interests[fd]
	if !known {
		interest = ReadWrite
	}
	changes := make([]unix.Kevent_t, 0, 2)
	if interest&ReadInterest != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  unix.EV_DELETE,
		})
	}
	if interest&WriteInterest != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_WRITE,
			Flags:  unix.EV_DELETE,
		})
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil && err != unix.ENOENT {
		return fmt.Errorf("kevent delete: %w", err)
	}

	delete(p.tokens, fd)
	delete(p.interests, fd)
	return nil
}

// Wait blocks up to timeout and translates fired kevents.
func (p *Poller) Wait(events []Event, timeout time.Duration) (int, error) {
	if len(p.raw) < len(events) {
		p.raw = make([]unix.Kevent_t, len(events))
	}

	var ts *unix.Timespec
	if timeout >= 0 {
		spec := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &spec
	}

	n, err := unix.Kevent(p.kq, nil, p.raw[:len(events)], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("kevent wait: %w", err)
	}

	out := 0
	for i := 0; i < n; i++ {
		raw := p.raw[i]
		if raw.Filter == unix.EVFILT_USER {
			events[out] = Event{Token: TokenWakeup}
			out++
			continue
		}
		token, known := p.tokens[int(raw.Ident)]
		if !known {
			// Deregistered between firing and draining.
			continue
		}
		events[out] = Event{Token: token, Ready: readiness(raw)}
		out++
	}
	return out, nil
}

// Wakeup triggers the user event, forcing Wait to return.
func (p *Poller) Wakeup() error {
	trigger := unix.Kevent_t{
		Ident:  wakeIdent,
		Filter: unix.EVFILT_USER,
		Fflags: unix.NOTE_TRIGGER,
	}
	_, err := unix.Kevent(p.kq, []unix.Kevent_t{trigger}, nil, nil)
	return err
}

// Close releases the kqueue instance.
func (p *Poller) Close() error {
	return unix.Close(p.kq)
}

func readiness(ev unix.Kevent_t) (r ready.Ready) {
	switch ev.Filter {
	case unix.EVFILT_READ:
		r |= ready.Readable
		if ev.Flags&unix.EV_EOF != 0 {
			r |= ready.ReadClosed
		}
	case unix.EVFILT_WRITE:
		r |= ready.Writable
		if ev.Flags&unix.EV_EOF != 0 {
			r |= ready.WriteClosed
		}
	}
	return r
}

var _ Multiplexer = (*Poller)(nil)
