//go:build linux
// +build linux

// File: poll/poll_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7) adapter. Registrations are edge-triggered; the registration
// token rides in the 64-bit epoll data field (split across Fd and Pad). The
// wake source is an eventfd registered under TokenWakeup.

package poll

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reactor/ready"
)

// Poller is the epoll-backed Multiplexer.
type Poller struct {
	epfd   int
	wakeFd int
	raw    []unix.EpollEvent
}

// New creates the epoll instance and its eventfd wake source.
func New() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN}
	putToken(&ev, TokenWakeup)
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &ev); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wake: %w", err)
	}

	return &Poller{epfd: epfd, wakeFd: wakeFd}, nil
}

// Add registers fd under token with an edge-triggered interest set.
func (p *Poller) Add(fd, token int, interest Interest) error {
	ev := unix.EpollEvent{Events: unix.EPOLLET | unix.EPOLLRDHUP}
	if interest&ReadInterest != 0 {
		ev.Events |= unix.EPOLLIN
	}
	if interest&WriteInterest != 0 {
		ev.Events |= unix.EPOLLOUT
	}
	putToken(&ev, token)

	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

// Del removes fd from the epoll interest set.
func (p *Poller) Del(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// Wait blocks up to timeout and translates fired epoll events.
func (p *Poller) Wait(events []Event, timeout time.Duration) (int, error) {
	if len(p.raw) < len(events) {
		p.raw = make([]unix.EpollEvent, len(events))
	}

	n, err := unix.EpollWait(p.epfd, p.raw[:len(events)], msec(timeout))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	for i := 0; i < n; i++ {
		raw := p.raw[i]
		token := getToken(&raw)
		if token == TokenWakeup {
			p.drainWake()
		}
		events[i] = Event{Token: token, Ready: readiness(raw.Events)}
	}
	return n, nil
}

// Wakeup bumps the eventfd counter, forcing Wait to return.
func (p *Poller) Wakeup() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(p.wakeFd, buf[:])
	if err == unix.EAGAIN {
		// Counter saturated; a wake is already pending.
		return nil
	}
	return err
}

// Close releases the epoll instance and the wake eventfd.
func (p *Poller) Close() error {
	unix.Close(p.wakeFd)
	return unix.Close(p.epfd)
}

func (p *Poller) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(p.wakeFd, buf[:]); err != nil {
			return
		}
	}
}

func msec(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	if timeout == 0 {
		return 0
	}
	ms := int(timeout / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	return ms
}

// putToken stores token in the epoll data union, which x/sys exposes as the
// adjacent Fd and Pad fields.
func putToken(ev *unix.EpollEvent, token int) {
	ev.Fd = int32(uint64(token) & 0xffffffff)
	ev.Pad = int32(uint64(token) >> 32)
}

func getToken(ev *unix.EpollEvent) int {
	return int(uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32)
}

func readiness(events uint32) (r ready.Ready) {
	if events&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		r |= ready.Readable
	}
	if events&unix.EPOLLOUT != 0 {
		r |= ready.Writable
	}
	if events&unix.EPOLLRDHUP != 0 {
		r |= ready.ReadClosed
	}
	if events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		r |= ready.ReadClosed | ready.WriteClosed
	}
	return r
}

var _ Multiplexer = (*Poller)(nil)
