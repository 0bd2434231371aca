// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-reactor/poll"
)

// Multiplexer is a scripted poll.Multiplexer for driver tests. Events are
// queued with Queue and handed out by Wait; Wakeup injects the reserved
// wake token the way a real wake source does.
type Multiplexer struct {
	mu      sync.Mutex
	regs    map[int]int // fd -> token
	pending []poll.Event
	signal  chan struct{}

	wakeups     int
	waits       int
	lastTimeout time.Duration

	// AddErr and DelErr, when set, fail the next Add/Del call.
	AddErr error
	DelErr error
}

// NewMultiplexer returns an empty scripted multiplexer.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{
		regs:   make(map[int]int),
		signal: make(chan struct{}, 1),
	}
}

// Queue schedules an event for the next Wait and unblocks a waiter.
func (m *Multiplexer) Queue(ev poll.Event) {
	m.mu.Lock()
	m.pending = append(m.pending, ev)
	m.mu.Unlock()
	m.notify()
}

// Add records the registration.
func (m *Multiplexer) Add(fd, token int, interest poll.Interest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		err := m.AddErr
		m.AddErr = nil
		return err
	}
	m.regs[fd] = token
	return nil
}

// Del removes the registration.
func (m *Multiplexer) Del(fd int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DelErr != nil {
		err := m.DelErr
		m.DelErr = nil
		return err
	}
	delete(m.regs, fd)
	return nil
}

// Wait returns queued events, blocking per the timeout contract when none
// are pending.
func (m *Multiplexer) Wait(events []poll.Event, timeout time.Duration) (int, error) {
	m.mu.Lock()
	m.waits++
	m.lastTimeout = timeout
	m.mu.Unlock()

	for {
		m.mu.Lock()
		if len(m.pending) > 0 {
			n := copy(events, m.pending)
			m.pending = m.pending[n:]
			m.mu.Unlock()
			return n, nil
		}
		m.mu.Unlock()

		if timeout == 0 {
			return 0, nil
		}
		if timeout < 0 {
			<-m.signal
			continue
		}
		select {
		case <-m.signal:
		case <-time.After(timeout):
			return 0, nil
		}
	}
}

// Wakeup queues the reserved wake event, mirroring an eventfd trigger.
func (m *Multiplexer) Wakeup() error {
	m.mu.Lock()
	m.wakeups++
	m.pending = append(m.pending, poll.Event{Token: poll.TokenWakeup})
	m.mu.Unlock()
	m.notify()
	return nil
}

// Close is a no-op.
func (m *Multiplexer) Close() error { return nil }

// Registered returns the token fd was registered under.
func (m *Multiplexer) Registered(fd int) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.regs[fd]
	return token, ok
}

// Wakeups counts Wakeup calls.
func (m *Multiplexer) Wakeups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wakeups
}

// Waits counts Wait calls.
func (m *Multiplexer) Waits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waits
}

// LastTimeout reports the timeout passed to the most recent Wait.
func (m *Multiplexer) LastTimeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTimeout
}

func (m *Multiplexer) notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

var _ poll.Multiplexer = (*Multiplexer)(nil)
