//go:build !linux && !darwin
// +build !linux,!darwin

// File: poll/poll_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub for platforms without a readiness multiplexer.

package poll

import (
	"time"

	"github.com/momentics/hioload-reactor/api"
)

// New returns an error on unsupported platforms.
func New() (*Poller, error) {
	return nil, api.ErrNotSupported
}

// Poller is a placeholder; New never hands one out.
type Poller struct{}

func (p *Poller) Add(fd, token int, interest Interest) error { return api.ErrNotSupported }
func (p *Poller) Del(fd int) error                           { return api.ErrNotSupported }
func (p *Poller) Wait(events []Event, timeout time.Duration) (int, error) {
	return 0, api.ErrNotSupported
}
func (p *Poller) Wakeup() error { return api.ErrNotSupported }
func (p *Poller) Close() error  { return nil }

var _ Multiplexer = (*Poller)(nil)
