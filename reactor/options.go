// File: reactor/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for driver construction.

package reactor

import (
	"code.cloudfoundry.org/lager"

	"github.com/momentics/hioload-reactor/poll"
)

// Option customizes driver initialization.
type Option func(*config)

type config struct {
	entries   int
	crossWake bool
	mux       poll.Multiplexer
	logger    lager.Logger
}

// WithEntries sets the event-buffer capacity for each wait call.
func WithEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.entries = n
		}
	}
}

// WithoutCrossThreadWake disables the wake channel for runtimes that never
// unpark a reactor from another thread.
func WithoutCrossThreadWake() Option {
	return func(c *config) {
		c.crossWake = false
	}
}

// WithMultiplexer injects a multiplexer, replacing the platform default.
func WithMultiplexer(m poll.Multiplexer) Option {
	return func(c *config) {
		c.mux = m
	}
}

// WithLogger attaches a logger for driver lifecycle and failure events.
func WithLogger(l lager.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
