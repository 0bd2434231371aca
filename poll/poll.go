// File: poll/poll.go
// Package poll wraps the OS readiness multiplexer behind one capability:
// register/deregister raw descriptors and wait for (token, readiness) event
// batches. Platform adapters are selected by build tags; upper layers never
// branch on the platform.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package poll

import (
	"time"

	"github.com/momentics/hioload-reactor/ready"
)

// Interest selects which directions a registration watches.
type Interest uint8

const (
	// ReadInterest watches read readiness.
	ReadInterest Interest = 1 << iota
	// WriteInterest watches write readiness.
	WriteInterest
)

// ReadWrite watches both directions.
const ReadWrite = ReadInterest | WriteInterest

// TokenWakeup is reserved for the multiplexer's own wake source. Events
// carrying it exist only to unblock Wait and carry no readiness payload.
const TokenWakeup = 1 << 30

// Event is one fired readiness notification, translated to the reactor's
// token and readiness domain. A batch is valid until the next Wait call.
type Event struct {
	Token int
	Ready ready.Ready
}

// Multiplexer is the capability the reactor driver consumes.
type Multiplexer interface {
	// Add registers fd under token with the given interest set.
	Add(fd, token int, interest Interest) error

	// Del removes fd from the interest set. The caller frees its
	// registration slot only after Del succeeds.
	Del(fd int) error

	// Wait blocks up to timeout (negative means indefinitely) and fills
	// events with fired notifications. A signal interruption yields an
	// empty batch, not an error.
	Wait(events []Event, timeout time.Duration) (int, error)

	// Wakeup makes the next (or an in-flight) Wait return promptly by
	// triggering the reserved wake source. Safe from any thread.
	Wakeup() error

	// Close releases the multiplexer resources.
	Close() error
}
