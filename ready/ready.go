// File: ready/ready.go
// Package ready defines the per-registration readiness bitmask and the
// read/write direction type used by the reactor and the poll adapters.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ready

// Ready is a bitmask of readiness states for one registered handle.
// Bits only accumulate (bitwise OR); consumers clear them explicitly.
type Ready uint8

const (
	// Readable indicates the handle may support a non-blocking read.
	Readable Ready = 1 << iota
	// Writable indicates the handle may support a non-blocking write.
	Writable
	// ReadClosed indicates the peer closed the read half (HUP/RDHUP).
	ReadClosed
	// WriteClosed indicates the write half is shut down.
	WriteClosed
	// ReadCanceled marks a cooperative cancellation of a pending read.
	ReadCanceled
	// WriteCanceled marks a cooperative cancellation of a pending write.
	WriteCanceled
)

// Canceled covers both cancellation bits.
const Canceled = ReadCanceled | WriteCanceled

// Empty reports whether no bit is set.
func (r Ready) Empty() bool { return r == 0 }

// Readable reports whether a read would plausibly not block.
func (r Ready) Readable() bool { return r&(Readable|ReadClosed) != 0 }

// Writable reports whether a write would plausibly not block.
func (r Ready) Writable() bool { return r&(Writable|WriteClosed) != 0 }

// IsCanceled reports whether either cancellation bit is set.
func (r Ready) IsCanceled() bool { return r&Canceled != 0 }

// Direction selects the read or write half of a registration.
type Direction uint8

const (
	// Read selects the read half.
	Read Direction = iota
	// Write selects the write half.
	Write
)

// Mask returns every readiness bit belonging to the direction, including
// its closed and canceled bits.
func (d Direction) Mask() Ready {
	if d == Read {
		return Readable | ReadClosed | ReadCanceled
	}
	return Writable | WriteClosed | WriteCanceled
}

// CancelMask returns the cancellation bit for the direction.
func (d Direction) CancelMask() Ready {
	if d == Read {
		return ReadCanceled
	}
	return WriteCanceled
}

// String implements fmt.Stringer for log output.
func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}
