// File: api/ops.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Operation contract consumed by the reactor driver. An operation owns the
// actual syscall; the driver only decides when retrying it is worthwhile.

package api

import "github.com/momentics/hioload-reactor/ready"

// OpAble is one retryable I/O operation.
type OpAble interface {
	// Interest reports which direction's readiness the operation depends on
	// and the registration token of its handle. ok=false means the operation
	// has no fd dependency and the driver performs the call immediately.
	Interest() (dir ready.Direction, token int, ok bool)

	// Call attempts the underlying syscall once without blocking.
	// It returns the syscall result or an error; unix.EAGAIN and
	// unix.EWOULDBLOCK signal stale readiness and re-arm the waker.
	Call() (int, error)
}

// Completion carries the terminal result of an operation.
type Completion struct {
	Result int
	Err    error
}
