// File: reactor/op.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Operation handle returned to the higher-level operation layer.

package reactor

import (
	"github.com/momentics/hioload-reactor/api"
)

// Op pairs a driver with one in-flight operation's payload.
type Op[T api.OpAble] struct {
	driver *Driver

	// Data is the operation payload; the operation layer reclaims it after
	// completion.
	Data T
}

// SubmitWithData wraps data into an operation handle bound to d. Readiness
// drivers defer all work to the first Poll, so submission itself never
// touches the multiplexer.
func SubmitWithData[T api.OpAble](d *Driver, data T) (*Op[T], error) {
	if d.closed {
		return nil, api.ErrClosed
	}
	return &Op[T]{driver: d, Data: data}, nil
}

// Poll drives the operation one step, arming w when the fd is not ready.
func (o *Op[T]) Poll(w api.Waker) (api.Completion, bool) {
	return o.driver.PollOp(o.Data, w)
}

// Cancel requests cooperative cancellation of the operation's pending
// direction. Operations without an fd dependency have nothing to cancel.
func (o *Op[T]) Cancel() {
	if dir, token, ok := o.Data.Interest(); ok {
		o.driver.CancelOp(token, dir)
	}
}
