// File: api/waker.go
// Package api defines the contracts between the reactor driver, the
// operation layer and the executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Waker resumes the task that armed it. Wake must be safe to call from any
// thread and must tolerate being invoked after the task already ran.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to the Waker interface.
type WakerFunc func()

// Wake implements Waker.
func (f WakerFunc) Wake() { f() }
