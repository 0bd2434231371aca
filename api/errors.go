// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error values used across the library.

package api

import "fmt"

var (
	// ErrCanceled is delivered exactly once per canceled direction.
	ErrCanceled = fmt.Errorf("operation canceled")
	// ErrClosed reports use of a driver after Close.
	ErrClosed = fmt.Errorf("driver is closed")
	// ErrNotSupported reports a platform without a readiness multiplexer.
	ErrNotSupported = fmt.Errorf("platform not supported")
)
