// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor implements the readiness-based fallback I/O driver: a
// single-threaded park loop over the poll multiplexer, a registration table
// of readiness cells, the per-operation poll protocol, and the cross-thread
// wake channel.
package reactor
