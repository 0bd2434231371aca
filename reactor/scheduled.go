// File: reactor/scheduled.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-registration readiness cell. Owned and mutated exclusively by the
// reactor thread; no atomics needed. Readiness accumulates with OR until a
// consumer clears it, and at most one waker is stored per direction.

package reactor

import (
	"github.com/momentics/hioload-reactor/api"
	"github.com/momentics/hioload-reactor/ready"
)

// scheduledIO is the state behind one registration table slot.
type scheduledIO struct {
	readiness ready.Ready
	reader    api.Waker
	writer    api.Waker
}

// setReadiness merges r into the accumulated mask.
func (s *scheduledIO) setReadiness(r ready.Ready) {
	s.readiness |= r
}

// clearReadiness drops the bits in mask, leaving the other direction intact.
func (s *scheduledIO) clearReadiness(mask ready.Ready) {
	s.readiness &^= mask
}

// setWaker arms w for dir, replacing any previously stored waker.
func (s *scheduledIO) setWaker(dir ready.Direction, w api.Waker) {
	if dir == ready.Read {
		s.reader = w
	} else {
		s.writer = w
	}
}

// wake invokes and clears each stored waker whose direction intersects r.
// A waker fires at most once per stored instance.
func (s *scheduledIO) wake(r ready.Ready) {
	if r&ready.Read.Mask() != 0 && s.reader != nil {
		w := s.reader
		s.reader = nil
		w.Wake()
	}
	if r&ready.Write.Mask() != 0 && s.writer != nil {
		w := s.writer
		s.writer = nil
		w.Wake()
	}
}

// pollReadiness returns dir's pending readiness, or arms w and reports
// not-ready when the direction's mask is empty.
func (s *scheduledIO) pollReadiness(dir ready.Direction, w api.Waker) (ready.Ready, bool) {
	r := s.readiness & dir.Mask()
	if r.Empty() {
		s.setWaker(dir, w)
		return 0, false
	}
	return r, true
}
