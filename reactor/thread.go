// File: reactor/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide directory of reactor loops. Each driver gets a loop ID at
// construction and registers its unpark handle and waker sender; teardown
// removes both. Foreign runtime threads use the directory to reach a loop
// they do not own.

package reactor

import (
	"sync"
	"sync/atomic"
)

var (
	registryMu    sync.RWMutex
	unparkHandles = make(map[uint64]UnparkHandle)
	wakerSenders  = make(map[uint64]*WakerSender)

	nextLoopID atomic.Uint64
)

func allocLoopID() uint64 {
	return nextLoopID.Add(1)
}

func registerUnparkHandle(id uint64, h UnparkHandle) {
	registryMu.Lock()
	unparkHandles[id] = h
	registryMu.Unlock()
}

func unregisterUnparkHandle(id uint64) {
	registryMu.Lock()
	delete(unparkHandles, id)
	registryMu.Unlock()
}

func registerWakerSender(id uint64, s *WakerSender) {
	registryMu.Lock()
	wakerSenders[id] = s
	registryMu.Unlock()
}

func unregisterWakerSender(id uint64) {
	registryMu.Lock()
	delete(wakerSenders, id)
	registryMu.Unlock()
}

// UnparkHandleFor returns the unpark handle registered for the loop.
func UnparkHandleFor(id uint64) (UnparkHandle, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	h, ok := unparkHandles[id]
	return h, ok
}

// WakerSenderFor returns the waker sender registered for the loop.
func WakerSenderFor(id uint64) (*WakerSender, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := wakerSenders[id]
	return s, ok
}
