// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"sync"

	"github.com/gogpu/viewer/frame"
)

// FrameBlock broadcasts "a new frame is available" from the orchestrator to
// every recording worker, with cooperative shutdown.
//
// There is a single writer (the orchestrator, via Set) and many readers
// (workers blocked in WaitForChange). The published stamp only moves
// forward by frame count while the session is active. Once the shared
// Status goes inactive, every waiter unblocks and returns false, whether or
// not a new frame was ever published; Wake forces that re-evaluation
// promptly during shutdown instead of relying on a future Set.
//
// FrameBlock is safe for concurrent use.
type FrameBlock struct {
	status *Status

	mu      sync.Mutex
	cond    *sync.Cond
	current frame.Stamp
}

// NewFrameBlock creates a FrameBlock tied to the given liveness flag.
func NewFrameBlock(status *Status) *FrameBlock {
	b := &FrameBlock{status: status}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Set publishes a new frame stamp and wakes every blocked waiter.
// Only the orchestrator calls Set.
func (b *FrameBlock) Set(stamp frame.Stamp) {
	b.mu.Lock()
	b.current = stamp
	b.cond.Broadcast()
	b.mu.Unlock()
}

// WaitForChange blocks until a stamp newer than last has been published,
// returning it with true, or until the session goes inactive, returning
// last with false. The false return does not require any value change;
// shutdown must unblock waiters even if no frame was ever produced.
func (b *FrameBlock) WaitForChange(last frame.Stamp) (frame.Stamp, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if !b.status.Active() {
			return last, false
		}
		if b.current.Count > last.Count {
			return b.current, true
		}
		b.cond.Wait()
	}
}

// Wake forces every waiter to re-evaluate its exit conditions without
// changing the published value. Used during shutdown, after the status has
// been cleared, so no waiter is left to a spurious wakeup.
func (b *FrameBlock) Wake() {
	b.mu.Lock()
	b.cond.Broadcast()
	b.mu.Unlock()
}
