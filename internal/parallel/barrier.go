// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import "sync"

// Barrier is a rendezvous point for a fixed number of parties.
//
// Each generation releases exactly once, after the required number of
// arrivals, and the barrier then resets itself so it can be reused for the
// next frame without an explicit reset. A party can contribute to the count
// without waiting for the release via ArriveAndDrop.
//
// There is no timeout: a party that never arrives stalls every waiter.
// That is a documented property of the frame scheduler, not something the
// barrier papers over.
//
// Barrier is safe for concurrent use.
type Barrier struct {
	mu   sync.Mutex
	cond *sync.Cond

	required   int
	arrived    int
	generation uint64
}

// NewBarrier creates a barrier for the given number of parties.
// It panics if required is less than 1.
func NewBarrier(required int) *Barrier {
	if required < 1 {
		panic("parallel: barrier requires at least one party")
	}
	b := &Barrier{required: required}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Required returns the number of parties the barrier was created for.
func (b *Barrier) Required() int {
	return b.required
}

// ArriveAndWait records the caller's arrival and blocks until the current
// generation completes. The last arriver releases all waiters and advances
// the generation atomically.
func (b *Barrier) ArriveAndWait() {
	b.mu.Lock()
	gen := b.generation
	b.arrived++
	if b.arrived == b.required {
		b.release()
		b.mu.Unlock()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// ArriveAndDrop records the caller's arrival but returns immediately,
// without waiting for the generation to complete. The arrival still counts
// toward the release of parties blocked in ArriveAndWait.
func (b *Barrier) ArriveAndDrop() {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.required {
		b.release()
	}
	b.mu.Unlock()
}

// release completes the current generation. Caller must hold b.mu.
func (b *Barrier) release() {
	b.arrived = 0
	b.generation++
	b.cond.Broadcast()
}
