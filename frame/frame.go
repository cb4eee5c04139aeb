// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame provides the immutable identity of a rendering frame.
//
// A Stamp names one frame: the instant it was started and its position in
// the frame sequence. Stamps are plain values; once created they are never
// mutated, only superseded by the next frame's stamp. All goroutines
// processing a frame share the same stamp value.
package frame

import "time"

// Stamp identifies a single rendering frame.
//
// Count is strictly increasing: the orchestrator produces exactly one stamp
// per frame, each with Count one greater than its predecessor. The zero
// Stamp (Count 0) means "before the first frame" and is never published.
type Stamp struct {
	// Time is the instant the frame was started.
	Time time.Time

	// Count is the 1-based frame sequence number.
	Count uint64
}

// Next returns the stamp for the frame following s, started at now.
func (s Stamp) Next(now time.Time) Stamp {
	return Stamp{Time: now, Count: s.Count + 1}
}

// Event is the event emitted when the orchestrator advances to a new frame.
// It is delivered to registered event handlers alongside window events.
type Event struct {
	// Stamp identifies the frame that was just started.
	Stamp Stamp
}

// When returns the instant the frame was started.
func (e Event) When() time.Time { return e.Stamp.Time }
