// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package viewer

import (
	"fmt"

	"github.com/gogpu/viewer/frame"
)

// RecordAndSubmitTask groups the command graphs that share one device and
// queue and owns the submit protocol for them. Tasks are created once by
// AssignRecordAndSubmitTask and reused every frame.
//
// Two usage modes:
//
//   - Submit records every owned graph sequentially and submits the batch.
//     Used when no threading session is active.
//   - Start / per-graph Record / Finish split the protocol so that several
//     goroutines record concurrently while exactly one performs the queue
//     submission. Submission to a queue must be serialized; recording need
//     not be.
type RecordAndSubmitTask struct {
	// Device is the device all of the task's command graphs record for.
	Device Device

	// Queue is the submission queue. Exactly one Submit/Finish call per
	// frame targets it, always from a single goroutine.
	Queue Queue

	// CommandGraphs are the graphs owned by this task, in recording
	// order. A graph belongs to at most one task.
	CommandGraphs []CommandGraph

	// WaitSemaphores are waited on by every submission of this task.
	WaitSemaphores []Semaphore

	// SignalSemaphores are signaled when a submission completes. The
	// render-finished semaphore consumed by the paired Presentation
	// lives here.
	SignalSemaphores []Semaphore

	// Pager, when non-nil, is offered to recording traversals and
	// updated after each synchronous submit.
	Pager Pager

	// Windows are the unique windows the task's graphs render to.
	Windows []Window
}

// NewRecordAndSubmitTask creates a task bound to one device and queue.
func NewRecordAndSubmitTask(device Device, queue Queue) *RecordAndSubmitTask {
	return &RecordAndSubmitTask{Device: device, Queue: queue}
}

// Submit records all owned command graphs sequentially, submits the
// resulting buffers as one batch, and lets the pager update. A task with no
// command graphs is a no-op for the frame.
func (t *RecordAndSubmitTask) Submit(stamp frame.Stamp) error {
	if len(t.CommandGraphs) == 0 {
		return nil
	}

	if err := t.Start(); err != nil {
		return err
	}

	var buffers []CommandBuffer
	for _, cg := range t.CommandGraphs {
		recorded, err := cg.Record(stamp, t.Pager)
		if err != nil {
			return fmt.Errorf("viewer: record command graph: %w", err)
		}
		buffers = append(buffers, recorded...)
	}

	if err := t.Finish(buffers); err != nil {
		return err
	}

	if t.Pager != nil {
		if err := t.Pager.UpdateSceneGraph(stamp); err != nil {
			return fmt.Errorf("viewer: pager update: %w", err)
		}
	}
	return nil
}

// Start performs pre-submission bookkeeping for the frame, such as
// acquiring a fence or timeline slot on queues that need one. In split mode
// only the primary goroutine calls Start, before the recording rendezvous.
func (t *RecordAndSubmitTask) Start() error {
	if fs, ok := t.Queue.(frameStarter); ok {
		if err := fs.StartFrame(); err != nil {
			return fmt.Errorf("viewer: start frame: %w", err)
		}
	}
	return nil
}

// Finish submits the aggregated buffer collection atomically to the task's
// queue with the configured wait and signal semaphores. Submission failures
// are not retried; they propagate to the caller.
func (t *RecordAndSubmitTask) Finish(buffers []CommandBuffer) error {
	if len(buffers) == 0 {
		return nil
	}
	if err := t.Queue.Submit(buffers, t.WaitSemaphores, t.SignalSemaphores); err != nil {
		return fmt.Errorf("viewer: queue submit: %w", err)
	}
	Logger().Debug("task submitted", "buffers", len(buffers), "graphs", len(t.CommandGraphs))
	return nil
}
