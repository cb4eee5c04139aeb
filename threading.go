// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package viewer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/viewer/frame"
	"github.com/gogpu/viewer/internal/parallel"
)

// topologyKind tags the thread shape chosen for one task.
type topologyKind int

const (
	// topologyNone: the task takes no worker; the orchestrator submits
	// inline. Only used when threading as a whole is skipped.
	topologyNone topologyKind = iota

	// topologyOnePerTask: a single worker waits for frames and runs the
	// task's synchronous submit.
	topologyOnePerTask

	// topologyPrimarySecondary: one worker per command graph; all record
	// in parallel, the primary alone starts and finishes the task.
	topologyPrimarySecondary
)

// taskTopology is the planned thread shape for one task.
type taskTopology struct {
	task    *RecordAndSubmitTask
	kind    topologyKind
	threads int
}

// topologyPlan is the thread layout derived from the final task set.
// Planning is deterministic: it depends only on how many command graphs
// each task owns.
type topologyPlan struct {
	shapes      []taskTopology
	validTasks  int
	totalGraphs int
}

// planTopology inspects the tasks and emits the thread layout:
// fewer than two command graphs overall means no threading at all;
// otherwise each single-graph task gets one worker and each multi-graph
// task gets one worker per graph (first is primary).
func planTopology(tasks []*RecordAndSubmitTask) topologyPlan {
	var p topologyPlan
	for _, task := range tasks {
		n := len(task.CommandGraphs)
		if n >= 1 {
			p.validTasks++
		}
		p.totalGraphs += n
	}

	if p.totalGraphs <= 1 {
		return p
	}

	for _, task := range tasks {
		switch n := len(task.CommandGraphs); {
		case n == 0:
			// no work, no worker
		case n == 1:
			p.shapes = append(p.shapes, taskTopology{task: task, kind: topologyOnePerTask, threads: 1})
		default:
			p.shapes = append(p.shapes, taskTopology{task: task, kind: topologyPrimarySecondary, threads: n})
		}
	}
	return p
}

// threaded reports whether the plan creates any workers.
func (p topologyPlan) threaded() bool { return p.totalGraphs > 1 }

// threadCount returns the total number of workers the plan creates.
func (p topologyPlan) threadCount() int {
	n := 0
	for _, s := range p.shapes {
		n += s.threads
	}
	return n
}

// taskSharedData is the state shared by the workers of one multi-graph
// task. It lives for the duration of a threading session and is rebuilt
// whenever topology is rebuilt.
type taskSharedData struct {
	task                *RecordAndSubmitTask
	frameBlock          *parallel.FrameBlock
	submissionCompleted *parallel.Barrier

	// recordStart synchronizes the start of recording across the group.
	// Not required for correctness, but it bounds jitter between the
	// group's workers.
	recordStart     *parallel.Barrier
	recordCompleted *parallel.Barrier

	mu       sync.Mutex
	recorded []CommandBuffer
}

func newTaskSharedData(task *RecordAndSubmitTask, fb *parallel.FrameBlock, submissionCompleted *parallel.Barrier, workers int) *taskSharedData {
	return &taskSharedData{
		task:                task,
		frameBlock:          fb,
		submissionCompleted: submissionCompleted,
		recordStart:         parallel.NewBarrier(workers),
		recordCompleted:     parallel.NewBarrier(workers),
	}
}

// add merges buffers recorded by one worker into the task's accumulator.
// Only called during the recording phase, between the two barriers.
func (d *taskSharedData) add(buffers []CommandBuffer) {
	d.mu.Lock()
	d.recorded = append(d.recorded, buffers...)
	d.mu.Unlock()
}

// take removes and returns the accumulated buffers for submission.
func (d *taskSharedData) take() []CommandBuffer {
	d.mu.Lock()
	buffers := d.recorded
	d.recorded = nil
	d.mu.Unlock()
	return buffers
}

// errorList collects submission and recording errors from workers so the
// orchestrator can surface them after the completion barrier releases.
type errorList struct {
	mu   sync.Mutex
	errs []error
}

func (l *errorList) add(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

func (l *errorList) drain() error {
	l.mu.Lock()
	errs := l.errs
	l.errs = nil
	l.mu.Unlock()
	return errors.Join(errs...)
}

// SetupThreading builds and starts the worker layout for the current task
// set. It first stops any active session, so it can be called again after
// tasks change. With fewer than two command graphs in total it does
// nothing and RecordAndSubmit runs submissions inline.
//
// Call after Compile; recording expects compiled command graphs.
func (v *Viewer) SetupThreading() {
	v.StopThreading()
	if v.closed {
		return
	}

	plan := planTopology(v.recordAndSubmitTasks)
	if !plan.threaded() {
		Logger().Debug("threading skipped", "commandGraphs", plan.totalGraphs)
		return
	}

	v.threading = true
	v.status.Set(true)
	v.frameBlock = parallel.NewFrameBlock(v.status)

	// One contribution per valid task, plus the orchestrator itself.
	v.submissionCompleted = parallel.NewBarrier(1 + plan.validTasks)

	for _, shape := range plan.shapes {
		switch shape.kind {
		case topologyOnePerTask:
			v.workers.Add(1)
			go v.runSingleGraphTask(shape.task, v.frameBlock, v.submissionCompleted)

		case topologyPrimarySecondary:
			data := newTaskSharedData(shape.task, v.frameBlock, v.submissionCompleted, shape.threads)
			for i, cg := range shape.task.CommandGraphs {
				v.workers.Add(1)
				if i == 0 {
					go v.runPrimary(data, cg)
				} else {
					go v.runSecondary(data, cg)
				}
			}
		}
	}

	Logger().Info("threading started", "tasks", plan.validTasks, "threads", plan.threadCount())
}

// StopThreading ends the threading session: it clears the liveness flag,
// wakes every worker blocked on the frame block, and joins them all.
// Safe to call when no session is active.
func (v *Viewer) StopThreading() {
	if !v.threading {
		return
	}
	v.threading = false

	// Workers check liveness only at their blocking points, so in-flight
	// recording for the current frame completes before they exit.
	v.status.Set(false)
	v.frameBlock.Wake()
	v.workers.Wait()

	v.frameBlock = nil
	v.submissionCompleted = nil
	Logger().Info("threading stopped")
}

// runSingleGraphTask is the loop of a worker owning a whole single-graph
// task: wait for a frame, run the synchronous submit, and contribute to the
// completion barrier without waiting on sibling tasks.
func (v *Viewer) runSingleGraphTask(task *RecordAndSubmitTask, fb *parallel.FrameBlock, submissionCompleted *parallel.Barrier) {
	defer v.workers.Done()

	var last frame.Stamp
	for {
		stamp, ok := fb.WaitForChange(last)
		if !ok {
			return
		}
		last = stamp

		if err := task.Submit(stamp); err != nil {
			v.frameErrs.add(err)
			Logger().Warn("task submit failed", "frame", stamp.Count, "err", err)
		}

		submissionCompleted.ArriveAndDrop()
	}
}

// runPrimary is the loop of the designated primary worker of a multi-graph
// task. It starts the task, records its own graph alongside the
// secondaries, and alone performs the queue submission of everything the
// group recorded.
func (v *Viewer) runPrimary(d *taskSharedData, cg CommandGraph) {
	defer v.workers.Done()

	var last frame.Stamp
	for {
		stamp, ok := d.frameBlock.WaitForChange(last)
		if !ok {
			return
		}
		last = stamp

		if err := d.task.Start(); err != nil {
			v.frameErrs.add(err)
		}

		d.recordStart.ArriveAndWait()

		buffers, err := cg.Record(stamp, d.task.Pager)
		if err != nil {
			v.frameErrs.add(fmt.Errorf("viewer: record command graph: %w", err))
		} else {
			d.add(buffers)
		}

		d.recordCompleted.ArriveAndWait()

		if err := d.task.Finish(d.take()); err != nil {
			v.frameErrs.add(err)
			Logger().Warn("task finish failed", "frame", stamp.Count, "err", err)
		}

		d.submissionCompleted.ArriveAndWait()
	}
}

// runSecondary is the loop of a non-primary worker of a multi-graph task:
// it records its graph into the shared accumulator and loops back to
// waiting; submission is the primary's job.
func (v *Viewer) runSecondary(d *taskSharedData, cg CommandGraph) {
	defer v.workers.Done()

	var last frame.Stamp
	for {
		stamp, ok := d.frameBlock.WaitForChange(last)
		if !ok {
			return
		}
		last = stamp

		d.recordStart.ArriveAndWait()

		buffers, err := cg.Record(stamp, d.task.Pager)
		if err != nil {
			v.frameErrs.add(fmt.Errorf("viewer: record command graph: %w", err))
		} else {
			d.add(buffers)
		}

		d.recordCompleted.ArriveAndWait()
	}
}
