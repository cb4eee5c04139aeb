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

// Viewer is the per-frame orchestrator. It advances the frame stamp, fans
// recording out to workers when threading is active, waits for every task's
// submission, and drives presentation.
//
// The per-frame methods (Advance*, RecordAndSubmit, Present, Update,
// HandleEvents) are driven from a single goroutine, the application's frame
// loop. Close may be called from any goroutine involved in shutdown.
//
// Typical frame loop:
//
//	v := viewer.New()
//	v.AddWindow(w)
//	if err := v.AssignRecordAndSubmitTask(graphs, pager); err != nil { ... }
//	if err := v.Compile(); err != nil { ... }
//	v.SetupThreading()
//	for v.AdvanceToNextFrame() {
//		v.HandleEvents()
//		v.Update()
//		if err := v.RecordAndSubmit(); err != nil { ... }
//		if err := v.Present(); err != nil { ... }
//	}
//	v.Close()
type Viewer struct {
	opts   viewerOptions
	status *parallel.Status

	windows  []Window
	handlers []EventHandler
	events   []Event
	stamp    frame.Stamp
	closed   bool

	recordAndSubmitTasks []*RecordAndSubmitTask
	presentations        []*Presentation

	threading           bool
	frameBlock          *parallel.FrameBlock
	submissionCompleted *parallel.Barrier
	workers             sync.WaitGroup
	frameErrs           errorList
}

// New creates a Viewer.
func New(opts ...Option) *Viewer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Viewer{
		opts:   o,
		status: parallel.NewStatus(),
	}
}

// AddWindow registers a window with the viewer.
func (v *Viewer) AddWindow(w Window) {
	v.windows = append(v.windows, w)
}

// Windows returns the registered windows.
func (v *Viewer) Windows() []Window {
	return v.windows
}

// AddEventHandler registers a handler for events collected each frame.
func (v *Viewer) AddEventHandler(h EventHandler) {
	v.handlers = append(v.handlers, h)
}

// Push appends an event to the current frame's event queue. Viewer itself
// is the EventSink handed to windows during polling.
func (v *Viewer) Push(e Event) {
	v.events = append(v.events, e)
}

// FrameStamp returns the stamp of the current frame. The zero stamp means
// no frame has been advanced yet.
func (v *Viewer) FrameStamp() frame.Stamp {
	return v.stamp
}

// Tasks returns the record-and-submit tasks built by
// AssignRecordAndSubmitTask.
func (v *Viewer) Tasks() []*RecordAndSubmitTask {
	return v.recordAndSubmitTasks
}

// Presentations returns the presentation objects paired with tasks whose
// command graphs have a present family.
func (v *Viewer) Presentations() []*Presentation {
	return v.presentations
}

// Active reports whether the main loop should keep running: the viewer has
// not been closed and every window is still valid. Once inactive, it waits
// for the devices to go idle before returning false so the application can
// tear down safely.
func (v *Viewer) Active() bool {
	active := !v.closed
	if active {
		for _, w := range v.windows {
			if !w.Valid() {
				active = false
				break
			}
		}
	}

	if !active {
		// Don't let the main loop exit while devices still have work
		// in flight.
		if err := v.DeviceWaitIdle(); err != nil {
			Logger().Warn("device wait idle", "err", err)
		}
		return false
	}
	return true
}

// PollEvents polls every window for pending events, collecting them into
// the viewer's event queue. It reports whether any window produced events.
func (v *Viewer) PollEvents(discardPrevious bool) bool {
	if discardPrevious {
		v.events = v.events[:0]
	}

	polled := false
	for _, w := range v.windows {
		if w.PollEvents(v) {
			polled = true
		}
	}
	return polled
}

// HandleEvents dispatches every collected event to every registered
// handler, in order.
func (v *Viewer) HandleEvents() {
	for _, e := range v.events {
		for _, h := range v.handlers {
			h.HandleEvent(e)
		}
	}
}

// Advance polls events and moves to the next frame unconditionally, without
// acquiring swapchain images. Use it for offscreen work; interactive loops
// use AdvanceToNextFrame.
func (v *Viewer) Advance() {
	v.PollEvents(true)
	v.advanceFrame()
}

// AdvanceToNextFrame polls events, acquires the next swapchain image for
// every visible window, and moves to the next frame. It returns false when
// the viewer is no longer active or the acquire step failed unrecoverably,
// signaling the application to exit its loop.
func (v *Viewer) AdvanceToNextFrame() bool {
	if !v.Active() {
		return false
	}

	v.PollEvents(true)

	if !v.acquireNextFrame() {
		return false
	}

	v.advanceFrame()
	return true
}

// advanceFrame bumps the frame stamp and queues the frame event.
func (v *Viewer) advanceFrame() {
	v.stamp = v.stamp.Next(v.opts.clock())
	v.events = append(v.events, frame.Event{Stamp: v.stamp})
}

// acquireNextFrame acquires the next image of every visible window,
// rebuilding a window's presentation surface and retrying on recoverable
// failures. It returns false when any window fails unrecoverably; the
// frame is then reported inactive rather than proceeding to submission.
func (v *Viewer) acquireNextFrame() bool {
	if v.closed {
		return false
	}

	ok := true
	for _, w := range v.windows {
		if !w.Visible() {
			continue
		}

		for {
			err := w.AcquireNextImage()
			if err == nil {
				break
			}
			if recoverableAcquire(err) {
				// Force a rebuild of the swapchain and retry.
				if rerr := w.Resize(); rerr != nil {
					Logger().Warn("window resize failed", "err", rerr)
					ok = false
					break
				}
				continue
			}
			Logger().Warn("acquire next image failed", "err", err)
			ok = false
			break
		}
	}
	return ok
}

// AssignRecordAndSubmitTask groups the command graphs by device and queue
// family, creating one RecordAndSubmitTask per group and, for groups with a
// present family, the paired Presentation wired up with a render-finished
// semaphore. Call once during setup, before Compile.
func (v *Viewer) AssignRecordAndSubmitTask(graphs []CommandGraph, pager Pager) error {
	if v.closed {
		return ErrClosed
	}

	type deviceQueueFamily struct {
		device        Device
		queueFamily   uint32
		presentFamily int64 // -1 when the group has no present family
	}

	// Group in first-seen order so task creation is deterministic.
	var order []deviceQueueFamily
	groups := make(map[deviceQueueFamily][]CommandGraph)
	for _, cg := range graphs {
		k := deviceQueueFamily{device: cg.Device(), queueFamily: cg.QueueFamily(), presentFamily: -1}
		if pf, ok := cg.PresentFamily(); ok {
			k.presentFamily = int64(pf)
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], cg)
	}

	for _, k := range order {
		cgs := groups[k]

		queue, err := k.device.Queue(k.queueFamily)
		if err != nil {
			return fmt.Errorf("viewer: queue family %d: %w", k.queueFamily, err)
		}

		task := NewRecordAndSubmitTask(k.device, queue)
		task.CommandGraphs = cgs
		task.Pager = pager

		if k.presentFamily >= 0 {
			windows := uniqueWindows(cgs)

			renderFinished, err := k.device.NewSemaphore()
			if err != nil {
				return fmt.Errorf("viewer: render finished semaphore: %w", err)
			}
			task.SignalSemaphores = append(task.SignalSemaphores, renderFinished)
			task.Windows = windows

			presentQueue, err := k.device.Queue(uint32(k.presentFamily))
			if err != nil {
				return fmt.Errorf("viewer: present family %d: %w", k.presentFamily, err)
			}

			v.presentations = append(v.presentations, &Presentation{
				WaitSemaphores: []Semaphore{renderFinished},
				Windows:        windows,
				Queue:          presentQueue,
			})
		}

		v.recordAndSubmitTasks = append(v.recordAndSubmitTasks, task)
	}
	return nil
}

// uniqueWindows collects the distinct windows of a group of command graphs,
// preserving first-seen order and skipping graphs without one.
func uniqueWindows(graphs []CommandGraph) []Window {
	var windows []Window
	seen := make(map[Window]bool)
	for _, cg := range graphs {
		w := cg.Window()
		if w == nil || seen[w] {
			continue
		}
		seen[w] = true
		windows = append(windows, w)
	}
	return windows
}

// Update lets every task's streaming pager merge loaded scene data for the
// current frame. Call between HandleEvents and RecordAndSubmit.
func (v *Viewer) Update() error {
	var errs []error
	updated := make(map[Pager]bool)
	for _, task := range v.recordAndSubmitTasks {
		if task.Pager == nil || updated[task.Pager] {
			continue
		}
		updated[task.Pager] = true
		if err := task.Pager.UpdateSceneGraph(v.stamp); err != nil {
			errs = append(errs, fmt.Errorf("viewer: pager update: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RecordAndSubmit runs the record-and-submit step for the current frame.
// With threading active it publishes the frame to the workers and blocks on
// the submission-completed barrier; otherwise it submits every task inline,
// in order. Submission failures are returned, never retried.
func (v *Viewer) RecordAndSubmit() error {
	if v.threading {
		Logger().Debug("frame published", "frame", v.stamp.Count)
		v.frameBlock.Set(v.stamp)
		v.submissionCompleted.ArriveAndWait()
		return v.frameErrs.drain()
	}

	for _, task := range v.recordAndSubmitTasks {
		if err := task.Submit(v.stamp); err != nil {
			return err
		}
	}
	return nil
}

// Present invokes present on every Presentation, each waiting on its
// render-finished semaphores before presenting its windows.
func (v *Viewer) Present() error {
	var errs []error
	for _, p := range v.presentations {
		if err := p.Present(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeviceWaitIdle waits for every device referenced by the viewer's windows
// to finish outstanding work.
func (v *Viewer) DeviceWaitIdle() error {
	var order []Device
	seen := make(map[Device]bool)
	for _, w := range v.windows {
		dev := w.Device()
		if dev == nil || seen[dev] {
			continue
		}
		seen[dev] = true
		order = append(order, dev)
	}

	var errs []error
	for _, dev := range order {
		if err := dev.WaitIdle(); err != nil {
			errs = append(errs, fmt.Errorf("viewer: device wait idle: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close shuts the viewer down: it clears the liveness flag and stops the
// threading session. Idempotent. The caller should follow up with
// DeviceWaitIdle (or rely on Active returning false) before releasing any
// device-bound resource.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.status.Set(false)
	v.StopThreading()
}
