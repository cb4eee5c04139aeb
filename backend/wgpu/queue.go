// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/viewer"
)

// Queue adapts the device's hal.Queue to viewer.Queue. The scheduler
// guarantees at most one Submit per frame per queue, from a single
// goroutine; the queue itself adds no locking around submission.
type Queue struct {
	dev *Device
}

var _ viewer.Queue = (*Queue)(nil)

// Submit waits for the wait semaphores on the host, submits the batch, and
// stamps the signal semaphores with the submission's timeline value.
//
// HAL submission has no device-side wait list, so semaphore waits happen on
// the host before the batch is handed over. Within one scheduler frame this
// preserves the same ordering guarantees.
func (q *Queue) Submit(buffers []viewer.CommandBuffer, waits, signals []viewer.Semaphore) error {
	halBufs, err := halCommandBuffers(buffers)
	if err != nil {
		return err
	}

	for _, s := range waits {
		sem, err := asSemaphore(s)
		if err != nil {
			return err
		}
		if value, ok := sem.pending(); ok {
			if err := q.dev.waitValue(sem.fence, value); err != nil {
				return err
			}
		}
	}

	if len(signals) == 0 {
		if err := q.dev.queue.Submit(halBufs, nil, 0); err != nil {
			return fmt.Errorf("wgpu: submit: %w", err)
		}
		return nil
	}

	fence, value, err := q.dev.signalValue()
	if err != nil {
		return err
	}
	for _, s := range signals {
		sem, err := asSemaphore(s)
		if err != nil {
			return err
		}
		sem.signaled(value)
	}
	if err := q.dev.queue.Submit(halBufs, fence, value); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	return nil
}

// presenter is implemented by windows that own swapchain presentation.
// Swapchain mechanics stay with the windowing layer; the queue only
// sequences the present after the render-finished wait.
type presenter interface {
	Present() error
}

// Present waits for the render-finished semaphores, then issues the present
// call on every window that supports it.
func (q *Queue) Present(waits []viewer.Semaphore, windows []viewer.Window) error {
	for _, s := range waits {
		sem, err := asSemaphore(s)
		if err != nil {
			return err
		}
		if value, ok := sem.pending(); ok {
			if err := q.dev.waitValue(sem.fence, value); err != nil {
				return err
			}
		}
	}

	for _, w := range windows {
		p, ok := w.(presenter)
		if !ok {
			continue
		}
		if err := p.Present(); err != nil {
			return fmt.Errorf("wgpu: present window: %w", err)
		}
	}
	return nil
}

// halCommandBuffers unwraps scheduler command buffers into HAL ones.
func halCommandBuffers(buffers []viewer.CommandBuffer) ([]hal.CommandBuffer, error) {
	if len(buffers) == 0 {
		return nil, nil
	}
	out := make([]hal.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		cb, ok := b.(hal.CommandBuffer)
		if !ok {
			return nil, fmt.Errorf("wgpu: command buffer %T is not hal.CommandBuffer", b)
		}
		out = append(out, cb)
	}
	return out, nil
}
