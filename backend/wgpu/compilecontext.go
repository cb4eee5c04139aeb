package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/viewer"
)

// CompileContext batches deferred transfer work for one Compile pass and
// submits it as a single batch on Dispatch. WebGPU-style backends size
// descriptor pools internally, so Reserve only retains the requirements for
// diagnostics.
//
// A context is used by the viewer from a single goroutine until Dispatch;
// only Wait may race with other devices' waits.
type CompileContext struct {
	dev *Device

	reqs    viewer.ResourceRequirements
	pending []hal.CommandBuffer
	err     error // first Transfer conversion failure, surfaced by Dispatch

	fence hal.Fence
	value uint64
}

var _ viewer.CompileContext = (*CompileContext)(nil)

// Reserve retains the accumulated descriptor requirements.
func (c *CompileContext) Reserve(req viewer.ResourceRequirements) {
	c.reqs = req
	viewer.Logger().Debug("compile requirements reserved",
		"maxSets", req.MaxSets, "poolTypes", len(req.PoolSizes))
}

// Requirements returns the requirements reserved for this context.
func (c *CompileContext) Requirements() viewer.ResourceRequirements {
	return c.reqs
}

// Transfer queues transfer command buffers for dispatch.
func (c *CompileContext) Transfer(buffers ...viewer.CommandBuffer) {
	if c.err != nil {
		return
	}
	halBufs, err := halCommandBuffers(buffers)
	if err != nil {
		c.err = err
		return
	}
	c.pending = append(c.pending, halBufs...)
}

// Dispatch submits all queued transfer work to the device queue.
func (c *CompileContext) Dispatch() error {
	if c.err != nil {
		return c.err
	}
	if len(c.pending) == 0 {
		return nil
	}

	fence, value, err := c.dev.signalValue()
	if err != nil {
		return err
	}
	if err := c.dev.queue.Submit(c.pending, fence, value); err != nil {
		return fmt.Errorf("wgpu: dispatch transfers: %w", err)
	}
	c.fence, c.value = fence, value
	c.pending = nil
	return nil
}

// Wait blocks until dispatched transfer work has completed. A context that
// dispatched nothing returns immediately.
func (c *CompileContext) Wait() error {
	if c.fence == nil {
		return nil
	}
	return c.dev.waitValue(c.fence, c.value)
}
