// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package viewer

// CommandBuffer is an opaque, device-consumable unit of recorded GPU work.
// Command graphs produce them; the scheduler only batches and submits them.
// The concrete type is defined by the backend (for gogpu/wgpu it is
// hal.CommandBuffer).
type CommandBuffer any

// Semaphore is an opaque synchronization token created by a Device.
// The scheduler threads semaphores between submission and presentation but
// never inspects them.
type Semaphore any

// Device is a graphics device as seen by the scheduler: a comparable handle
// used for grouping command graphs, a source of queues and synchronization
// tokens, and a teardown-time wait point. Its internal allocation and
// compilation behavior stays with the backend.
//
// Implementations must be comparable (usable as a map key).
type Device interface {
	// Queue returns the submission queue for the given queue family.
	Queue(family uint32) (Queue, error)

	// NewSemaphore creates a synchronization token for chaining a
	// submission to a later wait (render finished -> present).
	NewSemaphore() (Semaphore, error)

	// NewCompileContext creates a fresh compilation context for this
	// device. Called once per Compile pass; the context is discarded
	// afterwards and rebuilt whenever topology or resources change.
	NewCompileContext() (CompileContext, error)

	// WaitIdle blocks until the device has finished all outstanding work.
	WaitIdle() error
}

// Queue is a device-level submission channel. Submission order within one
// queue is serialized by the device; the scheduler guarantees at most one
// Submit per queue per frame and never calls Submit concurrently for the
// same queue.
type Queue interface {
	// Submit hands a batch of recorded command buffers to the device,
	// waiting on waits before execution and signaling signals when the
	// batch completes. Submission failures are not retried.
	Submit(buffers []CommandBuffer, waits, signals []Semaphore) error

	// Present issues the present call for the given windows after the
	// wait semaphores have been signaled.
	Present(waits []Semaphore, windows []Window) error
}

// frameStarter is implemented by queues that need per-frame bookkeeping
// (fence or timeline slot acquisition) before recording begins.
// RecordAndSubmitTask.Start calls it when present.
type frameStarter interface {
	StartFrame() error
}

// DescriptorType identifies a class of shader-visible resource for
// descriptor pool sizing. Values are backend-defined.
type DescriptorType uint32

// ResourceRequirements accumulates the descriptor demands of command graphs
// so a device can size its pools once, up front, instead of growing them
// mid-frame.
type ResourceRequirements struct {
	// MaxSets is the number of descriptor sets required.
	MaxSets uint32

	// PoolSizes maps descriptor types to required counts.
	PoolSizes map[DescriptorType]uint32
}

// Merge adds other's demands to r.
func (r *ResourceRequirements) Merge(other ResourceRequirements) {
	r.MaxSets += other.MaxSets
	if len(other.PoolSizes) == 0 {
		return
	}
	if r.PoolSizes == nil {
		r.PoolSizes = make(map[DescriptorType]uint32, len(other.PoolSizes))
	}
	for dt, n := range other.PoolSizes {
		r.PoolSizes[dt] += n
	}
}

// CompileContext is a per-device resource compilation session. The viewer
// creates one context per device during Compile, lets every command graph
// on that device contribute, then dispatches the deferred transfers and
// blocks until they complete.
type CompileContext interface {
	// Reserve sizes device resource pools for the accumulated
	// requirements of all command graphs on the device.
	Reserve(req ResourceRequirements)

	// Transfer queues deferred upload/transfer work for dispatch.
	Transfer(buffers ...CommandBuffer)

	// Dispatch submits all queued transfer work to the device.
	Dispatch() error

	// Wait blocks until dispatched transfer work has completed.
	Wait() error
}
