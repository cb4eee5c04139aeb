// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import the Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/viewer"
)

// waitTimeoutNS bounds every fence wait (5 seconds). A device that cannot
// retire work within this window is treated as lost.
const waitTimeoutNS = 5_000_000_000

// Device adapts a hal.Device and its queue to viewer.Device.
//
// Semaphores handed out by the device are values on a single shared
// timeline fence: each signaling submission advances the timeline and
// records the signaled value on the semaphore; waiters wait for that value.
type Device struct {
	instance hal.Instance // nil when the device is borrowed
	device   hal.Device
	queue    hal.Queue
	owned    bool

	mu    sync.Mutex
	fence hal.Fence // shared timeline fence, created lazily
	next  uint64    // last issued timeline value
}

var _ viewer.Device = (*Device)(nil)

// Open creates a Device with its own HAL instance, preferring a discrete
// or integrated GPU adapter.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	viewer.Logger().Info("device opened", "adapter", selected.Info.Name)
	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		owned:    true,
	}, nil
}

// FromProvider borrows the HAL device of a host application through a
// gpucontext.DeviceProvider that also exposes HAL handles via
// HalDevice()/HalQueue(). The returned Device does not own the handles and
// never destroys them.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, errors.New("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("wgpu: provider HalQueue is not hal.Queue")
	}
	return &Device{device: device, queue: queue}, nil
}

// Queue returns the device's submission queue. HAL exposes a single queue,
// family 0; it serves both graphics and present.
func (d *Device) Queue(family uint32) (viewer.Queue, error) {
	if family != 0 {
		return nil, fmt.Errorf("wgpu: queue family %d not available; HAL exposes a single queue", family)
	}
	return &Queue{dev: d}, nil
}

// NewSemaphore creates a semaphore backed by the device's timeline fence.
func (d *Device) NewSemaphore() (viewer.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureFenceLocked(); err != nil {
		return nil, err
	}
	return &Semaphore{fence: d.fence}, nil
}

// NewCompileContext creates a compilation context that batches deferred
// transfer work for one Compile pass.
func (d *Device) NewCompileContext() (viewer.CompileContext, error) {
	return &CompileContext{dev: d}, nil
}

// WaitIdle submits an empty batch signaling a throwaway fence and waits for
// it, which retires everything previously submitted to the queue.
func (d *Device) WaitIdle() error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit(nil, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit idle fence: %w", err)
	}
	if _, err := d.device.Wait(fence, 1, waitTimeoutNS); err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	return nil
}

// Close releases the timeline fence and, for owned devices, the device and
// instance. Borrowed handles are left untouched.
func (d *Device) Close() {
	d.mu.Lock()
	if d.fence != nil {
		d.device.DestroyFence(d.fence)
		d.fence = nil
	}
	d.mu.Unlock()

	if !d.owned {
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// ensureFenceLocked creates the shared timeline fence. Caller holds d.mu.
func (d *Device) ensureFenceLocked() error {
	if d.fence != nil {
		return nil
	}
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create timeline fence: %w", err)
	}
	d.fence = fence
	return nil
}

// signalValue issues the next timeline value on the shared fence.
func (d *Device) signalValue() (hal.Fence, uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureFenceLocked(); err != nil {
		return nil, 0, err
	}
	d.next++
	return d.fence, d.next, nil
}

// waitValue blocks until the shared fence reaches value.
func (d *Device) waitValue(fence hal.Fence, value uint64) error {
	ok, err := d.device.Wait(fence, value, waitTimeoutNS)
	if err != nil {
		return fmt.Errorf("wgpu: fence wait: %w", err)
	}
	if !ok {
		return fmt.Errorf("wgpu: fence wait timed out at value %d", value)
	}
	return nil
}
