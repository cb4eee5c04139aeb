// Package wgpu adapts gogpu/wgpu HAL devices to the viewer's collaborator
// interfaces.
//
// The adapter owns (or borrows) a hal.Device and hal.Queue and exposes them
// as viewer.Device and viewer.Queue. Command buffers flowing through the
// scheduler are hal.CommandBuffer values produced by the application's
// command graphs. Semaphores are modeled as values on a shared timeline
// fence: signaling a semaphore signals its value on submission, waiting on
// one waits for that value.
//
// Two entry points:
//
//   - Open creates a device of its own via the Vulkan HAL backend.
//   - FromProvider borrows the device of a host application (e.g. gogpu)
//     through a gpucontext.DeviceProvider that exposes HAL handles.
package wgpu
