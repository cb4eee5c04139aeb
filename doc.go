// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package viewer schedules per-frame GPU command recording and submission
// across worker goroutines.
//
// Once per rendered frame the Viewer advances an immutable frame stamp,
// broadcasts it to a fixed set of workers, lets each worker record the
// command buffers of its command graph, rendezvouses the workers of each
// task, submits every task's batch exactly once to its device queue, and
// presents the associated windows after their render-finished signals.
//
// The scheduler deliberately knows nothing about scene content, GPU memory
// policy, or windowing. Those arrive through the narrow collaborator
// interfaces: Window, CommandGraph, Device, Queue and Pager. The
// backend/wgpu package adapts gogpu/wgpu HAL devices to these interfaces.
//
// Thread topology is derived from the task set: with fewer than two
// command graphs everything runs inline on the caller's goroutine; each
// single-graph task otherwise gets a dedicated worker, and a task with K
// graphs gets K workers of which only the first, the primary, performs the
// queue submission. Workers are created once per threading session and
// reused across frames.
//
// Shutdown is cooperative: Close clears the shared liveness flag and wakes
// every worker blocked between frames; in-flight recording for the current
// frame always completes first.
package viewer
