// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package viewer

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Compile performs the one-time, pre-threading setup pass: it sizes each
// device's resource pools from the accumulated requirements of every
// command graph on that device, builds one compilation context per device,
// compiles every graph, dispatches the deferred transfers and blocks until
// they complete, and finally starts the streaming pagers.
//
// The per-device context map is derived state: it is rebuilt from scratch
// on every Compile call and discarded afterwards.
//
// Compile must complete before SetupThreading.
func (v *Viewer) Compile() error {
	if v.closed {
		return ErrClosed
	}
	if len(v.recordAndSubmitTasks) == 0 {
		return nil
	}

	type deviceResources struct {
		reqs    ResourceRequirements
		compile CompileContext
	}

	// Collect requirements per device, in first-seen order.
	var order []Device
	resources := make(map[Device]*deviceResources)
	for _, task := range v.recordAndSubmitTasks {
		for _, cg := range task.CommandGraphs {
			dev := cg.Device()
			dr, ok := resources[dev]
			if !ok {
				dr = &deviceResources{}
				resources[dev] = dr
				order = append(order, dev)
			}
			dr.reqs.Merge(cg.ResourceRequirements())
		}
	}

	// One compilation context per device, pools sized up front.
	for _, dev := range order {
		dr := resources[dev]
		cc, err := dev.NewCompileContext()
		if err != nil {
			return fmt.Errorf("viewer: compile context: %w", err)
		}
		cc.Reserve(dr.reqs)
		dr.compile = cc
	}

	// Compile every graph and bind pagers to a compilation context.
	pagerContexts := make(map[Pager]Device)
	for _, task := range v.recordAndSubmitTasks {
		for _, cg := range task.CommandGraphs {
			if err := cg.Compile(resources[cg.Device()].compile); err != nil {
				return fmt.Errorf("viewer: compile command graph: %w", err)
			}
		}

		if task.Pager == nil || len(task.CommandGraphs) == 0 {
			continue
		}

		// The pager compiles against the first device it is seen on.
		// Streaming to the remaining devices of a multi-device setup is
		// a known limitation.
		first := task.CommandGraphs[0].Device()
		if bound, ok := pagerContexts[task.Pager]; ok {
			if bound != first {
				Logger().Warn("pager already bound to another device; streaming compiles for the first device only")
			}
			continue
		}
		pagerContexts[task.Pager] = first
		task.Pager.SetCompileContext(resources[first].compile)
	}

	// Dispatch all deferred transfer work, then wait for every device's
	// transfers to complete in parallel.
	for _, dev := range order {
		if err := resources[dev].compile.Dispatch(); err != nil {
			return fmt.Errorf("viewer: dispatch transfers: %w", err)
		}
	}

	var g errgroup.Group
	for _, dev := range order {
		cc := resources[dev].compile
		g.Go(func() error { return cc.Wait() })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("viewer: wait for transfers: %w", err)
	}

	// Start the streaming pagers now that their resources exist.
	started := make(map[Pager]bool)
	for _, task := range v.recordAndSubmitTasks {
		if task.Pager == nil || started[task.Pager] {
			continue
		}
		started[task.Pager] = true
		if err := task.Pager.Start(); err != nil {
			return fmt.Errorf("viewer: start pager: %w", err)
		}
	}
	return nil
}
