package viewer

import "github.com/gogpu/viewer/frame"

// CommandGraph produces the command buffers for one unit of GPU work each
// frame. Graphs are built and compiled by the scene layer; the scheduler
// groups them by device and queue family, drives their recording (possibly
// from several goroutines for graphs of the same task) and submits the
// results.
//
// Record is called at most once per graph per frame. Different graphs of
// the same task may record concurrently; the scheduler never records the
// same graph from two goroutines.
type CommandGraph interface {
	// Device returns the device this graph records for.
	Device() Device

	// QueueFamily returns the queue family its buffers are submitted to.
	QueueFamily() uint32

	// PresentFamily returns the present queue family for the graph's
	// window, if it has one.
	PresentFamily() (uint32, bool)

	// Window returns the window this graph renders to, or nil.
	Window() Window

	// ResourceRequirements reports the graph's descriptor demands so the
	// viewer can size per-device pools before compilation.
	ResourceRequirements() ResourceRequirements

	// Compile creates the graph's device resources in the given
	// per-device compilation context. Called once, before threading is
	// set up.
	Compile(cc CompileContext) error

	// Record records the graph's command buffers for the frame. The
	// pager, when non-nil, is offered to the traversal for streaming
	// decisions.
	Record(stamp frame.Stamp, pager Pager) ([]CommandBuffer, error)
}

// Pager is the external resource-streaming collaborator. It loads and
// unloads scene data asynchronously as the viewpoint changes.
type Pager interface {
	// SetCompileContext hands the pager the compilation context it
	// should create resources with. Assigned once during Compile.
	SetCompileContext(cc CompileContext)

	// Start begins the pager's background streaming, after Compile.
	Start() error

	// UpdateSceneGraph merges loaded data into the scene for the frame.
	UpdateSceneGraph(stamp frame.Stamp) error
}
