package viewer

import "time"

// Event is a window or frame event delivered to registered handlers.
// frame.Event is the built-in event emitted once per Advance; windowing
// layers push their own event types through the same queue.
type Event interface {
	// When returns the instant the event occurred.
	When() time.Time
}

// EventHandler receives events collected during a frame.
type EventHandler interface {
	HandleEvent(Event)
}

// EventSink collects events. The Viewer passes itself as the sink when
// polling windows.
type EventSink interface {
	Push(Event)
}

// Window is the presentation surface collaborator. Window creation, input
// handling and swapchain mechanics live in the windowing layer; the
// scheduler only polls, acquires, resizes and presents through this
// interface.
type Window interface {
	// PollEvents drains pending window events into the sink, reporting
	// whether any were produced.
	PollEvents(sink EventSink) bool

	// AcquireNextImage acquires the next swapchain image for the frame.
	// Recoverable failures are reported with (or wrapped around)
	// ErrSurfaceLost, ErrDeviceLost, ErrOutOfDate or ErrFullScreenLost,
	// prompting a Resize and retry.
	AcquireNextImage() error

	// Resize rebuilds the window's presentation surface, typically after
	// a recoverable acquire failure. A Resize error is unrecoverable.
	Resize() error

	// Visible reports whether the window currently takes part in
	// acquire/present.
	Visible() bool

	// Valid reports whether the window is still usable at all. An
	// invalid window ends the viewer's main loop.
	Valid() bool

	// Device returns the device that renders to this window, or nil if
	// none is attached yet.
	Device() Device
}
