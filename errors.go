package viewer

import "errors"

// Recoverable image-acquire conditions. A Window's AcquireNextImage may
// return (or wrap) one of these to request a rebuild of its presentation
// surface; the orchestrator calls Resize and retries the acquire. Any other
// acquire error is treated as unrecoverable for the frame.
var (
	// ErrSurfaceLost indicates the window's presentation surface was lost.
	ErrSurfaceLost = errors.New("viewer: surface lost")

	// ErrDeviceLost indicates the device backing the window was lost.
	ErrDeviceLost = errors.New("viewer: device lost")

	// ErrOutOfDate indicates the swapchain no longer matches the surface
	// (typically after a resize) and must be rebuilt.
	ErrOutOfDate = errors.New("viewer: swapchain out of date")

	// ErrFullScreenLost indicates exclusive full-screen access was lost.
	ErrFullScreenLost = errors.New("viewer: full screen exclusive mode lost")
)

// ErrClosed is returned by operations that cannot proceed because the
// viewer has been closed.
var ErrClosed = errors.New("viewer: closed")

// recoverableAcquire reports whether an acquire failure can be handled by
// rebuilding the window's presentation surface and retrying.
func recoverableAcquire(err error) bool {
	return errors.Is(err, ErrSurfaceLost) ||
		errors.Is(err, ErrDeviceLost) ||
		errors.Is(err, ErrOutOfDate) ||
		errors.Is(err, ErrFullScreenLost)
}
