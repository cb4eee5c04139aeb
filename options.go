package viewer

import "time"

// Option configures a Viewer during creation.
//
// Example:
//
//	// Default wall-clock frame stamps
//	v := viewer.New()
//
//	// Deterministic clock (tests, replay)
//	v := viewer.New(viewer.WithClock(fakeClock))
type Option func(*viewerOptions)

// viewerOptions holds optional configuration for Viewer creation.
type viewerOptions struct {
	clock func() time.Time
}

// defaultOptions returns the default viewer options.
func defaultOptions() viewerOptions {
	return viewerOptions{
		clock: time.Now,
	}
}

// WithClock sets the clock used to stamp frames. Use this for dependency
// injection of a deterministic clock in tests or replay tooling.
func WithClock(clock func() time.Time) Option {
	return func(o *viewerOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}
