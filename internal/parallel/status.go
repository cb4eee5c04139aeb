package parallel

import "sync/atomic"

// Status is the shared liveness flag for a threading session.
//
// It is written by the orchestrator on shutdown and read by every blocked
// worker to decide whether to keep waiting. Readers may briefly observe a
// stale true after Set(false), but a Set(false) followed by FrameBlock.Wake
// is always observed by waiters.
//
// Status is safe for concurrent use.
type Status struct {
	active atomic.Bool
}

// NewStatus creates a Status in the active state.
func NewStatus() *Status {
	s := &Status{}
	s.active.Store(true)
	return s
}

// Set stores the liveness flag.
func (s *Status) Set(active bool) {
	s.active.Store(active)
}

// Active reports whether the session is still live.
func (s *Status) Active() bool {
	return s.active.Load()
}
