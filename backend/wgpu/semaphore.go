package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/viewer"
)

// Semaphore is a slot on the device's timeline fence. A signaling
// submission stamps it with the submission's timeline value; waiting on the
// semaphore waits for that value. A semaphore that has never been signaled
// imposes no wait.
type Semaphore struct {
	fence hal.Fence

	mu    sync.Mutex
	value uint64 // last signaled timeline value, 0 = never signaled
}

// signaled records the timeline value the semaphore will be signaled at.
func (s *Semaphore) signaled(value uint64) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

// pending returns the value to wait for, if any.
func (s *Semaphore) pending() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.value > 0
}

// asSemaphore unwraps a viewer.Semaphore created by this backend.
func asSemaphore(s viewer.Semaphore) (*Semaphore, error) {
	sem, ok := s.(*Semaphore)
	if !ok {
		return nil, fmt.Errorf("wgpu: semaphore %T was not created by this backend", s)
	}
	return sem, nil
}
