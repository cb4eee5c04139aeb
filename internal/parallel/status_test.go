package parallel

import (
	"runtime"
	"sync"
	"testing"
)

func TestStatus_StartsActive(t *testing.T) {
	s := NewStatus()
	if !s.Active() {
		t.Fatal("new Status should be active")
	}
}

func TestStatus_SetClearAndRearm(t *testing.T) {
	s := NewStatus()
	s.Set(false)
	if s.Active() {
		t.Fatal("Active() = true after Set(false)")
	}
	s.Set(true)
	if !s.Active() {
		t.Fatal("Active() = false after Set(true)")
	}
}

func TestStatus_ConcurrentReadersObserveClear(t *testing.T) {
	s := NewStatus()

	var wg sync.WaitGroup
	wg.Add(8)
	for i := 0; i < 8; i++ {
		go func() {
			defer wg.Done()
			for s.Active() {
				runtime.Gosched()
			}
		}()
	}

	s.Set(false)
	wg.Wait()
}
