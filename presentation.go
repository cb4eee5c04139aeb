package viewer

import "fmt"

// Presentation presents the windows of one device and present-queue-family
// combination once their render-finished semaphores have been signaled. A
// Presentation is created alongside the RecordAndSubmitTask it pairs with,
// for every task whose graphs have a present family.
type Presentation struct {
	// WaitSemaphores are the render-finished signals presentation waits
	// on before presenting.
	WaitSemaphores []Semaphore

	// Windows are presented in order.
	Windows []Window

	// Queue is the present queue.
	Queue Queue
}

// Present waits on the render-finished semaphores and issues the present
// call for the associated windows.
func (p *Presentation) Present() error {
	if len(p.Windows) == 0 {
		return nil
	}
	if err := p.Queue.Present(p.WaitSemaphores, p.Windows); err != nil {
		return fmt.Errorf("viewer: present: %w", err)
	}
	return nil
}
