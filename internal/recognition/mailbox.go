package recognition

import "sync"

// Mailbox hands the latest frame from the producer to any number of
// readers. Publish overwrites; slow readers miss frames instead of
// slowing the producer.
type Mailbox struct {
	mu    sync.Mutex
	frame *Frame
}

// Publish replaces the held frame.
func (m *Mailbox) Publish(f *Frame) {
	m.mu.Lock()
	m.frame = f
	m.mu.Unlock()
}

// Peek returns the latest published frame without consuming it.
func (m *Mailbox) Peek() (*Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame, m.frame != nil
}
