package notify

import "sync"

// ToastSink is the in-app channel: a bounded ring of recent
// notifications the UI polls and renders as transient toasts. It always
// accepts deliveries regardless of desktop permission state.
type ToastSink struct {
	mu      sync.Mutex
	ring    []Notification
	next    int
	filled  bool
	dropped int64
}

const defaultToastCapacity = 50

func NewToastSink(capacity int) *ToastSink {
	if capacity <= 0 {
		capacity = defaultToastCapacity
	}
	return &ToastSink{ring: make([]Notification, capacity)}
}

func (s *ToastSink) Name() string { return "toast" }

func (s *ToastSink) Deliver(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filled {
		s.dropped++
	}
	s.ring[s.next] = n
	s.next++
	if s.next == len(s.ring) {
		s.next = 0
		s.filled = true
	}
	return nil
}

// Recent returns notifications newest-first.
func (s *ToastSink) Recent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.next
	if s.filled {
		size = len(s.ring)
	}
	out := make([]Notification, 0, size)
	for i := 0; i < size; i++ {
		idx := s.next - 1 - i
		if idx < 0 {
			idx += len(s.ring)
		}
		out = append(out, s.ring[idx])
	}
	return out
}

func (s *ToastSink) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.next
	if s.filled {
		size = len(s.ring)
	}
	return map[string]interface{}{
		"buffered": size,
		"capacity": len(s.ring),
		"dropped":  s.dropped,
	}
}
