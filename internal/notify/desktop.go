package notify

import (
	"log"
	"sync"
)

// Permission mirrors the tri-state desktop notification permission.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Sender pushes a notification to the OS-level channel. Injected so the
// boundary stays external; the default just logs.
type Sender func(n Notification) error

// DesktopSink gates the OS-level channel behind the permission state.
// When permission is anything but granted, deliveries degrade silently
// to a no-op and only the toast channel reaches the user.
type DesktopSink struct {
	mu         sync.RWMutex
	permission Permission
	send       Sender

	delivered int64
	gated     int64
}

func NewDesktopSink(initial Permission, send Sender) *DesktopSink {
	if initial == "" {
		initial = PermissionDefault
	}
	if send == nil {
		send = func(n Notification) error {
			log.Printf("notify: desktop [%s] %s — %s", n.Tag, n.Title, n.Body)
			return nil
		}
	}
	return &DesktopSink{permission: initial, send: send}
}

func (s *DesktopSink) Name() string { return "desktop" }

func (s *DesktopSink) Deliver(n Notification) error {
	s.mu.RLock()
	granted := s.permission == PermissionGranted
	s.mu.RUnlock()

	if !granted {
		s.mu.Lock()
		s.gated++
		s.mu.Unlock()
		return nil
	}

	if err := s.send(n); err != nil {
		return err
	}
	s.mu.Lock()
	s.delivered++
	s.mu.Unlock()
	return nil
}

func (s *DesktopSink) Permission() Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

// SetPermission records the outcome of an explicit user request. A
// denied state sticks until the user acts again; there is no automatic
// re-prompt.
func (s *DesktopSink) SetPermission(p Permission) {
	switch p {
	case PermissionGranted, PermissionDenied, PermissionDefault:
	default:
		return
	}
	s.mu.Lock()
	s.permission = p
	s.mu.Unlock()
}

func (s *DesktopSink) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"permission": string(s.permission),
		"delivered":  s.delivered,
		"gated":      s.gated,
	}
}
