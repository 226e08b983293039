package store

import (
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/metrics"
)

// ShowNotification queues a toast and returns its id. Non-persistent toasts
// dismiss themselves after their duration.
func (s *Store) ShowNotification(n model.Notification) string {
	n.ID = s.newID()
	if n.Type == "" {
		n.Type = model.NotificationInfo
	}
	if n.Duration <= 0 {
		n.Duration = DefaultNotificationDuration
	}

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	if !n.Persistent {
		id := n.ID
		s.expiry[id] = s.clock.AfterFunc(n.Duration, func() { s.DismissNotification(id) })
	}
	s.mu.Unlock()

	metrics.RecordNotification(string(n.Type))
	s.emit(NotificationsChanged)
	return n.ID
}

// DismissNotification removes a toast. Unknown ids are ignored.
func (s *Store) DismissNotification(id string) {
	s.mu.Lock()
	idx := -1
	for i, n := range s.notifications {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.notifications = append(s.notifications[:idx], s.notifications[idx+1:]...)
	if t, ok := s.expiry[id]; ok {
		t.Stop()
		delete(s.expiry, id)
	}
	s.mu.Unlock()
	s.emit(NotificationsChanged)
}

// ClearNotifications removes every toast.
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	s.notifications = nil
	for id, t := range s.expiry {
		t.Stop()
		delete(s.expiry, id)
	}
	s.mu.Unlock()
	s.emit(NotificationsChanged)
}

// Notifications returns a snapshot of the queue in display order.
func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// ShowSuccess queues a success toast.
func (s *Store) ShowSuccess(title, message string) string {
	return s.ShowNotification(model.Notification{Type: model.NotificationSuccess, Title: title, Message: message})
}

// ShowError queues an error toast, which stays up longer.
func (s *Store) ShowError(title, message string) string {
	return s.ShowNotification(model.Notification{
		Type:     model.NotificationError,
		Title:    title,
		Message:  message,
		Duration: ErrorNotificationDuration,
	})
}

// ShowWarning queues a warning toast.
func (s *Store) ShowWarning(title, message string) string {
	return s.ShowNotification(model.Notification{Type: model.NotificationWarning, Title: title, Message: message})
}

// ShowInfo queues an info toast.
func (s *Store) ShowInfo(title, message string) string {
	return s.ShowNotification(model.Notification{Type: model.NotificationInfo, Title: title, Message: message})
}

// OpenModal pushes a modal and returns its id.
func (s *Store) OpenModal(m model.Modal) string {
	m.ID = s.newID()
	if m.Props == nil {
		m.Props = map[string]any{}
	}
	s.mu.Lock()
	s.modals = append(s.modals, m)
	s.mu.Unlock()
	s.emit(ModalsChanged)
	return m.ID
}

// CloseModal removes a modal. Unknown ids are ignored.
func (s *Store) CloseModal(id string) {
	s.mu.Lock()
	for i, m := range s.modals {
		if m.ID == id {
			s.modals = append(s.modals[:i], s.modals[i+1:]...)
			s.mu.Unlock()
			s.emit(ModalsChanged)
			return
		}
	}
	s.mu.Unlock()
}

// CloseAllModals empties the modal stack.
func (s *Store) CloseAllModals() {
	s.mu.Lock()
	s.modals = nil
	s.mu.Unlock()
	s.emit(ModalsChanged)
}

// Modals returns a snapshot of the modal stack, bottom first.
func (s *Store) Modals() []model.Modal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Modal, len(s.modals))
	copy(out, s.modals)
	return out
}
