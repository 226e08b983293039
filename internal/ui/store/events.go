package store

import "sort"

// EventKind names a store state change.
type EventKind string

// Store events.
const (
	ThemeChanged             EventKind = "theme_changed"
	NotificationsChanged     EventKind = "notifications_changed"
	ModalsChanged            EventKind = "modals_changed"
	LoadingChanged           EventKind = "loading_changed"
	AnimationSettingsChanged EventKind = "animation_settings_changed"
)

// Event is delivered to subscribers after the state changed.
type Event struct {
	Kind EventKind
}

// Subscribe registers fn for every store event. The returned func removes it.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// emit must be called without s.mu held.
func (s *Store) emit(kind EventKind) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()
	ev := Event{Kind: kind}
	for _, fn := range fns {
		fn(ev)
	}
}
