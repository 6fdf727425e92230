package scene

import "github.com/chazu/armature/pkg/render"

// Listener observes store changes. Callbacks fire synchronously at the
// end of the triggering operation, after its effects are committed and
// with no store locks held; scene-changed always fires last.
type Listener interface {
	ItemAdded(view render.View)
	ItemRemoved(view render.View)
	SceneChanged()
}

// AddListener registers a change observer.
func (s *Store) AddListener(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) snapshotListeners() []Listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Listener(nil), s.listeners...)
}

func (s *Store) notifyAdded(v render.View) {
	for _, l := range s.snapshotListeners() {
		l.ItemAdded(v)
	}
}

func (s *Store) notifyRemoved(v render.View) {
	for _, l := range s.snapshotListeners() {
		l.ItemRemoved(v)
	}
}

func (s *Store) notifyChanged() {
	for _, l := range s.snapshotListeners() {
		l.SceneChanged()
	}
}
