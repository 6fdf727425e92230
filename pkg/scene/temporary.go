package scene

import (
	"errors"
	"sync"

	"github.com/chazu/armature/pkg/identity"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/render"
	"github.com/chazu/armature/pkg/tessellate"
)

// ErrPreviewCanceled reports a Commit on a preview that was canceled.
var ErrPreviewCanceled = errors.New("scene: preview canceled")

// ErrPreviewCommitted reports a second Commit on the same preview.
var ErrPreviewCommitted = errors.New("scene: preview already committed")

// Temporary is a preview item living in the transient workspace: it has
// no identity, no item record and no topology entries. The preview mesh
// builds asynchronously at the single fine preview level; Cancel and
// Commit are safe to call while the build is still in flight.
type Temporary struct {
	store *Store
	key   uint64
	item  kernel.Item
	done  chan struct{}

	mu        sync.Mutex
	view      render.View
	err       error
	built     bool
	canceled  bool
	committed bool
}

// AddTemporary places a preview of the item in the transient workspace,
// bypassing identity allocation and the topology index, and starts the
// preview mesh build in the background. Build failures surface from Wait
// and Commit.
func (s *Store) AddTemporary(item kernel.Item) *Temporary {
	t := &Temporary{store: s, item: item, done: make(chan struct{})}
	s.mu.Lock()
	s.nextTemp++
	t.key = s.nextTemp
	s.temps[t.key] = t
	s.mu.Unlock()
	go t.build()
	return t
}

func (t *Temporary) build() {
	view, err := t.store.builder.Build(t.item, identity.Uncommitted, tessellate.PreviewLevels)

	t.mu.Lock()
	t.view, t.err = view, err
	t.built = true
	dropped := t.canceled || err != nil
	t.mu.Unlock()

	// A cancellation that raced the build disposes the result here, so a
	// finished build never leaks past its cancel.
	if dropped {
		if view != nil {
			view.Dispose()
		}
		t.store.dropTemp(t.key)
	}
	close(t.done)
}

// Wait blocks until the preview mesh build finished and returns its error.
func (t *Temporary) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// View returns the built preview view, or nil while the build is in
// flight, failed, or after cancellation.
func (t *Temporary) View() render.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.built || t.canceled {
		return nil
	}
	return t.view
}

// Cancel disposes the preview and removes it from the workspace. Safe to
// call while the build is still running (disposal is deferred until it
// completes) and safe to call more than once.
func (t *Temporary) Cancel() {
	t.mu.Lock()
	if t.canceled || t.committed {
		t.mu.Unlock()
		return
	}
	t.canceled = true
	built := t.built
	view := t.view
	t.mu.Unlock()

	if built {
		if view != nil {
			view.Dispose()
		}
		t.store.dropTemp(t.key)
	}
}

// Commit removes the preview from the workspace and re-issues the item
// through AddItem, so a committed preview is re-meshed at the full LOD
// schedule and enters the store on the same path as any other item. The
// preview buffers are disposed. Returns the new, committed view.
func (t *Temporary) Commit() (render.View, error) {
	<-t.done

	t.mu.Lock()
	if t.canceled {
		t.mu.Unlock()
		return nil, ErrPreviewCanceled
	}
	if t.committed {
		t.mu.Unlock()
		return nil, ErrPreviewCommitted
	}
	t.committed = true
	view, err := t.view, t.err
	t.mu.Unlock()

	t.store.dropTemp(t.key)
	if err != nil {
		return nil, err
	}
	view.Dispose()
	return t.store.AddItem(t.item)
}

func (s *Store) dropTemp(key uint64) {
	s.mu.Lock()
	delete(s.temps, key)
	s.mu.Unlock()
}

// TemporaryViews returns the preview views currently in the transient
// workspace, for the rendering surface to draw alongside committed items.
func (s *Store) TemporaryViews() []render.View {
	s.mu.RLock()
	temps := make([]*Temporary, 0, len(s.temps))
	for _, t := range s.temps {
		temps = append(temps, t)
	}
	s.mu.RUnlock()

	var out []render.View
	for _, t := range temps {
		if v := t.View(); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// TemporaryCount returns the number of workspace entries, including
// previews still building.
func (s *Store) TemporaryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.temps)
}
