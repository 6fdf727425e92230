// Package scene implements the geometry store: the renderable,
// identity-stable mirror of the kernel's model. The store owns the
// mapping from top-level identity to {kernel item, renderable view}, the
// hidden set and the transient preview workspace, drives the LOD mesh
// build pipeline, populates the topology index for solids, and emits
// change notifications to observers.
package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/armature/pkg/identity"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/render"
	"github.com/chazu/armature/pkg/tessellate"
	"github.com/chazu/armature/pkg/topo"
)

// ErrNotFound reports a lookup or removal of an item the store does not
// hold. Always a caller precondition violation.
var ErrNotFound = errors.New("scene: item not found")

// ItemRecord ties a top-level identity to its kernel item and renderable
// view. Records are immutable; re-meshing an item produces a new record
// with the same identity.
type ItemRecord struct {
	ID   identity.ID
	Item kernel.Item
	View render.View
}

// Store is the geometry store orchestrator. Reads may run concurrently;
// writes that finalize an operation are serialized behind one lock, while
// the kernel tessellation itself runs outside it.
type Store struct {
	builder *tessellate.Builder
	alloc   *identity.Allocator

	mu      sync.RWMutex
	records map[identity.ID]*ItemRecord
	order   []identity.ID // insertion order of live records
	topo    *topo.Index
	hidden  map[identity.ID]struct{}

	temps    map[uint64]*Temporary
	nextTemp uint64

	listeners []Listener
}

// New returns an empty store meshing through the given kernel.
func New(k kernel.Kernel) *Store {
	return &Store{
		builder: tessellate.NewBuilder(k),
		alloc:   identity.NewAllocator(),
		records: make(map[identity.ID]*ItemRecord),
		topo:    topo.NewIndex(),
		hidden:  make(map[identity.ID]struct{}),
		temps:   make(map[uint64]*Temporary),
	}
}

// AddItem allocates an identity, meshes the item with the production LOD
// schedule, records it, and for solids populates the topology index from
// the view's sub-entities. Observers never see a partially added item: the
// record and its topology commit together, and notifications fire after.
// On any error nothing is committed.
func (s *Store) AddItem(item kernel.Item) (render.View, error) {
	id := s.alloc.Next()
	view, err := s.builder.Build(item, id, tessellate.DefaultLevels)
	if err != nil {
		return nil, err
	}
	if err := s.finalize(item, id, view); err != nil {
		view.Dispose()
		return nil, err
	}
	s.notifyAdded(view)
	s.notifyChanged()
	return view, nil
}

// AddItems meshes independent items concurrently, then finalizes them one
// at a time in input order. Any error, whether from a build or a finalize,
// aborts the whole batch: items finalized earlier in the batch are rolled
// back, so observers never see a partial batch and no notifications fire.
func (s *Store) AddItems(ctx context.Context, items []kernel.Item) ([]render.View, error) {
	ids := make([]identity.ID, len(items))
	views := make([]render.View, len(items))
	for i := range items {
		ids[i] = s.alloc.Next()
	}

	g, _ := errgroup.WithContext(ctx)
	for i := range items {
		g.Go(func() error {
			v, err := s.builder.Build(items[i], ids[i], tessellate.DefaultLevels)
			views[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		for _, v := range views {
			if v != nil {
				v.Dispose()
			}
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		for _, v := range views {
			v.Dispose()
		}
		return nil, err
	}

	for i := range items {
		if err := s.finalize(items[i], ids[i], views[i]); err != nil {
			s.unfinalize(ids[:i])
			for _, v := range views {
				v.Dispose()
			}
			return nil, err
		}
	}
	for _, v := range views {
		s.notifyAdded(v)
	}
	s.notifyChanged()
	return views, nil
}

// finalize commits one built item under the write lock: record insertion
// plus, for solids, the topology walk. All-or-nothing per item.
func (s *Store) finalize(item kernel.Item, id identity.ID, view render.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = &ItemRecord{ID: id, Item: item, View: view}
	s.order = append(s.order, id)

	if sv, ok := view.(*render.SolidView); ok {
		solid, ok := item.(kernel.Solid)
		if !ok {
			s.rollback(id)
			return fmt.Errorf("scene: solid view for non-solid item %T", item)
		}
		for _, sub := range sv.SubEntities() {
			if err := s.topo.Record(solid, sub); err != nil {
				s.rollback(id)
				return err
			}
		}
	}
	return nil
}

// rollback undoes a partial finalize. The identity is fresh, so removing
// everything keyed by it restores the previous state exactly.
func (s *Store) rollback(id identity.ID) {
	delete(s.records, id)
	s.order = s.order[:len(s.order)-1]
	s.topo.RemoveAllFor(id)
}

// unfinalize removes records that were finalized earlier in a failed batch.
// Unlike rollback, the ids are not necessarily last in insertion order.
func (s *Store) unfinalize(ids []identity.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.records, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		s.topo.RemoveAllFor(id)
	}
}

// RemoveItem deletes the item's record, all its topology records, and its
// hidden-set entry, releasing the kernel handles and the view's buffers.
// Removing an item not present is a precondition failure.
func (s *Store) RemoveItem(view render.View) error {
	s.mu.Lock()
	rec, ok := s.records[view.ID()]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, view.ID())
	}
	delete(s.records, rec.ID)
	for i, id := range s.order {
		if id == rec.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.topo.RemoveAllFor(rec.ID)
	delete(s.hidden, rec.ID)
	s.mu.Unlock()

	rec.Item.Release()
	rec.View.Dispose()
	s.notifyRemoved(view)
	s.notifyChanged()
	return nil
}

// Lookup returns the record for a top-level identity, or ErrNotFound so
// callers can distinguish "doesn't exist" from "exists but empty".
func (s *Store) Lookup(id identity.ID) (*ItemRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec, nil
}

// LookupTopology returns the topology record for a sub-entity identity.
func (s *Store) LookupTopology(id identity.SubID) (*topo.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topo.Lookup(id)
}

// Find returns all views of the given kind, in insertion order.
func (s *Store) Find(kind render.Kind) []render.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []render.View
	for _, id := range s.order {
		if v := s.records[id].View; v.Kind() == kind {
			out = append(out, v)
		}
	}
	return out
}

// VisibleItems returns the views not currently hidden, in insertion order.
func (s *Store) VisibleItems() []render.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []render.View
	for _, id := range s.order {
		if _, hid := s.hidden[id]; !hid {
			out = append(out, s.records[id].View)
		}
	}
	return out
}

// Hide excludes the view's item from the visible projection. The item
// record itself is untouched.
func (s *Store) Hide(view render.View) error {
	if err := s.setHidden(view, true); err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

// Unhide returns the view's item to the visible projection.
func (s *Store) Unhide(view render.View) error {
	if err := s.setHidden(view, false); err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

func (s *Store) setHidden(view render.View, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[view.ID()]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, view.ID())
	}
	if hidden {
		s.hidden[view.ID()] = struct{}{}
	} else {
		delete(s.hidden, view.ID())
	}
	return nil
}

// Len returns the number of live item records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
