// Package topo maintains the reverse index from sub-entity identity back
// to kernel-side topology handles and the renderable views currently
// representing each sub-entity. A solid meshed more than once (permanent
// plus temporary) contributes multiple views to the same record.
package topo

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/identity"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/render"
)

// ErrNotFound reports a lookup for an identity no prior Record produced.
var ErrNotFound = errors.New("topo: sub-entity not found")

// Record holds what the index knows about one sub-entity.
type Record struct {
	Handle kernel.TopologyHandle
	Views  []render.SubEntity
}

// hasView reports set membership for the open-cardinality view set.
func (r *Record) hasView(v render.SubEntity) bool {
	for _, have := range r.Views {
		if have == v {
			return true
		}
	}
	return false
}

// Index maps packed sub-entity identities to their records.
type Index struct {
	records map[identity.SubID]*Record
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{records: make(map[identity.SubID]*Record)}
}

// Len returns the number of recorded sub-entities.
func (x *Index) Len() int { return len(x.records) }

// Record resolves the kernel handle for a freshly built sub-entity view
// and inserts or updates its record: faces re-resolve by stable local
// index, edges by stable name. The view is added to the record's view set.
func (x *Index) Record(parent kernel.Solid, sub render.SubEntity) error {
	id, err := identity.EncodeSub(sub.ParentID(), sub.SubKind(), sub.LocalIndex())
	if err != nil {
		return fmt.Errorf("topo: derive identity: %w", err)
	}

	if rec, ok := x.records[id]; ok {
		if !rec.hasView(sub) {
			rec.Views = append(rec.Views, sub)
		}
		return nil
	}

	var handle kernel.TopologyHandle
	switch v := sub.(type) {
	case *render.FaceView:
		handle, err = parent.FindFaceByIndex(v.LocalIndex())
	case *render.EdgeView:
		handle, err = parent.FindEdgeByStableName(v.StableName())
	default:
		return fmt.Errorf("topo: unknown sub-entity type %T", sub)
	}
	if err != nil {
		return fmt.Errorf("topo: resolve %v %d of item %d: %w",
			sub.SubKind(), sub.LocalIndex(), sub.ParentID(), err)
	}

	x.records[id] = &Record{Handle: handle, Views: []render.SubEntity{sub}}
	return nil
}

// Lookup returns the record for a previously recorded identity. A missing
// identity is a caller precondition violation and yields ErrNotFound.
func (x *Index) Lookup(id identity.SubID) (*Record, error) {
	rec, ok := x.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec, nil
}

// RemoveAllFor deletes every record whose parent matches, releasing the
// kernel handles. Used when the parent item leaves the store; the walk
// visits each record exactly once.
func (x *Index) RemoveAllFor(parent identity.ID) {
	for id, rec := range x.records {
		p, _, _ := identity.DecodeSub(id)
		if p != parent {
			continue
		}
		rec.Handle.Release()
		delete(x.records, id)
	}
}

// Clone returns a snapshot copy: the record map and each record's view
// set are copied, the handles and views themselves are shared. Mutating
// the index after Clone never changes the clone, and vice versa.
func (x *Index) Clone() *Index {
	out := &Index{records: make(map[identity.SubID]*Record, len(x.records))}
	for id, rec := range x.records {
		out.records[id] = &Record{
			Handle: rec.Handle,
			Views:  append([]render.SubEntity(nil), rec.Views...),
		}
	}
	return out
}
