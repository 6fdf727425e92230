package scene

import (
	"github.com/chazu/armature/pkg/identity"
	"github.com/chazu/armature/pkg/topo"
)

// Memento is an immutable snapshot of the store's three core collections.
// Item records are immutable, so the maps are copied and the records
// shared; mutating the store after a snapshot never changes the snapshot's
// observed contents, and vice versa.
type Memento struct {
	records map[identity.ID]*ItemRecord
	order   []identity.ID
	topo    *topo.Index
	hidden  map[identity.ID]struct{}
}

// Len returns the number of item records captured in the snapshot.
func (m *Memento) Len() int { return len(m.records) }

// Snapshot captures the item records, topology index and hidden set
// atomically with respect to concurrent writers: an in-progress AddItem is
// either fully included or fully absent.
func (s *Store) Snapshot() *Memento {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Memento{
		records: copyRecords(s.records),
		order:   append([]identity.ID(nil), s.order...),
		topo:    s.topo.Clone(),
		hidden:  copyIDSet(s.hidden),
	}
}

// Restore atomically replaces the store's live collections with copies of
// the memento's. Edits made since the snapshot are discarded, not merged.
// The memento stays valid and may be restored again. The identity
// allocator is deliberately not part of the snapshot, so identities freed
// by an undo are never reissued.
func (s *Store) Restore(m *Memento) {
	s.mu.Lock()
	s.records = copyRecords(m.records)
	s.order = append([]identity.ID(nil), m.order...)
	s.topo = m.topo.Clone()
	s.hidden = copyIDSet(m.hidden)
	s.mu.Unlock()
	s.notifyChanged()
}

func copyRecords(in map[identity.ID]*ItemRecord) map[identity.ID]*ItemRecord {
	out := make(map[identity.ID]*ItemRecord, len(in))
	for id, rec := range in {
		out[id] = rec
	}
	return out
}

func copyIDSet(in map[identity.ID]struct{}) map[identity.ID]struct{} {
	out := make(map[identity.ID]struct{}, len(in))
	for id := range in {
		out[id] = struct{}{}
	}
	return out
}
