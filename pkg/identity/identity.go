// Package identity issues durable identities for top-level scene items and
// derives composite identities for their topological sub-entities (faces,
// edges). Top-level identities are allocated; sub-entity identities are a
// pure function of (parent, kind, index) so they survive re-meshing.
package identity

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ID identifies a top-level item in the store. IDs are never reused within
// a session.
type ID int64

// Uncommitted is the sentinel identity carried by in-flight preview builds
// that have not been assigned a real identity yet.
const Uncommitted ID = -1

// SubID is the packed identity of a face or edge sub-entity.
// Layout: parent in bits 16.., kind flag in bit 15, local index in bits 0-14.
type SubID int64

// Kind distinguishes the two sub-entity flavors of a solid's topology.
type Kind int

const (
	KindEdge Kind = 0
	KindFace Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindEdge:
		return "edge"
	case KindFace:
		return "face"
	default:
		return "unknown"
	}
}

// Encoding bit widths. Encode rejects components outside these rather than
// truncating.
const (
	MaxParent = 1 << 16 // parent occupies 16 bits
	MaxIndex  = 1 << 15 // local index occupies 15 bits
)

// ErrOutOfRange is returned when an identity component exceeds its bit width.
var ErrOutOfRange = errors.New("identity: component out of range")

// EncodeSub packs a sub-entity identity from its components. Equal inputs
// always produce equal identities, and identities for distinct parents never
// collide.
func EncodeSub(parent ID, kind Kind, index int) (SubID, error) {
	if parent < 0 || parent >= MaxParent {
		return 0, fmt.Errorf("%w: parent %d", ErrOutOfRange, parent)
	}
	if index < 0 || index >= MaxIndex {
		return 0, fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}
	return SubID(int64(parent)<<16 | int64(kind)<<15 | int64(index)), nil
}

// DecodeSub is the exact inverse of EncodeSub for all in-range values.
func DecodeSub(id SubID) (parent ID, kind Kind, index int) {
	parent = ID(id >> 16)
	kind = Kind((id >> 15) & 1)
	index = int(id & (MaxIndex - 1))
	return parent, kind, index
}

// Allocator hands out strictly increasing top-level identities.
// Safe for concurrent use.
type Allocator struct {
	last atomic.Int64
}

// NewAllocator returns an allocator whose first identity is 0.
func NewAllocator() *Allocator {
	a := &Allocator{}
	a.last.Store(-1)
	return a
}

// Next returns a fresh identity, strictly greater than all previously
// returned ones.
func (a *Allocator) Next() ID {
	return ID(a.last.Add(1))
}
