// Package kernel defines the abstract geometry kernel boundary.
// Implementations (sdfx, test fakes) provide solid/curve/region modeling
// and tessellation behind this interface. The kernel abstraction allows
// swapping backends without changing the rest of the system.
package kernel

import "errors"

// Kind tags the closed set of item variants the kernel produces.
// The mesh build pipeline switches on it exhaustively.
type Kind int

const (
	KindCurve  Kind = iota // wire geometry (polylines, arcs)
	KindRegion             // a single filled planar region
	KindSolid              // a solid with face/edge topology
)

func (k Kind) String() string {
	switch k {
	case KindCurve:
		return "curve"
	case KindRegion:
		return "region"
	case KindSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// Item is an opaque handle to a kernel-owned geometric object. The store
// holds the reference for the lifetime of the owning item record and calls
// Release when the record is destroyed.
type Item interface {
	Kind() Kind
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Release frees kernel-side resources tied to this handle.
	// Using the item after Release is a caller error.
	Release()
}

// TopologyHandle is an opaque kernel-side reference to a single face or
// edge, re-resolved from a recorded local index or stable name.
type TopologyHandle interface {
	Release()
}

// Solid extends Item with topology access. Faces are addressed by a stable
// local index, edges by a stable name; both fail with ErrTopologyChanged
// if the solid's topology no longer matches the recorded index/name.
type Solid interface {
	Item
	// Closed reports whether the solid is watertight. Open solids get
	// double-sided face styling downstream.
	Closed() bool
	FindFaceByIndex(index int) (TopologyHandle, error)
	FindEdgeByStableName(name string) (TopologyHandle, error)
}

// ErrTopologyChanged is returned by FindFaceByIndex/FindEdgeByStableName
// when the recorded index or name no longer resolves.
var ErrTopologyChanged = errors.New("kernel: topology changed, handle not resolvable")

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Polyline(points [][3]float64) Item
	Arc(center [3]float64, radius, startDeg, endDeg float64) Item
	Region(points [][3]float64) Item

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Tessellate meshes an item at the given precision (smaller is finer).
	// The result shape depends on the item kind; see MeshResult.
	Tessellate(item Item, precision float64) (*MeshResult, error)
}
