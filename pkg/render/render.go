// Package render defines the renderable view types produced by the mesh
// build pipeline. A view is the store's in-memory, multi-resolution visual
// representation of one kernel item: a closed set of variants (curve,
// region, solid), each holding one buffer set per level of detail. Views
// select their level at render time by viewing distance.
package render

import "github.com/chewxy/math32"

// Kind tags the closed set of view variants.
type Kind int

const (
	KindCurve Kind = iota
	KindRegion
	KindSolid
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

// LineStyle selects how a line set is stroked.
type LineStyle int

const (
	LineSolid  LineStyle = iota
	LineDashed           // non-visible/silhouette edges
)

// Polyline is a connected point sequence, flat: 3 floats per point.
type Polyline struct {
	Points []float32
}

// LineSet groups polylines sharing one stroke style.
type LineSet struct {
	Style     LineStyle
	Polylines []Polyline
}

// IsEmpty returns true if the set has no polylines.
func (l *LineSet) IsEmpty() bool { return len(l.Polylines) == 0 }

// TriangleBuffer is a renderable triangle mesh. All arrays are flat:
// vertices has 3 floats per vertex, normals has 3 floats per vertex,
// indices has 3 uint32s per triangle.
type TriangleBuffer struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
}

// TriangleCount returns the number of triangles.
func (b *TriangleBuffer) TriangleCount() int { return len(b.Indices) / 3 }

// growBounds folds a flat vertex array into the running bounds.
func growBounds(min, max *[3]float32, verts []float32) {
	for i := 0; i+2 < len(verts); i += 3 {
		for a := 0; a < 3; a++ {
			min[a] = math32.Min(min[a], verts[i+a])
			max[a] = math32.Max(max[a], verts[i+a])
		}
	}
}

func emptyBounds() (min, max [3]float32) {
	inf := math32.Inf(1)
	return [3]float32{inf, inf, inf}, [3]float32{-inf, -inf, -inf}
}
