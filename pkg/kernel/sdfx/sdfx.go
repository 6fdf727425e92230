// Package sdfx implements the kernel.Kernel boundary using the
// github.com/deadsy/sdfx SDF-based CAD library. Solids are signed
// distance fields meshed by marching cubes; face/edge topology is derived
// from a canonical normal-bucket decomposition of the skin so the same
// face indices and edge names come back at every tessellation precision.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// solid wraps an sdf.SDF3. The canonical topology decomposition is built
// lazily on first use and dropped by Release.
type solid struct {
	s    sdf.SDF3
	topo *topology
}

func (s *solid) Kind() kernel.Kind { return kernel.KindSolid }

func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// Release drops the cached topology decomposition.
func (s *solid) Release() { s.topo = nil }

// Closed reports watertightness of the canonical tessellation. Marching
// cubes skins are closed unless the SDF is empty.
func (s *solid) Closed() bool {
	t, err := s.topology()
	if err != nil {
		return false
	}
	return t.closed
}

// FindFaceByIndex resolves a face handle by canonical face index.
func (s *solid) FindFaceByIndex(index int) (kernel.TopologyHandle, error) {
	t, err := s.topology()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.faceNormals) {
		return nil, fmt.Errorf("%w: face %d of %d", kernel.ErrTopologyChanged, index, len(t.faceNormals))
	}
	return &faceHandle{index: index, normal: t.faceNormals[index]}, nil
}

// FindEdgeByStableName resolves an edge handle by canonical edge name.
func (s *solid) FindEdgeByStableName(name string) (kernel.TopologyHandle, error) {
	t, err := s.topology()
	if err != nil {
		return nil, err
	}
	if _, ok := t.edgeNames[name]; !ok {
		return nil, fmt.Errorf("%w: edge %q", kernel.ErrTopologyChanged, name)
	}
	return &edgeHandle{name: name}, nil
}

// faceHandle references one canonical face of a solid.
type faceHandle struct {
	index  int
	normal v3.Vec
}

func (h *faceHandle) Release() {}

// edgeHandle references one canonical edge of a solid.
type edgeHandle struct {
	name string
}

func (h *edgeHandle) Release() {}

// curve is wire geometry: either a fixed polyline or an arc sampled at
// tessellation precision.
type curve struct {
	points []v3.Vec // polyline points; nil for arcs
	arc    *arcSpec
}

// arcSpec is a circular arc in the XY plane. Angles in radians.
type arcSpec struct {
	center     v3.Vec
	radius     float64
	start, end float64
}

func (c *curve) Kind() kernel.Kind { return kernel.KindCurve }

func (c *curve) BoundingBox() (min, max [3]float64) {
	if c.arc != nil {
		a := c.arc
		return [3]float64{a.center.X - a.radius, a.center.Y - a.radius, a.center.Z},
			[3]float64{a.center.X + a.radius, a.center.Y + a.radius, a.center.Z}
	}
	return pointBounds(c.points)
}

func (c *curve) Release() {}

// region is a single planar polygon, assumed convex, fan-triangulated.
type region struct {
	points []v3.Vec
}

func (r *region) Kind() kernel.Kind { return kernel.KindRegion }

func (r *region) BoundingBox() (min, max [3]float64) {
	return pointBounds(r.points)
}

func (r *region) Release() {}

func pointBounds(pts []v3.Vec) (min, max [3]float64) {
	min = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		min[0] = math.Min(min[0], p.X)
		min[1] = math.Min(min[1], p.Y)
		min[2] = math.Min(min[2], p.Z)
		max[0] = math.Max(max[0], p.X)
		max[1] = math.Max(max[1], p.Y)
		max[2] = math.Max(max[2], p.Z)
	}
	return min, max
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*solid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s}
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0) so that placement translations work
// intuitively. sdf.Box3D centers the box at the origin, so we translate by
// half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Cylinder creates a cylinder with the given height and radius, centered
// on the Z axis with its base at z=0.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Polyline creates a curve passing through the given points.
func (k *SdfxKernel) Polyline(points [][3]float64) kernel.Item {
	pts := make([]v3.Vec, len(points))
	for i, p := range points {
		pts[i] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return &curve{points: pts}
}

// Arc creates a circular arc in the XY plane at the given Z. Angles in
// degrees, counter-clockwise from +X.
func (k *SdfxKernel) Arc(center [3]float64, radius, startDeg, endDeg float64) kernel.Item {
	return &curve{arc: &arcSpec{
		center: v3.Vec{X: center[0], Y: center[1], Z: center[2]},
		radius: radius,
		start:  startDeg * math.Pi / 180,
		end:    endDeg * math.Pi / 180,
	}}
}

// Region creates a planar filled region from a convex polygon outline.
func (k *SdfxKernel) Region(points [][3]float64) kernel.Item {
	pts := make([]v3.Vec, len(points))
	for i, p := range points {
		pts[i] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return &region{points: pts}
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Tessellate meshes an item at the given precision.
func (k *SdfxKernel) Tessellate(item kernel.Item, precision float64) (*kernel.MeshResult, error) {
	if precision <= 0 {
		return nil, fmt.Errorf("sdfx: precision must be positive, got %g", precision)
	}
	switch it := item.(type) {
	case *solid:
		return it.tessellate(precision)
	case *curve:
		return it.tessellate(precision)
	case *region:
		return it.tessellate()
	default:
		return nil, fmt.Errorf("sdfx: foreign item %T", item)
	}
}

// tessellate samples the curve. Polylines pass through unchanged; arcs
// are sampled so chord deviation stays under the precision.
func (c *curve) tessellate(precision float64) (*kernel.MeshResult, error) {
	if c.arc != nil {
		return c.arc.tessellate(precision), nil
	}
	if len(c.points) < 2 {
		return nil, fmt.Errorf("sdfx: polyline needs at least 2 points, got %d", len(c.points))
	}
	return &kernel.MeshResult{
		Edges: []kernel.EdgePolyline{{Points: flatten(c.points)}},
	}, nil
}

func (a *arcSpec) tessellate(precision float64) *kernel.MeshResult {
	sweep := a.end - a.start
	if sweep < 0 {
		sweep += 2 * math.Pi
	}
	// Angular step for a chord sagitta of at most precision.
	step := 2 * math.Acos(math.Max(0, 1-precision/a.radius))
	n := int(math.Ceil(sweep/step)) + 1
	if n < 2 {
		n = 2
	}
	pts := make([]v3.Vec, n)
	for i := 0; i < n; i++ {
		theta := a.start + sweep*float64(i)/float64(n-1)
		pts[i] = v3.Vec{
			X: a.center.X + a.radius*math.Cos(theta),
			Y: a.center.Y + a.radius*math.Sin(theta),
			Z: a.center.Z,
		}
	}
	return &kernel.MeshResult{
		Edges: []kernel.EdgePolyline{{Points: flatten(pts)}},
	}
}

// tessellate fan-triangulates the region outline into a single untagged
// polygon buffer. The outline itself is flat, so precision has no effect.
func (r *region) tessellate() (*kernel.MeshResult, error) {
	if len(r.points) < 3 {
		return nil, fmt.Errorf("sdfx: region needs at least 3 points, got %d", len(r.points))
	}
	n := polygonNormal(r.points)

	buf := kernel.FaceBuffer{FaceIndex: -1}
	for _, p := range r.points {
		buf.Vertices = append(buf.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		buf.Normals = append(buf.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for i := 1; i+1 < len(r.points); i++ {
		buf.Indices = append(buf.Indices, 0, uint32(i), uint32(i+1))
	}
	return &kernel.MeshResult{Faces: []kernel.FaceBuffer{buf}}, nil
}

// polygonNormal computes the unit normal via Newell's method.
func polygonNormal(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if l == 0 {
		return v3.Vec{Z: 1}
	}
	return v3.Vec{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
}

func flatten(pts []v3.Vec) []float32 {
	out := make([]float32, 0, len(pts)*3)
	for _, p := range pts {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}
