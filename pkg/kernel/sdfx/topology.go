package sdfx

import (
	"fmt"
	"math"
	"sort"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/armature/pkg/kernel"
)

const (
	// topologyCells is the fixed marching cubes resolution the canonical
	// face/edge decomposition is derived from. Independent of the
	// per-level tessellation precision so topology stays stable.
	topologyCells = 96

	minCells = 16
	maxCells = 256

	// normalQuant is the quantization granularity for grouping triangle
	// normals into canonical faces. Axis-aligned faces land exactly on
	// quantization points.
	normalQuant = 2.0
)

// topology is a solid's canonical face/edge decomposition: faces are
// buckets of near-parallel skin triangles, edges are the seams between
// two adjacent buckets, named by the bucket pair.
type topology struct {
	faceNormals []v3.Vec
	edgeNames   map[string]struct{}
	closed      bool
}

func (s *solid) topology() (*topology, error) {
	if s.topo != nil {
		return s.topo, nil
	}
	tris := march(s.s, topologyCells)
	if len(tris) == 0 {
		return nil, fmt.Errorf("sdfx: solid produced no surface at canonical resolution")
	}
	normals := canonicalNormals(tris)
	assign := assignFaces(tris, normals)
	segs, closed := extractEdges(tris, assign)

	t := &topology{
		faceNormals: normals,
		edgeNames:   make(map[string]struct{}, len(segs)),
		closed:      closed,
	}
	for name := range segs {
		t.edgeNames[name] = struct{}{}
	}
	s.topo = t
	return t, nil
}

// tessellate meshes the solid at the given precision and shapes the
// result onto the canonical topology: one face buffer per populated
// canonical face, one polyline per seam segment, named by bucket pair.
func (s *solid) tessellate(precision float64) (*kernel.MeshResult, error) {
	t, err := s.topology()
	if err != nil {
		return nil, err
	}
	tris := march(s.s, cellsFor(s.s, precision))
	if len(tris) == 0 {
		return nil, fmt.Errorf("sdfx: solid produced no surface at precision %g", precision)
	}
	assign := assignFaces(tris, t.faceNormals)

	res := &kernel.MeshResult{Closed: t.closed}

	// Face buffers, in canonical index order.
	for fi := range t.faceNormals {
		var buf *kernel.FaceBuffer
		for ti, tri := range tris {
			if assign[ti] != fi {
				continue
			}
			if buf == nil {
				buf = &kernel.FaceBuffer{FaceIndex: fi}
			}
			n := tri.Normal()
			base := uint32(len(buf.Vertices) / 3)
			for j := 0; j < 3; j++ {
				v := tri[j]
				buf.Vertices = append(buf.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				buf.Normals = append(buf.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			}
			buf.Indices = append(buf.Indices, base, base+1, base+2)
		}
		if buf != nil {
			res.Faces = append(res.Faces, *buf)
		}
	}

	// Seam polylines. SDF skins carry no hidden-line classification, so
	// no edge is marked as a silhouette here.
	segs, _ := extractEdges(tris, assign)
	names := make([]string, 0, len(segs))
	for name := range segs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, seg := range segs[name] {
			res.Edges = append(res.Edges, kernel.EdgePolyline{
				Name: name,
				Points: []float32{
					float32(seg[0].X), float32(seg[0].Y), float32(seg[0].Z),
					float32(seg[1].X), float32(seg[1].Y), float32(seg[1].Z),
				},
			})
		}
	}
	return res, nil
}

// march runs uniform marching cubes at the given grid resolution.
func march(s sdf.SDF3, cells int) []*sdf.Triangle3 {
	return render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
}

// cellsFor maps a tessellation precision to a marching cubes resolution:
// roughly one grid cell per precision unit across the largest extent.
func cellsFor(s sdf.SDF3, precision float64) int {
	bb := s.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	cells := int(math.Ceil(maxDim / precision))
	if cells < minCells {
		cells = minCells
	}
	if cells > maxCells {
		cells = maxCells
	}
	return cells
}

type quantKey [3]int

func quantize(n v3.Vec) quantKey {
	return quantKey{
		int(math.Round(n.X * normalQuant)),
		int(math.Round(n.Y * normalQuant)),
		int(math.Round(n.Z * normalQuant)),
	}
}

// canonicalNormals buckets triangle normals by quantization and returns
// one averaged unit normal per bucket, in deterministic key order.
func canonicalNormals(tris []*sdf.Triangle3) []v3.Vec {
	sums := make(map[quantKey]v3.Vec)
	for _, tri := range tris {
		n := tri.Normal()
		k := quantize(n)
		sums[k] = sums[k].Add(n)
	}
	keys := make([]quantKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	out := make([]v3.Vec, len(keys))
	for i, k := range keys {
		n := sums[k]
		l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if l > 0 {
			n = v3.Vec{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
		}
		out[i] = n
	}
	return out
}

// assignFaces maps each triangle to the canonical face whose normal it
// aligns with best.
func assignFaces(tris []*sdf.Triangle3, faceNormals []v3.Vec) []int {
	assign := make([]int, len(tris))
	for ti, tri := range tris {
		n := tri.Normal()
		best, bestDot := 0, math.Inf(-1)
		for fi, fn := range faceNormals {
			d := n.X*fn.X + n.Y*fn.Y + n.Z*fn.Z
			if d > bestDot {
				best, bestDot = fi, d
			}
		}
		assign[ti] = best
	}
	return assign
}

// edgeName names the seam between two canonical faces. Stable across
// precisions because it depends only on the face pair.
func edgeName(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("f%d|f%d", a, b)
}

type vertKey [3]float64

type segment [2]v3.Vec

// extractEdges finds mesh edges shared by triangles of two different
// canonical faces and groups the resulting segments by seam name. The
// second result reports watertightness: every mesh edge bounded by
// exactly two triangles.
func extractEdges(tris []*sdf.Triangle3, assign []int) (map[string][]segment, bool) {
	type meshEdge struct{ a, b vertKey }
	incident := make(map[meshEdge][]int)
	verts := make(map[vertKey]v3.Vec)

	for ti, tri := range tris {
		for j := 0; j < 3; j++ {
			p, q := tri[j], tri[(j+1)%3]
			pk := vertKey{p.X, p.Y, p.Z}
			qk := vertKey{q.X, q.Y, q.Z}
			verts[pk], verts[qk] = p, q
			e := meshEdge{pk, qk}
			if qk[0] < pk[0] || (qk[0] == pk[0] && (qk[1] < pk[1] || (qk[1] == pk[1] && qk[2] < pk[2]))) {
				e = meshEdge{qk, pk}
			}
			incident[e] = append(incident[e], ti)
		}
	}

	segs := make(map[string][]segment)
	closed := true
	for e, ts := range incident {
		if len(ts) != 2 {
			closed = false
			continue
		}
		fa, fb := assign[ts[0]], assign[ts[1]]
		if fa == fb {
			continue
		}
		name := edgeName(fa, fb)
		segs[name] = append(segs[name], segment{verts[e.a], verts[e.b]})
	}
	return segs, closed
}
