// Package tessellate drives the level-of-detail mesh build pipeline: for
// one kernel item and an ordered LOD schedule it asks the kernel to
// tessellate at each precision and assembles the matching renderable view.
// One view is produced per item; the builder never mutates store state.
package tessellate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/armature/pkg/identity"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/render"
)

// Level pairs a tessellation precision with the viewing distance up to
// which the resulting buffers are used.
type Level struct {
	Precision   float64
	MaxDistance float64
}

// DefaultLevels is the production three-level schedule: fine near the
// camera, coarsening with distance.
var DefaultLevels = []Level{
	{Precision: 0.25, MaxDistance: 25},
	{Precision: 1.0, MaxDistance: 100},
	{Precision: 4.0, MaxDistance: math.Inf(1)},
}

// PreviewLevels is the single very fine level used for interactive
// previews, which favor correctness at the cursor over distance detail.
var PreviewLevels = []Level{
	{Precision: 0.1, MaxDistance: math.Inf(1)},
}

// ErrUnsupportedKind reports a kernel item kind the builder has no
// renderable representation for.
var ErrUnsupportedKind = errors.New("tessellate: unsupported item kind")

// ErrNoLevels reports an empty LOD schedule.
var ErrNoLevels = errors.New("tessellate: at least one level required")

// ErrRegionBuffers reports a region tessellation that violated the
// one-buffer cardinality contract.
var ErrRegionBuffers = errors.New("tessellate: region produced more than one polygon buffer")

// Builder assembles renderable views by calling the kernel once per level.
type Builder struct {
	k kernel.Kernel
}

// NewBuilder returns a builder backed by the given kernel.
func NewBuilder(k kernel.Kernel) *Builder {
	return &Builder{k: k}
}

// Build tessellates the item at every level of the schedule and assembles
// the view for its kind. Levels are added in the order given. The id is
// the owning item's identity, or identity.Uncommitted for preview builds.
func (b *Builder) Build(item kernel.Item, id identity.ID, levels []Level) (render.View, error) {
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}

	switch item.Kind() {
	case kernel.KindCurve:
		return b.buildCurve(item, id, levels)
	case kernel.KindRegion:
		return b.buildRegion(item, id, levels)
	case kernel.KindSolid:
		return b.buildSolid(item, id, levels)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, item.Kind())
	}
}

// buildCurve produces a line set per level, tagged with the default
// line style.
func (b *Builder) buildCurve(item kernel.Item, id identity.ID, levels []Level) (render.View, error) {
	out := make([]render.CurveLevel, 0, len(levels))
	for _, lv := range levels {
		res, err := b.k.Tessellate(item, lv.Precision)
		if err != nil {
			return nil, fmt.Errorf("tessellate: curve at precision %g: %w", lv.Precision, err)
		}
		lines := render.LineSet{Style: render.LineSolid}
		for _, e := range res.Edges {
			lines.Polylines = append(lines.Polylines, render.Polyline{Points: e.Points})
		}
		out = append(out, render.CurveLevel{MaxDistance: lv.MaxDistance, Lines: lines})
	}
	return render.NewCurveView(id, out), nil
}

// buildRegion produces exactly one filled polygon buffer per level. More
// than one buffer from the kernel is a cardinality violation reported to
// the caller; the store stays untouched.
func (b *Builder) buildRegion(item kernel.Item, id identity.ID, levels []Level) (render.View, error) {
	out := make([]render.RegionLevel, 0, len(levels))
	for _, lv := range levels {
		res, err := b.k.Tessellate(item, lv.Precision)
		if err != nil {
			return nil, fmt.Errorf("tessellate: region at precision %g: %w", lv.Precision, err)
		}
		if len(res.Faces) != 1 {
			return nil, fmt.Errorf("%w: got %d at precision %g", ErrRegionBuffers, len(res.Faces), lv.Precision)
		}
		f := res.Faces[0]
		out = append(out, render.RegionLevel{
			MaxDistance: lv.MaxDistance,
			Mesh: render.TriangleBuffer{
				Vertices: f.Vertices,
				Normals:  f.Normals,
				Indices:  f.Indices,
			},
		})
	}
	return render.NewRegionView(id, out), nil
}

// buildSolid produces an edge set and a face set combined per level. The
// finest level defines the face/edge population; coarser levels fill in
// by stable face index and stable edge name, leaving an empty buffer
// where a coarse tessellation dropped a sub-entity.
func (b *Builder) buildSolid(item kernel.Item, id identity.ID, levels []Level) (render.View, error) {
	results := make([]*kernel.MeshResult, 0, len(levels))
	maxDistances := make([]float64, 0, len(levels))
	for _, lv := range levels {
		res, err := b.k.Tessellate(item, lv.Precision)
		if err != nil {
			return nil, fmt.Errorf("tessellate: solid at precision %g: %w", lv.Precision, err)
		}
		results = append(results, res)
		maxDistances = append(maxDistances, lv.MaxDistance)
	}

	first := results[0]
	doubleSided := !first.Closed

	// Faces, keyed by the kernel's stable local index.
	faceIndices := make([]int, 0, len(first.Faces))
	for _, f := range first.Faces {
		faceIndices = append(faceIndices, f.FaceIndex)
	}
	sort.Ints(faceIndices)

	faces := make([]*render.FaceView, 0, len(faceIndices))
	for _, fi := range faceIndices {
		bufs := make([]render.TriangleBuffer, len(results))
		for li, res := range results {
			for _, f := range res.Faces {
				if f.FaceIndex == fi {
					bufs[li] = render.TriangleBuffer{
						Vertices: f.Vertices,
						Normals:  f.Normals,
						Indices:  f.Indices,
					}
					break
				}
			}
		}
		faces = append(faces, render.NewFaceView(id, fi, doubleSided, bufs))
	}

	// Edges, keyed by the kernel's stable name. The local index is the
	// edge's position in the finest level's sorted name order.
	names := make([]string, 0, len(first.Edges))
	silhouette := make(map[string]bool, len(first.Edges))
	for _, e := range first.Edges {
		names = append(names, e.Name)
		silhouette[e.Name] = e.Silhouette
	}
	sort.Strings(names)

	edges := make([]*render.EdgeView, 0, len(names))
	for ei, name := range names {
		style := render.LineSolid
		if silhouette[name] {
			style = render.LineDashed
		}
		sets := make([]render.LineSet, len(results))
		for li, res := range results {
			set := render.LineSet{Style: style}
			for _, e := range res.Edges {
				if e.Name == name {
					set.Polylines = append(set.Polylines, render.Polyline{Points: e.Points})
				}
			}
			sets[li] = set
		}
		edges = append(edges, render.NewEdgeView(id, ei, name, style, sets))
	}

	return render.NewSolidView(id, maxDistances, faces, edges, first.Closed), nil
}
