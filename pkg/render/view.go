package render

import "github.com/chazu/armature/pkg/identity"

// View is the renderable representation of one top-level item. Views are
// immutable after construction except for Dispose; re-meshing an item
// produces a new view rather than mutating the old one.
type View interface {
	Kind() Kind
	// ID is the owning item's identity, or identity.Uncommitted for a
	// preview view that has not entered the store.
	ID() identity.ID
	// LevelCount is the number of detail levels, always >= 1.
	LevelCount() int
	// LevelFor returns the index of the level that covers the given
	// viewing distance: the first level whose max distance is not
	// exceeded, or the coarsest level beyond all thresholds.
	LevelFor(distance float64) int
	// Bounds returns the axis-aligned bounds of the finest level.
	Bounds() (min, max [3]float32)
	// Dispose releases the view's buffer resources. Idempotent.
	Dispose()
}

// levelFor is the shared distance-to-level policy.
func levelFor(maxDistances []float64, distance float64) int {
	for i, d := range maxDistances {
		if distance <= d {
			return i
		}
	}
	return len(maxDistances) - 1
}

// CurveLevel is one detail level of a curve view.
type CurveLevel struct {
	MaxDistance float64
	Lines       LineSet
}

// CurveView renders a curve item as styled line segments per level.
type CurveView struct {
	id       identity.ID
	Levels   []CurveLevel
	disposed bool
}

// NewCurveView constructs a curve view. Levels keep the order given.
func NewCurveView(id identity.ID, levels []CurveLevel) *CurveView {
	return &CurveView{id: id, Levels: levels}
}

func (v *CurveView) Kind() Kind      { return KindCurve }
func (v *CurveView) ID() identity.ID { return v.id }
func (v *CurveView) LevelCount() int { return len(v.Levels) }

func (v *CurveView) LevelFor(distance float64) int {
	ds := make([]float64, len(v.Levels))
	for i := range v.Levels {
		ds[i] = v.Levels[i].MaxDistance
	}
	return levelFor(ds, distance)
}

func (v *CurveView) Bounds() (min, max [3]float32) {
	min, max = emptyBounds()
	if len(v.Levels) == 0 {
		return min, max
	}
	for _, p := range v.Levels[0].Lines.Polylines {
		growBounds(&min, &max, p.Points)
	}
	return min, max
}

func (v *CurveView) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.Levels = nil
}

// RegionLevel is one detail level of a region view.
type RegionLevel struct {
	MaxDistance float64
	Mesh        TriangleBuffer
}

// RegionView renders a planar region as exactly one filled polygon buffer
// per level. Regions are open surfaces and always draw double-sided.
type RegionView struct {
	id       identity.ID
	Levels   []RegionLevel
	disposed bool
}

// NewRegionView constructs a region view. Levels keep the order given.
func NewRegionView(id identity.ID, levels []RegionLevel) *RegionView {
	return &RegionView{id: id, Levels: levels}
}

func (v *RegionView) Kind() Kind      { return KindRegion }
func (v *RegionView) ID() identity.ID { return v.id }
func (v *RegionView) LevelCount() int { return len(v.Levels) }

func (v *RegionView) LevelFor(distance float64) int {
	ds := make([]float64, len(v.Levels))
	for i := range v.Levels {
		ds[i] = v.Levels[i].MaxDistance
	}
	return levelFor(ds, distance)
}

func (v *RegionView) Bounds() (min, max [3]float32) {
	min, max = emptyBounds()
	if len(v.Levels) > 0 {
		growBounds(&min, &max, v.Levels[0].Mesh.Vertices)
	}
	return min, max
}

func (v *RegionView) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.Levels = nil
}
