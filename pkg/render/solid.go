package render

import "github.com/chazu/armature/pkg/identity"

// SubEntity is a renderable face or edge view belonging to a solid view.
// Sub-entities carry the coordinates the topology index needs to derive
// their composite identity and to re-resolve their kernel handle.
type SubEntity interface {
	ParentID() identity.ID
	SubKind() identity.Kind
	// LocalIndex is the stable index within the parent's topology.
	LocalIndex() int
	Dispose()
}

// FaceView is one face of a solid, with one triangle buffer per level.
type FaceView struct {
	parent identity.ID
	index  int
	// DoubleSided is set for faces of open solids.
	DoubleSided bool
	Levels      []TriangleBuffer
	disposed    bool
}

// NewFaceView constructs a face view for the parent's face at index.
func NewFaceView(parent identity.ID, index int, doubleSided bool, levels []TriangleBuffer) *FaceView {
	return &FaceView{parent: parent, index: index, DoubleSided: doubleSided, Levels: levels}
}

func (f *FaceView) ParentID() identity.ID  { return f.parent }
func (f *FaceView) SubKind() identity.Kind { return identity.KindFace }
func (f *FaceView) LocalIndex() int        { return f.index }

func (f *FaceView) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	f.Levels = nil
}

// EdgeView is one edge of a solid, with one line set per level. Silhouette
// edges carry the dashed style.
type EdgeView struct {
	parent   identity.ID
	index    int
	name     string
	Style    LineStyle
	Levels   []LineSet
	disposed bool
}

// NewEdgeView constructs an edge view. The name is the kernel's stable
// edge name; the index is the edge's position in the parent's canonical
// edge order and drives identity derivation.
func NewEdgeView(parent identity.ID, index int, name string, style LineStyle, levels []LineSet) *EdgeView {
	return &EdgeView{parent: parent, index: index, name: name, Style: style, Levels: levels}
}

func (e *EdgeView) ParentID() identity.ID  { return e.parent }
func (e *EdgeView) SubKind() identity.Kind { return identity.KindEdge }
func (e *EdgeView) LocalIndex() int        { return e.index }

// StableName is the kernel-side name used to re-resolve the edge handle.
func (e *EdgeView) StableName() string { return e.name }

func (e *EdgeView) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.Levels = nil
}

// SolidView renders a solid as an edge set plus a face set, combined per
// level. Faces and edges are addressable sub-entities; MaxDistances holds
// the per-level distance thresholds shared by all of them.
type SolidView struct {
	id           identity.ID
	MaxDistances []float64
	Faces        []*FaceView
	Edges        []*EdgeView
	Closed       bool
	disposed     bool
}

// NewSolidView constructs a solid view from its sub-entity views.
func NewSolidView(id identity.ID, maxDistances []float64, faces []*FaceView, edges []*EdgeView, closed bool) *SolidView {
	return &SolidView{id: id, MaxDistances: maxDistances, Faces: faces, Edges: edges, Closed: closed}
}

func (v *SolidView) Kind() Kind      { return KindSolid }
func (v *SolidView) ID() identity.ID { return v.id }
func (v *SolidView) LevelCount() int { return len(v.MaxDistances) }

func (v *SolidView) LevelFor(distance float64) int {
	return levelFor(v.MaxDistances, distance)
}

// SubEntities returns every face and edge view, faces first.
func (v *SolidView) SubEntities() []SubEntity {
	subs := make([]SubEntity, 0, len(v.Faces)+len(v.Edges))
	for _, f := range v.Faces {
		subs = append(subs, f)
	}
	for _, e := range v.Edges {
		subs = append(subs, e)
	}
	return subs
}

func (v *SolidView) Bounds() (min, max [3]float32) {
	min, max = emptyBounds()
	for _, f := range v.Faces {
		if len(f.Levels) > 0 {
			growBounds(&min, &max, f.Levels[0].Vertices)
		}
	}
	for _, e := range v.Edges {
		if len(e.Levels) > 0 {
			for _, p := range e.Levels[0].Polylines {
				growBounds(&min, &max, p.Points)
			}
		}
	}
	return min, max
}

// Dispose releases the solid's sub-entity buffers.
func (v *SolidView) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	for _, f := range v.Faces {
		f.Dispose()
	}
	for _, e := range v.Edges {
		e.Dispose()
	}
}
