// Package kerneltest provides a scriptable in-memory kernel for tests.
// Items declare how many faces/edges they have and how tessellation should
// behave; the fake produces small synthetic buffers with stable face
// indices and edge names so topology bookkeeping can be exercised without
// a real geometry backend.
package kerneltest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chazu/armature/pkg/kernel"
)

// Item is a scriptable kernel item.
type Item struct {
	ItemKind  kernel.Kind
	FaceCount int // solids: number of faces
	EdgeCount int // solids: number of edges; curves: number of polylines
	Open      bool
	TessErr   error // returned from Tessellate when set

	// RegionBuffers overrides the number of face buffers a region
	// tessellation returns. Zero means the normal single buffer; >1
	// simulates a kernel cardinality violation.
	RegionBuffers int

	// Gate, when non-nil, blocks Tessellate until the channel is closed.
	// Used to exercise cancellation of in-flight preview builds.
	Gate <-chan struct{}

	released atomic.Int32
}

// Kind implements kernel.Item.
func (i *Item) Kind() kernel.Kind { return i.ItemKind }

// BoundingBox implements kernel.Item with a fixed unit box.
func (i *Item) BoundingBox() (min, max [3]float64) {
	return [3]float64{0, 0, 0}, [3]float64{1, 1, 1}
}

// Release implements kernel.Item and counts invocations.
func (i *Item) Release() { i.released.Add(1) }

// Released returns how many times Release was called.
func (i *Item) Released() int { return int(i.released.Load()) }

// Closed implements kernel.Solid.
func (i *Item) Closed() bool { return !i.Open }

// FindFaceByIndex implements kernel.Solid.
func (i *Item) FindFaceByIndex(index int) (kernel.TopologyHandle, error) {
	if index < 0 || index >= i.FaceCount {
		return nil, fmt.Errorf("%w: face %d of %d", kernel.ErrTopologyChanged, index, i.FaceCount)
	}
	return &Handle{Name: fmt.Sprintf("f%d", index)}, nil
}

// FindEdgeByStableName implements kernel.Solid.
func (i *Item) FindEdgeByStableName(name string) (kernel.TopologyHandle, error) {
	for e := 0; e < i.EdgeCount; e++ {
		if name == EdgeName(e) {
			return &Handle{Name: name}, nil
		}
	}
	return nil, fmt.Errorf("%w: edge %q", kernel.ErrTopologyChanged, name)
}

// EdgeName returns the stable name the fake assigns to edge e.
func EdgeName(e int) string { return fmt.Sprintf("e%d", e) }

// Handle is a fake topology handle.
type Handle struct {
	Name     string
	released atomic.Int32
}

// Release implements kernel.TopologyHandle.
func (h *Handle) Release() { h.released.Add(1) }

// Released returns how many times Release was called.
func (h *Handle) Released() int { return int(h.released.Load()) }

// Fake implements kernel.Kernel. The zero value is ready to use.
type Fake struct {
	mu         sync.Mutex
	precisions []float64 // precision of every Tessellate call, in order
}

var _ kernel.Kernel = (*Fake)(nil)

// NewSolid returns a scriptable solid with the given topology.
func NewSolid(faces, edges int) *Item {
	return &Item{ItemKind: kernel.KindSolid, FaceCount: faces, EdgeCount: edges}
}

// NewCurve returns a scriptable curve with the given number of polylines.
func NewCurve(polylines int) *Item {
	return &Item{ItemKind: kernel.KindCurve, EdgeCount: polylines}
}

// NewRegion returns a scriptable planar region.
func NewRegion() *Item {
	return &Item{ItemKind: kernel.KindRegion}
}

func (f *Fake) Box(x, y, z float64) kernel.Solid              { return NewSolid(6, 12) }
func (f *Fake) Cylinder(h, r float64) kernel.Solid            { return NewSolid(3, 2) }
func (f *Fake) Polyline(p [][3]float64) kernel.Item           { return NewCurve(1) }
func (f *Fake) Arc(c [3]float64, r, s, e float64) kernel.Item { return NewCurve(1) }
func (f *Fake) Region(p [][3]float64) kernel.Item             { return NewRegion() }

func (f *Fake) Union(a, b kernel.Solid) kernel.Solid        { return a }
func (f *Fake) Difference(a, b kernel.Solid) kernel.Solid   { return a }
func (f *Fake) Intersection(a, b kernel.Solid) kernel.Solid { return a }

func (f *Fake) Translate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }
func (f *Fake) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid    { return s }

// Precisions returns the precision of every Tessellate call so far.
func (f *Fake) Precisions() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.precisions...)
}

// Tessellate implements kernel.Kernel with synthetic geometry: one
// triangle per face, one two-point polyline per edge. Odd-numbered solid
// edges are marked as silhouettes.
func (f *Fake) Tessellate(item kernel.Item, precision float64) (*kernel.MeshResult, error) {
	it, ok := item.(*Item)
	if !ok {
		return nil, fmt.Errorf("kerneltest: foreign item %T", item)
	}
	if it.Gate != nil {
		<-it.Gate
	}
	f.mu.Lock()
	f.precisions = append(f.precisions, precision)
	f.mu.Unlock()

	if it.TessErr != nil {
		return nil, it.TessErr
	}

	switch it.ItemKind {
	case kernel.KindCurve:
		res := &kernel.MeshResult{}
		for e := 0; e < it.EdgeCount; e++ {
			res.Edges = append(res.Edges, kernel.EdgePolyline{
				Points: []float32{0, 0, float32(e), 1, 1, float32(e)},
			})
		}
		return res, nil

	case kernel.KindRegion:
		n := it.RegionBuffers
		if n == 0 {
			n = 1
		}
		res := &kernel.MeshResult{}
		for b := 0; b < n; b++ {
			res.Faces = append(res.Faces, triangle(-1))
		}
		return res, nil

	case kernel.KindSolid:
		res := &kernel.MeshResult{Closed: !it.Open}
		for fi := 0; fi < it.FaceCount; fi++ {
			res.Faces = append(res.Faces, triangle(fi))
		}
		for e := 0; e < it.EdgeCount; e++ {
			res.Edges = append(res.Edges, kernel.EdgePolyline{
				Name:       EdgeName(e),
				Points:     []float32{0, 0, float32(e), 1, 0, float32(e)},
				Silhouette: e%2 == 1,
			})
		}
		return res, nil

	default:
		return nil, fmt.Errorf("kerneltest: unknown kind %v", it.ItemKind)
	}
}

func triangle(faceIndex int) kernel.FaceBuffer {
	return kernel.FaceBuffer{
		FaceIndex: faceIndex,
		Vertices:  []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
}
