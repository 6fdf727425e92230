package kernel

// MeshResult is the tessellation output for one item at one precision.
// Curves fill Edges only. Regions fill exactly one entry of Faces, with
// FaceIndex left at -1 (untagged). Solids fill both Edges and Faces plus
// the Closed flag.
type MeshResult struct {
	Edges  []EdgePolyline
	Faces  []FaceBuffer
	Closed bool
}

// EdgePolyline is one tessellated edge. Points are flat: 3 floats per
// point (x,y,z). Name is the kernel's stable edge name for solids, empty
// for curves. Silhouette marks edges that are only outline-visible and
// should render dashed.
type EdgePolyline struct {
	Name       string
	Points     []float32
	Silhouette bool
}

// PointCount returns the number of points in the polyline.
func (e *EdgePolyline) PointCount() int {
	return len(e.Points) / 3
}

// FaceBuffer is one tessellated face. All arrays are flat: vertices has
// 3 floats per vertex, normals has 3 floats per vertex, indices has
// 3 uint32s per triangle. FaceIndex is the kernel's stable local face
// index for solids, or -1 for a lone region.
type FaceBuffer struct {
	FaceIndex int
	Vertices  []float32
	Normals   []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (f *FaceBuffer) VertexCount() int {
	return len(f.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (f *FaceBuffer) TriangleCount() int {
	return len(f.Indices) / 3
}

// IsEmpty returns true if the result has no geometry.
func (m *MeshResult) IsEmpty() bool {
	return len(m.Edges) == 0 && len(m.Faces) == 0
}
