package kernel

import "testing"

// --- MeshResult helper method tests ---

func TestFaceBufferVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FaceBuffer{Vertices: tt.vertices}
			if got := f.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFaceBufferTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FaceBuffer{Indices: tt.indices}
			if got := f.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEdgePolylinePointCount(t *testing.T) {
	e := &EdgePolyline{Points: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0}}
	if got := e.PointCount(); got != 3 {
		t.Errorf("PointCount() = %d, want 3", got)
	}
}

func TestMeshResultIsEmpty(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		m := &MeshResult{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty result, want true")
		}
	})
	t.Run("edges only", func(t *testing.T) {
		m := &MeshResult{Edges: []EdgePolyline{{Points: []float32{0, 0, 0, 1, 1, 1}}}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for result with edges, want false")
		}
	})
	t.Run("faces only", func(t *testing.T) {
		m := &MeshResult{Faces: []FaceBuffer{{Vertices: []float32{0, 0, 0}}}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for result with faces, want false")
		}
	})
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindCurve, "curve"},
		{KindRegion, "region"},
		{KindSolid, "solid"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
