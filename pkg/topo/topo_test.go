package topo_test

import (
	"errors"
	"testing"

	"github.com/chazu/armature/pkg/identity"
	"github.com/chazu/armature/pkg/kernel/kerneltest"
	"github.com/chazu/armature/pkg/render"
	"github.com/chazu/armature/pkg/topo"
)

// makeSubs builds face and edge views for a parent the way the mesh
// builder would: faces by index, edges by canonical name order.
func makeSubs(parent identity.ID, faces, edges int) []render.SubEntity {
	var subs []render.SubEntity
	for i := 0; i < faces; i++ {
		subs = append(subs, render.NewFaceView(parent, i, false, nil))
	}
	for i := 0; i < edges; i++ {
		subs = append(subs, render.NewEdgeView(parent, i, kerneltest.EdgeName(i), render.LineSolid, nil))
	}
	return subs
}

func mustSubID(t *testing.T, parent identity.ID, kind identity.Kind, index int) identity.SubID {
	t.Helper()
	id, err := identity.EncodeSub(parent, kind, index)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestRecordAndLookup(t *testing.T) {
	x := topo.NewIndex()
	solid := kerneltest.NewSolid(2, 4)

	for _, sub := range makeSubs(9, 2, 4) {
		if err := x.Record(solid, sub); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if x.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", x.Len())
	}

	rec, err := x.Lookup(mustSubID(t, 9, identity.KindFace, 1))
	if err != nil {
		t.Fatalf("Lookup(face 1) error = %v", err)
	}
	if rec.Handle == nil {
		t.Error("record has no kernel handle")
	}
	if len(rec.Views) != 1 {
		t.Errorf("record views = %d, want 1", len(rec.Views))
	}
}

func TestLookupNotFound(t *testing.T) {
	x := topo.NewIndex()
	_, err := x.Lookup(mustSubID(t, 1, identity.KindEdge, 0))
	if !errors.Is(err, topo.ErrNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrNotFound", err)
	}
}

func TestRecordSecondViewSharesRecord(t *testing.T) {
	x := topo.NewIndex()
	solid := kerneltest.NewSolid(1, 0)

	// Permanent and temporary mesh of the same face.
	a := render.NewFaceView(4, 0, false, nil)
	b := render.NewFaceView(4, 0, false, nil)
	if err := x.Record(solid, a); err != nil {
		t.Fatal(err)
	}
	if err := x.Record(solid, b); err != nil {
		t.Fatal(err)
	}
	if x.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 shared record", x.Len())
	}
	rec, err := x.Lookup(mustSubID(t, 4, identity.KindFace, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Views) != 2 {
		t.Errorf("record views = %d, want 2", len(rec.Views))
	}

	// Re-recording the same view is a no-op on the set.
	if err := x.Record(solid, a); err != nil {
		t.Fatal(err)
	}
	rec, _ = x.Lookup(mustSubID(t, 4, identity.KindFace, 0))
	if len(rec.Views) != 2 {
		t.Errorf("record views after duplicate = %d, want 2", len(rec.Views))
	}
}

func TestRecordUnresolvableHandle(t *testing.T) {
	x := topo.NewIndex()
	solid := kerneltest.NewSolid(1, 0)

	// Face index 5 does not exist on a 1-face solid.
	bad := render.NewFaceView(2, 5, false, nil)
	if err := x.Record(solid, bad); err == nil {
		t.Fatal("Record() with unresolvable face index should fail")
	}
	if x.Len() != 0 {
		t.Errorf("failed Record left %d records", x.Len())
	}
}

func TestRemoveAllFor(t *testing.T) {
	x := topo.NewIndex()
	solidA := kerneltest.NewSolid(2, 2)
	solidB := kerneltest.NewSolid(2, 2)

	for _, sub := range makeSubs(1, 2, 2) {
		if err := x.Record(solidA, sub); err != nil {
			t.Fatal(err)
		}
	}
	for _, sub := range makeSubs(2, 2, 2) {
		if err := x.Record(solidB, sub); err != nil {
			t.Fatal(err)
		}
	}

	recA, err := x.Lookup(mustSubID(t, 1, identity.KindFace, 0))
	if err != nil {
		t.Fatal(err)
	}
	handleA := recA.Handle.(*kerneltest.Handle)

	x.RemoveAllFor(1)
	if x.Len() != 4 {
		t.Fatalf("Len() after RemoveAllFor = %d, want 4", x.Len())
	}
	if _, err := x.Lookup(mustSubID(t, 1, identity.KindEdge, 1)); !errors.Is(err, topo.ErrNotFound) {
		t.Errorf("parent 1 records should be gone, got %v", err)
	}
	if _, err := x.Lookup(mustSubID(t, 2, identity.KindFace, 0)); err != nil {
		t.Errorf("parent 2 records should survive, got %v", err)
	}
	if handleA.Released() != 1 {
		t.Errorf("removed handle released %d times, want 1", handleA.Released())
	}
}

func TestCloneIsolation(t *testing.T) {
	x := topo.NewIndex()
	solid := kerneltest.NewSolid(2, 0)
	for _, sub := range makeSubs(3, 2, 0) {
		if err := x.Record(solid, sub); err != nil {
			t.Fatal(err)
		}
	}

	clone := x.Clone()
	x.RemoveAllFor(3)

	if x.Len() != 0 {
		t.Fatalf("index Len() = %d, want 0", x.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("clone Len() = %d, want 2 after mutating the original", clone.Len())
	}
	if _, err := clone.Lookup(mustSubID(t, 3, identity.KindFace, 1)); err != nil {
		t.Errorf("clone lost a record: %v", err)
	}
}
