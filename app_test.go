package main

import (
	"testing"

	"github.com/chazu/armature/pkg/kernel/kerneltest"
)

// newTestApp returns an App backed by the fake kernel. Tests exercise the
// same binding paths the frontend calls, but without the Wails runtime.
func newTestApp() *App {
	return newApp(&kerneltest.Fake{})
}

func TestAddAndListVisible(t *testing.T) {
	app := newTestApp()

	box, err := app.AddBox(100, 50, 25)
	if err != nil {
		t.Fatalf("AddBox failed: %v", err)
	}
	if box.Kind != "solid" {
		t.Errorf("box kind = %q, want solid", box.Kind)
	}
	if box.Faces == 0 || box.Edges == 0 {
		t.Errorf("box has %d faces, %d edges, want topology", box.Faces, box.Edges)
	}

	curve, err := app.AddPolyline([][3]float64{{0, 0, 0}, {10, 0, 0}})
	if err != nil {
		t.Fatalf("AddPolyline failed: %v", err)
	}
	if curve.Kind != "curve" {
		t.Errorf("curve kind = %q, want curve", curve.Kind)
	}
	if curve.ID == box.ID {
		t.Error("items share an identity")
	}

	items := app.ListVisible()
	if len(items) != 2 {
		t.Fatalf("visible items = %d, want 2", len(items))
	}
}

func TestHideUnhideBinding(t *testing.T) {
	app := newTestApp()
	box, err := app.AddBox(10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := app.HideItem(box.ID); err != nil {
		t.Fatalf("HideItem failed: %v", err)
	}
	if got := len(app.ListVisible()); got != 0 {
		t.Fatalf("visible after hide = %d, want 0", got)
	}
	if err := app.UnhideItem(box.ID); err != nil {
		t.Fatalf("UnhideItem failed: %v", err)
	}
	if got := len(app.ListVisible()); got != 1 {
		t.Fatalf("visible after unhide = %d, want 1", got)
	}
}

func TestUndoRedo(t *testing.T) {
	app := newTestApp()

	if _, err := app.AddBox(10, 10, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := app.AddCylinder(20, 5); err != nil {
		t.Fatal(err)
	}
	if got := len(app.ListVisible()); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}

	if err := app.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := len(app.ListVisible()); got != 1 {
		t.Fatalf("visible after undo = %d, want 1", got)
	}

	if err := app.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got := len(app.ListVisible()); got != 2 {
		t.Fatalf("visible after redo = %d, want 2", got)
	}
}

func TestUndoRemove(t *testing.T) {
	app := newTestApp()
	box, err := app.AddBox(10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := app.RemoveItem(box.ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if got := len(app.ListVisible()); got != 0 {
		t.Fatalf("visible after remove = %d, want 0", got)
	}
	if err := app.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	items := app.ListVisible()
	if len(items) != 1 || items[0].ID != box.ID {
		t.Fatalf("visible after undo = %v, want the removed box back", items)
	}
}

func TestPreviewCommitBinding(t *testing.T) {
	app := newTestApp()

	key := app.PreviewBox(10, 10, 10)
	item, err := app.CommitPreview(key)
	if err != nil {
		t.Fatalf("CommitPreview failed: %v", err)
	}
	if item.Kind != "solid" {
		t.Errorf("committed kind = %q, want solid", item.Kind)
	}
	items := app.ListVisible()
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("visible after commit = %v", items)
	}
}

func TestPreviewCancelBinding(t *testing.T) {
	app := newTestApp()

	key := app.PreviewBox(10, 10, 10)
	if err := app.CancelPreview(key); err != nil {
		t.Fatalf("CancelPreview failed: %v", err)
	}
	if got := len(app.ListVisible()); got != 0 {
		t.Fatalf("visible after cancel = %d, want 0", got)
	}
}

func TestDecodeSubEntity(t *testing.T) {
	app := newTestApp()
	box, err := app.AddBox(10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}

	// Face 0 of the box, packed the way the picking layer would hand
	// it back: parent<<16 | faceFlag<<15 | index.
	packed := box.ID<<16 | 1<<15
	sub, err := app.DecodeSubEntity(packed)
	if err != nil {
		t.Fatalf("DecodeSubEntity failed: %v", err)
	}
	if sub.ParentID != box.ID || sub.Kind != "face" || sub.Index != 0 {
		t.Errorf("decoded = %+v, want parent %d face 0", sub, box.ID)
	}
}
