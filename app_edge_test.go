package main

import (
	"errors"
	"testing"

	"github.com/chazu/armature/pkg/scene"
)

// ---------------------------------------------------------------------------
// Binding edge cases: operations on empty stores, unknown identities,
// exhausted undo/redo stacks and stale preview keys.
// ---------------------------------------------------------------------------

func TestRemoveUnknownItem(t *testing.T) {
	app := newTestApp()
	if err := app.RemoveItem(999); !errors.Is(err, scene.ErrNotFound) {
		t.Fatalf("RemoveItem(999) = %v, want scene.ErrNotFound", err)
	}
}

func TestHideUnknownItem(t *testing.T) {
	app := newTestApp()
	if err := app.HideItem(999); !errors.Is(err, scene.ErrNotFound) {
		t.Fatalf("HideItem(999) = %v, want scene.ErrNotFound", err)
	}
}

func TestUndoEmptyStack(t *testing.T) {
	app := newTestApp()
	if err := app.Undo(); !errors.Is(err, errNoUndo) {
		t.Fatalf("Undo() on empty stack = %v, want errNoUndo", err)
	}
}

func TestRedoWithoutUndo(t *testing.T) {
	app := newTestApp()
	if _, err := app.AddBox(1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := app.Redo(); !errors.Is(err, errNoRedo) {
		t.Fatalf("Redo() without undo = %v, want errNoRedo", err)
	}
}

func TestNewEditInvalidatesRedo(t *testing.T) {
	app := newTestApp()
	if _, err := app.AddBox(1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := app.Undo(); err != nil {
		t.Fatal(err)
	}
	// A fresh edit discards the redo history.
	if _, err := app.AddCylinder(2, 1); err != nil {
		t.Fatal(err)
	}
	if err := app.Redo(); !errors.Is(err, errNoRedo) {
		t.Fatalf("Redo() after new edit = %v, want errNoRedo", err)
	}
}

func TestCommitUnknownPreview(t *testing.T) {
	app := newTestApp()
	if _, err := app.CommitPreview(42); !errors.Is(err, errNoPreview) {
		t.Fatalf("CommitPreview(42) = %v, want errNoPreview", err)
	}
}

func TestCancelPreviewTwice(t *testing.T) {
	app := newTestApp()
	key := app.PreviewBox(1, 1, 1)
	if err := app.CancelPreview(key); err != nil {
		t.Fatal(err)
	}
	// The key is consumed on first use.
	if err := app.CancelPreview(key); !errors.Is(err, errNoPreview) {
		t.Fatalf("second CancelPreview = %v, want errNoPreview", err)
	}
}

func TestDecodeUnknownSubEntity(t *testing.T) {
	app := newTestApp()
	if _, err := app.DecodeSubEntity(12345); err == nil {
		t.Fatal("DecodeSubEntity of unrecorded identity should fail")
	}
}
