package main

import (
	"context"
	"errors"
	"log"
	"sync"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/armature/pkg/identity"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/kernel/sdfx"
	"github.com/chazu/armature/pkg/render"
	"github.com/chazu/armature/pkg/scene"
)

var (
	errNoUndo    = errors.New("nothing to undo")
	errNoRedo    = errors.New("nothing to redo")
	errNoPreview = errors.New("unknown preview key")
)

// App is the Wails backend. It exposes store operations to the frontend
// via bindings and forwards store notifications as runtime events.
type App struct {
	ctx    context.Context
	kernel kernel.Kernel
	store  *scene.Store

	mu          sync.Mutex
	undo        []*scene.Memento
	redo        []*scene.Memento
	previews    map[int]*scene.Temporary
	nextPreview int
}

// ItemData is the JSON-serializable item summary sent to the frontend.
type ItemData struct {
	ID      int64  `json:"id"`
	Kind    string `json:"kind"`
	Faces   int    `json:"faces"`
	Edges   int    `json:"edges"`
	Visible bool   `json:"visible"`
}

// SubEntityData describes a decoded sub-entity identity for the picking
// layer.
type SubEntityData struct {
	ParentID int64  `json:"parentId"`
	Kind     string `json:"kind"`
	Index    int    `json:"index"`
}

// NewApp creates a new App with a store backed by the sdfx kernel.
func NewApp() *App {
	return newApp(sdfx.New())
}

func newApp(k kernel.Kernel) *App {
	a := &App{
		kernel:   k,
		store:    scene.New(k),
		previews: make(map[int]*scene.Temporary),
	}
	a.store.AddListener(&uiNotifier{app: a})
	return a
}

// startup is called by Wails on app startup. The context is saved so
// store notifications can be forwarded as runtime events.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// uiNotifier forwards store notifications to the frontend.
type uiNotifier struct {
	app *App
}

func (n *uiNotifier) ItemAdded(v render.View) {
	n.emit("scene:item-added", n.app.itemData(v))
}

func (n *uiNotifier) ItemRemoved(v render.View) {
	n.emit("scene:item-removed", int64(v.ID()))
}

func (n *uiNotifier) SceneChanged() {
	n.emit("scene:changed", nil)
}

func (n *uiNotifier) emit(name string, data interface{}) {
	// Nil before startup (and in tests, which run without the Wails
	// runtime).
	if n.app.ctx == nil {
		return
	}
	wailsruntime.EventsEmit(n.app.ctx, name, data)
}

func (a *App) itemData(v render.View) ItemData {
	d := ItemData{ID: int64(v.ID()), Kind: v.Kind().String(), Visible: true}
	if sv, ok := v.(*render.SolidView); ok {
		d.Faces = len(sv.Faces)
		d.Edges = len(sv.Edges)
	}
	for _, vis := range a.store.VisibleItems() {
		if vis.ID() == v.ID() {
			return d
		}
	}
	d.Visible = false
	return d
}

// checkpoint snapshots the store for undo and invalidates the redo stack.
func (a *App) checkpoint() {
	a.mu.Lock()
	a.undo = append(a.undo, a.store.Snapshot())
	a.redo = nil
	a.mu.Unlock()
}

func (a *App) addItem(item kernel.Item) (ItemData, error) {
	a.checkpoint()
	view, err := a.store.AddItem(item)
	if err != nil {
		log.Printf("AddItem error: %v", err)
		return ItemData{}, err
	}
	return a.itemData(view), nil
}

// AddBox adds a box solid with its minimum corner at the origin.
func (a *App) AddBox(x, y, z float64) (ItemData, error) {
	return a.addItem(a.kernel.Box(x, y, z))
}

// AddCylinder adds a cylinder solid with its base at z=0.
func (a *App) AddCylinder(height, radius float64) (ItemData, error) {
	return a.addItem(a.kernel.Cylinder(height, radius))
}

// AddPolyline adds a curve through the given points.
func (a *App) AddPolyline(points [][3]float64) (ItemData, error) {
	return a.addItem(a.kernel.Polyline(points))
}

// AddArc adds a circular arc curve in the XY plane. Angles in degrees.
func (a *App) AddArc(center [3]float64, radius, startDeg, endDeg float64) (ItemData, error) {
	return a.addItem(a.kernel.Arc(center, radius, startDeg, endDeg))
}

// AddRegion adds a planar filled region from a convex outline.
func (a *App) AddRegion(points [][3]float64) (ItemData, error) {
	return a.addItem(a.kernel.Region(points))
}

// RemoveItem removes the item with the given identity.
func (a *App) RemoveItem(id int64) error {
	rec, err := a.store.Lookup(identity.ID(id))
	if err != nil {
		return err
	}
	a.checkpoint()
	if err := a.store.RemoveItem(rec.View); err != nil {
		log.Printf("RemoveItem error: %v", err)
		return err
	}
	return nil
}

// HideItem excludes the item from the visible projection.
func (a *App) HideItem(id int64) error {
	rec, err := a.store.Lookup(identity.ID(id))
	if err != nil {
		return err
	}
	a.checkpoint()
	return a.store.Hide(rec.View)
}

// UnhideItem returns the item to the visible projection.
func (a *App) UnhideItem(id int64) error {
	rec, err := a.store.Lookup(identity.ID(id))
	if err != nil {
		return err
	}
	a.checkpoint()
	return a.store.Unhide(rec.View)
}

// ListVisible returns summaries of the items currently visible.
func (a *App) ListVisible() []ItemData {
	views := a.store.VisibleItems()
	out := make([]ItemData, 0, len(views))
	for _, v := range views {
		out = append(out, a.itemData(v))
	}
	return out
}

// DecodeSubEntity decodes a packed sub-entity identity coming back from
// the picking layer and verifies it is known to the topology index.
func (a *App) DecodeSubEntity(packed int64) (SubEntityData, error) {
	sub := identity.SubID(packed)
	if _, err := a.store.LookupTopology(sub); err != nil {
		return SubEntityData{}, err
	}
	parent, kind, index := identity.DecodeSub(sub)
	return SubEntityData{ParentID: int64(parent), Kind: kind.String(), Index: index}, nil
}

// PreviewBox starts an interactive box preview and returns a preview key
// for CommitPreview/CancelPreview.
func (a *App) PreviewBox(x, y, z float64) int {
	tmp := a.store.AddTemporary(a.kernel.Box(x, y, z))
	a.mu.Lock()
	a.nextPreview++
	key := a.nextPreview
	a.previews[key] = tmp
	a.mu.Unlock()
	return key
}

// CommitPreview promotes a preview into a real item.
func (a *App) CommitPreview(key int) (ItemData, error) {
	tmp, err := a.takePreview(key)
	if err != nil {
		return ItemData{}, err
	}
	a.checkpoint()
	view, err := tmp.Commit()
	if err != nil {
		log.Printf("CommitPreview error: %v", err)
		return ItemData{}, err
	}
	return a.itemData(view), nil
}

// CancelPreview discards a preview.
func (a *App) CancelPreview(key int) error {
	tmp, err := a.takePreview(key)
	if err != nil {
		return err
	}
	tmp.Cancel()
	return nil
}

func (a *App) takePreview(key int) (*scene.Temporary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tmp, ok := a.previews[key]
	if !ok {
		return nil, errNoPreview
	}
	delete(a.previews, key)
	return tmp, nil
}

// Undo restores the store to the state before the last mutating binding.
func (a *App) Undo() error {
	a.mu.Lock()
	if len(a.undo) == 0 {
		a.mu.Unlock()
		return errNoUndo
	}
	m := a.undo[len(a.undo)-1]
	a.undo = a.undo[:len(a.undo)-1]
	a.redo = append(a.redo, a.store.Snapshot())
	a.mu.Unlock()

	a.store.Restore(m)
	return nil
}

// Redo reverses the last Undo.
func (a *App) Redo() error {
	a.mu.Lock()
	if len(a.redo) == 0 {
		a.mu.Unlock()
		return errNoRedo
	}
	m := a.redo[len(a.redo)-1]
	a.redo = a.redo[:len(a.redo)-1]
	a.undo = append(a.undo, a.store.Snapshot())
	a.mu.Unlock()

	a.store.Restore(m)
	return nil
}
