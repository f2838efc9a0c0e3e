package ui

import (
	"image"
	"image/color"
	"time"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/canvas"
	"github.com/slatecanvas/slate/pkg/geom"
	"github.com/slatecanvas/slate/pkg/history"
	"github.com/slatecanvas/slate/pkg/interaction"
)

type gestureMode int

const (
	modeNone gestureMode = iota
	modeDrag
	modeMultiDrag
	modeResize
	modePan
)

const handleHitRadius = 6.0

// CanvasView renders the infinite canvas and feeds pointer input to the
// viewport, selection, drag, and resize engines. All of its state is
// confined to the Gio event loop.
type CanvasView struct {
	state *AppState
	store *board.Store
	hist  *history.History

	viewport *canvas.Controller
	sel      *interaction.Selection
	drag     *interaction.Drag
	multi    *interaction.MultiDrag
	resize   *interaction.Resize

	mode    gestureMode
	lastPan f32.Point

	editingID string
	editor    widget.Editor

	images *imageCache
}

// NewCanvasView wires the interaction engines to the shared store and
// history. Overlays reconcile on every store notification.
func NewCanvasView(state *AppState, store *board.Store, hist *history.History, images *imageCache) *CanvasView {
	cv := &CanvasView{
		state:    state,
		store:    store,
		hist:     hist,
		viewport: canvas.NewController(),
		sel:      interaction.NewSelection(),
		drag:     interaction.NewDrag(),
		multi:    interaction.NewMultiDrag(),
		resize:   interaction.NewResize(),
		images:   images,
	}
	cv.editor.SingleLine = false
	store.Subscribe(func() {
		cv.drag.Overlay().Reconcile(store)
		cv.multi.Overlay().Reconcile(store)
		cv.resize.Overlay().Reconcile(store)
	})
	return cv
}

// Viewport exposes the pan/zoom controller for persistence.
func (cv *CanvasView) Viewport() *canvas.Controller {
	return cv.viewport
}

// Selection exposes the selection controller for toolbar actions.
func (cv *CanvasView) Selection() *interaction.Selection {
	return cv.sel
}

// Layout handles input and draws one frame of the canvas.
func (cv *CanvasView) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	cv.handleKeys(gtx)
	cv.handlePointer(gtx)

	// One state transition per frame, no matter how many inputs arrived.
	cv.viewport.Flush()
	cv.drag.Flush()
	cv.multi.Flush()
	cv.resize.Flush()

	area := clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops)
	defer area.Pop()
	event.Op(gtx.Ops, cv)

	bg := color.NRGBA{R: 250, G: 250, B: 248, A: 255}
	if cv.state.Snapshot().DarkMode {
		bg = color.NRGBA{R: 30, G: 32, B: 38, A: 255}
	}
	paint.FillShape(gtx.Ops, bg, clip.Rect{Max: gtx.Constraints.Max}.Op())

	offset := cv.viewport.Offset()
	zoom := cv.viewport.Zoom()
	tr := op.Affine(f32.Affine2D{}.
		Scale(f32.Point{}, f32.Pt(float32(zoom), float32(zoom))).
		Offset(f32.Pt(float32(offset.X), float32(offset.Y)))).Push(gtx.Ops)

	for _, b := range cv.store.All() {
		cv.drawBlock(gtx, th, b)
	}
	tr.Pop()

	if id, ok := cv.singleSelection(); ok {
		if b, ok := cv.store.Get(id); ok {
			cv.drawHandles(gtx, cv.liveBounds(b))
		}
	}
	return layout.Dimensions{Size: gtx.Constraints.Max}
}

func (cv *CanvasView) handleKeys(gtx layout.Context) {
	filters := []event.Filter{
		key.Filter{Name: "Z", Required: key.ModShortcut, Optional: key.ModShift},
		key.Filter{Name: "Y", Required: key.ModShortcut},
		key.Filter{Name: key.NameDeleteBackward},
		key.Filter{Name: key.NameDeleteForward},
		key.Filter{Name: key.NameEscape},
	}
	for {
		ev, ok := gtx.Event(filters...)
		if !ok {
			break
		}
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}
		switch {
		case e.Name == "Z" && e.Modifiers.Contain(key.ModShortcut) && e.Modifiers.Contain(key.ModShift):
			cv.redo()
		case e.Name == "Z" && e.Modifiers.Contain(key.ModShortcut):
			cv.undo()
		case e.Name == "Y" && e.Modifiers.Contain(key.ModShortcut):
			cv.redo()
		case e.Name == key.NameDeleteBackward || e.Name == key.NameDeleteForward:
			if cv.editingID == "" {
				cv.deleteSelection()
			}
		case e.Name == key.NameEscape:
			cv.stopEditing()
			cv.sel.Clear()
		}
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (cv *CanvasView) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: cv,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollX: pointer.ScrollRange{Min: -1000, Max: 1000},
			ScrollY: pointer.ScrollRange{Min: -1000, Max: 1000},
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Scroll:
			cv.viewport.ApplyWheel(
				geom.Pt(float64(e.Position.X), float64(e.Position.Y)),
				float64(e.Scroll.X), float64(e.Scroll.Y),
				e.Modifiers.Contain(key.ModShortcut))
		case pointer.Press:
			cv.onPress(e)
		case pointer.Drag:
			cv.onDrag(e)
		case pointer.Release:
			cv.onRelease(e)
		case pointer.Cancel:
			cv.onCancel()
		}
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (cv *CanvasView) pointerFor(e pointer.Event) interaction.Pointer {
	world := canvas.ScreenToWorld(float64(e.Position.X), float64(e.Position.Y),
		cv.viewport.Offset(), cv.viewport.Zoom())
	var btns interaction.Buttons
	if e.Buttons.Contain(pointer.ButtonPrimary) {
		btns |= interaction.ButtonPrimary
	}
	if e.Buttons.Contain(pointer.ButtonSecondary) {
		btns |= interaction.ButtonSecondary
	}
	if e.Buttons.Contain(pointer.ButtonTertiary) {
		btns |= interaction.ButtonTertiary
	}
	touches := 0
	if e.Source == pointer.Touch {
		touches = 1
	}
	return interaction.Pointer{World: world, Buttons: btns, Touches: touches}
}

func (cv *CanvasView) onPress(e pointer.Event) {
	if e.Buttons.Contain(pointer.ButtonTertiary) {
		cv.mode = modePan
		cv.lastPan = e.Position
		return
	}
	if !e.Buttons.Contain(pointer.ButtonPrimary) {
		return
	}
	p := cv.pointerFor(e)
	cv.stopEditing()

	// Resize handles first: they extend past the block rect.
	if id, ok := cv.singleSelection(); ok {
		if b, ok := cv.store.Get(id); ok {
			if h, hit := cv.handleAt(e.Position, cv.liveBounds(b)); hit {
				opts := interaction.ResizeOptions{}
				switch {
				case b.Type == board.BlockImage && b.AspectRatio > 0:
					opts.MaintainAspect = true
					opts.AspectRatio = b.AspectRatio
				case b.Type == board.BlockText:
					// Text blocks reflow; width is the only free axis.
					opts.HorizontalOnly = true
				}
				if cv.resize.Begin(p, b, h, opts) {
					cv.mode = modeResize
				}
				return
			}
		}
	}

	additive := e.Modifiers.Contain(key.ModShift)
	if b, ok := cv.blockAt(p.World); ok {
		wasSelected := cv.sel.OnPress(b.ID, additive)
		if wasSelected && cv.sel.Count() > 1 {
			if cv.multi.Begin(p, cv.store.GetMany(cv.sel.IDs())) {
				cv.mode = modeMultiDrag
			}
		} else if cv.sel.IsSelected(b.ID) {
			if cv.drag.Begin(p, b) {
				cv.mode = modeDrag
			}
		}
		return
	}
	if !additive {
		cv.sel.Clear()
	}
}

func (cv *CanvasView) onDrag(e pointer.Event) {
	switch cv.mode {
	case modePan:
		cv.viewport.ApplyMiddleDrag(float64(e.Position.X-cv.lastPan.X), float64(e.Position.Y-cv.lastPan.Y))
		cv.lastPan = e.Position
	case modeDrag:
		cv.drag.Update(cv.pointerFor(e))
	case modeMultiDrag:
		cv.multi.Update(cv.pointerFor(e))
	case modeResize:
		cv.resize.Update(cv.pointerFor(e))
	}
}

func (cv *CanvasView) onRelease(e pointer.Event) {
	mode := cv.mode
	cv.mode = modeNone
	switch mode {
	case modePan:
		return
	case modeDrag:
		cv.drag.Flush()
		wasDragged := cv.drag.WasDragged()
		if cmd, ok := cv.drag.End(); ok {
			cv.execute(cmd)
		}
		cv.releaseClick(e, wasDragged, false)
	case modeMultiDrag:
		cv.multi.Flush()
		wasDragged := cv.multi.WasDragged()
		if cmd, ok := cv.multi.End(); ok {
			cv.execute(cmd)
		}
		cv.releaseClick(e, wasDragged, false)
	case modeResize:
		cv.resize.Flush()
		wasResized := cv.resize.WasResized()
		live := 0.0
		if id, ok := cv.singleSelection(); ok {
			if b, ok := cv.store.Get(id); ok {
				live = b.Height
			}
		}
		if cmd, ok := cv.resize.End(live); ok {
			cv.execute(cmd)
		}
		cv.releaseClick(e, false, wasResized)
	}
}

// releaseClick routes the click-vs-drag decision through the selection
// controller; a clean second click on a selected block enters edit mode.
func (cv *CanvasView) releaseClick(e pointer.Event, wasDragged, wasResized bool) {
	p := cv.pointerFor(e)
	b, ok := cv.blockAt(p.World)
	if !ok {
		return
	}
	switch cv.sel.OnRelease(b.ID, wasDragged, wasResized) {
	case interaction.ClickEdit:
		cv.startEditing(b)
	}
}

func (cv *CanvasView) onCancel() {
	cv.mode = modeNone
	cv.drag.Cancel()
	cv.multi.Cancel()
	cv.resize.Cancel()
	cv.viewport.CancelPending()
}

func (cv *CanvasView) execute(cmd history.Command) {
	// Re-entrancy returns ErrBusy; at the UI boundary it is a no-op.
	if err := cv.hist.Execute(cv.store, cmd); err != nil {
		cv.state.Logf("command %s: %v", cmd.Name(), err)
	}
}

func (cv *CanvasView) undo() {
	cv.stopEditing()
	if err := cv.hist.Undo(cv.store); err != nil {
		cv.state.Logf("undo: %v", err)
	}
}

func (cv *CanvasView) redo() {
	cv.stopEditing()
	if err := cv.hist.Redo(cv.store); err != nil {
		cv.state.Logf("redo: %v", err)
	}
}

func (cv *CanvasView) deleteSelection() {
	ids := cv.sel.IDs()
	if len(ids) == 0 {
		return
	}
	cv.sel.Clear()
	cv.execute(history.NewDelete(cv.store, ids))
}

func (cv *CanvasView) startEditing(b board.Block) {
	if b.Type == board.BlockImage {
		return
	}
	cv.editingID = b.ID
	cv.editor.SetText(b.Content)
}

func (cv *CanvasView) stopEditing() {
	if cv.editingID == "" {
		return
	}
	id := cv.editingID
	cv.editingID = ""
	b, ok := cv.store.Get(id)
	if !ok {
		return
	}
	if edited := cv.editor.Text(); edited != b.Content {
		cv.execute(&history.UpdateContent{ID: id, Old: b.Content, New: edited, At: time.Now()})
	}
}

// singleSelection returns the selected id when exactly one block is
// selected.
func (cv *CanvasView) singleSelection() (string, bool) {
	if cv.sel.Count() != 1 {
		return "", false
	}
	return cv.sel.IDs()[0], true
}

// liveBounds prefers the gesture overlay over the committed store state.
func (cv *CanvasView) liveBounds(b board.Block) geom.Bounds {
	for _, o := range []*interaction.Overlay{cv.drag.Overlay(), cv.multi.Overlay(), cv.resize.Overlay()} {
		if ob, ok := o.Get(b.ID); ok {
			return ob
		}
	}
	return b.Bounds()
}

// blockAt hit tests in world space, topmost block first.
func (cv *CanvasView) blockAt(world geom.Point) (board.Block, bool) {
	all := cv.store.All()
	for i := len(all) - 1; i >= 0; i-- {
		if cv.liveBounds(all[i]).Contains(world) {
			return all[i], true
		}
	}
	return board.Block{}, false
}

// handlePositions returns the 8 handle centers in screen space.
func (cv *CanvasView) handlePositions(b geom.Bounds) map[interaction.Handle]geom.Point {
	offset := cv.viewport.Offset()
	zoom := cv.viewport.Zoom()
	tl := canvas.WorldToScreen(b.X, b.Y, offset, zoom)
	br := canvas.WorldToScreen(b.X+b.W, b.Y+b.H, offset, zoom)
	cx := (tl.X + br.X) / 2
	cy := (tl.Y + br.Y) / 2
	return map[interaction.Handle]geom.Point{
		interaction.HandleTopLeft:     {X: tl.X, Y: tl.Y},
		interaction.HandleTop:         {X: cx, Y: tl.Y},
		interaction.HandleTopRight:    {X: br.X, Y: tl.Y},
		interaction.HandleRight:       {X: br.X, Y: cy},
		interaction.HandleBottomRight: {X: br.X, Y: br.Y},
		interaction.HandleBottom:      {X: cx, Y: br.Y},
		interaction.HandleBottomLeft:  {X: tl.X, Y: br.Y},
		interaction.HandleLeft:        {X: tl.X, Y: cy},
	}
}

func (cv *CanvasView) handleAt(pos f32.Point, b geom.Bounds) (interaction.Handle, bool) {
	for h, c := range cv.handlePositions(b) {
		dx := float64(pos.X) - c.X
		dy := float64(pos.Y) - c.Y
		if dx >= -handleHitRadius && dx <= handleHitRadius && dy >= -handleHitRadius && dy <= handleHitRadius {
			return h, true
		}
	}
	return "", false
}

func (cv *CanvasView) drawBlock(gtx layout.Context, th *material.Theme, b board.Block) {
	bounds := cv.liveBounds(b)
	rect := image.Rect(int(bounds.X), int(bounds.Y), int(bounds.X+bounds.W), int(bounds.Y+bounds.H))
	rr := clip.UniformRRect(rect, gtx.Dp(unit.Dp(6)))

	fill := color.NRGBA{R: 255, G: 255, B: 250, A: 255}
	if b.Type == board.BlockChat {
		fill = color.NRGBA{R: 235, G: 242, B: 255, A: 255}
	}
	paint.FillShape(gtx.Ops, fill, rr.Op(gtx.Ops))

	border := color.NRGBA{R: 180, G: 180, B: 180, A: 255}
	if cv.sel.IsSelected(b.ID) {
		border = color.NRGBA{R: 80, G: 120, B: 255, A: 255}
	}
	paint.FillShape(gtx.Ops, border, clip.Stroke{Path: rr.Path(gtx.Ops), Width: 2}.Op())

	switch b.Type {
	case board.BlockImage:
		cv.drawImage(gtx, b, rect)
	default:
		cv.drawText(gtx, th, b, rect)
	}
}

func (cv *CanvasView) drawImage(gtx layout.Context, b board.Block, rect image.Rectangle) {
	imgOp, ok := cv.images.Get(b.ImageRef)
	if !ok {
		return
	}
	stack := op.Offset(rect.Min).Push(gtx.Ops)
	sz := imgOp.Size()
	if sz.X > 0 && sz.Y > 0 {
		sx := float32(rect.Dx()) / float32(sz.X)
		sy := float32(rect.Dy()) / float32(sz.Y)
		scale := op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(sx, sy))).Push(gtx.Ops)
		imgOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		scale.Pop()
	}
	stack.Pop()
}

func (cv *CanvasView) drawText(gtx layout.Context, th *material.Theme, b board.Block, rect image.Rectangle) {
	inset := gtx.Dp(unit.Dp(8))
	inner := rect.Inset(inset)
	defer clip.Rect(inner).Push(gtx.Ops).Pop()
	stack := op.Offset(inner.Min).Push(gtx.Ops)
	defer stack.Pop()

	cgtx := gtx
	cgtx.Constraints = layout.Exact(inner.Size())
	cgtx.Constraints.Min = image.Point{}

	if cv.editingID == b.ID {
		ed := material.Editor(th, &cv.editor, "")
		ed.TextSize = unit.Sp(14)
		ed.Layout(cgtx)
		return
	}
	lbl := material.Label(th, unit.Sp(14), b.Content)
	lbl.Alignment = text.Start
	lbl.Layout(cgtx)
}

func (cv *CanvasView) drawHandles(gtx layout.Context, b geom.Bounds) {
	handleColor := color.NRGBA{R: 80, G: 120, B: 255, A: 255}
	for _, c := range cv.handlePositions(b) {
		r := image.Rect(int(c.X-4), int(c.Y-4), int(c.X+4), int(c.Y+4))
		paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, clip.Rect(r).Op())
		paint.FillShape(gtx.Ops, handleColor, clip.Stroke{Path: clip.Rect(r).Path(), Width: 1.5}.Op())
	}
}
