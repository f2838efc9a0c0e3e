package ui

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"time"

	"gioui.org/app"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	gvtheme "github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/slatecanvas/slate/pkg/ai"
	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/canvas"
	"github.com/slatecanvas/slate/pkg/geom"
	"github.com/slatecanvas/slate/pkg/history"
	"github.com/slatecanvas/slate/pkg/storage"
)

type toolButton struct {
	name  string
	icon  *widget.Icon
	click widget.Clickable
	act   func(a *App)
}

// App drives the Gio-based whiteboard UI.
type App struct {
	Window *app.Window
	Theme  *material.Theme
	State  *AppState

	gvTheme *gvtheme.Theme

	store     *board.Store
	hist      *history.History
	canvas    *CanvasView
	images    *imageCache
	imageRepo *storage.ImageRepo
	boards    *storage.BoardRepo
	expl      *explorer.Explorer
	ai        *ai.Client

	ops op.Ops

	tools          []*toolButton
	toggleLogBtn   widget.Clickable
	darkModeSwitch widget.Bool
	logList        layout.List

	// pending holds closures marshalled from background goroutines back
	// onto the event loop; they run at the start of the next frame.
	pending chan func()

	lastSize image.Point
}

// New wires the Gio window, theme, engines, and shared state together.
func New(window *app.Window, state *AppState, store *board.Store, hist *history.History,
	boards *storage.BoardRepo, imageRepo *storage.ImageRepo) *App {
	if state == nil {
		state = NewState()
	}
	baseTheme := material.NewTheme()
	baseTheme.Palette = material.Palette{
		Bg:         color.NRGBA{R: 248, G: 248, B: 246, A: 255},
		Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
		ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
	images := newImageCache(imageRepo)
	a := &App{
		Window:    window,
		Theme:     baseTheme,
		State:     state,
		gvTheme:   gvtheme.NewTheme("", nil, false),
		store:     store,
		hist:      hist,
		images:    images,
		imageRepo: imageRepo,
		boards:    boards,
		expl:      explorer.NewExplorer(window),
		logList:   layout.List{Axis: layout.Vertical},
		pending:   make(chan func(), 16),
	}
	a.canvas = NewCanvasView(state, store, hist, images)
	a.initToolbar()
	state.OnChange(window.Invalidate)
	return a
}

// Canvas exposes the canvas view, e.g. for viewport restore.
func (a *App) Canvas() *CanvasView {
	return a.canvas
}

// OnViewportChange registers a hook invoked after every committed pan or
// zoom, e.g. to persist the viewport.
func (a *App) OnViewportChange(fn func()) {
	a.canvas.Viewport().Subscribe(func(canvas.Event) { fn() })
}

// do marshals fn back onto the event loop.
func (a *App) do(fn func()) {
	select {
	case a.pending <- fn:
	default:
		a.State.Logf("ui: dropped queued action")
	}
	a.invalidate()
}

// Run processes Gio events until the window is closed.
func (a *App) Run() error {
	for {
		e := a.Window.Event()
		a.expl.ListenEvents(e)
		switch ev := e.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&a.ops, ev)
			a.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

func (a *App) invalidate() {
	a.Window.Invalidate()
}

func (a *App) initToolbar() {
	makeIcon := func(data []byte, name string) *widget.Icon {
		icon, err := widget.NewIcon(data)
		if err != nil {
			log.Printf("ui: failed to load %s icon: %v", name, err)
			return nil
		}
		return icon
	}
	a.tools = []*toolButton{
		{name: "Text", icon: makeIcon(icons.EditorModeEdit, "text"), act: (*App).addTextBlock},
		{name: "Image", icon: makeIcon(icons.ImageImage, "image"), act: (*App).addImageBlock},
		{name: "Chat", icon: makeIcon(icons.CommunicationChat, "chat"), act: (*App).addChatBlock},
		{name: "Duplicate", icon: makeIcon(icons.ContentSelectAll, "duplicate"), act: (*App).duplicateSelection},
		{name: "Delete", icon: makeIcon(icons.ActionDelete, "delete"), act: (*App).deleteSelection},
		{name: "Undo", icon: makeIcon(icons.ContentUndo, "undo"), act: func(a *App) { a.canvas.undo() }},
		{name: "Redo", icon: makeIcon(icons.ContentRedo, "redo"), act: func(a *App) { a.canvas.redo() }},
		{name: "Copy", icon: makeIcon(icons.ContentContentCopy, "copy"), act: (*App).copySelection},
		{name: "Paste", icon: makeIcon(icons.ContentContentPaste, "paste"), act: (*App).pasteBlock},
		{name: "Ask AI", icon: makeIcon(icons.ActionLightbulbOutline, "ask ai"), act: (*App).askAI},
		{name: "Layout", icon: makeIcon(icons.ActionDashboard, "layout"), act: (*App).generateLayout},
	}
}

func (a *App) addTextBlock() {
	c := a.center()
	b := board.NewTextBlock(c.X-150, c.Y-27, "")
	a.executeCreate(b)
}

func (a *App) addChatBlock() {
	c := a.center()
	b := board.NewChatBlock(c.X-160, c.Y-100)
	a.executeCreate(b)
}

func (a *App) addImageBlock() {
	go func() {
		r, err := a.expl.ChooseFile(".png", ".jpg", ".jpeg")
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.State.Logf("image picker: %v", err)
			}
			return
		}
		a.importImage(r)
	}()
}

func (a *App) executeCreate(b board.Block) {
	if err := a.hist.Execute(a.store, &history.Create{Block: b}); err != nil {
		a.State.Logf("create: %v", err)
		return
	}
	a.canvas.Selection().Set(b.ID)
}

// center returns the world point under the middle of the window, where
// toolbar insertions land.
func (a *App) center() geom.Point {
	vp := a.canvas.Viewport()
	offset := vp.Offset()
	zoom := vp.Zoom()
	cx := float64(a.lastSize.X) / 2
	cy := float64(a.lastSize.Y) / 2
	if a.lastSize == (image.Point{}) {
		cx, cy = 640, 360
	}
	return geom.Pt((cx-offset.X)/zoom, (cy-offset.Y)/zoom)
}

func (a *App) duplicateSelection() {
	ids := a.canvas.Selection().IDs()
	if len(ids) == 0 {
		return
	}
	subs := make([]history.Command, 0, len(ids))
	for _, src := range a.store.GetMany(ids) {
		dup := src
		dup.ID = uuid.NewString()
		dup.X += 24
		dup.Y += 24
		subs = append(subs, &history.Create{Block: dup})
	}
	if err := a.hist.Execute(a.store, &history.Composite{Subs: subs}); err != nil {
		a.State.Logf("duplicate: %v", err)
	}
}

func (a *App) deleteSelection() {
	a.canvas.deleteSelection()
}

func (a *App) copySelection() {
	ids := a.canvas.Selection().IDs()
	if len(ids) == 0 {
		return
	}
	var buf []byte
	for _, b := range a.store.GetMany(ids) {
		if b.Content != "" {
			if len(buf) > 0 {
				buf = append(buf, '\n')
			}
			buf = append(buf, b.Content...)
		}
	}
	if len(buf) == 0 {
		return
	}
	if err := clipboard.WriteAll(string(buf)); err != nil {
		a.State.Logf("clipboard write: %v", err)
		return
	}
	a.State.SetStatus(fmt.Sprintf("Copied %d block(s)", len(ids)))
}

func (a *App) pasteBlock() {
	text, err := clipboard.ReadAll()
	if err != nil {
		a.State.Logf("clipboard read: %v", err)
		return
	}
	if text == "" {
		return
	}
	c := a.center()
	a.executeCreate(board.NewTextBlock(c.X-150, c.Y-27, text))
}

// importImage runs off the event loop: it decodes and stores the bytes,
// then marshals the block creation back onto the frame loop.
func (a *App) importImage(r io.ReadCloser) {
	defer r.Close()
	data, err := io.ReadAll(io.LimitReader(r, 32<<20))
	if err != nil {
		a.State.Logf("read image: %v", err)
		return
	}
	cfg, _, err := decodeImageConfig(data)
	if err != nil {
		a.State.Logf("decode image: %v", err)
		return
	}
	aspect := 1.0
	if cfg.Height > 0 {
		aspect = float64(cfg.Width) / float64(cfg.Height)
	}
	ref, err := a.imageRepo.Put(data, aspect)
	if err != nil {
		a.State.Logf("store image: %v", err)
		return
	}
	a.do(func() {
		c := a.center()
		width := 320.0
		b := board.NewImageBlock(c.X-width/2, c.Y-width/aspect/2, width, ref, aspect)
		a.executeCreate(b)
	})
	a.State.Logf("imported image %s (%dx%d)", ref, cfg.Width, cfg.Height)
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	for {
		select {
		case fn := <-a.pending:
			fn()
			continue
		default:
		}
		break
	}
	a.lastSize = gtx.Constraints.Max
	state := a.State.Snapshot()

	paint.FillShape(gtx.Ops, a.Theme.Palette.Bg, clip.Rect{Max: gtx.Constraints.Max}.Op())

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutToolbar(gtx, &state)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.canvas.Layout(gtx, a.Theme)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !state.LogPaneVisible {
				return layout.Dimensions{}
			}
			return a.layoutLogPane(gtx, state)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutStatus(gtx, state)
		}),
	)
}

func (a *App) layoutToolbar(gtx layout.Context, state *StateSnapshot) layout.Dimensions {
	return layout.Inset{Top: unit.Dp(8), Bottom: unit.Dp(8), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			children := []layout.FlexChild{
				layout.Rigid(material.H6(a.Theme, state.BoardName).Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(16)}.Layout),
			}
			for _, tb := range a.tools {
				tb := tb
				children = append(children,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						for tb.click.Clicked(gtx) {
							tb.act(a)
							a.invalidate()
						}
						btn := material.IconButton(a.Theme, &tb.click, tb.icon, tb.name)
						btn.Size = unit.Dp(20)
						btn.Inset = layout.UniformInset(unit.Dp(6))
						return btn.Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				)
			}
			children = append(children,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return layout.Dimensions{}
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if a.darkModeSwitch.Update(gtx) {
						a.State.SetDarkMode(a.darkModeSwitch.Value)
						a.applyPalette(a.darkModeSwitch.Value)
					}
					return material.Switch(a.Theme, &a.darkModeSwitch, "dark mode").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					for a.toggleLogBtn.Clicked(gtx) {
						a.State.SetLogPaneVisible(!state.LogPaneVisible)
					}
					label := "Log"
					btn := material.Button(a.Theme, &a.toggleLogBtn, label)
					btn.Inset = layout.UniformInset(unit.Dp(6))
					return btn.Layout(gtx)
				}),
			)
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
		})
}

func (a *App) applyPalette(dark bool) {
	if dark {
		a.Theme.Palette = material.Palette{
			Bg:         color.NRGBA{R: 30, G: 32, B: 38, A: 255},
			Fg:         color.NRGBA{R: 225, G: 228, B: 235, A: 255},
			ContrastBg: color.NRGBA{R: 100, G: 140, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 20, G: 22, B: 28, A: 255},
		}
		a.gvTheme.WithPalette(gvtheme.Palette{
			Bg:         color.NRGBA{R: 18, G: 20, B: 26, A: 255},
			Fg:         color.NRGBA{R: 233, G: 236, B: 245, A: 255},
			ContrastBg: color.NRGBA{R: 120, G: 150, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 12, G: 16, B: 24, A: 255},
			Bg2:        color.NRGBA{R: 34, G: 40, B: 50, A: 255},
		})
		return
	}
	a.Theme.Palette = material.Palette{
		Bg:         color.NRGBA{R: 248, G: 248, B: 246, A: 255},
		Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
		ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
	a.gvTheme.WithPalette(gvtheme.Palette{
		Bg:         color.NRGBA{R: 245, G: 247, B: 253, A: 255},
		Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
		ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Bg2:        color.NRGBA{R: 225, G: 230, B: 244, A: 255},
	})
}

func (a *App) layoutLogPane(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	height := gtx.Dp(unit.Dp(140))
	gtx.Constraints.Min.Y = height
	gtx.Constraints.Max.Y = height
	paint.FillShape(gtx.Ops, color.NRGBA{R: 24, G: 26, B: 32, A: 255},
		clip.Rect{Max: image.Pt(gtx.Constraints.Max.X, height)}.Op())
	return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return a.logList.Layout(gtx, len(state.Logs), func(gtx layout.Context, i int) layout.Dimensions {
			lbl := material.Body2(a.Theme, state.Logs[i])
			lbl.Color = color.NRGBA{R: 180, G: 220, B: 180, A: 255}
			return lbl.Layout(gtx)
		})
	})
}

func (a *App) layoutStatus(gtx layout.Context, state StateSnapshot) layout.Dimensions {
	return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			status := state.Status
			if state.Busy {
				status += " …"
			}
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Rigid(material.Caption(a.Theme, status).Layout),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return layout.Dimensions{}
				}),
				layout.Rigid(material.Caption(a.Theme,
					fmt.Sprintf("%d blocks · zoom %.0f%% · %s",
						a.store.Len(), a.canvas.Viewport().Zoom()*100,
						state.LastUpdated.Format(time.Kitchen))).Layout),
			)
		})
}
