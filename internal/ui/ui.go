package ui

import (
	"fmt"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/slatecanvas/slate/pkg/ai"
	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
	"github.com/slatecanvas/slate/pkg/history"
	"github.com/slatecanvas/slate/pkg/storage"
)

// Options configures the whiteboard window.
type Options struct {
	State   *AppState
	DB      *storage.DB
	BoardID string // empty opens the most recent board, creating one if none exist
	AI      *ai.Client
}

// Run launches the Gio UI and blocks until the window closes.
func Run(opts Options) error {
	state := opts.State
	if state == nil {
		state = NewState()
	}

	boards := storage.NewBoardRepo(opts.DB)
	images := storage.NewImageRepo(opts.DB)

	bd, err := openBoard(boards, opts.BoardID)
	if err != nil {
		return err
	}
	blocks, err := boards.LoadBlocks(bd.ID)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	store := board.NewStore()
	store.Replace(blocks)
	hist := history.New()
	state.SetBoard(bd.ID, bd.Name)
	state.Logf("opened board %q with %d blocks", bd.Name, len(blocks))

	saver := storage.NewAutosaver(boards, store, bd.ID)
	store.Subscribe(saver.Mark)

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Slate - "+bd.Name), app.Size(unit.Dp(1280), unit.Dp(800)))
		a := New(w, state, store, hist, boards, images)
		if opts.AI != nil {
			a.SetAIClient(opts.AI)
		}
		a.Canvas().Viewport().SetViewport(
			geom.Pt(bd.ViewportX, bd.ViewportY), bd.ViewportZoom)
		a.OnViewportChange(func() {
			vp := a.Canvas().Viewport()
			off := vp.Offset()
			if err := boards.SaveViewport(bd.ID, off.X, off.Y, vp.Zoom()); err != nil {
				state.Logf("save viewport: %v", err)
			}
		})
		if err := a.Run(); err != nil {
			log.Printf("ui: %v", err)
		}
		if err := saver.Close(); err != nil {
			log.Printf("final save: %v", err)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}

func openBoard(boards *storage.BoardRepo, id string) (*storage.Board, error) {
	if id != "" {
		return boards.Get(id)
	}
	existing, err := boards.List()
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}
	return boards.Create("Untitled")
}
