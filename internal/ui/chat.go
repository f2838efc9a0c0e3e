package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slatecanvas/slate/pkg/ai"
	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
	"github.com/slatecanvas/slate/pkg/history"
)

const aiRequestTimeout = 60 * time.Second

// SetAIClient enables the Ask AI and Layout actions.
func (a *App) SetAIClient(client *ai.Client) {
	a.ai = client
}

// selectedChatPrompt returns the selected chat block's trimmed text, or
// explains in the status bar why there is nothing to send.
func (a *App) selectedChatPrompt() (id, prompt string, ok bool) {
	id, ok = a.canvas.singleSelection()
	if !ok {
		a.State.SetStatus("Select one chat block first")
		return "", "", false
	}
	b, found := a.store.Get(id)
	if !found || b.Type != board.BlockChat {
		a.State.SetStatus("Select one chat block first")
		return "", "", false
	}
	prompt = strings.TrimSpace(b.Content)
	if prompt == "" {
		a.State.SetStatus("Chat block is empty")
		return "", "", false
	}
	return id, prompt, true
}

// askAI sends the selected chat block's text to the backend and appends
// the reply. The round trip runs off the event loop; the store mutation
// is marshalled back and recorded without re-execution, since the reply
// is already optimistic truth by the time it lands.
func (a *App) askAI() {
	if a.ai == nil {
		a.State.SetStatus("AI backend not configured")
		return
	}
	id, prompt, ok := a.selectedChatPrompt()
	if !ok {
		return
	}

	a.State.SetBusy(true)
	a.State.SetStatus("Generating…")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), aiRequestTimeout)
		defer cancel()
		reply, err := a.ai.GenerateText(ctx, prompt)
		a.do(func() {
			a.State.SetBusy(false)
			if err != nil {
				a.State.SetError(err)
				a.State.Logf("ai: %v", err)
				return
			}
			cur, ok := a.store.Get(id)
			if !ok {
				return
			}
			cmd := &history.UpdateContent{
				ID:  id,
				Old: cur.Content,
				New: cur.Content + "\n\n" + reply,
				At:  time.Now(),
			}
			if err := cmd.Apply(a.store); err != nil {
				a.State.Logf("ai apply: %v", err)
				return
			}
			a.hist.AddWithoutExecute(cmd)
			a.State.SetStatus("Reply added")
		})
	}()
}

// generateLayout asks the backend for a block layout from the selected
// chat block's prompt and drops the generated blocks near the window
// center as one undoable insertion.
func (a *App) generateLayout() {
	if a.ai == nil {
		a.State.SetStatus("AI backend not configured")
		return
	}
	_, prompt, ok := a.selectedChatPrompt()
	if !ok {
		return
	}
	origin := a.center()

	a.State.SetBusy(true)
	a.State.SetStatus("Generating layout…")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), aiRequestTimeout)
		defer cancel()
		generated, err := a.ai.GenerateBlocks(ctx, prompt)
		a.do(func() {
			a.State.SetBusy(false)
			if err != nil {
				a.State.SetError(err)
				a.State.Logf("ai: %v", err)
				return
			}
			n, err := recordGenerated(a.store, a.hist, origin, generated)
			if err != nil {
				a.State.Logf("ai apply: %v", err)
				return
			}
			if n == 0 {
				a.State.SetStatus("Backend returned no blocks")
				return
			}
			a.State.SetStatus(fmt.Sprintf("Added %d generated block(s)", n))
		})
	}()
}

// recordGenerated places the generated blocks relative to origin and
// records the insertion as a single history entry. The blocks are already
// created by the time the entry lands, so it is recorded without
// re-execution like askAI's reply.
func recordGenerated(st *board.Store, h *history.History, origin geom.Point, generated []board.Block) (int, error) {
	if len(generated) == 0 {
		return 0, nil
	}
	subs := make([]history.Command, 0, len(generated))
	for _, g := range generated {
		g.X += origin.X
		g.Y += origin.Y
		subs = append(subs, &history.Create{Block: g})
	}
	cmd := &history.Composite{Subs: subs}
	if err := cmd.Apply(st); err != nil {
		return 0, err
	}
	h.AddWithoutExecute(cmd)
	return len(subs), nil
}
