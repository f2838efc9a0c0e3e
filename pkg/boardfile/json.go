package boardfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/slatecanvas/slate/pkg/board"
)

// jsonBoard is the on-disk JSON shape. Field names are stable; the
// format is the lossless interchange counterpart of the .slate text form.
type jsonBoard struct {
	Name     string       `json:"name"`
	Viewport jsonViewport `json:"viewport"`
	Blocks   []jsonBlock  `json:"blocks"`
}

type jsonViewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

type jsonBlock struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Content     string  `json:"content,omitempty"`
	ImageRef    string  `json:"image_ref,omitempty"`
	AspectRatio float64 `json:"aspect_ratio,omitempty"`
}

// ExportJSON writes the board as indented JSON. Unlike the .slate text
// form it preserves block IDs, so a re-import restores identity.
func ExportJSON(w io.Writer, meta BoardMeta, blocks []board.Block) error {
	out := jsonBoard{
		Name: meta.Name,
		Viewport: jsonViewport{
			X:    meta.ViewportX,
			Y:    meta.ViewportY,
			Zoom: meta.ViewportZoom,
		},
		Blocks: make([]jsonBlock, 0, len(blocks)),
	}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, jsonBlock{
			ID:          b.ID,
			Type:        string(b.Type),
			X:           b.X,
			Y:           b.Y,
			Width:       b.Width,
			Height:      b.Height,
			Content:     b.Content,
			ImageRef:    b.ImageRef,
			AspectRatio: b.AspectRatio,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode board json: %w", err)
	}
	return nil
}

// ImportJSON reads a board exported with ExportJSON.
func ImportJSON(r io.Reader) (BoardMeta, []board.Block, error) {
	var in jsonBoard
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return BoardMeta{}, nil, fmt.Errorf("decode board json: %w", err)
	}
	meta := BoardMeta{
		Name:         in.Name,
		ViewportX:    in.Viewport.X,
		ViewportY:    in.Viewport.Y,
		ViewportZoom: in.Viewport.Zoom,
	}
	blocks := make([]board.Block, 0, len(in.Blocks))
	for _, jb := range in.Blocks {
		b := board.Block{
			ID:          jb.ID,
			Type:        board.BlockType(jb.Type),
			X:           jb.X,
			Y:           jb.Y,
			Width:       jb.Width,
			Height:      jb.Height,
			Content:     jb.Content,
			ImageRef:    jb.ImageRef,
			AspectRatio: jb.AspectRatio,
		}
		if b.Type == "" {
			b.Type = board.BlockText
		}
		blocks = append(blocks, b)
	}
	return meta, blocks, nil
}
