// Package board holds the whiteboard data model: typed blocks and the
// authoritative in-memory store the interaction and command layers mutate.
package board

import (
	"github.com/google/uuid"

	"github.com/slatecanvas/slate/pkg/geom"
)

// BlockType selects the payload and rendering of a block.
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
	BlockChat  BlockType = "chat"
)

// Per-type minimum sizes. Committed mutations never shrink a block below
// these, regardless of what a gesture requested.
const (
	textMinWidth  = 300
	textMinHeight = 54

	imageMinWidth  = 100
	imageMinHeight = 100

	chatMinWidth  = 320
	chatMinHeight = 200
)

// MinWidth returns the smallest committed width for a block type.
func MinWidth(t BlockType) float64 {
	switch t {
	case BlockImage:
		return imageMinWidth
	case BlockChat:
		return chatMinWidth
	default:
		return textMinWidth
	}
}

// MinHeight returns the smallest committed height for a block type.
func MinHeight(t BlockType) float64 {
	switch t {
	case BlockImage:
		return imageMinHeight
	case BlockChat:
		return chatMinHeight
	default:
		return textMinHeight
	}
}

// Block is a positioned, sized, typed object on the canvas. X/Y are the
// world-space top-left corner.
type Block struct {
	ID     string
	Type   BlockType
	X      float64
	Y      float64
	Width  float64
	Height float64

	// Content holds the HTML payload of text and chat blocks.
	Content string
	// ImageRef is an opaque reference into the image repository.
	ImageRef string
	// AspectRatio is the native width/height ratio of an image block.
	AspectRatio float64
}

// Bounds returns the block's world-space rectangle.
func (b Block) Bounds() geom.Bounds {
	return geom.Rect(b.X, b.Y, b.Width, b.Height)
}

// Position returns the top-left corner.
func (b Block) Position() geom.Point {
	return geom.Pt(b.X, b.Y)
}

// NewTextBlock creates a text block at the given world position with the
// type's minimum size.
func NewTextBlock(x, y float64, content string) Block {
	return Block{
		ID:      uuid.NewString(),
		Type:    BlockText,
		X:       x,
		Y:       y,
		Width:   textMinWidth,
		Height:  textMinHeight,
		Content: content,
	}
}

// NewImageBlock creates an image block sized to width and the image's
// aspect ratio.
func NewImageBlock(x, y, width float64, ref string, aspect float64) Block {
	if aspect <= 0 {
		aspect = 1
	}
	if width < imageMinWidth {
		width = imageMinWidth
	}
	height := width / aspect
	if height < imageMinHeight {
		height = imageMinHeight
	}
	return Block{
		ID:          uuid.NewString(),
		Type:        BlockImage,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		ImageRef:    ref,
		AspectRatio: aspect,
	}
}

// NewChatBlock creates a chat block at the given world position.
func NewChatBlock(x, y float64) Block {
	return Block{
		ID:     uuid.NewString(),
		Type:   BlockChat,
		X:      x,
		Y:      y,
		Width:  chatMinWidth,
		Height: chatMinHeight,
	}
}

// clampSize enforces the per-type minimums on a block in place.
func (b *Block) clampSize() {
	if min := MinWidth(b.Type); b.Width < min {
		b.Width = min
	}
	if min := MinHeight(b.Type); b.Height < min {
		b.Height = min
	}
}
