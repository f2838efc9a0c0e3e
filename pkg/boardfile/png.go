package boardfile

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
)

const (
	exportPadding  = 40.0
	exportFontSize = 13.0
	cornerRadius   = 8.0
)

// ExportPNG renders the blocks to a PNG sized to their bounding box plus
// padding. Image blocks render as labelled placeholders; the export does
// not resolve image refs.
func ExportPNG(filename string, blocks []board.Block) error {
	if len(blocks) == 0 {
		return fmt.Errorf("nothing to export")
	}

	bbox := blocks[0].Bounds()
	for _, b := range blocks[1:] {
		bbox = bbox.Union(b.Bounds())
	}

	imageWidth := int(bbox.W + 2*exportPadding)
	imageHeight := int(bbox.H + 2*exportPadding)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    exportFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	origin := geom.Point{X: bbox.X - exportPadding, Y: bbox.Y - exportPadding}
	for _, b := range blocks {
		drawBlockPNG(dc, b, origin)
	}

	return dc.SavePNG(filename)
}

func drawBlockPNG(dc *gg.Context, b board.Block, origin geom.Point) {
	x := b.X - origin.X
	y := b.Y - origin.Y

	dc.SetColor(color.RGBA{R: 0xf5, G: 0xf5, B: 0xf0, A: 0xff})
	dc.DrawRoundedRectangle(x, y, b.Width, b.Height, cornerRadius)
	dc.FillPreserve()
	dc.SetColor(color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff})
	dc.SetLineWidth(1.5)
	dc.Stroke()

	dc.SetColor(color.Black)
	switch b.Type {
	case board.BlockImage:
		label := "[image " + b.ImageRef + "]"
		dc.DrawStringAnchored(label, x+b.Width/2, y+b.Height/2, 0.5, 0.5)
	default:
		inset := 10.0
		dc.DrawStringWrapped(b.Content, x+inset, y+inset, 0, 0, b.Width-2*inset, 1.4, gg.AlignLeft)
	}
}
