package boardfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/slatecanvas/slate/pkg/board"
)

// BoardMeta is the header information written alongside blocks.
type BoardMeta struct {
	Name         string
	ViewportX    float64
	ViewportY    float64
	ViewportZoom float64
}

// Write serializes the board in .slate format. Output parses back with
// Parser to the same blocks.
func Write(w io.Writer, meta BoardMeta, blocks []board.Block) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "board %s\n", strconv.Quote(meta.Name))
	if meta.ViewportZoom != 0 {
		fmt.Fprintf(&sb, "viewport %s,%s zoom %s\n",
			num(meta.ViewportX), num(meta.ViewportY), num(meta.ViewportZoom))
	}
	for _, b := range blocks {
		fmt.Fprintf(&sb, "%s %s,%s %sx%s", b.Type, num(b.X), num(b.Y), num(b.Width), num(b.Height))
		if b.Type == board.BlockImage {
			fmt.Fprintf(&sb, " ref %s", strconv.Quote(b.ImageRef))
			if b.AspectRatio != 0 {
				fmt.Fprintf(&sb, " aspect %s", num(b.AspectRatio))
			}
		} else {
			fmt.Fprintf(&sb, " %s", strconv.Quote(b.Content))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Format returns the board serialized as a .slate string.
func Format(meta BoardMeta, blocks []board.Block) string {
	var sb strings.Builder
	Write(&sb, meta, blocks)
	return sb.String()
}

// num formats a coordinate without a trailing ".0" for whole values.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
