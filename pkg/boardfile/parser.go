// Package boardfile reads and writes boards in external formats: the
// .slate text format, JSON, and rendered PNG snapshots.
package boardfile

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"

	"github.com/slatecanvas/slate/pkg/board"
)

// Parser parses .slate board files.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser builds a .slate parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(SlateLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a board file from a reader.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return f, nil
}

// ParseString parses a board file from a string.
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return f, nil
}

// ParseFile parses a board file from a file path.
func (p *Parser) ParseFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// ToBlocks converts the parsed declarations to board blocks. Sizes are
// clamped to the per-type minimums the same way the store clamps them.
func (f *File) ToBlocks() []board.Block {
	blocks := make([]board.Block, 0, len(f.Blocks))
	for _, d := range f.Blocks {
		var b board.Block
		switch d.Kind {
		case "image":
			aspect := 1.0
			if d.Aspect != nil {
				aspect = *d.Aspect
			}
			b = board.NewImageBlock(d.X, d.Y, d.Width, d.Ref.GetValue(), aspect)
			b.Height = d.Height
		case "chat":
			b = board.NewChatBlock(d.X, d.Y)
			b.Width, b.Height = d.Width, d.Height
			b.Content = d.Content.GetValue()
		default:
			b = board.NewTextBlock(d.X, d.Y, d.Content.GetValue())
			b.Width, b.Height = d.Width, d.Height
		}
		b.Width = max(b.Width, board.MinWidth(b.Type))
		b.Height = max(b.Height, board.MinHeight(b.Type))
		blocks = append(blocks, b)
	}
	return blocks
}
