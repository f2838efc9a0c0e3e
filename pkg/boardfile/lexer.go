package boardfile

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SlateLexer defines the lexical structure of .slate board files.
// The format is line-oriented but whitespace-insensitive: a header
// followed by one declaration per block.
var SlateLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from # to end of line.
	{Name: "Comment", Pattern: `#[^\n]*`},

	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// Keywords
	{Name: "KwBoard", Pattern: `\bboard\b`},
	{Name: "KwViewport", Pattern: `\bviewport\b`},
	{Name: "KwZoom", Pattern: `\bzoom\b`},
	{Name: "KwText", Pattern: `\btext\b`},
	{Name: "KwImage", Pattern: `\bimage\b`},
	{Name: "KwChat", Pattern: `\bchat\b`},
	{Name: "KwRef", Pattern: `\bref\b`},
	{Name: "KwAspect", Pattern: `\baspect\b`},

	// Punctuation
	{Name: "Comma", Pattern: `,`},
	{Name: "Cross", Pattern: `x`},

	// Literals
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(\.[0-9]+)?`},
})
