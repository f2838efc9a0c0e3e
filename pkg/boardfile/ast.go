package boardfile

import "strconv"

// File is a parsed .slate board file: a header plus one declaration
// per block, in z-order.
type File struct {
	Header *Header      `parser:"@@"`
	Blocks []*BlockDecl `parser:"@@*"`
}

// Header names the board and optionally records the saved viewport.
// Example: board "Roadmap"
type Header struct {
	Name     *String   `parser:"KwBoard @@"`
	Viewport *Viewport `parser:"@@?"`
}

// Viewport records the pan offset and zoom to restore on open.
// Example: viewport -120,64 zoom 1.5
type Viewport struct {
	X    float64 `parser:"KwViewport @Number"`
	Y    float64 `parser:"Comma @Number"`
	Zoom float64 `parser:"KwZoom @Number"`
}

// BlockDecl is one block line.
// Examples:
//
//	text 100,100 300x54 "hello"
//	image 50,50 200x150 ref "ab12" aspect 1.333
//	chat 400,100 320x200 "prompt"
type BlockDecl struct {
	Kind    string   `parser:"@( KwText | KwImage | KwChat )"`
	X       float64  `parser:"@Number"`
	Y       float64  `parser:"Comma @Number"`
	Width   float64  `parser:"@Number"`
	Height  float64  `parser:"Cross @Number"`
	Ref     *String  `parser:"( KwRef @@ )?"`
	Aspect  *float64 `parser:"( KwAspect @Number )?"`
	Content *String  `parser:"@@?"`
}

// String is a quoted string literal.
type String struct {
	Value string `parser:"@String"`
}

// GetValue returns the string with quotes and escapes resolved.
func (s *String) GetValue() string {
	if s == nil {
		return ""
	}
	if v, err := strconv.Unquote(s.Value); err == nil {
		return v
	}
	return s.Value
}
