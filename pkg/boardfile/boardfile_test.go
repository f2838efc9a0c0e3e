package boardfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/slatecanvas/slate/pkg/board"
)

func newParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func TestParseBasicBoard(t *testing.T) {
	input := `
board "Roadmap"
viewport -120,64 zoom 1.5

# blocks in z-order
text 100,100 300x54 "first note"
image 50,50 200x150 ref "ab12" aspect 1.333
chat 400,100 320x200 "how do I ship this?"
`
	f, err := newParser(t).ParseString(input)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if got := f.Header.Name.GetValue(); got != "Roadmap" {
		t.Fatalf("board name = %q", got)
	}
	vp := f.Header.Viewport
	if vp == nil || vp.X != -120 || vp.Y != 64 || vp.Zoom != 1.5 {
		t.Fatalf("viewport = %+v", vp)
	}
	if len(f.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(f.Blocks))
	}

	txt := f.Blocks[0]
	if txt.Kind != "text" || txt.X != 100 || txt.Y != 100 || txt.Width != 300 || txt.Height != 54 {
		t.Fatalf("text decl = %+v", txt)
	}
	if got := txt.Content.GetValue(); got != "first note" {
		t.Fatalf("text content = %q", got)
	}

	img := f.Blocks[1]
	if img.Kind != "image" || img.Ref.GetValue() != "ab12" {
		t.Fatalf("image decl = %+v", img)
	}
	if img.Aspect == nil || *img.Aspect != 1.333 {
		t.Fatalf("image aspect = %v", img.Aspect)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing header", `text 1,1 300x54 "x"`},
		{"unterminated string", `board "oops`},
		{"bad size", `board "b"` + "\n" + `text 1,1 300 "x"`},
	}
	p := newParser(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.ParseString(tc.input); err == nil {
				t.Fatalf("ParseString(%q) succeeded, want error", tc.input)
			}
		})
	}
}

func TestSlateRoundTrip(t *testing.T) {
	meta := BoardMeta{Name: "Trip", ViewportX: 10, ViewportY: -20, ViewportZoom: 2}
	img := board.NewImageBlock(50, 60, 200, "ref-1", 1.25)
	blocks := []board.Block{
		board.NewTextBlock(100, 100, "line one\nline \"two\""),
		img,
		board.NewChatBlock(500, 100),
	}

	out := Format(meta, blocks)
	f, err := newParser(t).ParseString(out)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, out)
	}
	if f.Header.Name.GetValue() != "Trip" {
		t.Fatalf("name = %q", f.Header.Name.GetValue())
	}
	got := f.ToBlocks()
	if len(got) != len(blocks) {
		t.Fatalf("got %d blocks, want %d", len(got), len(blocks))
	}
	for i := range blocks {
		want, have := blocks[i], got[i]
		if have.Type != want.Type || have.X != want.X || have.Y != want.Y ||
			have.Width != want.Width || have.Height != want.Height {
			t.Fatalf("block %d: got %+v want %+v", i, have, want)
		}
	}
	if got[0].Content != "line one\nline \"two\"" {
		t.Fatalf("escaped content = %q", got[0].Content)
	}
	if got[1].ImageRef != "ref-1" || got[1].AspectRatio != 1.25 {
		t.Fatalf("image round trip = %+v", got[1])
	}
}

func TestToBlocksClampsMinSizes(t *testing.T) {
	input := `
board "Tiny"
text 0,0 10x10 "small"
`
	f, err := newParser(t).ParseString(input)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	blocks := f.ToBlocks()
	if blocks[0].Width != board.MinWidth(board.BlockText) ||
		blocks[0].Height != board.MinHeight(board.BlockText) {
		t.Fatalf("tiny block not clamped: %+v", blocks[0])
	}
}

func TestJSONRoundTrip(t *testing.T) {
	meta := BoardMeta{Name: "JSON", ViewportX: 1, ViewportY: 2, ViewportZoom: 1.5}
	blocks := []board.Block{
		board.NewTextBlock(100, 100, "note"),
		board.NewImageBlock(300, 100, 200, "ref-9", 2),
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, blocks); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	gotMeta, gotBlocks, err := ImportJSON(&buf)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if gotMeta != meta {
		t.Fatalf("meta = %+v, want %+v", gotMeta, meta)
	}
	if len(gotBlocks) != 2 {
		t.Fatalf("got %d blocks", len(gotBlocks))
	}
	// JSON preserves identity, not just geometry.
	for i := range blocks {
		if gotBlocks[i] != blocks[i] {
			t.Fatalf("block %d: got %+v want %+v", i, gotBlocks[i], blocks[i])
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.slate")
	content := Format(BoardMeta{Name: "FromDisk", ViewportZoom: 1},
		[]board.Block{board.NewTextBlock(0, 0, "hi")})
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := newParser(t).ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if f.Header.Name.GetValue() != "FromDisk" {
		t.Fatalf("name = %q", f.Header.Name.GetValue())
	}
	if _, err := newParser(t).ParseFile(filepath.Join(dir, "missing.slate")); err == nil {
		t.Fatal("ParseFile on missing path succeeded")
	}
}

func TestExportPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	blocks := []board.Block{
		board.NewTextBlock(100, 100, "rendered note"),
		board.NewImageBlock(500, 100, 200, "ref", 1),
	}
	if err := ExportPNG(path, blocks); err != nil {
		t.Fatalf("ExportPNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty PNG written")
	}

	if err := ExportPNG(filepath.Join(dir, "empty.png"), nil); err == nil {
		t.Fatal("ExportPNG with no blocks succeeded")
	}
}
