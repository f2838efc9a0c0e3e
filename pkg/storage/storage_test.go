package storage

import (
	"testing"
	"time"

	"github.com/slatecanvas/slate/pkg/board"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoardCreateGetList(t *testing.T) {
	db := openTestDB(t)
	repo := NewBoardRepo(db)

	b1, err := repo.Create("Ideas")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b1.ID == "" {
		t.Fatal("Create returned empty id")
	}
	if b1.ViewportZoom != 1.0 {
		t.Fatalf("ViewportZoom = %v, want 1.0", b1.ViewportZoom)
	}

	got, err := repo.Get(b1.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Ideas" {
		t.Fatalf("Name = %q, want Ideas", got.Name)
	}

	if _, err := repo.Create("Sketches"); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	boards, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("List returned %d boards, want 2", len(boards))
	}
}

func TestBoardGetMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewBoardRepo(db)
	if _, err := repo.Get("nope"); err != ErrNotFound {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}
	if err := repo.Rename("nope", "x"); err != ErrNotFound {
		t.Fatalf("Rename missing = %v, want ErrNotFound", err)
	}
}

func TestSaveViewportRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewBoardRepo(db)

	b, err := repo.Create("Map")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SaveViewport(b.ID, -120.5, 64.25, 1.75); err != nil {
		t.Fatalf("SaveViewport: %v", err)
	}
	got, err := repo.Get(b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ViewportX != -120.5 || got.ViewportY != 64.25 || got.ViewportZoom != 1.75 {
		t.Fatalf("viewport = (%v, %v, %v), want (-120.5, 64.25, 1.75)",
			got.ViewportX, got.ViewportY, got.ViewportZoom)
	}
}

func TestReplaceBlocksRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewBoardRepo(db)

	bd, err := repo.Create("Plan")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	blocks := []board.Block{
		board.NewTextBlock(100, 100, "first"),
		board.NewTextBlock(500, 200, "second"),
		board.NewImageBlock(50, 50, 200, "img-ref", 1.5),
	}
	if err := repo.ReplaceBlocks(bd.ID, blocks); err != nil {
		t.Fatalf("ReplaceBlocks: %v", err)
	}

	got, err := repo.LoadBlocks(bd.ID)
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("LoadBlocks returned %d blocks, want 3", len(got))
	}
	// z-order must survive the round trip.
	for i := range blocks {
		if got[i].ID != blocks[i].ID {
			t.Fatalf("block %d id = %s, want %s", i, got[i].ID, blocks[i].ID)
		}
	}
	if got[2].ImageRef != "img-ref" || got[2].AspectRatio != 1.5 {
		t.Fatalf("image block fields = (%q, %v)", got[2].ImageRef, got[2].AspectRatio)
	}

	// A second replace with fewer blocks drops the rest.
	if err := repo.ReplaceBlocks(bd.ID, blocks[:1]); err != nil {
		t.Fatalf("ReplaceBlocks shrink: %v", err)
	}
	got, err = repo.LoadBlocks(bd.ID)
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(got) != 1 || got[0].Content != "first" {
		t.Fatalf("after shrink got %d blocks", len(got))
	}
}

func TestBoardDeleteRemovesBlocks(t *testing.T) {
	db := openTestDB(t)
	repo := NewBoardRepo(db)

	bd, _ := repo.Create("Gone")
	if err := repo.ReplaceBlocks(bd.ID, []board.Block{board.NewTextBlock(0, 0, "x")}); err != nil {
		t.Fatalf("ReplaceBlocks: %v", err)
	}
	if err := repo.Delete(bd.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(bd.ID); err != ErrNotFound {
		t.Fatalf("Get deleted = %v, want ErrNotFound", err)
	}
	blocks, err := repo.LoadBlocks(bd.ID)
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("blocks survived delete: %d", len(blocks))
	}
}

func TestImageRepoPutGetSweep(t *testing.T) {
	db := openTestDB(t)
	images := NewImageRepo(db)
	boardsRepo := NewBoardRepo(db)

	data := []byte{0x89, 0x50, 0x4e, 0x47}
	ref, err := images.Put(data, 1.25)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, aspect, err := images.Get(ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) || aspect != 1.25 {
		t.Fatalf("Get = (%v, %v)", got, aspect)
	}

	// Referenced image survives a sweep; orphan does not.
	orphan, _ := images.Put([]byte{1, 2, 3}, 1.0)
	bd, _ := boardsRepo.Create("B")
	blk := board.NewImageBlock(0, 0, 200, ref, 1.25)
	if err := boardsRepo.ReplaceBlocks(bd.ID, []board.Block{blk}); err != nil {
		t.Fatalf("ReplaceBlocks: %v", err)
	}
	n, err := images.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("Sweep removed %d rows, want 1", n)
	}
	if _, _, err := images.Get(ref); err != nil {
		t.Fatalf("referenced image swept: %v", err)
	}
	if _, _, err := images.Get(orphan); err != ErrNotFound {
		t.Fatalf("orphan Get = %v, want ErrNotFound", err)
	}
}

func TestSettingsRepo(t *testing.T) {
	db := openTestDB(t)
	settings := NewSettingsRepo(db)

	v, err := settings.Get("theme", "dark")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "dark" {
		t.Fatalf("Get fallback = %q, want dark", v)
	}
	if err := settings.Set("theme", "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := settings.Set("theme", "solarized"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, err = settings.Get("theme", "dark")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "solarized" {
		t.Fatalf("Get = %q, want solarized", v)
	}
}

func TestAutosaverDebounce(t *testing.T) {
	db := openTestDB(t)
	repo := NewBoardRepo(db)
	bd, _ := repo.Create("Auto")

	st := board.NewStore()
	a := NewAutosaver(repo, st, bd.ID)
	a.delay = 20 * time.Millisecond
	st.Subscribe(a.Mark)

	for i := 0; i < 5; i++ {
		if err := st.Create(board.NewTextBlock(float64(i*100), 0, "n")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	// Nothing should be written before the quiet period elapses.
	blocks, _ := repo.LoadBlocks(bd.ID)
	if len(blocks) != 0 {
		t.Fatalf("flushed too early: %d blocks", len(blocks))
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		blocks, _ = repo.LoadBlocks(bd.ID)
		if len(blocks) == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("autosave never flushed, have %d blocks", len(blocks))
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestAutosaverCloseFlushes(t *testing.T) {
	db := openTestDB(t)
	repo := NewBoardRepo(db)
	bd, _ := repo.Create("Final")

	st := board.NewStore()
	a := NewAutosaver(repo, st, bd.ID)
	st.Subscribe(a.Mark)

	if err := st.Create(board.NewTextBlock(0, 0, "bye")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Close before the debounce fires; the final flush must still write.
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	blocks, err := repo.LoadBlocks(bd.ID)
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Close did not flush: %d blocks", len(blocks))
	}

	// Mark after Close is a no-op.
	a.Mark()
}
