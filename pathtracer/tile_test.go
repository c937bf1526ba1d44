package pathtracer

import "testing"

func TestNewTileRepository_PartitionsWholeFilm(t *testing.T) {
	repo := NewTileRepository(100, 70, 32)
	if repo.TilesX() != 4 || repo.TilesY() != 3 {
		t.Fatalf("got tiles %dx%d, want 4x3", repo.TilesX(), repo.TilesY())
	}
	var covered int
	for _, tile := range repo.PendingTiles() {
		covered += tile.Width * tile.Height
	}
	if covered != 100*70 {
		t.Fatalf("tiles cover %d pixels, want %d", covered, 100*70)
	}
}

func TestRingOrder_StartsAtCenter(t *testing.T) {
	order := ringOrder(5, 5)
	if order[0] != 12 { // (2,2) is dead center of a 5x5 grid, index 2*5+2=12
		t.Fatalf("first tile index = %d, want 12 (center)", order[0])
	}
}

func TestTileRepository_MarkDoneRemovesFromPending(t *testing.T) {
	repo := NewTileRepository(64, 64, 32)
	if repo.TileCount() != 4 {
		t.Fatalf("got %d tiles, want 4", repo.TileCount())
	}
	pending := repo.PendingTiles()
	repo.MarkDone(pending[0])
	if len(repo.PendingTiles()) != 3 {
		t.Fatalf("got %d pending after MarkDone, want 3", len(repo.PendingTiles()))
	}
	for _, tl := range repo.PendingTiles() {
		repo.MarkDone(tl)
	}
	if !repo.AllDone() {
		t.Fatal("expected AllDone after marking every tile done")
	}
}
