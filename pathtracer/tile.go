package pathtracer

import (
	"fmt"
	"sort"
)

// DefaultTileSize is the path tracer's tile edge length in pixels.
// Smaller than internal/parallel's 64x64 canvas tile: a path-traced tile
// holds no per-pixel byte buffer of its own (samples accumulate straight
// into the shared film), so the tile only needs to be small enough to
// keep per-tile variance-driven convergence decisions local.
const DefaultTileSize = 32

// Tile is one render tile: a pixel rectangle tracked independently for
// sample count, spec.md §4.8's "ring pattern emission from the center
// outward" unit of work. Grounded on internal/parallel.Tile's X/Y/Width/
// Height addressing fields, without that type's owned RGBA byte buffer
// (Data) since a path-tracer tile's only state is how many samples it
// has accumulated, not rasterized pixels of its own.
type Tile struct {
	Index         int
	X, Y          int
	Width, Height int
	Samples       int
	done          bool
}

// TileRepository partitions a width x height film into DefaultTileSize
// (or a caller-supplied) tile grid and serves pending tiles in ring order
// — the center tile first, then outward by distance — supporting
// multiple passes over the same tile set until every tile is marked
// Done.
//
// internal/parallel.DirtyRegion was considered as the pending-tile
// bitmap (its one-bit-per-tile design is exactly this problem), but its
// API only supports bulk Clear/GetAndClear, not clearing a single tile's
// bit while leaving the others pending — which this repository needs, so
// completion is tracked with a plain per-tile bool instead (see
// DESIGN.md).
type TileRepository struct {
	tiles  []*Tile
	order  []int
	tilesX int
	tilesY int
}

// NewTileRepository builds the tile grid for a width x height film.
func NewTileRepository(width, height, tileSize int) *TileRepository {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	tiles := make([]*Tile, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x, y := tx*tileSize, ty*tileSize
			w, h := tileSize, tileSize
			if x+w > width {
				w = width - x
			}
			if y+h > height {
				h = height - y
			}
			tiles = append(tiles, &Tile{Index: len(tiles), X: x, Y: y, Width: w, Height: h})
		}
	}

	return &TileRepository{tiles: tiles, order: ringOrder(tilesX, tilesY), tilesX: tilesX, tilesY: tilesY}
}

// ringOrder returns tile indices (row-major) sorted nearest-first by
// squared Euclidean distance from the grid's center, ties broken by
// row-major index for determinism.
func ringOrder(tilesX, tilesY int) []int {
	n := tilesX * tilesY
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	cx, cy := float64(tilesX-1)/2, float64(tilesY-1)/2
	distOf := func(i int) float64 {
		dx := float64(i%tilesX) - cx
		dy := float64(i/tilesX) - cy
		return dx*dx + dy*dy
	}
	sort.SliceStable(idx, func(a, b int) bool { return distOf(idx[a]) < distOf(idx[b]) })
	return idx
}

// PendingTiles returns every not-yet-Done tile in ring order, the set a
// render pass should dispatch work for.
func (r *TileRepository) PendingTiles() []*Tile {
	pending := make([]*Tile, 0, len(r.tiles))
	for _, i := range r.order {
		if t := r.tiles[i]; !t.done {
			pending = append(pending, t)
		}
	}
	return pending
}

// MarkDone marks t complete: no further pass will schedule it again.
func (r *TileRepository) MarkDone(t *Tile) { t.done = true }

// AllDone reports whether every tile has been marked Done.
func (r *TileRepository) AllDone() bool {
	for _, t := range r.tiles {
		if !t.done {
			return false
		}
	}
	return true
}

// TileCount returns the total number of tiles in the grid.
func (r *TileRepository) TileCount() int { return len(r.tiles) }

// TileState returns, for every tile in row-major order, its accumulated
// sample count and done flag — spec.md §4.8's "per-tile done" state a
// saved render must restore.
func (r *TileRepository) TileState() (samples []int, done []bool) {
	samples = make([]int, len(r.tiles))
	done = make([]bool, len(r.tiles))
	for i, t := range r.tiles {
		samples[i] = t.Samples
		done[i] = t.done
	}
	return samples, done
}

// RestoreTileState overwrites every tile's sample count and done flag from
// a previously captured TileState, used when resuming a saved render.
func (r *TileRepository) RestoreTileState(samples []int, done []bool) error {
	if len(samples) != len(r.tiles) || len(done) != len(r.tiles) {
		return fmt.Errorf("pathtracer: tile state length mismatch: got %d/%d tiles, want %d", len(samples), len(done), len(r.tiles))
	}
	for i, t := range r.tiles {
		t.Samples = samples[i]
		t.done = done[i]
	}
	return nil
}

// TilesX, TilesY return the tile grid dimensions.
func (r *TileRepository) TilesX() int { return r.tilesX }
func (r *TileRepository) TilesY() int { return r.tilesY }
