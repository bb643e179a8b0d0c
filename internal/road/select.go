package road

import (
	"math"

	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/logger"
)

// selectCategory maps an average amplitude to a category index. Brackets are
// closed on the upper side, so a value on a boundary picks the lower bracket.
func selectCategory(average, bracketWidth float64, count int) int {
	a := math.Abs(average)
	for i := 0; i < count; i++ {
		if a <= float64(i+1)*bracketWidth {
			return i
		}
	}
	return count - 1
}

// eligible reports whether t can be entered while travelling along heading.
func eligible(t *catalog.Tile, heading geom.Direction) bool {
	return heading == geom.Straight || t.StartDirection == geom.Straight || t.StartDirection == heading
}

// pickTile performs the cumulative weight scan for draw. Every scanned tile
// consumes its weight, eligible or not, so the result depends on catalog
// order. The last tile takes whatever is left. It returns -1 when nothing
// eligible was hit.
func pickTile(tiles []catalog.Tile, heading geom.Direction, draw int) int {
	for i := range tiles {
		t := &tiles[i]
		if eligible(t, heading) && (draw <= t.SpawnWeight || i == len(tiles)-1) {
			return i
		}
		draw -= t.SpawnWeight
	}
	return -1
}

// chooseTile draws a tile from category for the current heading, falling
// back to the canonical straight.
func (r *Run) chooseTile(category int) (catalog.TileRef, *catalog.Tile) {
	cat := r.gen.catalog.Categories[category]
	draw := r.rng.Intn(cat.TotalWeight() + 1)

	index := pickTile(cat.Tiles, r.state.Heading, draw)
	if index < 0 {
		logger.Warning("No tile matches, falling back to straight",
			"category", cat.Name, "heading", r.state.Heading, "draw", draw)
		return catalog.Ref(0, catalog.IndexStraight), r.gen.catalog.Straight()
	}
	return catalog.Ref(category, index), &cat.Tiles[index]
}
