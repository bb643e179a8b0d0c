package road

import (
	"math"

	"github.com/lawnchairsociety/roadgen/internal/geom"
)

func (r *Run) decorations() []geom.Vec2 {
	filler := r.gen.catalog.Filler
	if r.gen.opts.FillerMargin <= 0 || (filler.Name == "" && len(filler.Shape) == 0) {
		return nil
	}
	return FillerLayout(r.state.Snapshot(), r.gen.opts.CellSize, r.gen.opts.FillerMargin)
}

// FillerLayout covers the area around a road with filler cell centres. The
// area is the bounding box of the reserved cells grown by margin cells on
// every side. Reserved cells are skipped.
func FillerLayout(reserved []geom.Vec2, cellSize geom.Vec2, margin int) []geom.Vec2 {
	if len(reserved) == 0 {
		return nil
	}

	taken := make(map[geom.Vec2]struct{}, len(reserved))
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, c := range reserved {
		taken[c] = struct{}{}
		x, y := c.X/cellSize.X, c.Y/cellSize.Y
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	m := float64(margin)
	var out []geom.Vec2
	for y := minY - m; y <= maxY+m; y++ {
		for x := minX - m; x <= maxX+m; x++ {
			c := geom.V(x*cellSize.X, y*cellSize.Y)
			if _, ok := taken[c]; !ok {
				out = append(out, c)
			}
		}
	}
	return out
}
