package road

import (
	"math"
	"strings"

	"github.com/lawnchairsociety/roadgen/internal/geom"
)

type gridPos struct {
	X, Y int
}

func toGrid(c, cellSize geom.Vec2) gridPos {
	return gridPos{X: int(math.Floor(c.X / cellSize.X)), Y: int(math.Floor(c.Y / cellSize.Y))}
}

// mapSymbol is the character a placement kind is drawn with.
func mapSymbol(k Kind) byte {
	switch k {
	case KindStart:
		return 'S'
	case KindFinish:
		return 'F'
	case KindPath, KindAdjustment:
		return '#'
	default:
		return '+'
	}
}

// RenderMap draws the road as ASCII, forward pointing up. Corrections are
// drawn as '+', decorations as '.'.
func RenderMap(placements []Placement, decorations []geom.Vec2, cellSize geom.Vec2) string {
	cells := make(map[gridPos]byte)
	for _, d := range decorations {
		cells[toGrid(d, cellSize)] = '.'
	}
	for _, p := range placements {
		for _, c := range p.Cells(cellSize) {
			cells[toGrid(c, cellSize)] = mapSymbol(p.Kind)
		}
	}
	if len(cells) == 0 {
		return "(empty road)\n"
	}

	// Find bounds
	minX, maxX, minY, maxY := math.MaxInt, math.MinInt, math.MaxInt, math.MinInt
	for pos := range cells {
		minX = min(minX, pos.X)
		maxX = max(maxX, pos.X)
		minY = min(minY, pos.Y)
		maxY = max(maxY, pos.Y)
	}

	var output strings.Builder
	for y := maxY; y >= minY; y-- {
		for x := minX; x <= maxX; x++ {
			if ch, ok := cells[gridPos{X: x, Y: y}]; ok {
				output.WriteByte(ch)
			} else {
				output.WriteByte(' ')
			}
		}
		output.WriteString("\n")
	}
	return output.String()
}

// Legend explains the RenderMap symbols.
func Legend() string {
	return "S start  F finish  # road  + correction  . filler\n"
}
