package road

import (
	"slices"

	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/geom"
)

// Oriented is a tile template turned to face the current heading.
type Oriented struct {
	Shape        []geom.Vec2
	Exit         geom.Vec2
	EndDirection geom.Direction
	Rotation     int // degrees, -90, 0 or 90
	Mirrored     bool
}

// Identity returns the tile exactly as authored.
func Identity(t *catalog.Tile) Oriented {
	return Oriented{
		Shape:        slices.Clone(t.Shape),
		Exit:         t.Exit,
		EndDirection: t.EndDirection,
	}
}

// Orient turns t so that its entry lines up with heading.
//
// Tiles are authored facing forward (+Y). For a sideways heading the tile is
// rotated a quarter turn. A result that would point the road backward is
// replaced by the mirrored variant: the rotated shape with its forward axis
// flipped. Tiles that declare the heading as their start direction are
// already authored for it and stay untouched.
func Orient(t *catalog.Tile, heading geom.Direction) Oriented {
	o := Identity(t)
	if heading == geom.Straight || t.StartDirection == heading {
		return o
	}

	rotate := geom.Vec2.RotateLeft
	if heading == geom.Right {
		rotate = geom.Vec2.RotateRight
	}
	o.Rotation = heading.Degrees()
	o.Shape = geom.Map(o.Shape, rotate)
	o.Exit = rotate(o.Exit)

	switch t.EndDirection {
	case geom.Straight:
		o.EndDirection = heading
		// A forward flip leaves the lateral heading as it is.
		if o.Exit.Y < 0 {
			o.mirror()
		}
	case heading:
		// Turning further would face backward.
		o.mirror()
		o.EndDirection = geom.Straight
	default:
		o.EndDirection = geom.Straight
	}
	return o
}

func (o *Oriented) mirror() {
	o.Mirrored = true
	o.Shape = geom.Map(o.Shape, geom.Vec2.FlipForward)
	o.Exit = o.Exit.FlipForward()
}
