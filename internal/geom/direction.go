package geom

import "fmt"

// Direction is the global heading of travel on the road grid.
// The road never travels backward (-Y), so three headings are enough.
type Direction int

const (
	Straight Direction = iota // +Y
	Left                      // -X
	Right                     // +X
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case Straight:
		return "straight"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Opposite returns the mirrored turn. Straight is its own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// Valid reports whether d is one of the three headings.
func (d Direction) Valid() bool {
	return d == Straight || d == Left || d == Right
}

// Unit returns the unit vector pointing along the heading.
func (d Direction) Unit() Vec2 {
	switch d {
	case Left:
		return Vec2{X: -1}
	case Right:
		return Vec2{X: 1}
	default:
		return Vec2{Y: 1}
	}
}

// Degrees returns the quarter-turn rotation a renderer applies for the heading.
func (d Direction) Degrees() int {
	switch d {
	case Left:
		return -90
	case Right:
		return 90
	default:
		return 0
	}
}

// ParseDirection converts a string to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "straight", "forward", "":
		return Straight, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	default:
		return Straight, false
	}
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("geom: invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, ok := ParseDirection(string(text))
	if !ok {
		return fmt.Errorf("geom: unknown direction %q", text)
	}
	*d = parsed
	return nil
}
