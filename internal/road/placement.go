package road

import (
	"fmt"

	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/geom"
)

// Kind records why a tile was placed.
type Kind int

const (
	KindStart      Kind = iota // anchor one cell behind the origin
	KindPath                   // tile chosen from the audio
	KindAdjustment             // entry tile for a sideways-starting tile
	KindRealign                // curve turning the road back to straight before corrections
	KindFiller                 // straight inserted to move past reserved cells
	KindAfterCurve             // curve restoring the heading after fillers
	KindFinish
)

var kindNames = []string{"start", "path", "adjustment", "realign", "filler", "after_curve", "finish"}

// String returns the string representation of a Kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Counted reports whether the kind contributes to generated seconds.
func (k Kind) Counted() bool {
	return k != KindStart && k != KindFinish
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

func (k Kind) MarshalText() ([]byte, error) {
	if k.String() == "unknown" {
		return nil, fmt.Errorf("road: invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("road: unknown kind %q", text)
	}
	*k = parsed
	return nil
}

// Placement is one committed tile in world space.
type Placement struct {
	Seq      int             `json:"seq"`
	Kind     Kind            `json:"kind"`
	Tile     catalog.TileRef `json:"tile"`
	Name     string          `json:"name"`
	Asset    string          `json:"asset,omitempty"`
	Position geom.Vec2       `json:"position"`
	Rotation int             `json:"rotation"`
	Mirrored bool            `json:"mirrored"`

	// Shape and Exit are oriented but still local, in cell units.
	Shape        []geom.Vec2    `json:"shape"`
	Exit         geom.Vec2      `json:"exit"`
	EndDirection geom.Direction `json:"end_direction"`
	Duration     float64        `json:"duration"`
}

// Cells returns the world-space cell centres the placement reserves.
func (p Placement) Cells(cellSize geom.Vec2) []geom.Vec2 {
	return worldCells(p.Position, p.Shape, cellSize)
}

// Next is where the following placement starts.
func (p Placement) Next(cellSize geom.Vec2) geom.Vec2 {
	return p.Position.Add(p.Exit.Mul(cellSize))
}

func worldCells(pos geom.Vec2, shape []geom.Vec2, cellSize geom.Vec2) []geom.Vec2 {
	cells := make([]geom.Vec2, len(shape))
	for i, c := range shape {
		cells[i] = pos.Add(c.Mul(cellSize))
	}
	return cells
}
