// Package catalog describes the tiles a road can be built from.
//
// A Catalog is validated once when it is loaded and is read-only afterwards;
// generation runs share it without copying.
package catalog

import (
	"fmt"

	"github.com/lawnchairsociety/roadgen/internal/geom"
)

// DefaultTileDuration replaces non-positive tile durations (about one 1x1 tile
// at drifting speed).
const DefaultTileDuration = 1.5

const (
	MinSpawnWeight = 1
	MaxSpawnWeight = 100
)

// Role marks tiles that live outside the categories.
type Role int

const (
	RoleCategory Role = iota // regular tile inside a category
	RoleStart
	RoleFinish
	RoleFiller
)

// String returns the string representation of a Role
func (r Role) String() string {
	switch r {
	case RoleCategory:
		return "category"
	case RoleStart:
		return "start"
	case RoleFinish:
		return "finish"
	case RoleFiller:
		return "filler"
	default:
		return "unknown"
	}
}

// TileRef points at a tile: a category slot or one of the special tiles.
type TileRef struct {
	Role     Role `json:"role"`
	Category int  `json:"category"`
	Index    int  `json:"index"`
}

// Ref returns a reference to tiles[index] of category.
func Ref(category, index int) TileRef {
	return TileRef{Role: RoleCategory, Category: category, Index: index}
}

func (r TileRef) String() string {
	if r.Role != RoleCategory {
		return r.Role.String()
	}
	return fmt.Sprintf("%d/%d", r.Category, r.Index)
}

// Tile is an immutable tile template.
type Tile struct {
	Name string

	// Shape lists the cell centres the tile covers, relative to its pivot,
	// in cell units. The pivot sits on the entry edge.
	Shape []geom.Vec2

	// Exit is the outgoing connection point relative to the pivot.
	Exit geom.Vec2

	// StartDirection other than Straight marks a tile that can only be
	// entered sideways (a U-turn for example); it needs an Adjustment tile
	// when the road is heading straight.
	StartDirection geom.Direction
	EndDirection   geom.Direction

	// Duration is how long driving over the tile takes, in seconds.
	Duration float64

	// SpawnWeight is the relative pick chance inside a category (1..100).
	SpawnWeight int

	// Asset and MirrorAsset are opaque handles for the rendering layer.
	// MirrorAsset is the mirrored variant used when orientation flips the tile.
	Asset       string
	MirrorAsset string

	Adjustment *TileRef
}

// Seconds returns Duration, or DefaultTileDuration for catalogs that were
// built without Normalize and carry a non-positive duration.
func (t *Tile) Seconds() float64 {
	if t.Duration <= 0 {
		return DefaultTileDuration
	}
	return t.Duration
}

// Category groups tiles sharing an amplitude bracket.
type Category struct {
	Name  string
	Tiles []Tile
}

// TotalWeight sums the spawn weights of every tile in the category.
func (c Category) TotalWeight() int {
	total := 0
	for _, t := range c.Tiles {
		total += t.SpawnWeight
	}
	return total
}
