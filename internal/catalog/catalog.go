package catalog

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/logger"
)

// ErrInvalidCatalog is wrapped by every fatal validation failure.
var ErrInvalidCatalog = errors.New("catalog: invalid tile catalog")

// Fixed slots of category 0, reused as correction primitives.
const (
	IndexStraight   = 0
	IndexLeftCurve  = 1
	IndexRightCurve = 2
)

// Catalog is the full tile set of a road theme.
type Catalog struct {
	Name       string
	Categories []Category
	Start      Tile
	Finish     Tile
	Filler     Tile
}

// Tile resolves a reference. It panics on an out-of-range reference; refs
// coming from a validated catalog are always in range.
func (c *Catalog) Tile(ref TileRef) *Tile {
	switch ref.Role {
	case RoleStart:
		return &c.Start
	case RoleFinish:
		return &c.Finish
	case RoleFiller:
		return &c.Filler
	default:
		return &c.Categories[ref.Category].Tiles[ref.Index]
	}
}

// Has reports whether ref points at an existing tile.
func (c *Catalog) Has(ref TileRef) bool {
	if ref.Role != RoleCategory {
		return ref.Role == RoleStart || ref.Role == RoleFinish || ref.Role == RoleFiller
	}
	if ref.Category < 0 || ref.Category >= len(c.Categories) {
		return false
	}
	return ref.Index >= 0 && ref.Index < len(c.Categories[ref.Category].Tiles)
}

// Straight returns the canonical straight tile.
func (c *Catalog) Straight() *Tile { return c.Tile(Ref(0, IndexStraight)) }

// LeftCurve returns the canonical left curve.
func (c *Catalog) LeftCurve() *Tile { return c.Tile(Ref(0, IndexLeftCurve)) }

// RightCurve returns the canonical right curve.
func (c *Catalog) RightCurve() *Tile { return c.Tile(Ref(0, IndexRightCurve)) }

// Curve returns the canonical curve turning toward dir.
func (c *Catalog) Curve(dir geom.Direction) (TileRef, *Tile) {
	if dir == geom.Left {
		return Ref(0, IndexLeftCurve), c.LeftCurve()
	}
	return Ref(0, IndexRightCurve), c.RightCurve()
}

// MaxTileDuration is the longest single tile duration in the categories, as
// counted during generation.
func (c *Catalog) MaxTileDuration() float64 {
	var longest float64
	for _, cat := range c.Categories {
		for i := range cat.Tiles {
			longest = max(longest, cat.Tiles[i].Seconds())
		}
	}
	return longest
}

// Normalize corrects recoverable authoring mistakes in place and logs a
// warning for each one. It is meant for loaders; generation never calls it.
func (c *Catalog) Normalize() {
	fix := func(where string, t *Tile) {
		if t.Duration <= 0 {
			logger.Warning("Tile duration must be positive, using default",
				"tile", where, "name", t.Name, "duration", t.Duration, "default", DefaultTileDuration)
			t.Duration = DefaultTileDuration
		}
		if t.SpawnWeight < MinSpawnWeight || t.SpawnWeight > MaxSpawnWeight {
			clamped := min(max(t.SpawnWeight, MinSpawnWeight), MaxSpawnWeight)
			logger.Warning("Tile spawn weight out of range, clamping",
				"tile", where, "name", t.Name, "weight", t.SpawnWeight, "clamped", clamped)
			t.SpawnWeight = clamped
		}
	}

	for i := range c.Categories {
		for j := range c.Categories[i].Tiles {
			fix(Ref(i, j).String(), &c.Categories[i].Tiles[j])
		}
	}
	fix("start", &c.Start)
	fix("finish", &c.Finish)
	fix("filler", &c.Filler)
}

// Validate checks the invariants generation relies on. Every failure wraps
// ErrInvalidCatalog.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	var errs []error
	for i, cat := range c.Categories {
		if len(cat.Tiles) == 0 {
			errs = append(errs, fmt.Errorf("%w: category %d (%s) has no tiles", ErrInvalidCatalog, i, cat.Name))
		}
		for j := range cat.Tiles {
			errs = append(errs, c.validateTile(Ref(i, j).String(), &cat.Tiles[j])...)
		}
	}

	errs = append(errs, c.validateRoles()...)

	for _, special := range []struct {
		name string
		tile *Tile
	}{{"start", &c.Start}, {"finish", &c.Finish}} {
		if len(special.tile.Shape) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s tile has no shape", ErrInvalidCatalog, special.name))
		}
	}

	return errors.Join(errs...)
}

func (c *Catalog) validateTile(where string, t *Tile) []error {
	var errs []error
	if len(t.Shape) == 0 {
		errs = append(errs, fmt.Errorf("%w: tile %s (%s) has no shape", ErrInvalidCatalog, where, t.Name))
	}
	if t.SpawnWeight < MinSpawnWeight || t.SpawnWeight > MaxSpawnWeight {
		errs = append(errs, fmt.Errorf("%w: tile %s (%s) spawn weight %d outside %d..%d",
			ErrInvalidCatalog, where, t.Name, t.SpawnWeight, MinSpawnWeight, MaxSpawnWeight))
	}
	if !t.StartDirection.Valid() || !t.EndDirection.Valid() {
		errs = append(errs, fmt.Errorf("%w: tile %s (%s) has an unknown direction", ErrInvalidCatalog, where, t.Name))
	}
	if t.StartDirection == geom.Straight {
		return errs
	}

	if t.Adjustment == nil || !c.Has(*t.Adjustment) || t.Adjustment.Role != RoleCategory {
		return append(errs, fmt.Errorf("%w: tile %s (%s) starts %s but has no valid adjustment tile",
			ErrInvalidCatalog, where, t.Name, t.StartDirection))
	}
	if adj := c.Tile(*t.Adjustment); adj.StartDirection != geom.Straight {
		errs = append(errs, fmt.Errorf("%w: adjustment tile %s for %s must start straight",
			ErrInvalidCatalog, t.Adjustment, where))
	}
	return errs
}

// validateRoles checks the straight / left / right slots of category 0.
func (c *Catalog) validateRoles() []error {
	first := c.Categories[0].Tiles
	if len(first) < 3 {
		return []error{fmt.Errorf("%w: category 0 needs a straight, a left curve and a right curve, has %d tiles",
			ErrInvalidCatalog, len(first))}
	}

	roles := []struct {
		index int
		name  string
		end   geom.Direction
	}{
		{IndexStraight, "straight", geom.Straight},
		{IndexLeftCurve, "left curve", geom.Left},
		{IndexRightCurve, "right curve", geom.Right},
	}

	var errs []error
	for _, role := range roles {
		t := first[role.index]
		if t.StartDirection != geom.Straight || t.EndDirection != role.end {
			errs = append(errs, fmt.Errorf("%w: category 0 tile %d must be a %s (start straight, end %s), got start %s end %s",
				ErrInvalidCatalog, role.index, role.name, role.end, t.StartDirection, t.EndDirection))
		}
	}
	if s := first[IndexStraight]; s.Exit.X != 0 || s.Exit.Y <= 0 {
		errs = append(errs, fmt.Errorf("%w: category 0 straight must exit forward, exit is %v",
			ErrInvalidCatalog, s.Exit))
	}
	return errs
}
