package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/roadgen/internal/geom"
)

// TileDefinition represents a tile in the YAML file.
type TileDefinition struct {
	Name           string       `yaml:"name"`
	Shape          [][2]float64 `yaml:"shape"`
	Exit           [2]float64   `yaml:"exit"`
	StartDirection string       `yaml:"start_direction"`
	EndDirection   string       `yaml:"end_direction"`
	Duration       float64      `yaml:"duration"`
	SpawnWeight    *int         `yaml:"spawn_weight"`
	Asset          string       `yaml:"asset"`
	MirrorAsset    string       `yaml:"mirror_asset"`
	Adjustment     *[2]int      `yaml:"adjustment"` // [category, index]
}

// CategoryDefinition represents a category in the YAML file.
type CategoryDefinition struct {
	Name  string           `yaml:"name"`
	Tiles []TileDefinition `yaml:"tiles"`
}

// CatalogDefinition represents the structure of a catalog YAML file.
type CatalogDefinition struct {
	Name       string               `yaml:"name"`
	Start      TileDefinition       `yaml:"start"`
	Finish     TileDefinition       `yaml:"finish"`
	Filler     TileDefinition       `yaml:"filler"`
	Categories []CategoryDefinition `yaml:"categories"`
}

// defaultSpawnWeight applies when a definition leaves spawn_weight out.
const defaultSpawnWeight = 50

// Load reads, normalizes and validates a catalog YAML file.
func Load(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var def CatalogDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	c, err := CreateCatalogFromDefinition(def)
	if err != nil {
		return nil, err
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCatalogFromDefinition converts a definition without validating it.
func CreateCatalogFromDefinition(def CatalogDefinition) (*Catalog, error) {
	c := &Catalog{
		Name:       def.Name,
		Categories: make([]Category, len(def.Categories)),
	}

	var err error
	if c.Start, err = CreateTileFromDefinition(def.Start); err != nil {
		return nil, fmt.Errorf("start tile: %w", err)
	}
	if c.Finish, err = CreateTileFromDefinition(def.Finish); err != nil {
		return nil, fmt.Errorf("finish tile: %w", err)
	}
	if c.Filler, err = CreateTileFromDefinition(def.Filler); err != nil {
		return nil, fmt.Errorf("filler tile: %w", err)
	}

	for i, catDef := range def.Categories {
		cat := Category{Name: catDef.Name, Tiles: make([]Tile, len(catDef.Tiles))}
		for j, tileDef := range catDef.Tiles {
			if cat.Tiles[j], err = CreateTileFromDefinition(tileDef); err != nil {
				return nil, fmt.Errorf("category %d tile %d: %w", i, j, err)
			}
		}
		c.Categories[i] = cat
	}

	return c, nil
}

// CreateTileFromDefinition converts a single tile definition.
func CreateTileFromDefinition(def TileDefinition) (Tile, error) {
	start, ok := geom.ParseDirection(def.StartDirection)
	if !ok {
		return Tile{}, fmt.Errorf("%w: unknown start_direction %q", ErrInvalidCatalog, def.StartDirection)
	}
	end, ok := geom.ParseDirection(def.EndDirection)
	if !ok {
		return Tile{}, fmt.Errorf("%w: unknown end_direction %q", ErrInvalidCatalog, def.EndDirection)
	}

	t := Tile{
		Name:           def.Name,
		Shape:          make([]geom.Vec2, len(def.Shape)),
		Exit:           geom.V(def.Exit[0], def.Exit[1]),
		StartDirection: start,
		EndDirection:   end,
		Duration:       def.Duration,
		SpawnWeight:    defaultSpawnWeight,
		Asset:          def.Asset,
		MirrorAsset:    def.MirrorAsset,
	}
	for i, cell := range def.Shape {
		t.Shape[i] = geom.V(cell[0], cell[1])
	}
	if def.SpawnWeight != nil {
		t.SpawnWeight = *def.SpawnWeight
	}
	if def.Adjustment != nil {
		ref := Ref(def.Adjustment[0], def.Adjustment[1])
		t.Adjustment = &ref
	}
	return t, nil
}
