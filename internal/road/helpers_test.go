package road

import (
	"math/rand"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/lawnchairsociety/roadgen/internal/audio"
	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/geom"
)

var unitCell = geom.V(1, 1)

func oneCell(name string, exit geom.Vec2, end geom.Direction, weight int) catalog.Tile {
	return catalog.Tile{
		Name:         name,
		Shape:        []geom.Vec2{geom.V(0, 0.5)},
		Exit:         exit,
		EndDirection: end,
		Duration:     1.5,
		SpawnWeight:  weight,
	}
}

// simpleCatalog has single-cell tiles only. A road built from them climbs
// monotonically and never needs corrections.
func simpleCatalog() *catalog.Catalog {
	basic := func() []catalog.Tile {
		return []catalog.Tile{
			oneCell("straight", geom.V(0, 1), geom.Straight, 50),
			oneCell("left", geom.V(-0.5, 0.5), geom.Left, 25),
			oneCell("right", geom.V(0.5, 0.5), geom.Right, 25),
		}
	}
	return &catalog.Catalog{
		Name: "simple",
		Categories: []catalog.Category{
			{Name: "calm", Tiles: basic()},
			{Name: "busy", Tiles: basic()},
		},
		Start:  oneCell("start", geom.V(0, 1), geom.Straight, 1),
		Finish: oneCell("finish", geom.V(0, 1), geom.Straight, 1),
		Filler: oneCell("filler", geom.Vec2{}, geom.Straight, 1),
	}
}

func shippedCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	cat, err := catalog.Load(filepath.Join(filepath.Dir(file), "..", "..", "data", "catalog.yaml"))
	if err != nil {
		t.Fatalf("failed to load shipped catalog: %v", err)
	}
	return cat
}

func newTestGenerator(t *testing.T, cat *catalog.Catalog, cell geom.Vec2) *Generator {
	t.Helper()
	opts := DefaultOptions()
	opts.CellSize = cell
	g, err := NewGenerator(cat, opts)
	if err != nil {
		t.Fatalf("NewGenerator() = %v", err)
	}
	return g
}

// randomAnalysis builds a reproducible timeline of the given length.
func randomAnalysis(seed int64, seconds int) audio.Analysis {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, seconds)
	level := 0.0
	for i := range values {
		if i%12 == 0 {
			level = rng.Float64()*2 - 1
		}
		values[i] = level + (rng.Float64()-0.5)*0.1
	}
	return audio.NewSegmenter().AnalyzeTimeline(audio.Rescale(values), float64(seconds))
}

func checkNoOverlap(t *testing.T, placements []Placement, cell geom.Vec2) {
	t.Helper()
	owner := make(map[geom.Vec2]int)
	for _, p := range placements {
		for _, c := range p.Cells(cell) {
			if prev, ok := owner[c]; ok {
				t.Fatalf("cell %v claimed by placement %d and %d", c, prev, p.Seq)
			}
			owner[c] = p.Seq
		}
	}
}

func checkContinuity(t *testing.T, placements []Placement, cell geom.Vec2) {
	t.Helper()
	for i := 0; i+1 < len(placements); i++ {
		want := placements[i].Next(cell)
		if got := placements[i+1].Position; got != want {
			t.Fatalf("placement %d at %v, want %v (exit of %d %s)",
				i+1, got, want, i, placements[i].Kind)
		}
	}
}

func countedSeconds(placements []Placement) float64 {
	var total float64
	for _, p := range placements {
		if p.Kind.Counted() {
			total += p.Duration
		}
	}
	return total
}

func kinds(placements []Placement) []Kind {
	out := make([]Kind, len(placements))
	for i, p := range placements {
		out[i] = p.Kind
	}
	return out
}

// audioOf is a flat clip of the given length.
func audioOf(seconds int) audio.Analysis {
	values := make([]float64, seconds)
	for i := range values {
		values[i] = 0.5
	}
	return audio.NewSegmenter().AnalyzeTimeline(values, float64(seconds))
}
