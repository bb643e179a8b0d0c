// Package road lays out a connected, non-overlapping road of catalog tiles
// whose variety follows the intensity segments of an audio clip.
package road

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lawnchairsociety/roadgen/internal/audio"
	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/config"
	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/logger"
)

// Options are the generator knobs that are not part of the catalog.
type Options struct {
	CellSize       geom.Vec2
	MaxCorrections int // straight insertions allowed per placement
	FillerMargin   int // decoration margin in cells, 0 disables decorations
}

// DefaultOptions returns the stock generator settings.
func DefaultOptions() Options {
	return Options{
		CellSize:       geom.V(20, 20),
		MaxCorrections: 20,
		FillerMargin:   2,
	}
}

// OptionsFromConfig converts the generator section of the configuration file.
func OptionsFromConfig(cfg config.GeneratorConfig) Options {
	return Options{
		CellSize:       geom.V(cfg.CellSize[0], cfg.CellSize[1]),
		MaxCorrections: cfg.MaxCorrections,
		FillerMargin:   cfg.FillerMargin,
	}
}

// Generator turns analyses into roads. It holds no per-run state and can be
// shared between goroutines.
type Generator struct {
	catalog *catalog.Catalog
	opts    Options
}

// NewGenerator validates cat and returns a generator for it.
func NewGenerator(cat *catalog.Catalog, opts Options) (*Generator, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: nil catalog", catalog.ErrInvalidCatalog)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if opts.CellSize.X <= 0 || opts.CellSize.Y <= 0 {
		return nil, fmt.Errorf("road: cell size must be positive, got %v", opts.CellSize)
	}
	if opts.MaxCorrections < 0 {
		opts.MaxCorrections = 0
	}
	return &Generator{catalog: cat, opts: opts}, nil
}

// Catalog returns the tile set the generator builds from.
func (g *Generator) Catalog() *catalog.Catalog { return g.catalog }

// Options returns the generator settings.
func (g *Generator) Options() Options { return g.opts }

// MaxOvershoot bounds how far GeneratedSeconds can run past the clip length.
// The last tile drawn may bring its adjustment tile, and each of the two may
// need a realign curve, MaxCorrections straight fillers and an after-curve.
func (g *Generator) MaxOvershoot() float64 {
	longest := g.catalog.MaxTileDuration()
	fillers := g.catalog.Straight().Seconds() * float64(g.opts.MaxCorrections)
	return 2 * (3*longest + fillers)
}

// Result is everything a run produced. After an abort it holds the partial log.
type Result struct {
	Placements       []Placement   `json:"placements"`
	Decorations      []geom.Vec2   `json:"decorations,omitempty"`
	GeneratedSeconds float64       `json:"generated_seconds"`
	ClipLength       float64       `json:"clip_length"`
	Seed             int64         `json:"seed"`
	State            State         `json:"-"`
	Fingerprint      string        `json:"fingerprint"`
	Elapsed          time.Duration `json:"-"`
}

// Run is a single generation. Drive it with Start, Step until it reports no
// more work, then Finish; or let Generator.Generate do all three.
type Run struct {
	gen          *Generator
	analysis     audio.Analysis
	sink         Sink
	rng          *rand.Rand
	seed         int64
	bracketWidth float64

	state   *PathState
	status  State
	next    int // next segment
	emitted int // placements already handed to the sink
	started time.Time
}

// NewRun prepares a run over analysis. A nil sink discards events.
func (g *Generator) NewRun(analysis audio.Analysis, sink Sink) *Run {
	if sink == nil {
		sink = discardSink{}
	}
	return &Run{
		gen:      g,
		analysis: analysis,
		sink:     sink,
		state:    NewPathState(),
		status:   StateIdle,
	}
}

// Generate runs a whole generation. ctx is checked between segments.
func (g *Generator) Generate(ctx context.Context, analysis audio.Analysis, sink Sink) (*Result, error) {
	run := g.NewRun(analysis, sink)
	if err := run.Start(); err != nil {
		return run.Result(), err
	}
	for {
		if err := ctx.Err(); err != nil {
			run.status = StateAborted
			return run.Result(), err
		}
		more, err := run.Step()
		if err != nil {
			return run.Result(), err
		}
		if !more {
			break
		}
	}
	return run.Finish()
}

// State returns the lifecycle state of the run.
func (r *Run) State() State { return r.status }

// Reserved returns a sorted snapshot of the reserved world cells.
func (r *Run) Reserved() []geom.Vec2 { return r.state.Snapshot() }

// Start seeds the run and lays the start tile and the first straight.
func (r *Run) Start() error {
	if r.status != StateIdle {
		return fmt.Errorf("%w: start called in state %s", ErrNotGenerating, r.status)
	}
	r.started = time.Now()
	r.status = StateGenerating

	cat := r.gen.catalog
	r.seed = int64(math.Round(r.analysis.Peak))
	r.rng = rand.New(rand.NewSource(r.seed))
	r.bracketWidth = r.analysis.Peak / float64(len(cat.Categories))

	logger.Debug("Starting road generation",
		"segments", len(r.analysis.Segments), "clip_length", r.analysis.ClipLength,
		"peak", r.analysis.Peak, "seed", r.seed)

	r.state.Cursor = geom.V(0, -r.gen.opts.CellSize.Y)
	r.commit(KindStart, catalog.TileRef{Role: catalog.RoleStart}, &cat.Start, Identity(&cat.Start))
	r.state.Cursor = geom.Vec2{}
	r.state.Heading = geom.Straight

	straightRef := catalog.Ref(0, catalog.IndexStraight)
	if err := r.place(KindPath, straightRef, cat.Straight(), Identity(cat.Straight())); err != nil {
		return err
	}
	return nil
}

// Step lays the tiles for the next segment. It reports whether another step
// has work to do.
func (r *Run) Step() (bool, error) {
	if r.status != StateGenerating {
		return false, fmt.Errorf("%w: step called in state %s", ErrNotGenerating, r.status)
	}
	if r.done() {
		return false, nil
	}

	seg := r.analysis.Segments[r.next]
	r.next++
	category := selectCategory(seg.AverageAmplitude, r.bracketWidth, len(r.gen.catalog.Categories))

	remaining := float64(seg.DurationSeconds())
	for remaining > 0 && r.state.GeneratedSeconds < r.analysis.ClipLength {
		before := r.state.GeneratedSeconds
		if err := r.placeNext(category); err != nil {
			return false, err
		}
		remaining -= r.state.GeneratedSeconds - before
	}
	return !r.done(), nil
}

func (r *Run) done() bool {
	return r.next >= len(r.analysis.Segments) || r.state.GeneratedSeconds >= r.analysis.ClipLength
}

// placeNext draws one tile from category and places it, preceded by its
// adjustment tile when it cannot be entered from a straight heading.
func (r *Run) placeNext(category int) error {
	ref, tile := r.chooseTile(category)

	if tile.StartDirection != geom.Straight && r.state.Heading == geom.Straight {
		adjRef := *tile.Adjustment
		adj := r.gen.catalog.Tile(adjRef)
		if err := r.place(KindAdjustment, adjRef, adj, Identity(adj)); err != nil {
			return err
		}
	}

	return r.place(KindPath, ref, tile, Orient(tile, r.state.Heading))
}

// place makes room for o, commits it and forwards everything new to the sink.
func (r *Run) place(kind Kind, ref catalog.TileRef, t *catalog.Tile, o Oriented) error {
	index := len(r.state.Placements)
	if err := r.makeRoom(o); err != nil {
		return r.abort(&GenerationError{Index: index, Tile: ref, Err: err})
	}
	r.commit(kind, ref, t, o)

	for ; r.emitted < len(r.state.Placements); r.emitted++ {
		if err := r.sink.Place(r.state.Placements[r.emitted]); err != nil {
			return r.abort(fmt.Errorf("sink rejected placement %d: %w", r.emitted, err))
		}
	}
	return nil
}

func (r *Run) abort(err error) error {
	r.status = StateAborted
	logger.Error("Road generation aborted", "error", err,
		"placements", len(r.state.Placements), "generated_seconds", r.state.GeneratedSeconds)
	return err
}

// Finish lays the finish tile, the decorations and reports completion.
func (r *Run) Finish() (*Result, error) {
	if r.status != StateGenerating {
		return r.Result(), fmt.Errorf("%w: finish called in state %s", ErrNotGenerating, r.status)
	}

	cat := r.gen.catalog
	if err := r.place(KindFinish, catalog.TileRef{Role: catalog.RoleFinish}, &cat.Finish, Identity(&cat.Finish)); err != nil {
		return r.Result(), err
	}

	decorations := r.decorations()
	if ds, ok := r.sink.(DecorationSink); ok && len(decorations) > 0 {
		if err := ds.Decorate(decorations); err != nil {
			return r.Result(), r.abort(fmt.Errorf("sink rejected decorations: %w", err))
		}
	}
	if err := r.sink.Complete(r.state.GeneratedSeconds); err != nil {
		return r.Result(), r.abort(fmt.Errorf("sink rejected completion: %w", err))
	}
	r.status = StateCompleted

	result := r.Result()
	result.Decorations = decorations
	logger.Always(fmt.Sprintf("Generated road worth %.1f seconds, song length %.1f seconds",
		result.GeneratedSeconds, result.ClipLength),
		"placements", len(result.Placements), "elapsed", result.Elapsed, "fingerprint", result.Fingerprint)
	return result, nil
}

// Result snapshots the run. It can be called in any state.
func (r *Run) Result() *Result {
	res := &Result{
		Placements:       append([]Placement(nil), r.state.Placements...),
		GeneratedSeconds: r.state.GeneratedSeconds,
		ClipLength:       r.analysis.ClipLength,
		Seed:             r.seed,
		State:            r.status,
	}
	res.Fingerprint = Fingerprint(res.Placements)
	if !r.started.IsZero() {
		res.Elapsed = time.Since(r.started)
	}
	return res
}
