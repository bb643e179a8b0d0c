package road

import "github.com/lawnchairsociety/roadgen/internal/geom"

// Sink receives committed placements in generation order, then one completion
// event. The generator never reads anything back from it.
type Sink interface {
	Place(p Placement) error
	Complete(generatedSeconds float64) error
}

// DecorationSink is implemented by sinks that also want the filler layout.
// Decorate is called once, between the finish tile and Complete.
type DecorationSink interface {
	Decorate(cells []geom.Vec2) error
}

// SinkFunc adapts a function to a Sink that ignores completion.
type SinkFunc func(p Placement) error

func (f SinkFunc) Place(p Placement) error { return f(p) }

func (f SinkFunc) Complete(float64) error { return nil }

type discardSink struct{}

func (discardSink) Place(Placement) error  { return nil }
func (discardSink) Complete(float64) error { return nil }

// Recorder is a Sink that keeps everything it receives.
type Recorder struct {
	Placements  []Placement
	Decorations []geom.Vec2
	Seconds     float64
	Completed   bool
}

func (r *Recorder) Place(p Placement) error {
	r.Placements = append(r.Placements, p)
	return nil
}

func (r *Recorder) Decorate(cells []geom.Vec2) error {
	r.Decorations = append(r.Decorations, cells...)
	return nil
}

func (r *Recorder) Complete(seconds float64) error {
	r.Seconds = seconds
	r.Completed = true
	return nil
}
