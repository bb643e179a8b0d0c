// Package audio turns decoded audio into the per-second intensity segments
// that drive road generation.
package audio

// Source exposes the raw amplitude data of a clip. Samples are mono and
// expected in [-1, 1].
type Source interface {
	Samples() []float64
	SampleRate() int
	Length() float64
}

// Clip is an in-memory Source.
type Clip struct {
	Name    string
	Data    []float64
	Rate    int
	Seconds float64
}

// NewClip wraps mono samples recorded at rate. The length is derived from the
// sample count.
func NewClip(name string, samples []float64, rate int) *Clip {
	c := &Clip{Name: name, Data: samples, Rate: rate}
	if rate > 0 {
		c.Seconds = float64(len(samples)) / float64(rate)
	}
	return c
}

// Samples returns the mono sample data.
func (c *Clip) Samples() []float64 { return c.Data }

// SampleRate returns samples per second.
func (c *Clip) SampleRate() int { return c.Rate }

// Length returns the clip length in seconds.
func (c *Clip) Length() float64 { return c.Seconds }

// TimelineClip builds a Clip whose samples already are one value per second,
// which is handy when the amplitude profile comes from somewhere other than
// a decoded file.
func TimelineClip(name string, perSecond []float64) *Clip {
	return NewClip(name, perSecond, 1)
}
