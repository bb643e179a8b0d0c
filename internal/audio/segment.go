package audio

import "math"

const (
	DefaultGroupMinSeconds = 10
	DefaultMinChangeRate   = 0.4
)

// Segment is a contiguous run of timeline indices with a shared intensity.
type Segment struct {
	Indices          []int
	AverageAmplitude float64
}

// DurationSeconds is the number of one-second timeline values in the segment.
func (s Segment) DurationSeconds() int {
	return len(s.Indices)
}

// Segmenter groups a timeline into Segments.
type Segmenter struct {
	// GroupMinSeconds is how many values a group takes unconditionally.
	GroupMinSeconds int
	// MinChangeRate is the jump between neighbours that opens a new group
	// once the current one is full enough.
	MinChangeRate float64
}

// NewSegmenter returns a Segmenter with the stock thresholds.
func NewSegmenter() Segmenter {
	return Segmenter{
		GroupMinSeconds: DefaultGroupMinSeconds,
		MinChangeRate:   DefaultMinChangeRate,
	}
}

// Segment scans timeline left to right. Segments are never re-split.
func (s Segmenter) Segment(timeline []float64) []Segment {
	if len(timeline) == 0 {
		return nil
	}

	segments := []Segment{{}}
	for i, v := range timeline {
		cur := &segments[len(segments)-1]
		if i > 0 && len(cur.Indices) >= s.GroupMinSeconds && math.Abs(v-timeline[i-1]) >= s.MinChangeRate {
			segments = append(segments, Segment{Indices: []int{i}})
			continue
		}
		cur.Indices = append(cur.Indices, i)
	}

	for i := range segments {
		var total float64
		for _, idx := range segments[i].Indices {
			total += timeline[idx]
		}
		segments[i].AverageAmplitude = total / float64(len(segments[i].Indices))
	}
	return segments
}

// Analysis is everything the path generator needs from a clip.
type Analysis struct {
	Timeline   []float64
	Segments   []Segment
	Peak       float64 // max |AverageAmplitude| over Segments
	ClipLength float64 // seconds
}

// Analyze resamples, rescales and segments src.
func (s Segmenter) Analyze(src Source) Analysis {
	timeline := Timeline(src)
	return s.AnalyzeTimeline(timeline, src.Length())
}

// AnalyzeTimeline segments an already prepared per-second timeline.
func (s Segmenter) AnalyzeTimeline(timeline []float64, clipLength float64) Analysis {
	a := Analysis{
		Timeline:   timeline,
		Segments:   s.Segment(timeline),
		ClipLength: clipLength,
	}
	for _, seg := range a.Segments {
		a.Peak = math.Max(a.Peak, math.Abs(seg.AverageAmplitude))
	}
	return a
}

// TotalSeconds sums the segment durations.
func (a Analysis) TotalSeconds() int {
	total := 0
	for _, seg := range a.Segments {
		total += seg.DurationSeconds()
	}
	return total
}
