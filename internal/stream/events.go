package stream

import (
	"github.com/lawnchairsociety/roadgen/internal/audio"
	"github.com/lawnchairsociety/roadgen/internal/geom"
	"github.com/lawnchairsociety/roadgen/internal/road"
)

// Event types sent to the client.
const (
	EventPlacement   = "placement"
	EventDecorations = "decorations"
	EventComplete    = "complete"
	EventSummary     = "summary"
	EventError       = "error"
)

// Error codes carried by error events.
const (
	CodeBadRequest  = "bad_request"
	CodeAudio       = "audio"
	CodeCollision   = "collision"
	CodeInternal    = "internal"
	CodeUnavailable = "unavailable"
)

// Request asks for one road. Either Audio names a file inside the audio
// directory, or Timeline carries one amplitude value per second.
type Request struct {
	Name       string    `json:"name"`
	Audio      string    `json:"audio,omitempty"`
	Timeline   []float64 `json:"timeline,omitempty"`
	ClipLength float64   `json:"clip_length,omitempty"`
	Save       bool      `json:"save,omitempty"`
}

// Event is one JSON message from server to client.
type Event struct {
	Type             string          `json:"type"`
	Placement        *road.Placement `json:"placement,omitempty"`
	Decorations      []geom.Vec2     `json:"decorations,omitempty"`
	GeneratedSeconds float64         `json:"generated_seconds,omitempty"`
	ClipLength       float64         `json:"clip_length,omitempty"`
	Fingerprint      string          `json:"fingerprint,omitempty"`
	TrackID          string          `json:"track_id,omitempty"`
	Code             string          `json:"code,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// analysis turns a timeline request into segments. The timeline is used as
// given, one value per second.
func (req Request) analysis(segmenter audio.Segmenter) audio.Analysis {
	clip := req.ClipLength
	if clip <= 0 {
		clip = float64(len(req.Timeline))
	}
	return segmenter.AnalyzeTimeline(audio.Rescale(append([]float64(nil), req.Timeline...)), clip)
}
