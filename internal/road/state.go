package road

import "github.com/lawnchairsociety/roadgen/internal/geom"

// State is the lifecycle of a Run.
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateCompleted
	StateAborted
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// PathState is the mutable part of a run. It belongs to exactly one Run.
type PathState struct {
	Cursor           geom.Vec2
	Heading          geom.Direction
	GeneratedSeconds float64
	Reserved         map[geom.Vec2]struct{}
	Placements       []Placement
}

// NewPathState returns an empty state at the origin heading straight.
func NewPathState() *PathState {
	return &PathState{Reserved: make(map[geom.Vec2]struct{})}
}

// IsReserved reports whether the world cell centre c is taken.
func (s *PathState) IsReserved(c geom.Vec2) bool {
	_, ok := s.Reserved[c]
	return ok
}

// AnyReserved reports whether any of cells is taken.
func (s *PathState) AnyReserved(cells []geom.Vec2) bool {
	for _, c := range cells {
		if s.IsReserved(c) {
			return true
		}
	}
	return false
}

func (s *PathState) reserve(cells []geom.Vec2) {
	for _, c := range cells {
		s.Reserved[c] = struct{}{}
	}
}

func (s *PathState) release(cells []geom.Vec2) {
	for _, c := range cells {
		delete(s.Reserved, c)
	}
}

// Snapshot returns the reserved cells sorted by Y, then X.
func (s *PathState) Snapshot() []geom.Vec2 {
	cells := make([]geom.Vec2, 0, len(s.Reserved))
	for c := range s.Reserved {
		cells = append(cells, c)
	}
	geom.Sort(cells)
	return cells
}
