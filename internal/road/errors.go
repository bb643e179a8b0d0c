package road

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/roadgen/internal/catalog"
)

var (
	// ErrCollisionUnresolved means the correction procedure could not make
	// room for a tile. The run is aborted; the partial log stays available.
	ErrCollisionUnresolved = errors.New("road: collision could not be resolved")

	// ErrNotGenerating is returned by Step and Finish outside the Generating state.
	ErrNotGenerating = errors.New("road: run is not generating")
)

// GenerationError reports which placement a run failed on.
type GenerationError struct {
	Index int             // index the placement would have had in the log
	Tile  catalog.TileRef // tile that was being placed
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("placement %d (tile %s): %v", e.Index, e.Tile, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
