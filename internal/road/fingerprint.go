package road

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the ordered placement sequence. Two runs with the same
// fingerprint laid exactly the same road.
func Fingerprint(placements []Placement) string {
	var b strings.Builder
	for _, p := range placements {
		fmt.Fprintf(&b, "%d|%s|%s|%g,%g|%d|%t|%s|%g\n",
			p.Seq, p.Kind, p.Tile, p.Position.X, p.Position.Y, p.Rotation, p.Mirrored, p.EndDirection, p.Duration)
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
