package road

import (
	"fmt"

	"github.com/lawnchairsociety/roadgen/internal/catalog"
	"github.com/lawnchairsociety/roadgen/internal/geom"
)

// probe is the entry cell of whatever comes after o, half a cell past its
// exit along its end direction.
func probe(o Oriented) geom.Vec2 {
	return o.Exit.Add(o.EndDirection.Unit().Scale(0.5))
}

// overlaps reports whether o placed at pos would touch a reserved cell, or
// leave the next tile no free entry cell.
func (r *Run) overlaps(pos geom.Vec2, o Oriented) bool {
	cell := r.gen.opts.CellSize
	if r.state.AnyReserved(worldCells(pos, o.Shape, cell)) {
		return true
	}
	return r.state.IsReserved(pos.Add(probe(o).Mul(cell)))
}

// blocked reports whether o's own cells at the cursor are taken.
func (r *Run) blocked(o Oriented) bool {
	return r.state.AnyReserved(worldCells(r.state.Cursor, o.Shape, r.gen.opts.CellSize))
}

// makeRoom moves the cursor forward until intended fits there.
//
// A sideways heading is first turned straight with the opposite canonical
// curve. Straight fillers are then inserted one at a time; when the heading
// had to be turned, each filler is followed by a trial curve back to the
// original heading, which is taken back out if the intended tile still does
// not fit behind it.
func (r *Run) makeRoom(intended Oriented) error {
	if !r.overlaps(r.state.Cursor, intended) {
		return nil
	}

	cat := r.gen.catalog
	turned := r.state.Heading
	needAfter := turned != geom.Straight

	var afterRef catalog.TileRef
	var after *catalog.Tile
	if needAfter {
		realignRef, realign := cat.Curve(turned.Opposite())
		ro := Orient(realign, turned)
		if r.blocked(ro) {
			return fmt.Errorf("%w: realign curve blocked at %v", ErrCollisionUnresolved, r.state.Cursor)
		}
		r.commit(KindRealign, realignRef, realign, ro)
		afterRef, after = cat.Curve(turned)
	}

	straight := cat.Straight()
	straightRef := catalog.Ref(0, catalog.IndexStraight)

	for fillers := 0; ; fillers++ {
		switch {
		case !needAfter:
			if !r.overlaps(r.state.Cursor, intended) {
				return nil
			}
		case fillers > 0:
			ao := Identity(after)
			if !r.blocked(ao) {
				r.commit(KindAfterCurve, afterRef, after, ao)
				if !r.overlaps(r.state.Cursor, intended) {
					return nil
				}
				r.undoLast(geom.Straight)
			}
		}

		if fillers >= r.gen.opts.MaxCorrections {
			return fmt.Errorf("%w: still overlapping after %d straight insertions", ErrCollisionUnresolved, fillers)
		}

		so := Identity(straight)
		if r.blocked(so) {
			return fmt.Errorf("%w: filler straight blocked at %v", ErrCollisionUnresolved, r.state.Cursor)
		}
		r.commit(KindFiller, straightRef, straight, so)
	}
}

// commit appends a placement at the cursor, reserves its cells and moves the
// cursor past it.
func (r *Run) commit(kind Kind, ref catalog.TileRef, t *catalog.Tile, o Oriented) {
	s := r.state
	p := Placement{
		Seq:          len(s.Placements),
		Kind:         kind,
		Tile:         ref,
		Name:         t.Name,
		Asset:        t.Asset,
		Position:     s.Cursor,
		Rotation:     o.Rotation,
		Mirrored:     o.Mirrored,
		Shape:        o.Shape,
		Exit:         o.Exit,
		EndDirection: o.EndDirection,
		Duration:     t.Seconds(),
	}
	if o.Mirrored && t.MirrorAsset != "" {
		p.Asset = t.MirrorAsset
	}

	cell := r.gen.opts.CellSize
	s.reserve(p.Cells(cell))
	s.Placements = append(s.Placements, p)
	s.Cursor = p.Next(cell)
	s.Heading = p.EndDirection
	if kind.Counted() {
		s.GeneratedSeconds += p.Duration
	}
}

// undoLast drops the newest placement and restores the cursor to where it was
// placed, heading along heading.
func (r *Run) undoLast(heading geom.Direction) {
	s := r.state
	last := s.Placements[len(s.Placements)-1]
	s.Placements = s.Placements[:len(s.Placements)-1]
	s.release(last.Cells(r.gen.opts.CellSize))
	s.Cursor = last.Position
	s.Heading = heading
	if last.Kind.Counted() {
		s.GeneratedSeconds -= last.Duration
	}
}
