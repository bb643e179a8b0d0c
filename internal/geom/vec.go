// Package geom holds the small amount of 2D math the road generator needs.
//
// X is the lateral axis (positive to the right) and Y is the forward axis.
// Tile-local offsets are expressed in cell units and may land on half cells;
// world positions are local offsets scaled component-wise by the cell size.
package geom

import (
	"fmt"
	"sort"
)

// Vec2 is a 2D vector.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 {
	return Vec2{X: v.X * o.X, Y: v.Y * o.Y}
}

// RotateLeft turns v a quarter turn counter-clockwise (-90 degrees of heading).
func (v Vec2) RotateLeft() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// RotateRight turns v a quarter turn clockwise (+90 degrees of heading).
func (v Vec2) RotateRight() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

// FlipForward negates the forward component.
func (v Vec2) FlipForward() Vec2 {
	return Vec2{X: v.X, Y: -v.Y}
}

// FlipLateral negates the lateral component.
func (v Vec2) FlipLateral() Vec2 {
	return Vec2{X: -v.X, Y: v.Y}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Map applies fn to every vector and returns a new slice.
func Map(vs []Vec2, fn func(Vec2) Vec2) []Vec2 {
	out := make([]Vec2, len(vs))
	for i, v := range vs {
		out[i] = fn(v)
	}
	return out
}

// Sort orders vectors by Y, then X.
func Sort(vs []Vec2) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Y != vs[j].Y {
			return vs[i].Y < vs[j].Y
		}
		return vs[i].X < vs[j].X
	})
}
