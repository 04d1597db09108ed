// Package geom provides the 2-D primitives shared by the layout manager
// and the template registry: points, dimensions, and bounding boxes.
//
// Coordinates follow diagram convention: x grows rightward, y grows
// downward, and a shape's position is its top-left corner.
package geom

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimension is a width/height pair intrinsic to a component category.
type Dimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the dimension has no area.
func (d Dimension) IsZero() bool { return d.Width == 0 && d.Height == 0 }

// Bounds is a rectangle anchored at its top-left corner.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect builds a Bounds from a top-left position and a dimension.
func Rect(pos Point, dim Dimension) Bounds {
	return Bounds{X: pos.X, Y: pos.Y, Width: dim.Width, Height: dim.Height}
}

// TopLeft returns the rectangle's anchor point.
func (b Bounds) TopLeft() Point { return Point{X: b.X, Y: b.Y} }

// Center returns the rectangle's center point.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// LeftCenter returns the midpoint of the left boundary.
func (b Bounds) LeftCenter() Point { return Point{X: b.X, Y: b.Y + b.Height/2} }

// RightCenter returns the midpoint of the right boundary.
func (b Bounds) RightCenter() Point { return Point{X: b.X + b.Width, Y: b.Y + b.Height/2} }

// TopCenter returns the midpoint of the top boundary.
func (b Bounds) TopCenter() Point { return Point{X: b.X + b.Width/2, Y: b.Y} }

// BottomCenter returns the midpoint of the bottom boundary.
func (b Bounds) BottomCenter() Point { return Point{X: b.X + b.Width/2, Y: b.Y + b.Height} }

// Intersects reports whether two rectangles overlap with positive area.
// Shared boundary lines do not count as an overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.X < o.X+o.Width && o.X < b.X+b.Width &&
		b.Y < o.Y+o.Height && o.Y < b.Y+b.Height
}
