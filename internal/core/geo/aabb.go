package geo

// AABB is an axis-aligned bounding box. X and Y locate the bottom-left
// corner; W and H extend rightwards and upwards. It is a value type:
// entity movement produces a new box rather than mutating the old one.
type AABB struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NewAABB creates a bounding box from its bottom-left corner and size.
func NewAABB(x, y, w, h float64) AABB {
	return AABB{X: x, Y: y, W: w, H: h}
}

func (a AABB) Left() float64   { return a.X }
func (a AABB) Right() float64  { return a.X + a.W }
func (a AABB) Bottom() float64 { return a.Y }
func (a AABB) Top() float64    { return a.Y + a.H }

// Center returns the midpoint of the box.
func (a AABB) Center() (x, y float64) {
	return a.X + a.W/2, a.Y + a.H/2
}

// Intersects reports whether a and b overlap with non-zero area.
// The comparisons are strict: boxes that only touch along an edge or
// corner do not intersect. Symmetric in its arguments.
func (a AABB) Intersects(b AABB) bool {
	return a.Left() < b.Right() && a.Right() > b.Left() &&
		a.Bottom() < b.Top() && a.Top() > b.Bottom()
}

// ContainsPoint reports whether the point lies inside the box,
// edges included. Note the asymmetry with Intersects: a point on the
// boundary is contained, while an edge-touching box does not intersect.
func (a AABB) ContainsPoint(px, py float64) bool {
	return px >= a.Left() && px <= a.Right() &&
		py >= a.Bottom() && py <= a.Top()
}
