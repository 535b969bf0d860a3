package geometry

import "math"

// Point is a 2D landmark position, usually in normalized image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// JointAngle returns the angle at vertex formed by the segments vertex->a and
// vertex->c, in degrees within [0, 180]. A straight joint gives 180.
// ok is false when either segment has zero length.
func JointAngle(a, vertex, c Point) (deg float64, ok bool) {
	ux, uy := a.X-vertex.X, a.Y-vertex.Y
	vx, vy := c.X-vertex.X, c.Y-vertex.Y

	lu := math.Hypot(ux, uy)
	lv := math.Hypot(vx, vy)
	if lu == 0 || lv == 0 || math.IsNaN(lu) || math.IsNaN(lv) {
		return 0, false
	}

	cos := (ux*vx + uy*vy) / (lu * lv)
	// rounding can push cos slightly out of [-1, 1]
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, true
}
