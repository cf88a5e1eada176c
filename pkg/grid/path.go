package grid

import "math"

// Angle returns the angle in rounded degrees formed at mid by the segments
// mid→first and mid→third. For octilinear segments the result is one of
// 0, 45, 90, 135, 180, 225, 270 or 315.
func Angle(first, mid, third Node) float64 {
	l := math.Atan2(float64(first.Y-mid.Y), float64(first.X-mid.X))
	r := math.Atan2(float64(third.Y-mid.Y), float64(third.X-mid.X))
	return math.Round(math.Abs(l-r) * 180.0 / math.Pi)
}

// AngleCost maps the turn angle at mid to a bend penalty. A straight
// continuation (180°) is free, sharper turns cost more, and a full reversal
// (0°) is impossible and yields +Inf. The table follows the octilinear
// layout cost model: 45° and 315° cost 2.0, 90° and 270° cost 1.5,
// 135° and 225° cost 1.0.
func AngleCost(first, mid, third Node) float64 {
	switch Angle(first, mid, third) {
	case 180:
		return 0.0
	case 135, 225:
		return 1.0
	case 90, 270:
		return 1.5
	case 45, 315:
		return 2.0
	}
	return math.Inf(1)
}

// IsOctilinearPath reports whether every consecutive pair of nodes in the
// path is one unit step apart on an octilinear heading. Paths shorter than
// two nodes are trivially octilinear.
func IsOctilinearPath(path []Node) bool {
	for i := 1; i < len(path); i++ {
		if path[i-1].ChebyshevDistance(path[i]) != 1 {
			return false
		}
		if Heading(path[i-1], path[i]) == DirNone {
			return false
		}
	}
	return true
}

// Bends counts the direction changes along the path.
func Bends(path []Node) int {
	bends := 0
	for i := 2; i < len(path); i++ {
		if Heading(path[i-2], path[i-1]) != Heading(path[i-1], path[i]) {
			bends++
		}
	}
	return bends
}
