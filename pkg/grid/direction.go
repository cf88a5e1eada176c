package grid

// Direction is one of the eight octilinear headings, or DirNone when two
// nodes are not octilinearly aligned (or are equal).
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirUpRight
	DirRight
	DirDownRight
	DirDown
	DirDownLeft
	DirLeft
	DirUpLeft
)

var directionNames = map[Direction]string{
	DirNone:      "none",
	DirUp:        "up",
	DirUpRight:   "up-right",
	DirRight:     "right",
	DirDownRight: "down-right",
	DirDown:      "down",
	DirDownLeft:  "down-left",
	DirLeft:      "left",
	DirUpLeft:    "up-left",
}

func (d Direction) String() string { return directionNames[d] }

// IsDiagonal reports whether the heading is one of the four diagonals.
func (d Direction) IsDiagonal() bool {
	switch d {
	case DirUpRight, DirDownRight, DirDownLeft, DirUpLeft:
		return true
	}
	return false
}

// Delta returns the unit step for the heading. DirNone yields the zero node.
func (d Direction) Delta() Node {
	switch d {
	case DirUp:
		return Node{0, -1}
	case DirUpRight:
		return Node{1, -1}
	case DirRight:
		return Node{1, 0}
	case DirDownRight:
		return Node{1, 1}
	case DirDown:
		return Node{0, 1}
	case DirDownLeft:
		return Node{-1, 1}
	case DirLeft:
		return Node{-1, 0}
	case DirUpLeft:
		return Node{-1, -1}
	}
	return Node{}
}

// Heading classifies the direction from one node to another. It returns
// DirNone when the nodes coincide or are not aligned on one of the eight
// octilinear headings. Screen coordinates are assumed: y grows downward.
func Heading(from, to Node) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y

	switch {
	case dx == 0 && dy < 0:
		return DirUp
	case dx == 0 && dy > 0:
		return DirDown
	case dy == 0 && dx > 0:
		return DirRight
	case dy == 0 && dx < 0:
		return DirLeft
	case dx == dy && dx > 0:
		return DirDownRight
	case dx == dy && dx < 0:
		return DirUpLeft
	case dx == -dy && dx > 0:
		return DirUpRight
	case dx == -dy && dx < 0:
		return DirDownLeft
	}
	return DirNone
}

// Aligned reports whether two nodes lie on a common octilinear heading.
func Aligned(a, b Node) bool { return Heading(a, b) != DirNone }
