// Package grid provides octilinear coordinate arithmetic for the map grid.
//
// All layout computation happens on an integer grid where edges may only run
// horizontally, vertically, or at 45 degrees. The package offers the Node
// value type plus direction classification, distance metrics, and path
// predicates used by the router and optimizer.
//
// Everything in this package is a pure function over value types; there is no
// shared state and no failure mode beyond reporting "not aligned" where an
// octilinear alignment was required but absent.
package grid

import (
	"fmt"
	"math"
)

// Node is a position on the integer grid. It is a pure value with no
// identity of its own; two Nodes with equal coordinates are the same place.
type Node struct {
	X int
	Y int
}

// N is shorthand for constructing a Node.
func N(x, y int) Node { return Node{X: x, Y: y} }

// Add returns the component-wise sum of n and other.
func (n Node) Add(other Node) Node { return Node{n.X + other.X, n.Y + other.Y} }

// Sub returns the component-wise difference of n and other.
func (n Node) Sub(other Node) Node { return Node{n.X - other.X, n.Y - other.Y} }

// ManhattanDistance returns |dx| + |dy| between n and target.
func (n Node) ManhattanDistance(target Node) int {
	return abs(n.X-target.X) + abs(n.Y-target.Y)
}

// ChebyshevDistance returns max(|dx|, |dy|), the number of octilinear unit
// steps needed to reach target when diagonal moves are allowed.
func (n Node) ChebyshevDistance(target Node) int {
	dx := abs(n.X - target.X)
	dy := abs(n.Y - target.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// DiagonalDistance returns the length of the shortest octilinear path from n
// to target where diagonal steps count sqrt(2): dx+dy - (2-sqrt2)*min(dx,dy).
func (n Node) DiagonalDistance(target Node) float64 {
	dx := abs(n.X - target.X)
	dy := abs(n.Y - target.Y)
	return float64(dx+dy) - (2.0-math.Sqrt2)*float64(min(dx, dy))
}

// Neighbors returns the eight surrounding nodes in clockwise order starting
// at the top-left neighbor.
func (n Node) Neighbors() []Node {
	return []Node{
		{n.X - 1, n.Y - 1},
		{n.X, n.Y - 1},
		{n.X + 1, n.Y - 1},
		{n.X + 1, n.Y},
		{n.X + 1, n.Y + 1},
		{n.X, n.Y + 1},
		{n.X - 1, n.Y + 1},
		{n.X - 1, n.Y},
	}
}

// IsNeighborOf reports whether other is one of the eight nodes adjacent to n.
// A node is not a neighbor of itself.
func (n Node) IsNeighborOf(other Node) bool {
	if n == other {
		return false
	}
	return abs(n.X-other.X) <= 1 && abs(n.Y-other.Y) <= 1
}

// String formats the node as "(x, y)".
func (n Node) String() string { return fmt.Sprintf("(%d, %d)", n.X, n.Y) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
