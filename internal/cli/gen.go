package cli

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Benchmark map generators. Each produces a deterministic map with slight
// zigzag in the station placement so a layout run has bends to remove.
var generators = map[string]func(n int) *metro.Map{
	"line":  genLine,
	"cross": genCross,
	"star":  genStar,
	"ring":  genRing,
}

// generateMap builds the named benchmark map with n stations per line.
func generateMap(kind string, n int) (*metro.Map, error) {
	gen, ok := generators[kind]
	if !ok {
		return nil, fmt.Errorf("unknown map generator %q (have: %s)", kind, strings.Join(generatorNames(), ", "))
	}
	if n < 2 {
		return nil, fmt.Errorf("generated maps need at least 2 stations per line, got %d", n)
	}
	return gen(n), nil
}

func generatorNames() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// addRun appends a run of stations to the map as one line, connecting
// consecutive stations with edges.
func addRun(m *metro.Map, name, color string, positions []grid.Node) {
	l := m.AddLine(name, color)
	var prev *metro.Station
	for _, pos := range positions {
		s := m.AddStation(metro.NewStation(pos, ""))
		l.Append(s.ID)
		if prev != nil {
			if e, err := m.AddEdge(prev.ID, s.ID); err == nil {
				e.AddLine(l.ID)
			}
		}
		prev = s
	}
}

// genLine is a single horizontal line that sags every other station.
func genLine(n int) *metro.Map {
	m := metro.NewMap()
	positions := make([]grid.Node, n)
	for i := range positions {
		positions[i] = grid.N(4*i, i%2)
	}
	addRun(m, "U1", "#e30613", positions)
	return m
}

// genCross is a horizontal and a vertical line crossing mid-map without a
// shared station, so the router has to thread one line past the other.
func genCross(n int) *metro.Map {
	m := metro.NewMap()

	horizontal := make([]grid.Node, n)
	for i := range horizontal {
		horizontal[i] = grid.N(4*i, i%2)
	}
	addRun(m, "U1", "#e30613", horizontal)

	midX := 4 * (n - 1) / 2
	vertical := make([]grid.Node, n)
	for i := range vertical {
		vertical[i] = grid.N(midX+1+i%2, 4*i-2*(n-1))
	}
	addRun(m, "U2", "#0066cc", vertical)

	return m
}

// genStar is two lines sharing a hub station, radiating out in four arms.
func genStar(n int) *metro.Map {
	m := metro.NewMap()
	hub := m.AddStation(metro.NewStation(grid.N(0, 0), "Hub"))

	arm := func(dx, dy int) []*metro.Station {
		stations := make([]*metro.Station, n)
		for i := range stations {
			jitter := i % 2
			pos := grid.N(dx*4*(i+1)+jitter*dy, dy*4*(i+1)+jitter*dx)
			stations[i] = m.AddStation(metro.NewStation(pos, ""))
		}
		return stations
	}
	west, east := arm(-1, 0), arm(1, 0)
	north, south := arm(0, -1), arm(0, 1)

	connect := func(name, color string, negative, positive []*metro.Station) {
		l := m.AddLine(name, color)
		seq := make([]*metro.Station, 0, 2*n+1)
		for i := len(negative) - 1; i >= 0; i-- {
			seq = append(seq, negative[i])
		}
		seq = append(seq, hub)
		seq = append(seq, positive...)
		for i, s := range seq {
			l.Append(s.ID)
			if i > 0 {
				if e, err := m.AddEdge(seq[i-1].ID, s.ID); err == nil {
					e.AddLine(l.ID)
				}
			}
		}
	}
	connect("U1", "#e30613", west, east)
	connect("U2", "#0066cc", north, south)

	return m
}

// genRing is a closed loop of n stations on a rough circle.
func genRing(n int) *metro.Map {
	m := metro.NewMap()
	l := m.AddLine("Ring", "#f0a000")

	radius := float64(max(6, n))
	stations := make([]*metro.Station, n)
	for i := range stations {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pos := grid.N(int(math.Round(radius*math.Cos(angle))), int(math.Round(radius*math.Sin(angle))))
		stations[i] = m.AddStation(metro.NewStation(pos, ""))
		l.Append(stations[i].ID)
	}
	for i, s := range stations {
		next := stations[(i+1)%n]
		if e, err := m.AddEdge(s.ID, next.ID); err == nil {
			e.AddLine(l.ID)
		}
	}
	return m
}
