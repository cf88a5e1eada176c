package straighten

import (
	"testing"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/layout/route"
	"github.com/jbaarsen/metromap/pkg/metro"
)

func testParams() route.Params {
	return route.Params{
		XMin: -20, XMax: 20,
		YMin: -20, YMax: 20,
		MoveCost:      1,
		BendWeight:    1,
		NodeSetRadius: 3,
	}
}

// bentSection builds a mostly horizontal five station run that sags in the
// middle: a(0,0) b(2,1) c(4,2) d(6,1) e(8,0), all on one line.
func bentSection(t *testing.T) (*metro.Map, metro.Selection) {
	t.Helper()
	m := metro.NewMap()
	l := m.AddLine("U1", "#e30613")

	positions := []grid.Node{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 4, Y: 2}, {X: 6, Y: 1}, {X: 8, Y: 0}}
	stations := make([]*metro.Station, len(positions))
	for i, pos := range positions {
		stations[i] = m.AddStation(metro.NewStation(pos, ""))
		l.Append(stations[i].ID)
	}

	paths := [][]grid.Node{
		{{X: 1, Y: 0}},
		{{X: 3, Y: 1}},
		{{X: 5, Y: 1}},
		{{X: 7, Y: 0}},
	}
	sel := metro.Selection{}
	for i, s := range stations {
		sel.Stations = append(sel.Stations, s.ID)
		if i == 0 {
			continue
		}
		e, err := m.AddEdge(stations[i-1].ID, s.ID)
		if err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		e.AddLine(l.ID)
		e.SetPath(paths[i-1])
		sel.Edges = append(sel.Edges, e.ID)
	}
	return m, sel
}

func TestStraightenBentSection(t *testing.T) {
	m, sel := bentSection(t)

	got, err := Straighten(m, sel, testParams(), nil)
	if err != nil {
		t.Fatalf("Straighten: %v", err)
	}

	wantX := map[metro.StationID]int{1: 0, 2: 2, 3: 4, 4: 6, 5: 8}
	for id, x := range wantX {
		s := got.Station(id)
		if s.Pos != grid.N(x, 0) {
			t.Errorf("station %d at %v, want %v", id, s.Pos, grid.N(x, 0))
		}
	}
	for _, e := range got.Edges() {
		poly := []grid.Node{got.Station(e.From).Pos}
		poly = append(poly, e.Path()...)
		poly = append(poly, got.Station(e.To).Pos)
		if !grid.IsOctilinearPath(poly) {
			t.Errorf("edge %d path %v not octilinear", e.ID, poly)
		}
		if grid.Bends(poly) != 0 {
			t.Errorf("edge %d still bends: %v", e.ID, poly)
		}
	}

	// The caller's map stays as it was.
	if m.Station(2).Pos != grid.N(2, 1) {
		t.Errorf("input map was modified: station 2 at %v", m.Station(2).Pos)
	}
}

func TestStraightenPinsLockedEnd(t *testing.T) {
	m, sel := bentSection(t)
	m.Station(1).Locked = true

	// Move the far end off axis so more than one candidate row exists.
	e := m.Station(5)
	e.Pos = grid.N(8, 2)
	last, _ := m.EdgeBetween(4, 5)
	last.SetPath([]grid.Node{{X: 7, Y: 1}})

	got, err := Straighten(m, sel, testParams(), nil)
	if err != nil {
		t.Fatalf("Straighten: %v", err)
	}

	if got.Station(1).Pos != grid.N(0, 0) {
		t.Errorf("locked end moved to %v", got.Station(1).Pos)
	}
	for _, s := range got.Stations() {
		if s.Pos.Y != 0 {
			t.Errorf("station %d not on the locked end's row: %v", s.ID, s.Pos)
		}
	}
}

func TestStraightenReroutesAdjacentEdge(t *testing.T) {
	m, sel := bentSection(t)

	// A branch hangs off the middle station.
	f := m.AddStation(metro.NewStation(grid.N(2, 3), ""))
	branch, err := m.AddEdge(3, f.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	branch.SetPath([]grid.Node{{X: 3, Y: 3}})

	got, err := Straighten(m, sel, testParams(), nil)
	if err != nil {
		t.Fatalf("Straighten: %v", err)
	}

	if got.Station(3).Pos != grid.N(4, 0) {
		t.Fatalf("junction at %v, want (4, 0)", got.Station(3).Pos)
	}
	if got.Station(f.ID).Pos != grid.N(2, 3) {
		t.Errorf("branch station moved to %v", got.Station(f.ID).Pos)
	}

	rerouted := got.Edge(branch.ID)
	poly := []grid.Node{got.Station(3).Pos}
	for i := len(rerouted.Path()) - 1; i >= 0; i-- {
		poly = append(poly, rerouted.Path()[i])
	}
	poly = append(poly, grid.N(2, 3))
	// Orientation depends on the edge's From endpoint; check both ways.
	if !grid.IsOctilinearPath(poly) {
		poly2 := []grid.Node{got.Station(3).Pos}
		poly2 = append(poly2, rerouted.Path()...)
		poly2 = append(poly2, grid.N(2, 3))
		if !grid.IsOctilinearPath(poly2) {
			t.Errorf("branch edge not octilinear after reroute: %v", rerouted.Path())
		}
	}
}

func TestStraightenFailsWhenBlocked(t *testing.T) {
	m := metro.NewMap()
	l := m.AddLine("U2", "#0066cc")
	a := m.AddStation(metro.NewStation(grid.N(0, 0), ""))
	b := m.AddStation(metro.NewStation(grid.N(2, 1), ""))
	c := m.AddStation(metro.NewStation(grid.N(4, 0), ""))
	for _, s := range []*metro.Station{a, b, c} {
		l.Append(s.ID)
	}
	ab, _ := m.AddEdge(a.ID, b.ID)
	bc, _ := m.AddEdge(b.ID, c.ID)
	ab.AddLine(l.ID)
	bc.AddLine(l.ID)
	ab.SetPath([]grid.Node{{X: 1, Y: 1}})
	bc.SetPath([]grid.Node{{X: 3, Y: 1}})

	// A foreign station sits on the only candidate row.
	m.AddStation(metro.NewStation(grid.N(1, 0), "blocker"))

	sel := metro.Selection{
		Stations: []metro.StationID{a.ID, b.ID, c.ID},
		Edges:    []metro.EdgeID{ab.ID, bc.ID},
	}
	_, err := Straighten(m, sel, testParams(), nil)
	if err == nil {
		t.Fatal("expected straighten to fail")
	}
	if errors.GetCode(err) != errors.ErrCodeStraighten {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeStraighten)
	}
}

func TestSectionFromSelectionRejectsBadShapes(t *testing.T) {
	m, sel := bentSection(t)

	t.Run("branching", func(t *testing.T) {
		f := m.AddStation(metro.NewStation(grid.N(4, 4), ""))
		e, _ := m.AddEdge(3, f.ID)
		bad := metro.Selection{
			Stations: append(append([]metro.StationID(nil), sel.Stations...), f.ID),
			Edges:    append(append([]metro.EdgeID(nil), sel.Edges...), e.ID),
		}
		if _, err := Straighten(m, bad, testParams(), nil); errors.GetCode(err) != errors.ErrCodeInvalidSelection {
			t.Errorf("err = %v, want invalid selection", err)
		}
	})

	t.Run("disconnected", func(t *testing.T) {
		bad := metro.Selection{
			Stations: []metro.StationID{1, 2, 4, 5},
			Edges:    []metro.EdgeID{sel.Edges[0], sel.Edges[3]},
		}
		if _, err := Straighten(m, bad, testParams(), nil); errors.GetCode(err) != errors.ErrCodeInvalidSelection {
			t.Errorf("err = %v, want invalid selection", err)
		}
	})

	t.Run("no shared line", func(t *testing.T) {
		bare := metro.NewMap()
		x := bare.AddStation(metro.NewStation(grid.N(0, 0), ""))
		y := bare.AddStation(metro.NewStation(grid.N(2, 0), ""))
		z := bare.AddStation(metro.NewStation(grid.N(4, 0), ""))
		l1 := bare.AddLine("A", "#111111")
		l2 := bare.AddLine("B", "#222222")
		xy, _ := bare.AddEdge(x.ID, y.ID)
		yz, _ := bare.AddEdge(y.ID, z.ID)
		xy.AddLine(l1.ID)
		yz.AddLine(l2.ID)
		xy.SetPath([]grid.Node{{X: 1, Y: 0}})
		yz.SetPath([]grid.Node{{X: 3, Y: 0}})

		bad := metro.Selection{
			Stations: []metro.StationID{x.ID, y.ID, z.ID},
			Edges:    []metro.EdgeID{xy.ID, yz.ID},
		}
		if _, err := Straighten(bare, bad, testParams(), nil); errors.GetCode(err) != errors.ErrCodeInvalidSelection {
			t.Errorf("err = %v, want invalid selection", err)
		}
	})
}
