package search

import (
	"context"
	"testing"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/layout/route"
	"github.com/jbaarsen/metromap/pkg/metro"
)

func testParams() route.Params {
	return route.Params{
		XMin: -100, XMax: 100,
		YMin: -100, YMax: 100,
		MoveCost:      1,
		BendWeight:    1,
		NodeSetRadius: 3,
	}
}

func testWeights() Weights {
	return Weights{Bend: 1, Spacing: 0.5, Overhead: 0.25}
}

// bentMap builds a three-station line whose middle station sits one row off
// the straight run between its neighbors, with routes and occupancy set up
// as a routing pass would leave them.
func bentMap(t *testing.T) (*metro.Map, route.Occupied, []metro.StationID) {
	t.Helper()
	m := metro.NewMap()
	l := m.AddLine("U1", "#0057b8")

	a := m.AddStation(metro.NewStation(grid.N(0, 0), "a"))
	b := m.AddStation(metro.NewStation(grid.N(4, 1), "b"))
	c := m.AddStation(metro.NewStation(grid.N(8, 0), "c"))
	for _, s := range []*metro.Station{a, b, c} {
		l.Append(s.ID)
	}

	e1, err := m.AddEdge(a.ID, b.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	e2, err := m.AddEdge(b.ID, c.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	e1.AddLine(l.ID)
	e2.AddLine(l.ID)

	e1.SetPath([]grid.Node{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}})
	e2.SetPath([]grid.Node{{X: 5, Y: 1}, {X: 6, Y: 1}, {X: 7, Y: 1}})
	e1.Settle()
	e2.Settle()

	occ := make(route.Occupied)
	for _, s := range []*metro.Station{a, b, c} {
		s.Settle(s.Pos)
		occ[s.Pos] = route.StationOccupant(s.ID)
	}
	for _, e := range []*metro.Edge{e1, e2} {
		for _, n := range e.Path() {
			occ[n] = route.EdgeOccupant(e.ID)
		}
	}

	a.SetCost(1)
	b.SetCost(1000)
	c.SetCost(1)

	return m, occ, []metro.StationID{a.ID, b.ID, c.ID}
}

func onlyStation(id metro.StationID) Movable {
	return func(s *metro.Station) bool { return s.ID == id }
}

func TestScoreStraightLineIsZero(t *testing.T) {
	m := metro.NewMap()
	a := m.AddStation(metro.NewStation(grid.N(0, 0), "a"))
	b := m.AddStation(metro.NewStation(grid.N(4, 0), "b"))
	e, err := m.AddEdge(a.ID, b.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	e.SetPath([]grid.Node{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}})

	if got := Score(m, testWeights()); got != 0 {
		t.Errorf("Score = %v, want 0 for a straight unit-step line", got)
	}
}

func TestScorePenalizesBends(t *testing.T) {
	m, _, _ := bentMap(t)
	if got := Score(m, testWeights()); got <= 0 {
		t.Errorf("Score = %v, want > 0 for a bent layout", got)
	}

	// The bend weight is the only term the fixture's bends feed, so doubling
	// it must raise the score.
	w := testWeights()
	low := Score(m, w)
	w.Bend *= 2
	if high := Score(m, w); high <= low {
		t.Errorf("Score with doubled bend weight = %v, want > %v", high, low)
	}
}

func TestCandidates(t *testing.T) {
	m, _, ids := bentMap(t)
	o := New(testParams(), testWeights(), nil)

	cands := o.candidates(m, m.Station(ids[1]))
	if len(cands) != neighborhoodTake {
		t.Fatalf("got %d candidates, want %d", len(cands), neighborhoodTake)
	}

	// (4,0) halves the total distance to both neighbors and is the closest
	// of the tied nodes, so it must be tried first.
	if cands[0] != grid.N(4, 0) {
		t.Errorf("first candidate = %v, want (4,0)", cands[0])
	}
}

func TestRunStraightensBentStation(t *testing.T) {
	m, occ, ids := bentMap(t)
	o := New(testParams(), testWeights(), nil)

	before := Score(m, testWeights())

	var snapshots, passes int
	moves, err := o.Run(context.Background(), m, occ, onlyStation(ids[1]), func(*metro.Map) {
		snapshots++
	}, func(int) {
		passes++
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if moves < 1 {
		t.Fatal("expected at least one accepted move")
	}
	if snapshots != moves {
		t.Errorf("onMove fired %d times for %d moves", snapshots, moves)
	}
	// Every pass reports, including the final zero-move one.
	if passes < 2 {
		t.Errorf("onPass fired %d times, want at least 2", passes)
	}

	if after := Score(m, testWeights()); after >= before {
		t.Errorf("score %v not improved from %v", after, before)
	}

	b := m.Station(ids[1])
	if b.Pos != grid.N(4, 0) {
		t.Errorf("middle station at %v, want (4,0)", b.Pos)
	}
	if b.Cost() >= 1000 {
		t.Errorf("cost not updated, still %v", b.Cost())
	}
	if !b.IsSettled() {
		t.Error("moved station not settled")
	}

	if who, ok := occ[grid.N(4, 0)]; !ok || who != route.StationOccupant(ids[1]) {
		t.Errorf("new position not claimed by station, got %v", who)
	}

	// Both edges now run straight along the axis.
	for _, eid := range b.Edges() {
		e := m.Edge(eid)
		if !e.IsSettled() {
			t.Errorf("edge %d not settled after move", eid)
		}
		for _, n := range e.Path() {
			if n.Y != 0 {
				t.Errorf("edge %d still bends through %v", eid, n)
			}
		}
	}

	if err := m.Validate(); err != nil {
		t.Errorf("map invalid after search: %v", err)
	}
}

func TestPassRejectsScoreNeutralMoves(t *testing.T) {
	// A straight two-station line scores zero already; any move the pass
	// could make is at best score-neutral and must be rejected.
	m := metro.NewMap()
	l := m.AddLine("U1", "#0057b8")
	a := m.AddStation(metro.NewStation(grid.N(0, 0), "a"))
	b := m.AddStation(metro.NewStation(grid.N(4, 0), "b"))
	l.Append(a.ID)
	l.Append(b.ID)
	e, err := m.AddEdge(a.ID, b.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	e.AddLine(l.ID)
	e.SetPath([]grid.Node{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}})
	e.Settle()

	occ := make(route.Occupied)
	for _, s := range []*metro.Station{a, b} {
		s.Settle(s.Pos)
		occ[s.Pos] = route.StationOccupant(s.ID)
	}
	for _, n := range e.Path() {
		occ[n] = route.EdgeOccupant(e.ID)
	}

	o := New(testParams(), testWeights(), nil)
	if moves := o.Pass(m, occ, nil, nil); moves != 0 {
		t.Errorf("accepted %d moves on an already optimal layout, want 0", moves)
	}
	if a.Pos != grid.N(0, 0) || b.Pos != grid.N(4, 0) {
		t.Errorf("endpoints drifted to %v and %v", a.Pos, b.Pos)
	}
}

func TestPassSkipsLocked(t *testing.T) {
	m, occ, ids := bentMap(t)
	m.Station(ids[1]).Locked = true
	o := New(testParams(), testWeights(), nil)

	if moves := o.Pass(m, occ, nil, nil); moves != 0 {
		t.Errorf("locked station moved, %d moves", moves)
	}
	if got := m.Station(ids[1]).Pos; got != grid.N(4, 1) {
		t.Errorf("locked station at %v, want (4,1)", got)
	}
}

func TestPassSkipsLockedEdgeEndpoints(t *testing.T) {
	m, occ, ids := bentMap(t)
	b := m.Station(ids[1])
	m.Edge(b.Edges()[0]).Locked = true
	o := New(testParams(), testWeights(), nil)

	if moves := o.Pass(m, occ, onlyStation(ids[1]), nil); moves != 0 {
		t.Errorf("endpoint of locked edge moved, %d moves", moves)
	}
}

func TestRunObservesCancellation(t *testing.T) {
	m, occ, ids := bentMap(t)
	o := New(testParams(), testWeights(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	moves, err := o.Run(ctx, m, occ, onlyStation(ids[1]), nil, nil)
	if err == nil {
		t.Fatal("expected context error")
	}
	if moves != 0 {
		t.Errorf("moves = %d before first pass, want 0", moves)
	}
	if got := m.Station(ids[1]).Pos; got != grid.N(4, 1) {
		t.Errorf("station moved despite cancellation, at %v", got)
	}
}

func TestRunConverges(t *testing.T) {
	m, occ, ids := bentMap(t)
	o := New(testParams(), testWeights(), nil)

	if _, err := o.Run(context.Background(), m, occ, onlyStation(ids[1]), nil, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A second run finds nothing left to improve.
	var passes int
	moves, err := o.Run(context.Background(), m, occ, onlyStation(ids[1]), nil, func(int) { passes++ })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if moves != 0 {
		t.Errorf("second run accepted %d moves, want 0", moves)
	}
	if passes != 1 {
		t.Errorf("second run reported %d passes, want 1", passes)
	}
}
