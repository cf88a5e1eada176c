package layout

import (
	"context"
	"testing"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// line builds a map with stations at the given positions, connected in
// sequence on one line.
func line(t *testing.T, positions ...grid.Node) (*metro.Map, []metro.StationID) {
	t.Helper()
	m := metro.NewMap()
	l := m.AddLine("U1", "#d71f1f")
	ids := make([]metro.StationID, len(positions))
	for i, pos := range positions {
		s := m.AddStation(metro.NewStation(pos, ""))
		ids[i] = s.ID
		l.Append(s.ID)
	}
	for i := 0; i+1 < len(positions); i++ {
		e, err := m.AddEdge(ids[i], ids[i+1])
		if err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		e.AddLine(l.ID)
	}
	return m, ids
}

// checkLayoutInvariants verifies the guarantees every returned layout gives:
// octilinear routes, no shared grid nodes, and structural validity.
func checkLayoutInvariants(t *testing.T, m *metro.Map) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Errorf("layout invalid: %v", err)
	}

	occupied := make(map[grid.Node]string)
	claim := func(n grid.Node, who string) {
		if prev, ok := occupied[n]; ok {
			t.Errorf("node %v claimed by both %s and %s", n, prev, who)
		}
		occupied[n] = who
	}
	for _, s := range m.Stations() {
		claim(s.Pos, "station")
	}
	for _, e := range m.Edges() {
		if !e.IsSettled() {
			continue
		}
		from, to := m.Station(e.From), m.Station(e.To)
		poly := append([]grid.Node{from.Pos}, e.Path()...)
		poly = append(poly, to.Pos)
		if !grid.IsOctilinearPath(poly) {
			t.Errorf("edge %d route not octilinear: %v", e.ID, poly)
		}
		for _, n := range e.Path() {
			claim(n, "edge")
		}
	}
}

func TestRecalculateStraightLine(t *testing.T) {
	m, ids := line(t,
		grid.N(0, 0), grid.N(4, 0), grid.N(8, 0), grid.N(12, 0), grid.N(16, 0))
	input := m.Clone()

	ctrl := NewController(nil, nil)
	res, err := ctrl.Recalculate(context.Background(), m, nil, DefaultSettings())
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	if res.Metrics.State != StateConverged {
		t.Errorf("state = %v, want converged", res.Metrics.State)
	}
	if res.Metrics.Tries != 1 {
		t.Errorf("tries = %d, want 1", res.Metrics.Tries)
	}
	if res.Metrics.Bends != 0 {
		t.Errorf("bends = %d, want 0", res.Metrics.Bends)
	}

	// All stations survive on a single straight run with near-equal spacing.
	if res.Map.StationCount() != len(ids) {
		t.Fatalf("station count = %d, want %d", res.Map.StationCount(), len(ids))
	}
	y := res.Map.Station(ids[0]).Pos.Y
	var xs []int
	for _, id := range ids {
		s := res.Map.Station(id)
		if s == nil {
			t.Fatalf("station %d missing from layout", id)
		}
		if s.Pos.Y != y {
			t.Errorf("station %d at %v, not collinear", id, s.Pos)
		}
		xs = append(xs, s.Pos.X)
	}
	gapMin, gapMax := 1<<30, 0
	for i := 1; i < len(xs); i++ {
		gap := xs[i] - xs[i-1]
		if gap < 0 {
			gap = -gap
		}
		gapMin, gapMax = min(gapMin, gap), max(gapMax, gap)
	}
	if gapMax-gapMin > 1 {
		t.Errorf("station spacing uneven: %v", xs)
	}

	checkLayoutInvariants(t, res.Map)

	// The caller's map is untouched.
	for _, id := range ids {
		if got, want := m.Station(id).Pos, input.Station(id).Pos; got != want {
			t.Errorf("input map mutated: station %d moved to %v", id, got)
		}
	}
}

func TestRecalculateStraightensLine(t *testing.T) {
	// Middle station off axis between anchored neighbors.
	m, ids := line(t,
		grid.N(0, 0), grid.N(4, 0), grid.N(8, 1), grid.N(12, 0), grid.N(16, 0))

	sel := &metro.Selection{
		Stations: []metro.StationID{ids[1], ids[2], ids[3]},
	}
	for _, pair := range [][2]metro.StationID{{ids[1], ids[2]}, {ids[2], ids[3]}} {
		e, ok := m.EdgeBetween(pair[0], pair[1])
		if !ok {
			t.Fatal("missing edge")
		}
		sel.Edges = append(sel.Edges, e.ID)
	}

	ctrl := NewController(nil, nil)
	res, err := ctrl.Recalculate(context.Background(), m, sel, DefaultSettings())
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	// Boundary stations anchor the seam, outside stations never move.
	for _, i := range []int{0, 1, 3, 4} {
		if got, want := res.Map.Station(ids[i]).Pos, m.Station(ids[i]).Pos; got != want {
			t.Errorf("station %d moved from %v to %v", ids[i], want, got)
		}
	}
	if got := res.Map.Station(ids[2]).Pos; got != grid.N(8, 0) {
		t.Errorf("middle station at %v, want (8,0)", got)
	}
	if res.Metrics.Bends != 0 {
		t.Errorf("bends = %d, want 0", res.Metrics.Bends)
	}
	checkLayoutInvariants(t, res.Map)
}

func TestRecalculateKeepsLockedStation(t *testing.T) {
	m, ids := line(t,
		grid.N(0, 0), grid.N(4, 0), grid.N(8, 3), grid.N(12, 0), grid.N(16, 0))
	m.Station(ids[2]).Locked = true

	ctrl := NewController(nil, nil)
	res, err := ctrl.Recalculate(context.Background(), m, nil, DefaultSettings())
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	s := res.Map.Station(ids[2])
	if s.Pos != grid.N(8, 3) {
		t.Errorf("locked station moved to %v", s.Pos)
	}
	if !s.Locked {
		t.Error("locked flag lost")
	}
	checkLayoutInvariants(t, res.Map)
}

func TestRecalculateCancelledBeforeWork(t *testing.T) {
	m, ids := line(t,
		grid.N(0, 0), grid.N(4, 0), grid.N(8, 0), grid.N(12, 0), grid.N(16, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := NewController(nil, nil)
	res, err := ctrl.Recalculate(ctx, m, nil, DefaultSettings())
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	if res.Metrics.State != StateCancelled {
		t.Errorf("state = %v, want cancelled", res.Metrics.State)
	}
	// Nothing ran, so the layout matches the input exactly.
	for _, id := range ids {
		if got, want := res.Map.Station(id).Pos, m.Station(id).Pos; got != want {
			t.Errorf("station %d at %v, want %v", id, got, want)
		}
	}
	checkLayoutInvariants(t, res.Map)
}

func TestRecalculateExhaustsTries(t *testing.T) {
	m := metro.NewMap()
	l := m.AddLine("U1", "#d71f1f")
	a := m.AddStation(metro.NewStation(grid.N(20, 0), "a"))
	b := m.AddStation(metro.NewStation(grid.N(4, 0), "b"))
	l.Append(a.ID)
	l.Append(b.ID)
	e, err := m.AddEdge(a.ID, b.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	e.AddLine(l.ID)

	// A locked route forming a closed ring around b: every candidate node
	// for b lies inside, so routing a-b can never succeed.
	w := m.AddLine("WALL", "#333333")
	w1 := m.AddStation(metro.NewStation(grid.N(-30, 30), ""))
	w2 := m.AddStation(metro.NewStation(grid.N(30, 30), ""))
	w.Append(w1.ID)
	w.Append(w2.ID)
	wall, err := m.AddEdge(w1.ID, w2.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	wall.AddLine(w.ID)
	var ring []grid.Node
	for x := 0; x <= 8; x++ {
		for y := -4; y <= 4; y++ {
			n := grid.N(x, y)
			if n.ChebyshevDistance(b.Pos) == 4 {
				ring = append(ring, n)
			}
		}
	}
	wall.SetPath(ring)
	wall.Locked = true

	settings := DefaultSettings()
	settings.MaxTries = 3
	settings.GridWidth = 80
	settings.GridHeight = 80

	ctrl := NewController(nil, nil)
	res, err := ctrl.Recalculate(context.Background(), m, nil, settings)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	if res.Metrics.State != StateExhausted {
		t.Errorf("state = %v, want exhausted", res.Metrics.State)
	}
	if res.Metrics.Tries != settings.MaxTries {
		t.Errorf("tries = %d, want %d", res.Metrics.Tries, settings.MaxTries)
	}
	// The best-effort layout still contains every station.
	if res.Map.StationCount() != m.StationCount() {
		t.Errorf("station count = %d, want %d", res.Map.StationCount(), m.StationCount())
	}
}

func TestRecalculateEmptyMap(t *testing.T) {
	m := metro.NewMap()
	m.AddStation(metro.NewStation(grid.N(0, 0), "lonely"))

	ctrl := NewController(nil, nil)
	res, err := ctrl.Recalculate(context.Background(), m, nil, DefaultSettings())
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if res.Metrics.State != StateConverged {
		t.Errorf("state = %v, want converged", res.Metrics.State)
	}
	if res.Map.StationCount() != 1 {
		t.Errorf("station count = %d, want 1", res.Map.StationCount())
	}
}

func TestRecalculateRejectsBadInput(t *testing.T) {
	m, ids := line(t, grid.N(0, 0), grid.N(4, 0), grid.N(8, 0))

	ctrl := NewController(nil, nil)

	bad := DefaultSettings()
	bad.MaxTries = 0
	if _, err := ctrl.Recalculate(context.Background(), m, nil, bad); err == nil {
		t.Error("expected settings error")
	}

	sel := &metro.Selection{Stations: []metro.StationID{ids[0]}}
	if _, err := ctrl.Recalculate(context.Background(), m, sel, DefaultSettings()); err == nil {
		t.Error("expected selection error")
	}
}

func TestRecalculateSingleFlight(t *testing.T) {
	m, _ := line(t, grid.N(0, 0), grid.N(8, 0))

	ctrl := NewController(nil, nil)
	ctrl.mu.Lock()
	ctrl.running = true
	ctrl.mu.Unlock()

	_, err := ctrl.Recalculate(context.Background(), m, nil, DefaultSettings())
	if errors.GetCode(err) != errors.ErrCodeRecalcActive {
		t.Fatalf("err = %v, want %v", err, errors.ErrCodeRecalcActive)
	}

	ctrl.mu.Lock()
	ctrl.running = false
	ctrl.mu.Unlock()
	if _, err := ctrl.Recalculate(context.Background(), m, nil, DefaultSettings()); err != nil {
		t.Fatalf("Recalculate after release: %v", err)
	}
}

func TestCancelWithoutRun(t *testing.T) {
	NewController(nil, nil).Cancel()
}

func TestRecalculateConvergedLayoutIsStable(t *testing.T) {
	// A zigzag line the optimizer fully straightens. Recalculating the
	// converged result must not find anything left to improve: the optimizer
	// accepts moves against the same score the metrics report, so a
	// converged layout is a local minimum of that score.
	m, _ := line(t,
		grid.N(0, 0), grid.N(2, 1), grid.N(4, 2), grid.N(6, 1), grid.N(8, 0))

	first, err := NewController(nil, nil).Recalculate(context.Background(), m, nil, DefaultSettings())
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if first.Metrics.State != StateConverged {
		t.Fatalf("state = %v, want converged", first.Metrics.State)
	}
	checkLayoutInvariants(t, first.Map)

	second, err := NewController(nil, nil).Recalculate(context.Background(), first.Map, nil, DefaultSettings())
	if err != nil {
		t.Fatalf("Recalculate again: %v", err)
	}
	if second.Metrics.State != StateConverged {
		t.Errorf("state = %v, want converged", second.Metrics.State)
	}
	if second.Metrics.TotalCost != first.Metrics.TotalCost {
		t.Errorf("rerun changed cost from %v to %v",
			first.Metrics.TotalCost, second.Metrics.TotalCost)
	}
	if second.Metrics.Bends != first.Metrics.Bends {
		t.Errorf("rerun changed bends from %d to %d",
			first.Metrics.Bends, second.Metrics.Bends)
	}
	checkLayoutInvariants(t, second.Map)
}

func TestRecalculateCancelKeepsCompletedPassGains(t *testing.T) {
	// One movable station the router leaves off axis: a high move cost makes
	// the router keep it at its original position, and the first search pass
	// then straightens it. A separate locked run with uneven spacing keeps
	// the total cost above the acceptable threshold, so the run retries
	// every attempt and never converges, leaving a window to cancel in.
	m := metro.NewMap()
	u1 := m.AddLine("U1", "#d71f1f")
	a := m.AddStation(metro.NewStation(grid.N(0, 0), "a"))
	b := m.AddStation(metro.NewStation(grid.N(7, 1), "b"))
	a.Locked = true
	u1.Append(a.ID)
	u1.Append(b.ID)
	ab, err := m.AddEdge(a.ID, b.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	ab.AddLine(u1.ID)

	u3 := m.AddLine("U3", "#008c4f")
	var walls []*metro.Station
	for _, pos := range []grid.Node{grid.N(20, 0), grid.N(23, 0), grid.N(30, 0)} {
		s := m.AddStation(metro.NewStation(pos, ""))
		s.Locked = true
		u3.Append(s.ID)
		walls = append(walls, s)
	}
	for i := 0; i+1 < len(walls); i++ {
		e, err := m.AddEdge(walls[i].ID, walls[i+1].ID)
		if err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		e.AddLine(u3.ID)
	}

	settings := DefaultSettings()
	settings.LiveUpdates = true
	settings.MaxTries = 40
	settings.MoveCost = 10
	settings.AcceptableCost = 0.0001

	stream := NewStream(256)
	ctrl := NewController(nil, stream)

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := ctrl.Recalculate(context.Background(), m, nil, settings)
		done <- outcome{res, err}
	}()

	// Cancel once some try has completed its first search pass; the second
	// snapshot of a try is the one taken at that pass boundary.
	var snaps []Snapshot
	perTry := make(map[int]int)
	cancelled := false
	for snap := range stream.C() {
		snaps = append(snaps, snap)
		perTry[snap.Try]++
		if !cancelled && perTry[snap.Try] >= 2 {
			ctrl.Cancel()
			cancelled = true
		}
	}

	out := <-done
	if out.err != nil {
		t.Fatalf("Recalculate: %v", out.err)
	}
	res := out.res

	// The run is fast enough to exhaust its tries before Cancel lands;
	// either way it must not have converged.
	if res.Metrics.State != StateCancelled && res.Metrics.State != StateExhausted {
		t.Fatalf("state = %v, want cancelled or exhausted", res.Metrics.State)
	}
	if res.Metrics.Moves < 1 {
		t.Fatal("expected at least one accepted move before the cut-off")
	}
	if len(snaps) < 2 {
		t.Fatalf("got %d snapshots, want at least 2", len(snaps))
	}

	// Within a try, cost never goes back up: each completed pass only ever
	// improves on the routed layout it started from.
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Try != snaps[i-1].Try {
			continue
		}
		prev := TotalCost(snaps[i-1].Map, settings)
		cur := TotalCost(snaps[i].Map, settings)
		if cur > prev {
			t.Errorf("try %d: cost rose from %v to %v between passes",
				snaps[i].Try, prev, cur)
		}
	}

	// The returned layout keeps the gains of the last completed pass.
	last := snaps[len(snaps)-1]
	if lastCost := TotalCost(last.Map, settings); res.Metrics.TotalCost > lastCost {
		t.Errorf("final cost %v worse than last observed pass %v",
			res.Metrics.TotalCost, lastCost)
	}
	checkLayoutInvariants(t, res.Map)
}

func TestRecalculateLiveSnapshots(t *testing.T) {
	m, _ := line(t,
		grid.N(0, 0), grid.N(4, 1), grid.N(8, 0))

	stream := NewStream(32)
	settings := DefaultSettings()
	settings.LiveUpdates = true

	ctrl := NewController(nil, stream)
	res, err := ctrl.Recalculate(context.Background(), m, nil, settings)
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}

	var count int
	for snap := range stream.C() {
		count++
		if snap.RunID != res.Metrics.RunID {
			t.Errorf("snapshot run id %q, want %q", snap.RunID, res.Metrics.RunID)
		}
		if snap.Map == nil {
			t.Fatal("snapshot without map")
		}
		// Snapshots are independent copies.
		for _, s := range snap.Map.Stations() {
			s.Pos = grid.N(999, 999)
		}
	}
	if count == 0 {
		t.Fatal("no snapshots received")
	}
	for _, s := range res.Map.Stations() {
		if s.Pos == grid.N(999, 999) {
			t.Fatal("snapshot shares state with the result")
		}
	}
}
