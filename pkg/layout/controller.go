// Package layout runs the octilinear layout algorithm end to end: contract
// pass-through stations, route the reduced graph's edges on the grid, improve
// station positions by local search, and expand the contracted stations back
// onto the final routes.
//
// The entry point is the Controller:
//
//	ctrl := layout.NewController(logger, nil)
//	result, err := ctrl.Recalculate(ctx, m, nil, layout.DefaultSettings())
//
// The caller's map is never mutated; the result carries a fresh map plus
// metrics about the run.
package layout

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/layout/contract"
	"github.com/jbaarsen/metromap/pkg/layout/route"
	"github.com/jbaarsen/metromap/pkg/layout/search"
	"github.com/jbaarsen/metromap/pkg/metro"
	"github.com/jbaarsen/metromap/pkg/observability"
)

// Result is the outcome of a recalculation run.
type Result struct {
	// Map is the recalculated map, independent of the input.
	Map *metro.Map

	Metrics Metrics
}

// Controller owns one recalculation at a time. It can be reused for
// subsequent runs once the previous one has returned.
type Controller struct {
	log    *log.Logger
	stream *Stream

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewController creates a controller. A nil logger disables logging. The
// stream, when non-nil, receives live snapshots if the run's settings enable
// them; it is closed when that run finishes.
func NewController(logger *log.Logger, stream *Stream) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{log: logger, stream: stream}
}

// Cancel interrupts the run in flight, if any. The run finishes at the next
// pass boundary and returns the layout of the last completed pass. Cancel is
// for callers without access to the run's context; cancelling the context
// has the same effect.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Recalculate computes a fresh layout for the map. When sel is non-nil only
// the selected subgraph is recalculated; everything outside it is treated as
// locked and keeps both positions and routes.
//
// The input map is cloned before any work, and the returned map is
// independent of it. Cancellation and try-budget exhaustion are normal
// outcomes, reported through Metrics.State alongside a usable layout; an
// error means the input was rejected or the layout could not be restored.
func (c *Controller) Recalculate(ctx context.Context, m *metro.Map, sel *metro.Selection, settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMap, err, "input map")
	}
	if sel != nil {
		if err := sel.Validate(m); err != nil {
			return nil, err
		}
	}

	runCtx, release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	runID := uuid.NewString()
	start := time.Now()
	runLog := c.log.With("run", runID)
	if settings.DebugLogging {
		runLog.SetLevel(log.DebugLevel)
	}

	observability.Layout().OnRunStart(ctx, runID, m.StationCount(), m.EdgeCount())

	run := &run{
		ctx:      runCtx,
		log:      runLog,
		id:       runID,
		settings: settings,
		stream:   c.stream,
	}
	result, err := run.execute(m, sel)

	duration := time.Since(start)
	observability.Layout().OnRunComplete(ctx, runID, duration, err)

	if c.stream != nil {
		c.stream.close()
		c.stream = nil
	}
	if err != nil {
		return nil, err
	}

	result.Metrics.RunID = runID
	result.Metrics.Duration = duration
	runLog.Info("recalculated map",
		"state", result.Metrics.State,
		"tries", result.Metrics.Tries,
		"moves", result.Metrics.Moves,
		"bends", result.Metrics.Bends,
		"cost", result.Metrics.TotalCost,
		"duration", duration)
	return result, nil
}

// acquire claims the controller's single run slot and installs the cancel
// hook. The returned release func must be called when the run ends.
func (c *Controller) acquire(ctx context.Context) (context.Context, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil, nil, errors.New(errors.ErrCodeRecalcActive, "a recalculation is already in flight")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel

	return runCtx, func() {
		cancel()
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
	}, nil
}

// run carries the state of a single recalculation.
type run struct {
	ctx      context.Context
	log      *log.Logger
	id       string
	settings Settings
	stream   *Stream

	tries int
	moves int
}

func (r *run) execute(m *metro.Map, sel *metro.Selection) (*Result, error) {
	work := m.Clone()

	if m.EdgeCount() == 0 {
		r.log.Warn("recalculate called on a map without edges")
		return &Result{Map: work, Metrics: r.metrics(work, StateConverged)}, nil
	}

	implicitStations, implicitEdges := lockOutsideSelection(work, sel)
	implicitStations = append(implicitStations, lockEdgeEndpoints(work)...)

	occ := route.LockedOccupancy(work)
	restoration := contract.Contract(work, r.settings.NodeSetRadius)
	work.UnsettleAll()
	route.SeedPaths(work)

	r.log.Debug("reduced map",
		"stations", work.StationCount(),
		"edges", work.EdgeCount(),
		"contracted", len(restoration),
		"locked_nodes", len(occ))

	order := route.OrderEdges(work)
	rng := rand.New(rand.NewSource(r.settings.Seed))
	params := r.settings.routeParams(work)
	router := route.NewRouter(params, r.log)
	opt := search.New(params, r.settings.weights(), r.log)

	var movable search.Movable
	if sel != nil {
		movable = func(s *metro.Station) bool { return sel.ContainsStation(s.ID) }
	}

	best := work
	bestCost := TotalCost(work, r.settings)
	routed := false
	state := StateExhausted

	for try := 1; try <= r.settings.MaxTries; try++ {
		if r.ctx.Err() != nil {
			state = StateCancelled
			break
		}
		r.tries = try

		alg := work.Clone()
		algOcc := occ.Clone()
		if err := router.RouteEdges(alg, order, algOcc); err != nil {
			r.log.Warn("routing attempt failed", "try", try, "err", err)
			observability.Layout().OnRouteFailure(r.ctx, r.id, try, err)
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
			continue
		}
		r.snapshot(alg, StateSearching)

		cancelled := false
		if r.settings.EnableLocalSearch {
			cancelled = r.localSearch(opt, alg, algOcc, movable)
		}

		cost := TotalCost(alg, r.settings)
		if !routed || cost < bestCost {
			best, bestCost = alg, cost
			routed = true
		}
		if cancelled {
			// The interrupted attempt is what the last completed pass
			// left behind, so it wins over any earlier best.
			best, bestCost = alg, cost
			state = StateCancelled
			break
		}
		if r.settings.acceptable(cost) {
			state = StateConverged
			break
		}

		r.log.Debug("cost above threshold, retrying",
			"try", try, "cost", cost, "acceptable", r.settings.AcceptableCost)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	if err := contract.Expand(best, restoration); err != nil {
		return nil, err
	}
	unlockImplicit(best, implicitStations, implicitEdges)

	return &Result{Map: best, Metrics: r.metrics(best, state)}, nil
}

// localSearch drives optimization passes until convergence or cancellation,
// reporting true when the run was cancelled at a pass boundary.
func (r *run) localSearch(opt *search.Optimizer, m *metro.Map, occ route.Occupied, movable search.Movable) bool {
	var onMove func(*metro.Map)
	if r.settings.LiveUpdates && r.settings.SnapshotPerMove {
		onMove = func(mm *metro.Map) { r.snapshot(mm, StateSearching) }
	}

	_, err := opt.Run(r.ctx, m, occ, movable, onMove, func(n int) {
		r.moves += n
		observability.Layout().OnPass(r.ctx, r.id, n)
		if r.settings.LiveUpdates && !r.settings.SnapshotPerMove {
			r.snapshot(m, StateSearching)
		}
	})
	return err != nil
}

func (r *run) snapshot(m *metro.Map, state State) {
	if r.stream == nil || !r.settings.LiveUpdates {
		return
	}
	r.stream.push(Snapshot{
		RunID: r.id,
		State: state,
		Map:   m.Clone(),
		Try:   r.tries,
		Moves: r.moves,
		Taken: time.Now(),
	})
}

func (r *run) metrics(m *metro.Map, state State) Metrics {
	return Metrics{
		State:     state,
		Tries:     r.tries,
		Moves:     r.moves,
		Bends:     CountBends(m),
		TotalCost: TotalCost(m, r.settings),
		Stations:  m.StationCount(),
		Edges:     m.EdgeCount(),
	}
}

// lockOutsideSelection marks everything outside the selection as locked on
// the working copy and returns what it locked, so the flags can be cleared
// on the final layout.
func lockOutsideSelection(m *metro.Map, sel *metro.Selection) ([]metro.StationID, []metro.EdgeID) {
	if sel == nil {
		return nil, nil
	}
	var stations []metro.StationID
	var edges []metro.EdgeID
	for _, s := range m.Stations() {
		if !sel.ContainsStation(s.ID) && !s.Locked {
			s.Locked = true
			stations = append(stations, s.ID)
		}
	}
	for _, e := range m.Edges() {
		if !sel.ContainsEdge(e.ID) && !e.Locked {
			e.Locked = true
			edges = append(edges, e.ID)
		}
	}
	return stations, edges
}

// lockEdgeEndpoints locks the endpoint stations of every locked edge, since
// a frozen route pins both of its ends. Returns the stations newly locked.
func lockEdgeEndpoints(m *metro.Map) []metro.StationID {
	var locked []metro.StationID
	for _, e := range m.Edges() {
		if !e.Locked {
			continue
		}
		for _, sid := range []metro.StationID{e.From, e.To} {
			if s := m.Station(sid); s != nil && !s.Locked {
				s.Locked = true
				locked = append(locked, sid)
			}
		}
	}
	return locked
}

func unlockImplicit(m *metro.Map, stations []metro.StationID, edges []metro.EdgeID) {
	for _, id := range stations {
		if s := m.Station(id); s != nil {
			s.Locked = false
		}
	}
	for _, id := range edges {
		if e := m.Edge(id); e != nil {
			e.Locked = false
		}
	}
}
