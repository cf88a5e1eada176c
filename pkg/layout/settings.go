package layout

import (
	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/layout/route"
	"github.com/jbaarsen/metromap/pkg/layout/search"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// Defaults for Settings. These are the values DefaultSettings returns and the
// CLI writes into a fresh settings file.
const (
	DefaultMaxTries       = 5
	DefaultGridWidth      = 300
	DefaultGridHeight     = 300
	DefaultMoveCost       = 1.0
	DefaultNodeSetRadius  = 3
	DefaultBendWeight     = 1.0
	DefaultSpacingWeight  = 0.5
	DefaultOverheadWeight = 0.25
	DefaultSeed           = 42
)

// Settings configures a recalculation run. The zero value is not usable;
// start from DefaultSettings. TOML tags match the CLI settings file.
type Settings struct {
	// MaxTries bounds how many routing attempts are made before the run
	// gives up and returns the best layout found so far.
	MaxTries int `toml:"max_tries"`

	// EnableLocalSearch turns on the per-station optimization pass after
	// routing succeeds.
	EnableLocalSearch bool `toml:"enable_local_search"`

	// GridWidth and GridHeight size the layout grid, centered on the map.
	// The grid grows beyond these when the input map does not fit.
	GridWidth  int `toml:"grid_width"`
	GridHeight int `toml:"grid_height"`

	// Cost weights for the layout quality metric. BendCostWeight also
	// scales the bend penalties inside the router.
	BendCostWeight     float64 `toml:"bend_cost_weight"`
	SpacingCostWeight  float64 `toml:"spacing_cost_weight"`
	OverheadCostWeight float64 `toml:"overhead_cost_weight"`

	// MoveCost is the per-node routing cost, and NodeSetRadius bounds the
	// candidate area around an unsettled station.
	MoveCost      float64 `toml:"move_cost"`
	NodeSetRadius int     `toml:"node_set_radius"`

	// AcceptableCost, when positive, lets a run converge early once the
	// layout cost drops to or below it. Zero disables the threshold.
	AcceptableCost float64 `toml:"acceptable_cost"`

	// LiveUpdates streams snapshots while the run progresses;
	// SnapshotPerMove emits one per accepted move instead of one per pass.
	LiveUpdates     bool `toml:"live_updates"`
	SnapshotPerMove bool `toml:"snapshot_per_move"`

	// Seed drives the edge-order shuffle between retries. Runs with equal
	// inputs and seeds produce identical layouts.
	Seed int64 `toml:"seed"`

	// DebugLogging lowers the log level to debug for this run.
	DebugLogging bool `toml:"debug_logging"`
}

// DefaultSettings returns the settings used when the caller specifies
// nothing: local search on, live updates off.
func DefaultSettings() Settings {
	return Settings{
		MaxTries:           DefaultMaxTries,
		EnableLocalSearch:  true,
		GridWidth:          DefaultGridWidth,
		GridHeight:         DefaultGridHeight,
		BendCostWeight:     DefaultBendWeight,
		SpacingCostWeight:  DefaultSpacingWeight,
		OverheadCostWeight: DefaultOverheadWeight,
		MoveCost:           DefaultMoveCost,
		NodeSetRadius:      DefaultNodeSetRadius,
		Seed:               DefaultSeed,
	}
}

// Validate reports the first invalid field, if any.
func (s Settings) Validate() error {
	if s.MaxTries <= 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "max_tries must be positive, got %d", s.MaxTries)
	}
	if err := errors.ValidateGridBounds(s.GridWidth, s.GridHeight); err != nil {
		return err
	}
	if s.BendCostWeight < 0 || s.SpacingCostWeight < 0 || s.OverheadCostWeight < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "cost weights must not be negative")
	}
	if s.MoveCost <= 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "move_cost must be positive, got %v", s.MoveCost)
	}
	if s.NodeSetRadius <= 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "node_set_radius must be positive, got %d", s.NodeSetRadius)
	}
	if s.AcceptableCost < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "acceptable_cost must not be negative, got %v", s.AcceptableCost)
	}
	return nil
}

// RouteParams derives router parameters for the given map. Callers that
// route outside a full recalculation, such as the straightening pass, use
// this to stay on the same grid the controller would pick.
func (s Settings) RouteParams(m *metro.Map) route.Params {
	return s.routeParams(m)
}

// routeParams derives router parameters for the given map: the configured
// grid centered on the map's bounding box, grown where stations would
// otherwise start outside it.
func (s Settings) routeParams(m *metro.Map) route.Params {
	minX, maxX := 0, 0
	minY, maxY := 0, 0
	for i, st := range m.Stations() {
		if i == 0 {
			minX, maxX = st.Pos.X, st.Pos.X
			minY, maxY = st.Pos.Y, st.Pos.Y
			continue
		}
		minX = min(minX, st.Pos.X)
		maxX = max(maxX, st.Pos.X)
		minY = min(minY, st.Pos.Y)
		maxY = max(maxY, st.Pos.Y)
	}

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	halfW := max(s.GridWidth/2, maxX-cx+s.NodeSetRadius, cx-minX+s.NodeSetRadius)
	halfH := max(s.GridHeight/2, maxY-cy+s.NodeSetRadius, cy-minY+s.NodeSetRadius)

	return route.Params{
		XMin: cx - halfW, XMax: cx + halfW,
		YMin: cy - halfH, YMax: cy + halfH,
		MoveCost:      s.MoveCost,
		BendWeight:    s.BendCostWeight,
		NodeSetRadius: s.NodeSetRadius,
	}
}

// acceptable reports whether the cost satisfies the configured threshold.
func (s Settings) acceptable(cost float64) bool {
	return s.AcceptableCost <= 0 || cost <= s.AcceptableCost
}

// weights maps the cost settings onto the optimizer's score weights.
func (s Settings) weights() search.Weights {
	return search.Weights{
		Bend:     s.BendCostWeight,
		Spacing:  s.SpacingCostWeight,
		Overhead: s.OverheadCostWeight,
	}
}
