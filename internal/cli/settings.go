package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jbaarsen/metromap/pkg/layout"
)

// settingsFlags are the layout settings exposed as command-line flags.
// Values only override the settings file when their flag was actually set.
type settingsFlags struct {
	file string

	maxTries       int
	seed           int64
	acceptableCost float64
	noLocalSearch  bool
	gridWidth      int
	gridHeight     int
}

// register adds the shared settings flags to cmd.
func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "settings", "", "TOML settings file")
	cmd.Flags().IntVar(&f.maxTries, "max-tries", layout.DefaultMaxTries, "routing attempts before giving up")
	cmd.Flags().Int64Var(&f.seed, "seed", layout.DefaultSeed, "seed for the retry shuffle")
	cmd.Flags().Float64Var(&f.acceptableCost, "acceptable-cost", 0, "stop early once the layout cost drops to this (0 disables)")
	cmd.Flags().BoolVar(&f.noLocalSearch, "no-local-search", false, "skip the local search pass")
	cmd.Flags().IntVar(&f.gridWidth, "grid-width", layout.DefaultGridWidth, "layout grid width")
	cmd.Flags().IntVar(&f.gridHeight, "grid-height", layout.DefaultGridHeight, "layout grid height")
}

// load builds the run settings: defaults, then the TOML file if given, then
// any flags the user set explicitly.
func (f *settingsFlags) load(cmd *cobra.Command) (layout.Settings, error) {
	s := layout.DefaultSettings()

	if f.file != "" {
		if _, err := os.Stat(f.file); err != nil {
			return s, fmt.Errorf("settings file: %w", err)
		}
		if _, err := toml.DecodeFile(f.file, &s); err != nil {
			return s, fmt.Errorf("parse settings %s: %w", f.file, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("max-tries") {
		s.MaxTries = f.maxTries
	}
	if flags.Changed("seed") {
		s.Seed = f.seed
	}
	if flags.Changed("acceptable-cost") {
		s.AcceptableCost = f.acceptableCost
	}
	if flags.Changed("no-local-search") {
		s.EnableLocalSearch = !f.noLocalSearch
	}
	if flags.Changed("grid-width") {
		s.GridWidth = f.gridWidth
	}
	if flags.Changed("grid-height") {
		s.GridHeight = f.gridHeight
	}
	return s, nil
}
