package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbaarsen/metromap/pkg/cache"
	mapio "github.com/jbaarsen/metromap/pkg/io"
	"github.com/jbaarsen/metromap/pkg/layout"
	"github.com/jbaarsen/metromap/pkg/metro"
	"github.com/jbaarsen/metromap/pkg/observability"
)

// layoutCommand creates the layout command for computing octilinear layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		redisURL string
		generate string
		stations int
	)
	sf := &settingsFlags{}

	cmd := &cobra.Command{
		Use:   "layout [map.json]",
		Short: "Compute an octilinear layout for a metro map",
		Long: fmt.Sprintf(`Compute an octilinear layout for a metro map.

The layout command takes a map.json file, snaps every station to an integer
grid and routes every connection horizontally, vertically or at 45 degrees,
minimizing bends. The output is a map.json in the same format with the
computed positions and edge paths filled in.

Instead of an input file, --generate builds one of the bundled benchmark
maps (%s); --stations controls its size.

Results are cached locally for faster subsequent runs.`, strings.Join(generatorNames(), ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := sf.load(cmd)
			if err != nil {
				return err
			}
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" && generate == "" {
				return fmt.Errorf("nothing to lay out: pass a map.json or --generate")
			}
			if input != "" && generate != "" {
				return fmt.Errorf("pass either a map.json or --generate, not both")
			}
			m, name, err := loadInput(input, generate, stations)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), m, name, settings, output, noCache, redisURL)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL to cache in instead of the local file cache")
	cmd.Flags().StringVar(&generate, "generate", "", "generate a benchmark map instead of reading one")
	cmd.Flags().IntVar(&stations, "stations", 12, "stations per line for --generate")
	sf.register(cmd)

	return cmd
}

// loadInput reads the map from the input file, or generates one. The
// returned name seeds the default output path.
func loadInput(input, generate string, stations int) (*metro.Map, string, error) {
	if input != "" {
		m, err := mapio.ImportJSON(input)
		if err != nil {
			return nil, "", fmt.Errorf("load map %s: %w", input, err)
		}
		return m, strings.TrimSuffix(input, filepath.Ext(input)), nil
	}
	m, err := generateMap(generate, stations)
	if err != nil {
		return nil, "", err
	}
	return m, generate, nil
}

// runLayout computes the layout, consulting the cache first, and writes the
// result.
func (c *CLI) runLayout(ctx context.Context, m *metro.Map, name string, settings layout.Settings, output string, noCache bool, redisURL string) error {
	store, err := newCache(noCache, redisURL)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	raw, err := mapio.Marshal(m)
	if err != nil {
		return fmt.Errorf("hash input map: %w", err)
	}
	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash(raw), layoutKeyOpts(settings))

	result, cacheHit, err := c.computeLayout(ctx, store, key, m, settings)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = name + ".layout.json"
	}
	if err := mapio.ExportJSON(result, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.StationCount(), result.EdgeCount(), cacheHit)
	printNewline()
	printNextStep("Straighten a line", "metromap straighten "+outputPath+" --station <id>")

	return nil
}

// computeLayout returns the laid-out map, from cache when possible.
func (c *CLI) computeLayout(ctx context.Context, store cache.Cache, key string, m *metro.Map, settings layout.Settings) (*metro.Map, bool, error) {
	if data, ok, err := store.Get(ctx, key); err != nil {
		c.Logger.Warn("cache lookup failed", "err", err)
	} else if ok {
		cached, err := mapio.ReadJSON(bytes.NewReader(data))
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil
		}
		// A corrupt entry is recomputed and overwritten below.
		c.Logger.Warn("discarding unreadable cache entry", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	ctrl := layout.NewController(c.Logger, nil)
	result, err := ctrl.Recalculate(ctx, m, nil, settings)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, false, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	met := result.Metrics
	c.Logger.Debug("run finished",
		"state", met.State, "tries", met.Tries, "moves", met.Moves,
		"bends", met.Bends, "cost", met.TotalCost)
	if met.State != layout.StateConverged {
		printWarning("Run ended %s; keeping the best layout found", met.State)
	}
	c.persistMetrics(ctx, store, met)

	if data, err := mapio.Marshal(result.Map); err == nil {
		if err := store.Set(ctx, key, data, cache.TTLLayout); err != nil {
			c.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return result.Map, false, nil
}

// persistMetrics stores a run's metrics summary under its run id, so a
// fresh compute leaves a record of how its layout came to be even after
// later invocations are served from the layout cache.
func (c *CLI) persistMetrics(ctx context.Context, store cache.Cache, met layout.Metrics) {
	data, err := json.Marshal(met)
	if err != nil {
		return
	}
	key := cache.NewDefaultKeyer().MetricsKey(met.RunID)
	if err := store.Set(ctx, key, data, cache.TTLMetrics); err != nil {
		c.Logger.Warn("metrics cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "metrics", len(data))
}

// layoutKeyOpts maps the layout-relevant settings onto the cache key.
func layoutKeyOpts(s layout.Settings) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		MaxTries:           s.MaxTries,
		EnableLocalSearch:  s.EnableLocalSearch,
		GridWidth:          s.GridWidth,
		GridHeight:         s.GridHeight,
		BendCostWeight:     s.BendCostWeight,
		SpacingCostWeight:  s.SpacingCostWeight,
		OverheadCostWeight: s.OverheadCostWeight,
		MoveCost:           s.MoveCost,
		NodeSetRadius:      s.NodeSetRadius,
		AcceptableCost:     s.AcceptableCost,
		Seed:               s.Seed,
	}
}
