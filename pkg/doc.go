// Package pkg provides the core libraries for metromap octilinear layouts.
//
// # Overview
//
// Metromap turns a metro network into a schematic map: stations snap to an
// integer grid and every connection runs horizontally, vertically, or at 45
// degrees, the way printed transit maps are drawn. The pkg directory is
// organized into a handful of focused packages:
//
//  1. [grid] - Grid geometry (nodes, directions, distances, angle costs)
//  2. [metro] - The map model (stations, edges, lines, sections, selections)
//  3. [layout] - The layout algorithm and its controller
//  4. [io] - JSON import and export for maps
//  5. [cache] - Layout caching (file, Redis, null backends)
//
// # Architecture
//
// The typical data flow through metromap:
//
//	map.json
//	     ↓
//	[io] package (decode and validate)
//	     ↓
//	[layout/contract] package (collapse pass-through stations)
//	     ↓
//	[layout/route] package (octilinear edge routing on the grid)
//	     ↓
//	[layout/search] package (local search over station positions)
//	     ↓
//	[io] package (encode the laid-out map)
//
// # Quick Start
//
// Load a map and compute a layout:
//
//	import (
//	    "context"
//	    "github.com/jbaarsen/metromap/pkg/io"
//	    "github.com/jbaarsen/metromap/pkg/layout"
//	)
//
//	// 1. Load the input map
//	m, _ := io.ImportJSON("map.json")
//
//	// 2. Recalculate the layout
//	ctrl := layout.NewController(nil, nil)
//	result, _ := ctrl.Recalculate(context.Background(), m, nil, layout.DefaultSettings())
//
//	// 3. Write the result
//	_ = io.ExportJSON(result.Map, "map.layout.json")
//
// # Main Packages
//
// ## Model
//
// [grid] - Integer grid geometry: nodes, the eight octilinear directions,
// Manhattan, Chebyshev and diagonal distances, and the angle cost used to
// penalize bends.
//
// [metro] - The metro map model. A [metro.Map] owns stations, edges, and
// lines; [metro.LineSection] and [metro.Selection] name the subgraphs that
// straightening and partial recalculation operate on.
//
// ## Layout
//
// [layout] - The recalculation controller: validates input, runs routing
// attempts, drives local search, and reports metrics. Supports cancellation
// at pass boundaries and live snapshot streams.
//
//   - [layout/contract]: Collapse and restore degree-two stations
//   - [layout/route]: Set-to-set Dijkstra routing with occupancy tracking
//   - [layout/search]: Local search over candidate station positions
//   - [layout/straighten]: Flatten one line section onto a straight run
//
// ## Infrastructure
//
// [io] - JSON serialization for maps. Output is deterministic, so a map's
// serialized form doubles as its cache identity.
//
// [cache] - Caching of computed layouts with file, Redis, and null backends
// plus key generation and retry helpers.
//
// [observability] - Hook interfaces for layout and cache events, with no-op
// defaults so the core stays free of backend dependencies.
//
// [errors] - Coded errors shared across the module.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/layout/...       # Specific package
//
// [grid]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/grid
// [metro]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/metro
// [layout]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/layout
// [layout/contract]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/layout/contract
// [layout/route]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/layout/route
// [layout/search]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/layout/search
// [layout/straighten]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/layout/straighten
// [io]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/io
// [cache]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/cache
// [observability]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/jbaarsen/metromap/pkg/buildinfo
package pkg
