// Package io provides JSON import and export for metro maps.
//
// # Overview
//
// This package serializes a [metro.Map] to and from a simple JSON format.
// The format is designed for:
//
//   - Handing maps between the CLI commands and external tools
//   - Caching computed layouts keyed by a hash of the serialized input
//   - Round-trip preservation: export a laid-out map and re-import it
//     with identical geometry
//
// # JSON Format
//
// The format has three top-level arrays:
//
//	{
//	  "stations": [
//	    {"id": 1, "name": "Mitte", "x": 0, "y": 0},
//	    {"id": 2, "x": 4, "y": 0, "locked": true}
//	  ],
//	  "edges": [
//	    {"from": 1, "to": 2, "lines": [1], "path": [{"x": 1, "y": 0}]}
//	  ],
//	  "lines": [
//	    {"id": 1, "name": "U1", "color": "#e30613", "stations": [1, 2]}
//	  ]
//	}
//
// Station ids are preserved across a round trip. Edges are identified by
// their endpoint pair; an edge's "path" lists the interior nodes of its
// route, excluding both endpoints. Line ids are remapped on import but
// edges and station sequences stay consistent.
//
// # Determinism
//
// Export walks stations, edges and lines in id order, so serializing the
// same map twice yields identical bytes. This is what makes the output
// usable as a cache key input; see [github.com/jbaarsen/metromap/pkg/cache].
package io
