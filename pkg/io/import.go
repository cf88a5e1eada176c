package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jbaarsen/metromap/pkg/errors"
	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// ReadJSON decodes a JSON map from r.
//
// The input must be a JSON object with "stations" and "edges" arrays and
// an optional "lines" array; see the package documentation for the format.
// Station ids from the file are kept. Line ids are reassigned but edge and
// sequence references are remapped accordingly.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A station id is duplicated or zero
//   - A station name or line color fails validation
//   - An edge or line references an unknown station or line id
//   - An edge is a self loop
//
// The returned map is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*metro.Map, error) {
	var data mapFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	m := metro.NewMap()

	seen := make(map[int]bool, len(data.Stations))
	for _, s := range data.Stations {
		if s.ID <= 0 {
			return nil, fmt.Errorf("station %q: id must be positive", s.Name)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("station %d: duplicate id", s.ID)
		}
		seen[s.ID] = true
		if err := errors.ValidateStationName(s.Name); err != nil {
			return nil, fmt.Errorf("station %d: %w", s.ID, err)
		}

		st := metro.NewStation(grid.N(s.X, s.Y), s.Name)
		st.ID = metro.StationID(s.ID)
		st.Locked = s.Locked
		st.Checkpoint = s.Checkpoint
		m.AddStation(st)
	}

	lineIDs := make(map[int]metro.LineID, len(data.Lines))
	for _, l := range data.Lines {
		if err := errors.ValidateLineColor(l.Color); err != nil {
			return nil, fmt.Errorf("line %s: %w", l.Name, err)
		}
		ln := m.AddLine(l.Name, l.Color)
		lineIDs[l.ID] = ln.ID
		for _, sid := range l.Stations {
			if m.Station(metro.StationID(sid)) == nil {
				return nil, fmt.Errorf("line %s: %w %d", l.Name, metro.ErrUnknownStation, sid)
			}
			ln.Append(metro.StationID(sid))
		}
	}

	for _, e := range data.Edges {
		ed, err := m.AddEdge(metro.StationID(e.From), metro.StationID(e.To))
		if err != nil {
			return nil, fmt.Errorf("edge %d-%d: %w", e.From, e.To, err)
		}
		ed.Locked = e.Locked
		for _, lid := range e.Lines {
			mapped, ok := lineIDs[lid]
			if !ok {
				return nil, fmt.Errorf("edge %d-%d: unknown line %d", e.From, e.To, lid)
			}
			ed.AddLine(mapped)
		}
		if len(e.Path) > 0 {
			path := make([]grid.Node, len(e.Path))
			for i, n := range e.Path {
				path[i] = grid.N(n.X, n.Y)
			}
			ed.SetPath(path)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ImportJSON reads a JSON file at path and returns the decoded map.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*metro.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
