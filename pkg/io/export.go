package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jbaarsen/metromap/pkg/metro"
)

type mapFile struct {
	Stations []station `json:"stations"`
	Edges    []edge    `json:"edges"`
	Lines    []line    `json:"lines,omitempty"`
}

type station struct {
	ID         int    `json:"id"`
	Name       string `json:"name,omitempty"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Locked     bool   `json:"locked,omitempty"`
	Checkpoint bool   `json:"checkpoint,omitempty"`
}

type edge struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Lines  []int  `json:"lines,omitempty"`
	Path   []node `json:"path,omitempty"`
	Locked bool   `json:"locked,omitempty"`
}

type node struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type line struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Color    string `json:"color,omitempty"`
	Stations []int  `json:"stations,omitempty"`
}

// WriteJSON encodes a map as JSON and writes it to w. Stations, edges and
// lines are emitted in id order, so equal maps serialize to equal bytes.
// The output can be re-imported with [ReadJSON].
func WriteJSON(m *metro.Map, w io.Writer) error {
	out := mapFile{
		Stations: make([]station, 0, m.StationCount()),
		Edges:    make([]edge, 0, m.EdgeCount()),
	}

	for _, s := range m.Stations() {
		out.Stations = append(out.Stations, station{
			ID:         int(s.ID),
			Name:       s.Name,
			X:          s.Pos.X,
			Y:          s.Pos.Y,
			Locked:     s.Locked,
			Checkpoint: s.Checkpoint,
		})
	}

	for _, e := range m.Edges() {
		ed := edge{From: int(e.From), To: int(e.To), Locked: e.Locked}
		for _, lid := range e.Lines() {
			ed.Lines = append(ed.Lines, int(lid))
		}
		for _, n := range e.Path() {
			ed.Path = append(ed.Path, node{X: n.X, Y: n.Y})
		}
		out.Edges = append(out.Edges, ed)
	}

	for _, l := range m.Lines() {
		ln := line{ID: int(l.ID), Name: l.Name, Color: l.Color}
		for _, sid := range l.Stations() {
			ln.Stations = append(ln.Stations, int(sid))
		}
		out.Lines = append(out.Lines, ln)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a map to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(m *metro.Map, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

// Marshal returns the canonical JSON bytes of the map. Because export is
// deterministic, the result is suitable as input to a cache key hash.
func Marshal(m *metro.Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
