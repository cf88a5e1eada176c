package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jbaarsen/metromap/pkg/grid"
	"github.com/jbaarsen/metromap/pkg/metro"
)

func sampleMap(t *testing.T) *metro.Map {
	t.Helper()
	m := metro.NewMap()
	l := m.AddLine("U1", "#e30613")

	a := m.AddStation(metro.NewStation(grid.N(0, 0), "Westkreuz"))
	b := m.AddStation(metro.NewStation(grid.N(4, 0), "Mitte"))
	c := m.AddStation(metro.NewStation(grid.N(8, 2), ""))
	b.Locked = true
	c.Checkpoint = true
	for _, s := range []*metro.Station{a, b, c} {
		l.Append(s.ID)
	}

	ab, err := m.AddEdge(a.ID, b.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	bc, err := m.AddEdge(b.ID, c.ID)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	ab.AddLine(l.ID)
	bc.AddLine(l.ID)
	ab.SetPath([]grid.Node{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}})
	bc.Locked = true
	return m
}

func TestRoundTrip(t *testing.T) {
	m := sampleMap(t)

	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if got.StationCount() != 3 || got.EdgeCount() != 2 {
		t.Fatalf("round trip: %d stations, %d edges", got.StationCount(), got.EdgeCount())
	}
	for _, want := range m.Stations() {
		s := got.Station(want.ID)
		if s == nil {
			t.Fatalf("station %d lost", want.ID)
		}
		if s.Pos != want.Pos || s.Name != want.Name || s.Locked != want.Locked || s.Checkpoint != want.Checkpoint {
			t.Errorf("station %d = %+v, want %+v", want.ID, s, want)
		}
	}

	ab, ok := got.EdgeBetween(1, 2)
	if !ok {
		t.Fatal("edge 1-2 lost")
	}
	if len(ab.Path()) != 3 || ab.Path()[0] != grid.N(1, 0) {
		t.Errorf("edge 1-2 path = %v", ab.Path())
	}
	if len(ab.Lines()) != 1 {
		t.Errorf("edge 1-2 lines = %v", ab.Lines())
	}
	bc, ok := got.EdgeBetween(2, 3)
	if !ok || !bc.Locked {
		t.Error("edge 2-3 should survive with its lock")
	}

	lines := got.Lines()
	if len(lines) != 1 || len(lines[0].Stations()) != 3 {
		t.Fatalf("lines = %v", lines)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	m := sampleMap(t)
	b1, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b2, err := Marshal(m.Clone())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("Marshal of equal maps should produce equal bytes")
	}
}

func TestReadJSONRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"malformed", `{"stations": [`},
		{"duplicate id", `{"stations": [{"id": 1, "x": 0, "y": 0}, {"id": 1, "x": 1, "y": 0}], "edges": []}`},
		{"zero id", `{"stations": [{"id": 0, "x": 0, "y": 0}], "edges": []}`},
		{"unknown endpoint", `{"stations": [{"id": 1, "x": 0, "y": 0}], "edges": [{"from": 1, "to": 2}]}`},
		{"self loop", `{"stations": [{"id": 1, "x": 0, "y": 0}], "edges": [{"from": 1, "to": 1}]}`},
		{"unknown line", `{"stations": [{"id": 1, "x": 0, "y": 0}, {"id": 2, "x": 1, "y": 0}], "edges": [{"from": 1, "to": 2, "lines": [9]}]}`},
		{"line with unknown station", `{"stations": [{"id": 1, "x": 0, "y": 0}], "edges": [], "lines": [{"id": 1, "stations": [7]}]}`},
		{"control character in name", "{\"stations\": [{\"id\": 1, \"x\": 0, \"y\": 0, \"name\": \"bad\\u0007name\"}], \"edges\": []}"},
		{"bad line color", `{"stations": [{"id": 1, "x": 0, "y": 0}], "edges": [], "lines": [{"id": 1, "name": "U1", "color": "red", "stations": [1]}]}`},
		{"missing line color", `{"stations": [{"id": 1, "x": 0, "y": 0}], "edges": [], "lines": [{"id": 1, "name": "U1", "stations": [1]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tc.json)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
