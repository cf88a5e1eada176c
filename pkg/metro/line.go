package metro

import "slices"

// LineID identifies a line within a Map.
type LineID int

// Line is a metro line: an ordered run of stations with a display name and
// color. The station sequence is a path in the graph; consecutive stations
// are connected by an edge carrying this line.
type Line struct {
	ID    LineID
	Name  string
	Color string

	stations []StationID
}

// Stations returns the ordered station sequence of the line.
func (l *Line) Stations() []StationID { return l.stations }

// Append adds a station to the end of the line's sequence.
func (l *Line) Append(id StationID) { l.stations = append(l.stations, id) }

// Contains reports whether the line visits the given station.
func (l *Line) Contains(id StationID) bool { return slices.Contains(l.stations, id) }

// InsertBetween splices the given stations into the line's sequence between
// the adjacent pair (a, b), in the order given when the sequence runs a→b
// and reversed when it runs b→a. It is a no-op if a and b are not adjacent
// on this line.
func (l *Line) InsertBetween(a, b StationID, interior []StationID) {
	for i := 0; i+1 < len(l.stations); i++ {
		if l.stations[i] == a && l.stations[i+1] == b {
			l.stations = spliceStations(l.stations, i+1, interior, false)
			return
		}
		if l.stations[i] == b && l.stations[i+1] == a {
			l.stations = spliceStations(l.stations, i+1, interior, true)
			return
		}
	}
}

// RemoveRun removes every occurrence of the given stations from the line's
// sequence. Used when degree-two stations are contracted away.
func (l *Line) RemoveRun(ids []StationID) {
	l.stations = slices.DeleteFunc(l.stations, func(s StationID) bool {
		return slices.Contains(ids, s)
	})
}

func spliceStations(seq []StationID, at int, interior []StationID, reversed bool) []StationID {
	ins := append([]StationID(nil), interior...)
	if reversed {
		slices.Reverse(ins)
	}
	out := make([]StationID, 0, len(seq)+len(ins))
	out = append(out, seq[:at]...)
	out = append(out, ins...)
	out = append(out, seq[at:]...)
	return out
}

// clone returns a deep copy of the line.
func (l *Line) clone() *Line {
	c := *l
	c.stations = append([]StationID(nil), l.stations...)
	return &c
}
