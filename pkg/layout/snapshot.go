package layout

import (
	"time"

	"github.com/jbaarsen/metromap/pkg/metro"
)

// DefaultStreamSize is the snapshot buffer used by NewController.
const DefaultStreamSize = 16

// Snapshot is an independent copy of the working layout, taken while a run
// is in progress. Consumers may hold on to it; nothing in the run mutates it
// afterwards.
type Snapshot struct {
	RunID string
	State State

	// Map is a deep copy of the working map at the time of the snapshot.
	// During a run it holds the contracted form of the graph.
	Map *metro.Map

	// Try counts routing attempts so far; Moves counts accepted local
	// search moves.
	Try   int
	Moves int

	Taken time.Time
}

// Stream is a bounded snapshot channel. Pushing to a full stream drops the
// oldest snapshot rather than blocking the run, so a slow consumer only ever
// loses intermediate frames.
type Stream struct {
	ch chan Snapshot
}

// NewStream creates a stream buffering up to size snapshots.
func NewStream(size int) *Stream {
	if size < 1 {
		size = 1
	}
	return &Stream{ch: make(chan Snapshot, size)}
}

// C returns the receive side of the stream. It is closed when the run that
// owns the stream finishes.
func (s *Stream) C() <-chan Snapshot { return s.ch }

// push delivers a snapshot without blocking, evicting the oldest buffered
// snapshot when the consumer is behind.
func (s *Stream) push(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *Stream) close() { close(s.ch) }
