package layout

import "testing"

func TestStreamDropsOldest(t *testing.T) {
	s := NewStream(4)
	for i := 0; i < 10; i++ {
		s.push(Snapshot{Try: i})
	}

	if got := len(s.ch); got != 4 {
		t.Fatalf("buffered %d snapshots, want 4", got)
	}
	// Only the newest four survive.
	for want := 6; want < 10; want++ {
		snap := <-s.C()
		if snap.Try != want {
			t.Errorf("got snapshot %d, want %d", snap.Try, want)
		}
	}
}

func TestStreamCloseEndsRange(t *testing.T) {
	s := NewStream(2)
	s.push(Snapshot{Try: 1})
	s.close()

	var got []int
	for snap := range s.C() {
		got = append(got, snap.Try)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("drained %v, want [1]", got)
	}
}

func TestStreamMinimumSize(t *testing.T) {
	s := NewStream(0)
	s.push(Snapshot{Try: 1})
	s.push(Snapshot{Try: 2})
	if snap := <-s.C(); snap.Try != 2 {
		t.Errorf("got snapshot %d, want 2", snap.Try)
	}
}
