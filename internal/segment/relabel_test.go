package segment

import (
	"errors"
	"testing"
)

func TestRelabelTable_Find(t *testing.T) {
	rt := newRelabelTable(6)
	rt.union(4, 5)
	rt.union(2, 4)
	root := rt.union(1, 2)

	for _, id := range []int{1, 2, 4, 5} {
		got, err := rt.find(id)
		if err != nil {
			t.Fatalf("find(%d) failed: %v", id, err)
		}
		if got != root {
			t.Errorf("find(%d) = %d, want %d", id, got, root)
		}
	}
	if got, _ := rt.find(3); got != 3 {
		t.Errorf("find(3) = %d, want 3", got)
	}
}

func TestRelabelTable_UnionReturnsMember(t *testing.T) {
	rt := newRelabelTable(4)
	root := rt.union(1, 3)
	if root != 1 && root != 3 {
		t.Fatalf("union(1, 3) = %d, want 1 or 3", root)
	}
	again := rt.union(3, 1)
	if again != root {
		t.Errorf("repeated union = %d, want %d", again, root)
	}
}

func TestRelabelTable_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		rt   *relabelTable
		id   int
	}{
		{"zero", newRelabelTable(2), 0},
		{"negative", newRelabelTable(2), -1},
		{"past end", newRelabelTable(2), 2},
		{"nil table", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rt.find(tt.id)
			var ie *InternalError
			if !errors.As(err, &ie) {
				t.Fatalf("got %v, want *InternalError", err)
			}
			if ie.Op != "relabel" {
				t.Errorf("Op = %q, want relabel", ie.Op)
			}
		})
	}
}

func TestSegmenter_ResolveRecordsError(t *testing.T) {
	tests := []struct {
		name    string
		regions []region
		label   int
	}{
		{"unknown region", []region{{}, {n: 4}}, 2},
		{"dead root", []region{{}, {n: 0}, {n: 3}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &segmenter{regions: tt.regions, rel: newRelabelTable(len(tt.regions))}
			if got := s.resolve(-3); got != -3 {
				t.Errorf("resolve(-3) = %d, want -3", got)
			}
			if s.err != nil {
				t.Fatalf("negative label recorded %v", s.err)
			}
			if got := s.resolve(tt.label); got != 0 {
				t.Errorf("resolve(%d) = %d, want 0", tt.label, got)
			}
			var ie *InternalError
			if !errors.As(s.err, &ie) {
				t.Errorf("recorded %v, want *InternalError", s.err)
			}
		})
	}
}

func TestSegmenter_MergePairMovesStats(t *testing.T) {
	s := &segmenter{
		regions: []region{{}, {r: 100, n: 30}, {r: 200, n: 10}},
		rel:     newRelabelTable(3),
		live:    2,
	}

	if !s.mergePair(2, 1) {
		t.Fatal("mergePair returned false")
	}
	root := s.resolve(1)
	if root != s.resolve(2) {
		t.Fatalf("ids resolve to %d and %d", root, s.resolve(2))
	}
	reg := s.regions[root]
	if reg.n != 40 {
		t.Errorf("n = %d, want 40", reg.n)
	}
	if reg.r < 124.99 || reg.r > 125.01 {
		t.Errorf("r = %v, want 125", reg.r)
	}
	other := 3 - root
	if s.regions[other].n != 0 {
		t.Errorf("absorbed region still has %d pixels", s.regions[other].n)
	}
	if s.live != 1 {
		t.Errorf("live = %d, want 1", s.live)
	}
	if s.mergePair(1, 2) {
		t.Error("merging one region with itself should report false")
	}
	if s.err != nil {
		t.Errorf("unexpected error %v", s.err)
	}
}
