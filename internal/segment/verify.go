package segment

import "fmt"

// Verify checks the structural invariants of a result: dense ids, pixel
// counts that match pixel lists, members and boundary pixels that agree with
// the label map, every labelled pixel owned by exactly one segment, closed
// outer boundaries on the sub-pixel lattice without repeated vertices and neighbour ids in range.
func (r *Result) Verify() error {
	if len(r.Labels) != r.Rows {
		return fmt.Errorf("label map has %d rows, want %d", len(r.Labels), r.Rows)
	}
	owned := 0
	for i, row := range r.Labels {
		if len(row) != r.Cols {
			return fmt.Errorf("label row %d has %d columns, want %d", i, len(row), r.Cols)
		}
		for j, l := range row {
			if l > len(r.Segments) {
				return fmt.Errorf("pixel (%d,%d) has label %d but only %d segments exist", i, j, l, len(r.Segments))
			}
			if l > 0 {
				owned++
			}
		}
	}

	total := 0
	for k, seg := range r.Segments {
		if seg.ID != k+1 {
			return fmt.Errorf("segment at index %d has id %d", k, seg.ID)
		}
		if len(seg.Pixels) != seg.NumPixels {
			return fmt.Errorf("segment %d lists %d pixels, NumPixels is %d", seg.ID, len(seg.Pixels), seg.NumPixels)
		}
		total += seg.NumPixels
		for _, p := range seg.Pixels {
			if r.Labels[p.I][p.J] != seg.ID {
				return fmt.Errorf("segment %d pixel (%d,%d) is labelled %d", seg.ID, p.I, p.J, r.Labels[p.I][p.J])
			}
		}
		for _, p := range seg.Boundary {
			if r.Labels[p.I][p.J] != seg.ID {
				return fmt.Errorf("segment %d boundary pixel (%d,%d) is not a member", seg.ID, p.I, p.J)
			}
		}
		if l := r.Labels[seg.IInside][seg.JInside]; l != seg.ID && !seg.InteriorEstimated {
			return fmt.Errorf("segment %d interior point (%d,%d) is labelled %d", seg.ID, seg.IInside, seg.JInside, l)
		}
		if v := seg.OuterBoundary; v != nil {
			if len(v) < 2 || v[0] != v[len(v)-1] {
				return fmt.Errorf("segment %d outer boundary is not closed", seg.ID)
			}
			pi, pj := -1, -1
			for n, vx := range v {
				ti, tj := vx.Tenths()
				if !onSubPixelLattice(ti) || !onSubPixelLattice(tj) {
					return fmt.Errorf("segment %d outer boundary vertex %d (%v,%v) is off the sub-pixel lattice", seg.ID, n, vx.I, vx.J)
				}
				if ti == pi && tj == pj {
					return fmt.Errorf("segment %d outer boundary repeats vertex %d", seg.ID, n)
				}
				pi, pj = ti, tj
			}
		}
		for _, n := range seg.Neighbors {
			if n < 1 || n > len(r.Segments) || n == seg.ID {
				return fmt.Errorf("segment %d has invalid neighbour %d", seg.ID, n)
			}
		}
	}
	if total != owned {
		return fmt.Errorf("segments hold %d pixels, label map assigns %d", total, owned)
	}
	return nil
}

// onSubPixelLattice reports whether a tenth-pixel coordinate lies 0.1 inside
// a pixel edge, where traced vertices are placed.
func onSubPixelLattice(tenths int) bool {
	r := tenths % 10
	return r == 1 || r == 9
}
