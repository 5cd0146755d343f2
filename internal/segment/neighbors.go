package segment

// findNeighbors collects, for every segment, the other segments found within
// ConnectionMaxStep pixels (Chebyshev distance) of its boundary pixels. The
// search runs per segment, so A may list B without B listing A unless
// SymmetricNeighbors is set.
func (s *segmenter) findNeighbors() {
	rows, cols := s.img.Rows, s.img.Cols
	step := s.opts.ConnectionMaxStep
	seen := make([]int, len(s.segments)+1)

	for _, seg := range s.segments {
		for _, p := range seg.Boundary {
			for i := max(0, p.I-step); i <= min(rows-1, p.I+step); i++ {
				for j := max(0, p.J-step); j <= min(cols-1, p.J+step); j++ {
					l := s.labels[i*cols+j]
					if l <= 0 || l == seg.ID || seen[l] == seg.ID {
						continue
					}
					seen[l] = seg.ID
					seg.Neighbors = append(seg.Neighbors, l)
				}
			}
		}
	}

	if s.opts.SymmetricNeighbors {
		s.symmetrizeNeighbors()
	}
}

func (s *segmenter) symmetrizeNeighbors() {
	linked := make(map[pairKey]bool)
	for _, seg := range s.segments {
		for _, n := range seg.Neighbors {
			linked[pairKey{a: seg.ID, b: n}] = true
		}
	}
	for _, seg := range s.segments {
		for _, n := range seg.Neighbors {
			if !linked[pairKey{a: n, b: seg.ID}] {
				linked[pairKey{a: n, b: seg.ID}] = true
				other := s.segments[n-1]
				other.Neighbors = append(other.Neighbors, seg.ID)
			}
		}
	}
}
