package segment

// fillHoles absorbs discarded and invalid pixels that a single region
// encloses.
//
// Parameters: none; it runs FillHoleLevel passes over the segmenter state.
//
// Returns nothing. A relabel failure is recorded in s.err and stops the
// phase after the current pass.
//
// # Algorithm
//
// Each pass scans the interior of the image once in row-major order:
//
//  1. Skip pixels that already belong to a region.
//  2. Ask enclosingRegion for the region surrounding the pixel. Border
//     pixels are never filled.
//  3. Absorb the pixel: it takes the mean colour of its same-region
//     8-neighbours, joins the region and becomes valid.
//
// Pixels absorbed early in a pass can enclose later ones in the same pass.
// Passes stop early once one fills nothing.
func (s *segmenter) fillHoles() {
	rows, cols := s.img.Rows, s.img.Cols
	for level := 0; level < s.opts.FillHoleLevel; level++ {
		filled := 0
		for i := 1; i < rows-1; i++ {
			for j := 1; j < cols-1; j++ {
				idx := i*cols + j
				if s.labels[idx] >= 0 {
					continue
				}
				r := s.enclosingRegion(i, j)
				if r <= 0 {
					continue
				}
				s.absorb(i, j, r)
				filled++
			}
		}
		if s.err != nil {
			return
		}
		s.log.Debug().Int("pass", level+1).Int("filled", filled).Msg("hole fill")
		if filled == 0 {
			return
		}
	}
}

// enclosingRegion returns the region that surrounds (i, j), or 0. The pixel
// is enclosed when its left and right neighbours share a region that also
// covers the full row above or below, or when its upper and lower
// neighbours share a region that also covers the full column to either side.
func (s *segmenter) enclosingRegion(i, j int) int {
	at := func(di, dj int) int {
		return s.resolve(s.labels[(i+di)*s.img.Cols+j+dj])
	}
	row := func(di, r int) bool {
		return at(di, -1) == r && at(di, 0) == r && at(di, 1) == r
	}
	col := func(dj, r int) bool {
		return at(-1, dj) == r && at(0, dj) == r && at(1, dj) == r
	}

	if r := at(0, -1); r > 0 && at(0, 1) == r && (row(1, r) || row(-1, r)) {
		return r
	}
	if r := at(-1, 0); r > 0 && at(1, 0) == r && (col(1, r) || col(-1, r)) {
		return r
	}
	return 0
}

func (s *segmenter) absorb(i, j, r int) {
	cols := s.img.Cols
	var sr, sg, sb float64
	n := 0
	for _, d := range offsets8 {
		k := (i+d.I)*cols + j + d.J
		if s.resolve(s.labels[k]) != r {
			continue
		}
		p := s.img.Pix[k]
		sr += p.R
		sg += p.G
		sb += p.B
		n++
	}
	idx := i*cols + j
	// enclosingRegion guarantees at least five matching neighbours.
	s.img.Pix[idx] = Pixel{R: sr / float64(n), G: sg / float64(n), B: sb / float64(n)}
	s.labels[idx] = r
	s.regions[r].n++
}
