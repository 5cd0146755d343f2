package segment

// boundaryPixel is a region member touching another region or the image edge.
type boundaryPixel struct {
	idx    int
	region int
}

// findBoundaryPixels rebuilds s.boundary in row-major order. Labels are
// resolved through the relabel table so merged regions count as one.
func (s *segmenter) findBoundaryPixels() {
	rows, cols := s.img.Rows, s.img.Cols
	s.boundary = s.boundary[:0]
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			r := s.resolve(s.labels[idx])
			if r <= 0 {
				continue
			}
			if i == 0 || j == 0 || i == rows-1 || j == cols-1 || s.touchesOther(i, j, r) {
				s.boundary = append(s.boundary, boundaryPixel{idx: idx, region: r})
			}
		}
	}
	s.log.Debug().Int("pixels", len(s.boundary)).Msg("boundary extraction")
}

func (s *segmenter) touchesOther(i, j, r int) bool {
	cols := s.img.Cols
	for _, d := range offsets8 {
		if s.resolve(s.labels[(i+d.I)*cols+j+d.J]) != r {
			return true
		}
	}
	return false
}
