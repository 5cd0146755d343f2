package segment

// buildSegments assigns dense ids to the surviving regions of at least
// MinSegmentSize pixels, rewrites the label map to those ids and fills in
// pixel lists, bounding boxes and centroids.
func (s *segmenter) buildSegments() {
	rows, cols := s.img.Rows, s.img.Cols
	o := s.opts

	s.final = make([]int, len(s.regions))
	for id := 1; id < len(s.regions); id++ {
		root := s.resolve(id)
		reg := s.regions[id]
		if root != id || reg.n < o.MinSegmentSize {
			continue
		}
		seg := &Segment{
			ID:        len(s.segments) + 1,
			NumPixels: reg.n,
			Pixels:    make([]Point, 0, reg.n),
			R:         reg.r,
			G:         reg.g,
			B:         reg.b,
			RChrom:    reg.rc,
			GChrom:    reg.gc,
			SumRGB:    reg.sum,
			IMin:      rows,
			JMin:      cols,
			IMax:      -1,
			JMax:      -1,
		}
		s.segments = append(s.segments, seg)
		s.final[id] = seg.ID
	}
	if s.err != nil {
		return
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			l := s.labels[idx]
			if l <= 0 {
				continue
			}
			f := s.final[s.resolve(l)]
			s.labels[idx] = f
			if f == 0 {
				continue
			}
			seg := s.segments[f-1]
			seg.Pixels = append(seg.Pixels, Point{I: i, J: j})
			seg.IMin = min(seg.IMin, i)
			seg.IMax = max(seg.IMax, i)
			seg.JMin = min(seg.JMin, j)
			seg.JMax = max(seg.JMax, j)
			seg.ICM += float64(i)
			seg.JCM += float64(j)
		}
	}

	for _, seg := range s.segments {
		if len(seg.Pixels) != seg.NumPixels {
			s.fail(internalErrorf("build", "segment %d has %d pixels, expected %d",
				seg.ID, len(seg.Pixels), seg.NumPixels))
			return
		}
		seg.ICM /= float64(seg.NumPixels)
		seg.JCM /= float64(seg.NumPixels)
	}
	s.assignBoundaries()
	s.log.Debug().Int("segments", len(s.segments)).Msg("segments built")
}

// assignBoundaries hands each boundary pixel to its final segment.
func (s *segmenter) assignBoundaries() {
	cols := s.img.Cols
	for _, bp := range s.boundary {
		root := s.resolve(bp.region)
		if root <= 0 {
			continue
		}
		f := s.final[root]
		if f == 0 {
			continue
		}
		seg := s.segments[f-1]
		seg.Boundary = append(seg.Boundary, Point{I: bp.idx / cols, J: bp.idx % cols})
	}
}
