package segment

var (
	offsets4 = []Point{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	offsets8 = []Point{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// region holds the colour means and size of one initial region.
type region struct {
	r, g, b float64
	rc, gc  float64
	sum     float64
	n       int
}

// seedRegion describes p as a one-pixel region.
func seedRegion(p Pixel) region {
	rc, gc := p.chrom()
	return region{r: p.R, g: p.G, b: p.B, rc: rc, gc: gc, sum: p.sum(), n: 1}
}

// resetLabels clears the label map. Invalid pixels get a negative sentinel so
// they are neither seeds nor reachable.
func (s *segmenter) resetLabels() {
	for idx, p := range s.img.Pix {
		if p.Invalid {
			s.labels[idx] = -1
		} else {
			s.labels[idx] = 0
		}
	}
}

// initialSegmentation seeds a region at every unlabelled pixel in row-major
// order and grows it.
func (s *segmenter) initialSegmentation() {
	s.resetLabels()
	reseg := s.pred.anchored()

	for idx := range s.labels {
		if s.labels[idx] != 0 {
			continue
		}
		id := len(s.regions)

		s.pred.anchor(seedRegion(s.img.Pix[idx]))
		s.growFrom(idx, id)

		if reseg {
			for pass := 0; pass < s.opts.ResegmentLevel; pass++ {
				if len(s.members) < s.opts.MinResegmentSize {
					break
				}
				mean := s.meanOf(s.members)
				for _, m := range s.members {
					s.labels[m] = 0
				}
				s.pred.anchor(mean)
				s.growFrom(idx, id)
			}
		}

		if len(s.members) < s.opts.MinInitialSegmentSize {
			s.discard(s.members)
			continue
		}

		s.regions = append(s.regions, s.meanOf(s.members))
		s.live++
	}
	s.log.Debug().Int("regions", s.live).Msg("initial segmentation")
}

// growFrom floods region id outward from seed using an explicit stack. The
// seed is always included. Member indices are left in s.members.
func (s *segmenter) growFrom(seed, id int) {
	rows, cols := s.img.Rows, s.img.Cols
	s.members = s.members[:0]
	s.stack = append(s.stack[:0], seed)
	s.labels[seed] = id

	for len(s.stack) > 0 {
		cur := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.members = append(s.members, cur)

		ci, cj := cur/cols, cur%cols
		from := s.img.Pix[cur]
		for _, d := range s.offsets {
			ni, nj := ci+d.I, cj+d.J
			if ni < 0 || nj < 0 || ni >= rows || nj >= cols {
				continue
			}
			n := ni*cols + nj
			if s.labels[n] != 0 {
				continue
			}
			if s.pred.accept(from, s.img.Pix[n]) {
				s.labels[n] = id
				s.stack = append(s.stack, n)
			}
		}
	}
}

// discard marks the pixels of a region that is too small with -count.
func (s *segmenter) discard(members []int) {
	mark := -len(members)
	for _, m := range members {
		s.labels[m] = mark
	}
}

func (s *segmenter) meanOf(members []int) region {
	var reg region
	for _, m := range members {
		p := s.img.Pix[m]
		rc, gc := p.chrom()
		reg.r += p.R
		reg.g += p.G
		reg.b += p.B
		reg.rc += rc
		reg.gc += gc
		reg.sum += p.sum()
	}
	reg.n = len(members)
	if reg.n > 0 {
		n := float64(reg.n)
		reg.r /= n
		reg.g /= n
		reg.b /= n
		reg.rc /= n
		reg.gc /= n
		reg.sum /= n
	}
	return reg
}
