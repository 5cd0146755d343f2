package segment

import (
	"math"
	"sort"
)

// pairKey is a pair of ids. newPairKey builds the unordered form with a < b.
type pairKey struct {
	a, b int
}

func newPairKey(x, y int) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// pairStats accumulates squared colour differences across the shared border
// of two regions.
type pairStats struct {
	drc, dgc, dsum float64
	count          int
}

// mergeRegions runs one merge pass over the current boundary list.
//
// Parameters: none; thresholds come from the segmenter options and the
// boundary list from the preceding findBoundaryPixels.
//
// Returns the number of pairs merged in this pass.
//
// # Algorithm
//
//  1. For each boundary pixel of a region larger than MergeMinNumPixels,
//     compare it with its neighbours (4 or 8 per ConnectCorners) that
//     resolve to another region. Accumulate the squared differences of
//     r and g chromaticity and of sum-RGB per unordered region pair.
//  2. Sort the pairs by id.
//  3. Merge a pair when it has more than 3*MergeMinNumPixels comparisons
//     and the RMS differences of both chromaticities are below
//     MergeRGThreshold and of sum-RGB below MergeSumRGBAbsThreshold.
//
// Both ids are resolved again at merge time, so a region may absorb
// several neighbours in one pass.
func (s *segmenter) mergeRegions() int {
	o := s.opts
	rows, cols := s.img.Rows, s.img.Cols
	stats := make(map[pairKey]*pairStats)

	for _, bp := range s.boundary {
		r := s.resolve(bp.region)
		if r <= 0 || s.regions[r].n <= o.MergeMinNumPixels {
			continue
		}
		bi, bj := bp.idx/cols, bp.idx%cols
		from := s.img.Pix[bp.idx]
		frc, fgc := from.chrom()
		fs := from.sum()

		for _, d := range s.offsets {
			ni, nj := bi+d.I, bj+d.J
			if ni < 0 || nj < 0 || ni >= rows || nj >= cols {
				continue
			}
			n := ni*cols + nj
			q := s.resolve(s.labels[n])
			if q <= 0 || q == r {
				continue
			}
			to := s.img.Pix[n]
			trc, tgc := to.chrom()
			key := newPairKey(r, q)
			st, ok := stats[key]
			if !ok {
				st = &pairStats{}
				stats[key] = st
			}
			st.drc += (frc - trc) * (frc - trc)
			st.dgc += (fgc - tgc) * (fgc - tgc)
			st.dsum += (fs - to.sum()) * (fs - to.sum())
			st.count++
		}
	}
	if s.err != nil {
		return 0
	}

	keys := make([]pairKey, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	merged := 0
	for _, k := range keys {
		st := stats[k]
		if st.count <= 3*o.MergeMinNumPixels {
			continue
		}
		n := float64(st.count)
		if math.Sqrt(st.drc/n) < o.MergeRGThreshold &&
			math.Sqrt(st.dgc/n) < o.MergeRGThreshold &&
			math.Sqrt(st.dsum/n) < o.MergeSumRGBAbsThreshold {
			if s.mergePair(k.a, k.b) {
				merged++
			}
		}
	}
	s.log.Debug().Int("pairs", len(keys)).Int("merged", merged).Int("regions", s.live).Msg("merge pass")
	return merged
}

// mergePair joins the regions behind x and y. The combined means, weighted
// by pixel count, move onto whichever id survives the union.
func (s *segmenter) mergePair(x, y int) bool {
	a, b := s.resolve(x), s.resolve(y)
	if a <= 0 || b <= 0 || a == b {
		return false
	}
	ra, rb := s.regions[a], s.regions[b]
	total := ra.n + rb.n
	merged := region{n: total}
	if total > 0 {
		wa, wb := float64(ra.n)/float64(total), float64(rb.n)/float64(total)
		merged.r = wa*ra.r + wb*rb.r
		merged.g = wa*ra.g + wb*rb.g
		merged.b = wa*ra.b + wb*rb.b
		merged.rc = wa*ra.rc + wb*rb.rc
		merged.gc = wa*ra.gc + wb*rb.gc
		merged.sum = wa*ra.sum + wb*rb.sum
	}

	root := s.rel.union(a, b)
	if root != a && root != b {
		s.fail(internalErrorf("merge", "union of %d and %d produced root %d", a, b, root))
		return false
	}
	s.regions[a].n = 0
	s.regions[b].n = 0
	s.regions[root] = merged
	s.live--
	return true
}
