package segment

import "math"

// findInteriorPoints picks a member pixel for every segment. The column
// through the rounded centroid is scanned between IMin and IMax and the
// midpoint of the longest run of member pixels is chosen; the first run wins
// ties. A concave segment may miss its own centroid, this may not.
func (s *segmenter) findInteriorPoints() {
	cols := s.img.Cols
	for _, seg := range s.segments {
		jc := int(math.Round(seg.JCM))
		jc = max(seg.JMin, min(seg.JMax, jc))

		bestStart, bestLen := -1, 0
		runStart := -1
		for i := seg.IMin; i <= seg.IMax+1; i++ {
			member := i <= seg.IMax && s.labels[i*cols+jc] == seg.ID
			switch {
			case member && runStart < 0:
				runStart = i
			case !member && runStart >= 0:
				if n := i - runStart; n > bestLen {
					bestStart, bestLen = runStart, n
				}
				runStart = -1
			}
		}

		if bestLen == 0 {
			seg.IInside = int(math.Round(seg.ICM))
			seg.JInside = jc
			seg.InteriorEstimated = true
			s.log.Warn().Int("segment", seg.ID).Int("column", jc).
				Msg("no member pixel in centroid column, using centroid")
			continue
		}
		seg.IInside = bestStart + (bestLen-1)/2
		seg.JInside = jc
	}
}
