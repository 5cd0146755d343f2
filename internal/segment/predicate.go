package segment

import "math"

const (
	sumEpsilon   = 1e-4
	chromEpsilon = 1e-6
)

// predicate decides whether a candidate pixel joins the region being grown.
type predicate interface {
	// anchor fixes the global reference colour: the seed pixel, or the
	// region means when re-growing.
	anchor(ref region)
	// accept tests cand, reached from the member pixel cur.
	accept(cur, cand Pixel) bool
	// anchored reports whether any test depends on the anchor, which is
	// what makes re-growing around the region mean meaningful.
	anchored() bool
}

func newPredicate(o *Options) predicate {
	if o.Method == MethodChromLum {
		return &chromLumPredicate{o: o}
	}
	return &generalPredicate{o: o}
}

// generalPredicate applies the whole threshold ladder.
type generalPredicate struct {
	o *Options

	r, g, b interval
	rc, gc  interval
	sum     interval
}

func (p *generalPredicate) anchor(ref region) {
	o := p.o
	p.r = window(ref.r, o.MaxAbsRGBVar, o.MaxRelRGBVar)
	p.g = window(ref.g, o.MaxAbsRGBVar, o.MaxRelRGBVar)
	p.b = window(ref.b, o.MaxAbsRGBVar, o.MaxRelRGBVar)

	p.rc = window(ref.rc, o.MaxAbsChromVar, o.MaxRelChromVar)
	p.gc = window(ref.gc, o.MaxAbsChromVar, o.MaxRelChromVar)

	s := ref.sum
	rel := o.MaxRelSumRGBVar
	if s <= o.MinRGBSumForRelativeSumDiff {
		rel = Off
	}
	p.sum = window(s, o.MaxAbsSumRGBVar, rel)
}

func (p *generalPredicate) anchored() bool {
	o := p.o
	return o.MaxAbsRGBVar.IsSet() || o.MaxRelRGBVar.IsSet() ||
		o.MaxAbsChromVar.IsSet() || o.MaxRelChromVar.IsSet() ||
		o.MaxAbsSumRGBVar.IsSet() || o.MaxRelSumRGBVar.IsSet()
}

func (p *generalPredicate) accept(cur, cand Pixel) bool {
	o := p.o
	if !p.r.contains(cand.R) || !p.g.contains(cand.G) || !p.b.contains(cand.B) {
		return false
	}

	cs := cand.sum()
	trustChrom := cs > o.MinRGBSumForChromTest
	var rc, gc float64
	if trustChrom {
		rc, gc = cand.chrom()
		if !p.rc.contains(rc) || !p.gc.contains(gc) {
			return false
		}
	}
	if !p.sum.contains(cs) {
		return false
	}

	dr, dg, db := cand.R-cur.R, cand.G-cur.G, cand.B-cur.B
	d2 := dr*dr + dg*dg + db*db
	if v, ok := o.MaxAbsRGBSqrDiff.Value(); ok && d2 > v {
		return false
	}
	if v, ok := o.MaxRelRGBSqrDiff.Value(); ok {
		norm := cur.R*cur.R + cur.G*cur.G + cur.B*cur.B
		if d2/(norm+sumEpsilon) > v {
			return false
		}
	}

	if !sumDiffOK(o, cur.sum(), cs) {
		return false
	}

	if trustChrom && (o.MaxAbsChromDiff.IsSet() || o.MaxRelChromDiff.IsSet()) {
		crc, cgc := cur.chrom()
		drc, dgc := math.Abs(rc-crc), math.Abs(gc-cgc)
		if v, ok := o.MaxAbsChromDiff.Value(); ok && (drc > v || dgc > v) {
			return false
		}
		if v, ok := o.MaxRelChromDiff.Value(); ok &&
			(drc/(rc+chromEpsilon) > v || dgc/(gc+chromEpsilon) > v) {
			return false
		}
	}
	return true
}

// sumDiffOK applies the absolute and relative luminance step limits.
func sumDiffOK(o *Options, curSum, candSum float64) bool {
	d := math.Abs(candSum - curSum)
	if v, ok := o.MaxAbsSumRGBDiff.Value(); ok && d > v {
		return false
	}
	if v, ok := o.MaxRelSumRGBDiff.Value(); ok && candSum > o.MinRGBSumForRelativeSumDiff && d/candSum > v {
		return false
	}
	return true
}

// chromLumPredicate bounds chromaticity against the anchor and luminance
// against the neighbouring member pixel.
type chromLumPredicate struct {
	o      *Options
	rc, gc interval
}

func (p *chromLumPredicate) anchor(ref region) {
	p.rc = window(ref.rc, p.o.MaxAbsChromVar, p.o.MaxRelChromVar)
	p.gc = window(ref.gc, p.o.MaxAbsChromVar, p.o.MaxRelChromVar)
}

func (p *chromLumPredicate) anchored() bool {
	return p.o.MaxAbsChromVar.IsSet() || p.o.MaxRelChromVar.IsSet()
}

func (p *chromLumPredicate) accept(cur, cand Pixel) bool {
	cs := cand.sum()
	if cs > p.o.MinRGBSumForChromTest {
		rc, gc := cand.chrom()
		if !p.rc.contains(rc) || !p.gc.contains(gc) {
			return false
		}
	}
	return sumDiffOK(p.o, cur.sum(), cs)
}
