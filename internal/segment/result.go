package segment

// Segment is one final region.
type Segment struct {
	// ID is the dense 1-based segment id, also used in Result.Labels.
	ID int

	// Pixels lists every member in row-major order.
	Pixels []Point
	// Boundary lists the members that touch another label or the image edge.
	Boundary []Point
	// OuterBoundary is the closed outside contour at sub-pixel resolution,
	// first vertex equal to the last. Nil when tracing failed.
	OuterBoundary []Vertex

	NumPixels int

	// Mean colour and chromaticity of the region.
	R, G, B        float64
	RChrom, GChrom float64
	SumRGB         float64

	IMin, IMax, JMin, JMax int
	ICM, JCM               float64

	// IInside, JInside is a member pixel near the centroid column.
	IInside, JInside int
	// InteriorEstimated is set when no member pixel lay in the centroid
	// column and the rounded centroid was used instead.
	InteriorEstimated bool

	// Neighbors holds the ids of segments found within ConnectionMaxStep
	// pixels of this segment's boundary, in discovery order.
	Neighbors []int
}

// Result is the output of Run.
type Result struct {
	Rows, Cols int

	// Labels holds the final segment id per pixel, 0 for pixels of regions
	// too small to keep and a negative count for pixels discarded while
	// growing.
	Labels [][]int

	Segments []*Segment

	// TraceFailures counts segments whose outer boundary could not be closed.
	TraceFailures int
}

// Segment returns the segment with the given id, or nil.
func (r *Result) Segment(id int) *Segment {
	if id < 1 || id > len(r.Segments) {
		return nil
	}
	return r.Segments[id-1]
}

// SegmentAt returns the segment covering pixel (row, col), or nil when the
// pixel is outside the image or not part of any segment.
func (r *Result) SegmentAt(row, col int) *Segment {
	if row < 0 || col < 0 || row >= r.Rows || col >= r.Cols {
		return nil
	}
	return r.Segment(r.Labels[row][col])
}
