package segment

// heading is the tracer's direction of travel.
type heading int

const (
	headDown heading = iota
	headUp
	headLeft
	headRight
)

func (h heading) reverse() heading {
	switch h {
	case headDown:
		return headUp
	case headUp:
		return headDown
	case headLeft:
		return headRight
	}
	return headLeft
}

// cell is a position on the magnified grid, where pixel (i, j) covers cells
// (2i, 2j) through (2i+1, 2j+1).
type cell struct {
	i, j int
}

// sweep returns the three side cells examined when travelling in h and the
// heading adopted if the first of them matches. The other two keep h.
func sweep(h heading, c cell) ([3]cell, heading) {
	switch h {
	case headDown:
		return [3]cell{{c.i - 1, c.j - 1}, {c.i, c.j - 1}, {c.i + 1, c.j - 1}}, headLeft
	case headUp:
		return [3]cell{{c.i + 1, c.j + 1}, {c.i, c.j + 1}, {c.i - 1, c.j + 1}}, headRight
	case headRight:
		return [3]cell{{c.i + 1, c.j - 1}, {c.i + 1, c.j}, {c.i + 1, c.j + 1}}, headDown
	}
	return [3]cell{{c.i - 1, c.j + 1}, {c.i - 1, c.j}, {c.i - 1, c.j - 1}}, headUp
}

// ahead returns the single cell examined after the sweep, and the heading
// taken when it matches.
func ahead(h heading, c cell) (cell, heading) {
	switch h {
	case headDown:
		return cell{c.i + 1, c.j}, headRight
	case headUp:
		return cell{c.i - 1, c.j}, headLeft
	case headRight:
		return cell{c.i, c.j + 1}, headUp
	}
	return cell{c.i, c.j - 1}, headDown
}

// magnifiedGrid marks the four quadrant cells of every boundary pixel with
// its segment id.
type magnifiedGrid struct {
	rows, cols int
	id         []int
}

func newMagnifiedGrid(rows, cols int, segments []*Segment) *magnifiedGrid {
	g := &magnifiedGrid{rows: 2 * rows, cols: 2 * cols}
	g.id = make([]int, g.rows*g.cols)
	for _, seg := range segments {
		for _, p := range seg.Boundary {
			for di := 0; di < 2; di++ {
				for dj := 0; dj < 2; dj++ {
					g.id[(2*p.I+di)*g.cols+2*p.J+dj] = seg.ID
				}
			}
		}
	}
	return g
}

func (g *magnifiedGrid) is(c cell, id int) bool {
	if c.i < 0 || c.j < 0 || c.i >= g.rows || c.j >= g.cols {
		return false
	}
	return g.id[c.i*g.cols+c.j] == id
}

// traceOuterBoundaries walks the outside contour of every segment. A segment
// whose contour cannot be closed keeps a nil OuterBoundary and is counted in
// traceFailures.
func (s *segmenter) traceOuterBoundaries() {
	g := newMagnifiedGrid(s.img.Rows, s.img.Cols, s.segments)
	for _, seg := range s.segments {
		v, reason := traceOne(g, seg)
		if v == nil {
			s.traceFailures++
			s.log.Warn().Int("segment", seg.ID).Int("boundary_pixels", len(seg.Boundary)).
				Str("reason", reason).Msg("outer boundary not traced")
			continue
		}
		seg.OuterBoundary = v
	}
}

// traceOne follows the outside contour of one segment on the magnified grid.
//
// Parameters:
//   - g: the magnified label grid built by newMagnifiedGrid.
//   - seg: a built segment with its interior point and boundary list set.
//
// Returns:
//   - []Vertex: the closed contour at sub-pixel resolution, first vertex
//     repeated last. Nil when the walk fails.
//   - string: why the walk failed ("no start cell", "dead end" or
//     "contour did not close"); empty on success.
//
// # Algorithm
//
//  1. Start at the topmost cell of seg in the interior point's magnified
//     column, heading down.
//  2. Find the end cell: the first cell of seg met when circling the start
//     clockwise from the upper right. The walk closes when it re-enters
//     the start from this cell.
//  3. At each cell try the side sweep for the current heading, then the
//     cell straight ahead, then the side sweep for the reverse heading.
//  4. Give up after 4 steps per boundary pixel.
func traceOne(g *magnifiedGrid, seg *Segment) ([]Vertex, string) {
	start := cell{-1, 2 * seg.JInside}
	for i := 0; i < g.rows; i++ {
		if g.is(cell{i, start.j}, seg.ID) {
			start.i = i
			break
		}
	}
	if start.i < 0 {
		return nil, "no start cell"
	}

	end := start
	around := [7]cell{
		{start.i - 1, start.j + 1}, {start.i, start.j + 1}, {start.i + 1, start.j + 1},
		{start.i + 1, start.j},
		{start.i + 1, start.j - 1}, {start.i, start.j - 1}, {start.i - 1, start.j - 1},
	}
	for _, c := range around {
		if g.is(c, seg.ID) {
			end = c
			break
		}
	}

	limit := 4 * len(seg.Boundary)
	path := []cell{start}
	cur, h := start, headDown
	for {
		if len(path)-1 >= limit {
			return nil, "contour did not close"
		}
		next, nh, ok := step(g, seg.ID, cur, h)
		if !ok {
			return nil, "dead end"
		}
		prev := cur
		cur, h = next, nh
		path = append(path, cur)
		if cur == start && prev == end {
			break
		}
	}
	return toVertices(path), ""
}

// step picks the next contour cell: the side sweep for h, then the cell
// ahead, then the side sweep for the reverse heading.
func step(g *magnifiedGrid, id int, c cell, h heading) (cell, heading, bool) {
	if n, nh, ok := sweepMatch(g, id, c, h); ok {
		return n, nh, true
	}
	if n, nh := ahead(h, c); g.is(n, id) {
		return n, nh, true
	}
	return sweepMatch(g, id, c, h.reverse())
}

func sweepMatch(g *magnifiedGrid, id int, c cell, h heading) (cell, heading, bool) {
	cells, turn := sweep(h, c)
	for k, n := range cells {
		if !g.is(n, id) {
			continue
		}
		if k == 0 {
			return n, turn, true
		}
		return n, h, true
	}
	return cell{}, h, false
}

// toVertices converts magnified cells to pixel coordinates. Even cells map to
// p+0.1 and odd cells to p+0.9, so each vertex stays inside the pixel it
// came from. Consecutive duplicates are dropped.
func toVertices(path []cell) []Vertex {
	out := make([]Vertex, 0, len(path))
	for _, c := range path {
		v := Vertex{I: subPixel(c.i), J: subPixel(c.j)}
		if n := len(out); n > 0 && out[n-1] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}

func subPixel(m int) float64 {
	tenths := 1 + 5*m + 3*(m%2)
	return float64(tenths) / 10
}
