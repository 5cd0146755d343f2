package imaging

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

// Bounds is a rectangle in source image pixels.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive).
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// PointF is a source image position with sub-pixel precision.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Chromaticity holds the normalized r = R/(R+G+B) and g = G/(R+G+B).
type Chromaticity struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
}

// NeighborSummary is one entry of a segment's adjacency list.
type NeighborSummary struct {
	ID int `json:"id"`
	// ColorDistance is the CIEDE2000 distance between the two mean colors.
	ColorDistance float64 `json:"color_distance"`
}

// ContourSummary describes a segment's traced outer boundary.
type ContourSummary struct {
	Traced      bool    `json:"traced"`
	VertexCount int     `json:"vertex_count"`
	Perimeter   float64 `json:"perimeter"`
	// Vertices is only filled when contours were requested.
	Vertices []PointF `json:"vertices,omitempty"`
}

// SegmentSummary is the JSON-friendly description of one segment. All
// coordinates are in source image pixels.
type SegmentSummary struct {
	ID                int               `json:"id"`
	PixelCount        int               `json:"pixel_count"`
	AreaPercent       float64           `json:"area_percent"`
	Bounds            Bounds            `json:"bounds"`
	Centroid          PointF            `json:"centroid"`
	Interior          PointF            `json:"interior"`
	InteriorEstimated bool              `json:"interior_estimated,omitempty"`
	Color             ColorResult       `json:"color"`
	Chromaticity      Chromaticity      `json:"chromaticity"`
	Luminance         float64           `json:"luminance"`
	LuminanceStdDev   float64           `json:"luminance_std_dev"`
	Shape             ShapeSummary      `json:"shape"`
	Contour           ContourSummary    `json:"contour"`
	Neighbors         []NeighborSummary `json:"neighbors"`
}

// SegmentationSummary describes a whole segmentation.
type SegmentationSummary struct {
	Width           int              `json:"width"`
	Height          int              `json:"height"`
	SegmentedWidth  int              `json:"segmented_width"`
	SegmentedHeight int              `json:"segmented_height"`
	Scale           float64          `json:"scale"`
	SegmentCount    int              `json:"segment_count"`
	CoveragePercent float64          `json:"coverage_percent"`
	TraceFailures   int              `json:"trace_failures"`
	Segments        []SegmentSummary `json:"segments"`
	// Truncated is set when MaxSegments dropped smaller segments.
	Truncated bool `json:"truncated,omitempty"`
}

// DescribeOptions controls the size of a SegmentationSummary.
type DescribeOptions struct {
	// MaxSegments keeps only the largest segments. Zero keeps all.
	MaxSegments int
	// IncludeContours adds outer boundary vertices to each segment.
	IncludeContours bool
}

// DescribeSegments summarizes res, computed on conv.Image, in source image
// coordinates. Segments are sorted by size, largest first.
func DescribeSegments(conv *Converted, res *segment.Result, opts DescribeOptions) *SegmentationSummary {
	out := &SegmentationSummary{
		Width:           conv.SourceWidth,
		Height:          conv.SourceHeight,
		SegmentedWidth:  res.Cols,
		SegmentedHeight: res.Rows,
		Scale:           conv.Scale,
		SegmentCount:    len(res.Segments),
		TraceFailures:   res.TraceFailures,
		Segments:        make([]SegmentSummary, 0, len(res.Segments)),
	}

	total := float64(res.Rows * res.Cols)
	covered := 0
	for _, seg := range res.Segments {
		covered += seg.NumPixels
		out.Segments = append(out.Segments, DescribeSegment(conv, res, seg, opts.IncludeContours))
	}
	out.CoveragePercent = round2(float64(covered) / total * 100)

	sort.SliceStable(out.Segments, func(i, j int) bool {
		return out.Segments[i].PixelCount > out.Segments[j].PixelCount
	})
	if opts.MaxSegments > 0 && len(out.Segments) > opts.MaxSegments {
		out.Segments = out.Segments[:opts.MaxSegments]
		out.Truncated = true
	}
	return out
}

// DescribeSegment summarizes a single segment of res.
func DescribeSegment(conv *Converted, res *segment.Result, seg *segment.Segment, includeContour bool) SegmentSummary {
	scale := conv.Scale
	color := DescribeColor(seg.R, seg.G, seg.B)

	lum := make([]float64, len(seg.Pixels))
	for k, p := range seg.Pixels {
		px := conv.Image.At(p.I, p.J)
		lum[k] = px.R + px.G + px.B
	}
	mean, std := seg.SumRGB, 0.0
	if len(lum) > 1 {
		mean, std = stat.MeanStdDev(lum, nil)
	}

	cx, cy := conv.ToSource(seg.ICM, seg.JCM)
	ix, iy := conv.ToSource(float64(seg.IInside), float64(seg.JInside))

	s := SegmentSummary{
		ID:          seg.ID,
		PixelCount:  seg.NumPixels,
		AreaPercent: round2(float64(seg.NumPixels) / float64(res.Rows*res.Cols) * 100),
		Bounds: Bounds{
			X1: int(float64(seg.JMin) * scale),
			Y1: int(float64(seg.IMin) * scale),
			X2: min(conv.SourceWidth, int(math.Ceil(float64(seg.JMax+1)*scale))),
			Y2: min(conv.SourceHeight, int(math.Ceil(float64(seg.IMax+1)*scale))),
		},
		Centroid:          PointF{X: round2(cx), Y: round2(cy)},
		Interior:          PointF{X: round2(ix), Y: round2(iy)},
		InteriorEstimated: seg.InteriorEstimated,
		Color:             color,
		Chromaticity:      Chromaticity{R: round4(seg.RChrom), G: round4(seg.GChrom)},
		Luminance:         round2(mean),
		LuminanceStdDev:   round2(std),
		Shape:             describeShape(seg),
		Contour:           describeContour(conv, seg.OuterBoundary, includeContour),
		Neighbors:         make([]NeighborSummary, 0, len(seg.Neighbors)),
	}

	for _, id := range seg.Neighbors {
		other := res.Segment(id)
		if other == nil {
			continue
		}
		s.Neighbors = append(s.Neighbors, NeighborSummary{
			ID:            id,
			ColorDistance: round4(color.Distance(DescribeColor(other.R, other.G, other.B))),
		})
	}
	return s
}

func describeContour(conv *Converted, v []segment.Vertex, includeVertices bool) ContourSummary {
	if v == nil {
		return ContourSummary{}
	}
	c := ContourSummary{
		Traced:      true,
		VertexCount: len(v),
		Perimeter:   round2(contourLength(v) * conv.Scale),
	}
	if includeVertices {
		c.Vertices = make([]PointF, len(v))
		for k, p := range v {
			x, y := conv.ToSource(p.I, p.J)
			c.Vertices[k] = PointF{X: round2(x), Y: round2(y)}
		}
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Translate shifts every coordinate in the summary by (dx, dy). It is used
// to report a segmented crop in the frame of the image it was cut from.
func (s *SegmentationSummary) Translate(dx, dy int) {
	for k := range s.Segments {
		s.Segments[k].Translate(dx, dy)
	}
}

// Translate shifts every coordinate of the segment by (dx, dy).
func (s *SegmentSummary) Translate(dx, dy int) {
	fx, fy := float64(dx), float64(dy)
	s.Bounds = Bounds{X1: s.Bounds.X1 + dx, Y1: s.Bounds.Y1 + dy, X2: s.Bounds.X2 + dx, Y2: s.Bounds.Y2 + dy}
	s.Centroid = PointF{X: s.Centroid.X + fx, Y: s.Centroid.Y + fy}
	s.Interior = PointF{X: s.Interior.X + fx, Y: s.Interior.Y + fy}
	for k := range s.Contour.Vertices {
		s.Contour.Vertices[k].X += fx
		s.Contour.Vertices[k].Y += fy
	}
}
