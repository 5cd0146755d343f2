package imaging

import (
	"math"

	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

// ShapeSummary scores how closely a segment resembles simple shapes.
// The scores do not depend on downsizing.
type ShapeSummary struct {
	// Extent is the fraction of the bounding box covered by the segment.
	// It is 1 for an axis-aligned rectangle.
	Extent float64 `json:"extent"`

	// AspectRatio is the bounding box width divided by its height.
	AspectRatio float64 `json:"aspect_ratio"`

	// Circularity is 4*pi*area/perimeter^2 of the outer contour, capped at
	// 1 (a disc). Zero when the contour could not be traced.
	Circularity float64 `json:"circularity"`
}

func describeShape(seg *segment.Segment) ShapeSummary {
	w := float64(seg.JMax - seg.JMin + 1)
	h := float64(seg.IMax - seg.IMin + 1)
	s := ShapeSummary{
		Extent:      round4(float64(seg.NumPixels) / (w * h)),
		AspectRatio: round4(w / h),
	}
	if p := contourLength(seg.OuterBoundary); p > 0 {
		s.Circularity = round4(math.Min(1, 4*math.Pi*float64(seg.NumPixels)/(p*p)))
	}
	return s
}

// contourLength is the length of the polyline v in segmented pixels.
func contourLength(v []segment.Vertex) float64 {
	var p float64
	for k := 1; k < len(v); k++ {
		p += math.Hypot(v[k].I-v[k-1].I, v[k].J-v[k-1].J)
	}
	return p
}
