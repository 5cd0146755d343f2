package imaging

import (
	"math"
	"testing"

	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

func TestDescribeShape(t *testing.T) {
	square := []segment.Vertex{{I: 0, J: 0}, {I: 0, J: 4}, {I: 4, J: 4}, {I: 4, J: 0}, {I: 0, J: 0}}

	tests := []struct {
		name     string
		seg      segment.Segment
		extent   float64
		aspect   float64
		circular float64
	}{
		{
			name:     "full square",
			seg:      segment.Segment{NumPixels: 16, IMax: 3, JMax: 3, OuterBoundary: square},
			extent:   1,
			aspect:   1,
			circular: math.Pi / 4,
		},
		{
			name:     "partial square",
			seg:      segment.Segment{NumPixels: 12, IMax: 3, JMax: 3, OuterBoundary: square},
			extent:   0.75,
			aspect:   1,
			circular: 3 * math.Pi / 16,
		},
		{
			name:   "wide bar without contour",
			seg:    segment.Segment{NumPixels: 20, IMin: 2, IMax: 3, JMin: 5, JMax: 14},
			extent: 1,
			aspect: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeShape(&tt.seg)
			if got.Extent != tt.extent || got.AspectRatio != tt.aspect {
				t.Errorf("extent/aspect: got %v/%v, want %v/%v", got.Extent, got.AspectRatio, tt.extent, tt.aspect)
			}
			if math.Abs(got.Circularity-tt.circular) > 1e-3 {
				t.Errorf("circularity: got %v, want %v", got.Circularity, tt.circular)
			}
		})
	}
}

func TestContourLength(t *testing.T) {
	if got := contourLength(nil); got != 0 {
		t.Errorf("empty: got %v", got)
	}
	v := []segment.Vertex{{I: 0, J: 0}, {I: 3, J: 4}, {I: 3, J: 0}}
	if got := contourLength(v); got != 9 {
		t.Errorf("got %v, want 9", got)
	}
}
