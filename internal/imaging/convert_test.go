package imaging

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

func TestConvert(t *testing.T) {
	img := createPatternImage(20, 10)

	conv, err := Convert(img, DefaultConvertOptions())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if conv.Image.Rows != 10 || conv.Image.Cols != 20 {
		t.Errorf("size: got %dx%d rows x cols, want 10x20", conv.Image.Rows, conv.Image.Cols)
	}
	if conv.Scale != 1 {
		t.Errorf("Scale: got %v, want 1", conv.Scale)
	}

	tests := []struct {
		i, j    int
		r, g, b float64
	}{
		{0, 0, 255, 0, 0},
		{0, 19, 0, 255, 0},
		{9, 0, 0, 0, 255},
		{9, 19, 255, 255, 255},
	}
	for _, tt := range tests {
		p := conv.Image.At(tt.i, tt.j)
		if p.R != tt.r || p.G != tt.g || p.B != tt.b || p.Invalid {
			t.Errorf("pixel (%d,%d): got %+v, want (%v,%v,%v)", tt.i, tt.j, p, tt.r, tt.g, tt.b)
		}
	}
}

func TestConvert_Downscale(t *testing.T) {
	img := createInMemoryImage(400, 200, color.RGBA{10, 20, 30, 255})

	conv, err := Convert(img, ConvertOptions{MaxDimension: 100, AlphaThreshold: 128})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if conv.Image.Cols != 100 || conv.Image.Rows != 50 {
		t.Errorf("size: got %dx%d, want 100 cols x 50 rows", conv.Image.Cols, conv.Image.Rows)
	}
	if conv.Scale != 4 {
		t.Errorf("Scale: got %v, want 4", conv.Scale)
	}
	if x, y := conv.ToSource(10, 20); x != 80 || y != 40 {
		t.Errorf("ToSource: got (%v,%v), want (80,40)", x, y)
	}
	if i, j := conv.FromSource(80, 40); i != 10 || j != 20 {
		t.Errorf("FromSource: got (%d,%d), want (10,20)", i, j)
	}
}

func TestConvert_AlphaMarksInvalid(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			a := uint8(255)
			if x == 0 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{100, 150, 200, a})
		}
	}

	conv, err := Convert(img, DefaultConvertOptions())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if conv.Image.Valid(i, 0) {
			t.Errorf("pixel (%d,0) should be invalid", i)
		}
		if !conv.Image.Valid(i, 1) {
			t.Errorf("pixel (%d,1) should be valid", i)
		}
	}
}

func TestConvert_Blur(t *testing.T) {
	img := createInMemoryImage(21, 21, color.Black)
	img.(*image.RGBA).Set(10, 10, color.White)

	conv, err := Convert(img, ConvertOptions{BlurRadius: 2})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	center := conv.Image.At(10, 10)
	near := conv.Image.At(10, 11)
	if center.R >= 255 {
		t.Errorf("center should be smoothed, got %v", center.R)
	}
	if near.R <= 0 {
		t.Errorf("neighbour should pick up light, got %v", near.R)
	}
}

func TestConvert_Invalid(t *testing.T) {
	if _, err := Convert(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultConvertOptions()); err == nil {
		t.Error("expected error for empty image")
	}
	if _, err := Convert(createInMemoryImage(2, 2, color.White), ConvertOptions{BlurRadius: -1}); err == nil {
		t.Error("expected error for negative blur radius")
	}
}

func TestDescribeSegments(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			c := color.RGBA{255, 0, 0, 255}
			if x >= 10 {
				c = color.RGBA{0, 0, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	conv, err := Convert(img, DefaultConvertOptions())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	res, err := segment.Run(context.Background(), conv.Image, segment.DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sum := DescribeSegments(conv, res, DescribeOptions{IncludeContours: true})

	if sum.SegmentCount != 2 || len(sum.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", sum.SegmentCount)
	}
	if sum.CoveragePercent != 100 {
		t.Errorf("coverage: got %v, want 100", sum.CoveragePercent)
	}
	big, small := sum.Segments[0], sum.Segments[1]
	if big.PixelCount != 600 || small.PixelCount != 200 {
		t.Errorf("sizes: got %d and %d, want 600 and 200", big.PixelCount, small.PixelCount)
	}
	if big.Color.Hex != "#0000FF" || small.Color.Hex != "#FF0000" {
		t.Errorf("colors: got %s and %s", big.Color.Hex, small.Color.Hex)
	}
	if small.Bounds != (Bounds{X1: 0, Y1: 0, X2: 10, Y2: 20}) {
		t.Errorf("bounds: got %+v", small.Bounds)
	}
	if small.LuminanceStdDev != 0 {
		t.Errorf("uniform segment std dev: got %v", small.LuminanceStdDev)
	}
	if len(big.Neighbors) != 1 || big.Neighbors[0].ColorDistance <= 0 {
		t.Errorf("neighbours: got %+v", big.Neighbors)
	}
	if !big.Contour.Traced || len(big.Contour.Vertices) != big.Contour.VertexCount || big.Contour.Perimeter <= 0 {
		t.Errorf("contour: got %+v", big.Contour)
	}

	limited := DescribeSegments(conv, res, DescribeOptions{MaxSegments: 1})
	if len(limited.Segments) != 1 || !limited.Truncated || limited.Segments[0].PixelCount != 600 {
		t.Errorf("MaxSegments: got %d segments, truncated=%v", len(limited.Segments), limited.Truncated)
	}
	if limited.Segments[0].Contour.Vertices != nil {
		t.Error("vertices should be omitted unless requested")
	}
}

func TestSegmentationSummary_Translate(t *testing.T) {
	sum := &SegmentationSummary{Segments: []SegmentSummary{{
		Bounds:   Bounds{X1: 0, Y1: 0, X2: 10, Y2: 20},
		Centroid: PointF{X: 4.5, Y: 9.5},
		Interior: PointF{X: 4, Y: 9},
		Contour:  ContourSummary{Traced: true, VertexCount: 1, Vertices: []PointF{{X: 0.5, Y: 0.5}}},
	}}}

	sum.Translate(100, 50)

	got := sum.Segments[0]
	if got.Bounds != (Bounds{X1: 100, Y1: 50, X2: 110, Y2: 70}) {
		t.Errorf("bounds: got %+v", got.Bounds)
	}
	if got.Centroid != (PointF{X: 104.5, Y: 59.5}) || got.Interior != (PointF{X: 104, Y: 59}) {
		t.Errorf("points: got %+v and %+v", got.Centroid, got.Interior)
	}
	if got.Contour.Vertices[0] != (PointF{X: 100.5, Y: 50.5}) {
		t.Errorf("vertex: got %+v", got.Contour.Vertices[0])
	}
}
