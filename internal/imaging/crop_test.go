package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCropRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	cropped, err := CropRegion(img, image.Rect(10, 20, 40, 60))
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if b := cropped.Bounds(); b.Dx() != 30 || b.Dy() != 40 {
		t.Errorf("size: got %dx%d, want 30x40", b.Dx(), b.Dy())
	}
	if b := cropped.Bounds(); b.Min.X != 0 || b.Min.Y != 0 {
		t.Errorf("crop should be rebased to origin, got %v", b.Min)
	}
}

func TestCropRegion_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	// Straddles the red/green boundary at x=50.
	cropped, err := CropRegion(img, image.Rect(45, 0, 55, 10))
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if c := cropped.NRGBAAt(0, 0); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("left pixel: got %v, want red", c)
	}
	if c := cropped.NRGBAAt(9, 0); c != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("right pixel: got %v, want green", c)
	}
}

func TestCropRegion_OffsetBounds(t *testing.T) {
	src := createPatternImage(100, 100)
	sub := src.SubImage(image.Rect(50, 50, 100, 100))

	cropped, err := CropRegion(sub, image.Rect(0, 0, 10, 10))
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if c := cropped.NRGBAAt(0, 0); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("got %v, want white from the bottom-right quadrant", c)
	}
}

func TestCropRegion_Invalid(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"empty", image.Rect(10, 10, 10, 20)},
		{"negative", image.Rect(-1, 0, 10, 10)},
		{"too wide", image.Rect(0, 0, 51, 10)},
		{"too tall", image.Rect(0, 0, 10, 60)},
	}
	for _, tt := range tests {
		if _, err := CropRegion(img, tt.r); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestNamedRegion(t *testing.T) {
	tests := []struct {
		name string
		want image.Rectangle
	}{
		{"top-left", image.Rect(0, 0, 50, 40)},
		{"top-right", image.Rect(50, 0, 101, 40)},
		{"bottom-left", image.Rect(0, 40, 50, 81)},
		{"bottom-right", image.Rect(50, 40, 101, 81)},
		{"top-half", image.Rect(0, 0, 101, 40)},
		{"bottom-half", image.Rect(0, 40, 101, 81)},
		{"left-half", image.Rect(0, 0, 50, 81)},
		{"right-half", image.Rect(50, 0, 101, 81)},
		{"center", image.Rect(25, 20, 76, 61)},
	}
	for _, tt := range tests {
		got, err := NamedRegion(101, 81, tt.name)
		if err != nil {
			t.Fatalf("NamedRegion(%s) failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("NamedRegion(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, err := NamedRegion(10, 10, "middle-ish"); err == nil {
		t.Error("expected error for unknown region")
	}
}
