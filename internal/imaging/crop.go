package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropRegion extracts the rectangle r (x1,y1 inclusive, x2,y2 exclusive,
// relative to the image's top-left corner) so that only that part of the
// image is segmented.
func CropRegion(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > bounds.Dx() || r.Max.Y > bounds.Dy() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Dx(), bounds.Dy())
	}
	return imaging.Crop(img, r.Add(bounds.Min)), nil
}

// NamedRegion returns the rectangle for a named part of an image of the
// given size: top-left, top-right, bottom-left, bottom-right, top-half,
// bottom-half, left-half, right-half or center (the middle 50%).
func NamedRegion(width, height int, name string) (image.Rectangle, error) {
	midX, midY := width/2, height/2

	switch name {
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, width, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, height), nil
	case "bottom-right":
		return image.Rect(midX, midY, width, height), nil
	case "top-half":
		return image.Rect(0, 0, width, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, width, height), nil
	case "left-half":
		return image.Rect(0, 0, midX, height), nil
	case "right-half":
		return image.Rect(midX, 0, width, height), nil
	case "center":
		qW, qH := width/4, height/4
		return image.Rect(qW, qH, width-qW, height-qH), nil
	}
	return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
}
