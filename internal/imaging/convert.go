package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

// ConvertOptions controls how a decoded image becomes segmentation input.
type ConvertOptions struct {
	// MaxDimension downsizes images whose width or height exceeds it,
	// preserving aspect ratio. Zero keeps the original size.
	MaxDimension int

	// BlurRadius applies a Gaussian pre-smoothing of this radius (in pixels
	// of the downsized image). Zero disables it.
	BlurRadius float64

	// AlphaThreshold marks pixels with lower alpha as invalid so they are
	// neither seeds nor passable during growth.
	AlphaThreshold uint8
}

// DefaultConvertOptions returns the options used when nothing is configured.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		MaxDimension:   512,
		AlphaThreshold: 128,
	}
}

// Converted is segmentation input plus the mapping back to the source image.
type Converted struct {
	Image *segment.Image

	// Scale is the number of source pixels per converted pixel along each
	// axis. It is 1 when no downsizing happened.
	Scale float64

	SourceWidth  int
	SourceHeight int
}

// ToSource maps a converted (row, col) coordinate back to source (x, y).
func (c *Converted) ToSource(i, j float64) (float64, float64) {
	return j * c.Scale, i * c.Scale
}

// FromSource maps a source (x, y) pixel to a converted (row, col) pixel.
func (c *Converted) FromSource(x, y int) (int, int) {
	return int(float64(y) / c.Scale), int(float64(x) / c.Scale)
}

// Convert turns img into a segment.Image with 0-255 float channels.
//
// # Processing Steps
//
//  1. Downsize with Lanczos resampling when MaxDimension is exceeded
//  2. Optionally blur with a Gaussian of BlurRadius
//  3. Mark pixels whose (pre-blur) alpha is below AlphaThreshold as invalid
func Convert(img image.Image, opts ConvertOptions) (*Converted, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("cannot convert empty image")
	}
	if opts.MaxDimension < 0 || opts.BlurRadius < 0 {
		return nil, fmt.Errorf("invalid conversion options: max dimension %d, blur radius %v",
			opts.MaxDimension, opts.BlurRadius)
	}

	var work image.Image = img
	if opts.MaxDimension > 0 && (w > opts.MaxDimension || h > opts.MaxDimension) {
		work = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}
	colors := work
	if opts.BlurRadius > 0 {
		colors = blur.Gaussian(work, opts.BlurRadius)
	}

	wb, cb := work.Bounds(), colors.Bounds()
	out, err := segment.NewImage(wb.Dy(), wb.Dx())
	if err != nil {
		return nil, err
	}
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			c := color.NRGBAModel.Convert(colors.At(cb.Min.X+x, cb.Min.Y+y)).(color.NRGBA)
			out.Set(y, x, float64(c.R), float64(c.G), float64(c.B))
			_, _, _, a := work.At(wb.Min.X+x, wb.Min.Y+y).RGBA()
			if uint8(a>>8) < opts.AlphaThreshold {
				out.SetInvalid(y, x)
			}
		}
	}

	return &Converted{
		Image:        out,
		Scale:        float64(w) / float64(wb.Dx()),
		SourceWidth:  w,
		SourceHeight: h,
	}, nil
}
