package segment

import "fmt"

// Pixel is one RGB sample. Channels are non-negative floats, typically 0-255.
//
// Invalid pixels are never used as seeds and act as walls during growth.
type Pixel struct {
	R, G, B float64
	Invalid bool
}

// sum returns R+G+B plus a small epsilon so chromaticity never divides by zero.
func (p Pixel) sum() float64 {
	return p.R + p.G + p.B + sumEpsilon
}

// chrom returns the r and g chromaticities of the pixel.
func (p Pixel) chrom() (float64, float64) {
	s := p.sum()
	return p.R / s, p.G / s
}

// Image is a row-major grid of pixels.
type Image struct {
	Rows int
	Cols int
	Pix  []Pixel
}

// NewImage allocates an image of the given size with every pixel black and valid.
func NewImage(rows, cols int) (*Image, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidArgument, rows, cols)
	}
	return &Image{Rows: rows, Cols: cols, Pix: make([]Pixel, rows*cols)}, nil
}

// At returns the pixel at (i, j). No bounds checking is performed.
func (m *Image) At(i, j int) Pixel {
	return m.Pix[i*m.Cols+j]
}

// Set stores a valid RGB sample at (i, j).
func (m *Image) Set(i, j int, r, g, b float64) {
	m.Pix[i*m.Cols+j] = Pixel{R: r, G: g, B: b}
}

// SetInvalid marks (i, j) as excluded from segmentation.
func (m *Image) SetInvalid(i, j int) {
	m.Pix[i*m.Cols+j].Invalid = true
}

// Valid reports whether (i, j) is inside the image and usable.
func (m *Image) Valid(i, j int) bool {
	if i < 0 || j < 0 || i >= m.Rows || j >= m.Cols {
		return false
	}
	return !m.Pix[i*m.Cols+j].Invalid
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	c := &Image{Rows: m.Rows, Cols: m.Cols, Pix: make([]Pixel, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

func (m *Image) validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidArgument, m.Rows, m.Cols)
	}
	if len(m.Pix) != m.Rows*m.Cols {
		return fmt.Errorf("%w: %d pixels for a %dx%d image", ErrInvalidArgument, len(m.Pix), m.Rows, m.Cols)
	}
	return nil
}

// Point is an integer pixel position (row I, column J).
type Point struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Vertex is an outer boundary vertex at sub-pixel resolution.
type Vertex struct {
	I float64 `json:"i"`
	J float64 `json:"j"`
}

// Tenths returns the vertex in tenth-of-a-pixel fixed point.
func (v Vertex) Tenths() (int, int) {
	return int(v.I*10 + 0.5), int(v.J*10 + 0.5)
}
