// Package imaging connects decoded images to the segmentation engine.
//
// It loads and caches image files, turns them into segment.Image input and
// describes segmentation results in terms of the source image: pixel
// bounds, colors in several spaces, color distances between neighbors and
// traced contours.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// The segmentation engine uses (row, col) = (y, x) on a possibly downsized
// grid. Converted.ToSource and Converted.FromSource map between the two.
//
// # Conversion
//
// Convert downsizes large images with Lanczos resampling
// (github.com/disintegration/imaging), optionally smooths them with a
// Gaussian blur (github.com/anthonynsimon/bild) and marks transparent pixels
// invalid so that region growing treats them as walls.
//
// # Color Representation
//
// Colors are returned in multiple formats for flexibility:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// Distances between segment colors are CIEDE2000 (github.com/lucasb-eyer/go-colorful).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached images are shared
// and must not be modified; Convert always allocates fresh engine input.
//
// # Performance Considerations
//
// Large images may consume significant memory when cached. Use Evict() or
// Clear() to manage memory for long-running processes.
package imaging
