// Package segment partitions a colour image into spatially connected regions
// of similar colour and derives per-region geometry.
//
// The engine is a region grower. Every unlabelled valid pixel seeds a new
// region which is flooded outward through neighbours that pass a
// configurable similarity predicate. Regions that end up too small are
// discarded, small discarded holes enclosed by a single region are absorbed
// into it, adjacent regions with similar boundary colour statistics may be
// merged, and the survivors are turned into Segment values carrying pixel
// lists, boundary pixels, an ordered outer contour, a representative
// interior pixel and a neighbour list.
//
// # Pipeline
//
// Run executes the phases below in order, once per image:
//
//  1. Initial segmentation: seed, grow, optionally re-grow around the region
//     mean, discard regions below MinInitialSegmentSize
//  2. Hole filling: absorb enclosed discarded pixels (FillHoleLevel passes)
//  3. Boundary extraction: one row-major scan for pixels touching another
//     region or the image edge
//  4. Merging: up to MergeLevel passes, each followed by steps 2 and 3
//  5. Segment building: dense ids 1..K for regions of at least
//     MinSegmentSize pixels, pixel lists, bounding boxes, centroids
//  6. Interior points, outer boundaries and neighbours
//
// The context passed to Run is checked between phases.
//
// # Coordinate System
//
// Coordinates are (row, column) pairs, written (i, j), both 0-based with the
// origin at the top-left pixel. Outer boundary vertices are expressed in the
// same frame at sub-pixel resolution: a vertex at (i+0.1, j+0.9) lies on the
// top-right corner side of pixel (i, j). The 0.1/0.9 offsets keep track of
// which pixel a contour vertex came from.
//
// # Label Map
//
// Result.Labels holds, for every pixel, the final segment id (1..K), 0 for
// pixels whose region was too small to become a segment, or a negative
// value for pixels that were discarded during growth (including invalid
// pixels).
//
// # Side Effects
//
// Hole filling overwrites the colour of every absorbed pixel with the mean
// of its same-region neighbours, and marks it valid. Pass a Clone of the
// image to Run when the original must be preserved.
//
// # Thread Safety
//
// Each call to Run owns all of its scratch state. Distinct images may be
// segmented concurrently; a single Image must not be shared between
// concurrent calls because of the hole-filling side effect.
package segment
