package segment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// segmenter holds all scratch state of a single Run call.
type segmenter struct {
	img     *Image
	opts    *Options
	log     zerolog.Logger
	pred    predicate
	offsets []Point

	labels   []int
	regions  []region // indexed by initial region id, [0] unused
	rel      *relabelTable
	live     int
	boundary []boundaryPixel

	stack   []int
	members []int

	final         []int // initial root id -> final segment id
	segments      []*Segment
	traceFailures int

	err error
}

// Run segments img.
//
// The image is modified in place by hole filling: absorbed pixels receive
// the mean colour of their region neighbours. Pass img.Clone() to keep the
// original.
//
// Parameters:
//   - ctx: checked between phases; cancellation returns ctx.Err() wrapped.
//   - img: the image to segment. Must be non-nil with a pixel per cell.
//   - opts: start from DefaultOptions().
//
// Returns the result or an error wrapping ErrInvalidArgument, an
// *InternalError or the context error. No partial result is returned.
func Run(ctx context.Context, img *Image, opts Options) (*Result, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := newSegmenter(img, &opts)
	start := time.Now()

	steps := []struct {
		name string
		run  func()
	}{
		{"grow", s.initialSegmentation},
		{"relabel", func() { s.rel = newRelabelTable(len(s.regions)) }},
		{"fill", s.fillHoles},
		{"boundary", s.findBoundaryPixels},
	}
	for _, st := range steps {
		if err := s.phase(ctx, st.name, st.run); err != nil {
			return nil, err
		}
	}

	for pass := 0; pass < opts.MergeLevel && s.live > 1; pass++ {
		if err := s.phase(ctx, "merge", func() { s.mergeRegions() }); err != nil {
			return nil, err
		}
		if err := s.phase(ctx, "fill", s.fillHoles); err != nil {
			return nil, err
		}
		if err := s.phase(ctx, "boundary", s.findBoundaryPixels); err != nil {
			return nil, err
		}
	}

	steps = []struct {
		name string
		run  func()
	}{
		{"build", s.buildSegments},
		{"interior", s.findInteriorPoints},
		{"trace", s.traceOuterBoundaries},
		{"neighbors", s.findNeighbors},
	}
	for _, st := range steps {
		if err := s.phase(ctx, st.name, st.run); err != nil {
			return nil, err
		}
	}

	s.log.Debug().
		Int("rows", img.Rows).
		Int("cols", img.Cols).
		Int("segments", len(s.segments)).
		Int("trace_failures", s.traceFailures).
		Dur("elapsed", time.Since(start)).
		Msg("segmentation complete")

	return s.result(), nil
}

func newSegmenter(img *Image, opts *Options) *segmenter {
	s := &segmenter{
		img:     img,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "segment").Logger(),
		pred:    newPredicate(opts),
		offsets: offsets4,
		labels:  make([]int, len(img.Pix)),
		regions: []region{{}},
	}
	if opts.ConnectCorners {
		s.offsets = offsets8
	}
	return s
}

// phase runs fn unless ctx is done and reports the first error recorded
// while it ran.
func (s *segmenter) phase(ctx context.Context, name string, fn func()) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("segment: %s: %w", name, err)
	}
	start := time.Now()
	fn()
	s.log.Debug().Str("phase", name).Dur("elapsed", time.Since(start)).Msg("phase complete")
	return s.err
}

// fail records the first error. Phases stop early once it is set.
func (s *segmenter) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// resolve maps a label to its surviving region. Non-positive labels are
// returned unchanged. A label that does not lead to a live region records
// an *InternalError and yields 0.
func (s *segmenter) resolve(label int) int {
	if label <= 0 {
		return label
	}
	root, err := s.rel.find(label)
	if err == nil && s.regions[root].n == 0 {
		err = internalErrorf("relabel", "region %d resolves to dead region %d", label, root)
	}
	if err != nil {
		s.fail(err)
		return 0
	}
	return root
}

func (s *segmenter) result() *Result {
	rows, cols := s.img.Rows, s.img.Cols
	labels := make([][]int, rows)
	for i := range labels {
		labels[i] = s.labels[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return &Result{
		Rows:          rows,
		Cols:          cols,
		Labels:        labels,
		Segments:      s.segments,
		TraceFailures: s.traceFailures,
	}
}
