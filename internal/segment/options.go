package segment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Threshold is an optional similarity limit. The zero value is Off.
type Threshold struct {
	value float64
	on    bool
}

// Off disables a threshold.
var Off = Threshold{}

// Limit returns an enabled threshold with value v.
func Limit(v float64) Threshold {
	return Threshold{value: v, on: true}
}

// Value returns the limit and whether it is set.
func (t Threshold) Value() (float64, bool) {
	return t.value, t.on
}

// IsSet reports whether the threshold is enabled.
func (t Threshold) IsSet() bool {
	return t.on
}

// String renders the threshold as a number or "off".
func (t Threshold) String() string {
	if !t.on {
		return "off"
	}
	return strconv.FormatFloat(t.value, 'g', -1, 64)
}

// ParseThreshold parses a number or the word "off" (also "", "none").
func ParseThreshold(s string) (Threshold, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "":
		return Off, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Off, fmt.Errorf("%w: threshold %q", ErrInvalidArgument, s)
	}
	return Limit(v), nil
}

// Method selects the similarity predicate used while growing regions.
type Method int

const (
	// MethodGeneral applies the full threshold ladder.
	MethodGeneral Method = iota
	// MethodChromLum only bounds chromaticity against the region anchor and
	// luminance against the pixel being expanded from.
	MethodChromLum
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case MethodGeneral:
		return "general"
	case MethodChromLum:
		return "chrom-lum"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod converts a configuration name into a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "general":
		return MethodGeneral, nil
	case "chrom-lum", "chrom_lum", "rg-var-lum-diff":
		return MethodChromLum, nil
	}
	return MethodGeneral, fmt.Errorf("%w: unknown method %q", ErrInvalidArgument, s)
}

// Options controls every phase of the segmentation.
//
// Var thresholds bound a candidate pixel against the region anchor (the seed
// pixel, then the region mean when re-segmenting). Diff thresholds bound it
// against the pixel it is reached from, which lets regions follow smooth
// gradients. When both the absolute and the relative form of a limit are set
// the tighter bound applies.
type Options struct {
	// MinInitialSegmentSize discards grown regions with fewer pixels.
	MinInitialSegmentSize int
	// MinSegmentSize is the smallest region that becomes a final Segment.
	MinSegmentSize int
	// MinResegmentSize stops re-growing a region that has become smaller.
	MinResegmentSize int
	// FillHoleLevel is the number of hole filling passes.
	FillHoleLevel int
	// ResegmentLevel is the number of re-growth passes around the region mean.
	ResegmentLevel int
	// ConnectCorners selects 8-connectivity instead of 4-connectivity.
	ConnectCorners bool
	// ConnectionMaxStep is the search radius of the neighbour finder.
	ConnectionMaxStep int

	// MergeLevel is the maximum number of merge passes. Zero disables merging.
	MergeLevel              int
	MergeMinNumPixels       int
	MergeRGThreshold        float64
	MergeSumRGBAbsThreshold float64
	// MergeSumRGBRelThreshold is accepted for compatibility; the merge rule
	// does not consult it.
	MergeSumRGBRelThreshold float64

	MaxAbsRGBVar    Threshold
	MaxRelRGBVar    Threshold
	MaxAbsSumRGBVar Threshold
	MaxRelSumRGBVar Threshold
	MaxAbsChromVar  Threshold
	MaxRelChromVar  Threshold

	MaxAbsRGBSqrDiff Threshold
	MaxRelRGBSqrDiff Threshold
	MaxAbsSumRGBDiff Threshold
	MaxRelSumRGBDiff Threshold
	MaxAbsChromDiff  Threshold
	MaxRelChromDiff  Threshold

	// MinRGBSumForChromTest suppresses chromaticity tests for darker pixels.
	MinRGBSumForChromTest float64
	// MinRGBSumForRelativeSumDiff suppresses relative luminance tests for
	// darker pixels.
	MinRGBSumForRelativeSumDiff float64

	Method Method

	// SymmetricNeighbors adds B to A's neighbours whenever A is found next
	// to B. Off by default, in which case each list only holds what the
	// radius search around that segment's own boundary found.
	SymmetricNeighbors bool

	// Logger receives phase timings (debug) and trace fallbacks (warn).
	// The zero value discards everything.
	Logger zerolog.Logger
}

// DefaultOptions returns the legacy defaults.
func DefaultOptions() Options {
	return Options{
		MinInitialSegmentSize:       4,
		MinSegmentSize:              100,
		MinResegmentSize:            20,
		FillHoleLevel:               1,
		ResegmentLevel:              1,
		ConnectionMaxStep:           2,
		MergeMinNumPixels:           20,
		MergeRGThreshold:            0.05,
		MergeSumRGBAbsThreshold:     30,
		MergeSumRGBRelThreshold:     30,
		MaxAbsChromVar:              Limit(0.03),
		MaxAbsSumRGBDiff:            Limit(15),
		MaxRelSumRGBDiff:            Limit(0.08),
		MinRGBSumForChromTest:       50,
		MinRGBSumForRelativeSumDiff: 50,
		Logger:                      zerolog.Nop(),
	}
}

// WithoutThresholds returns a copy of o with every Max* threshold turned off.
func (o Options) WithoutThresholds() Options {
	for _, t := range o.thresholds() {
		*t = Off
	}
	return o
}

func (o *Options) thresholds() []*Threshold {
	return []*Threshold{
		&o.MaxAbsRGBVar, &o.MaxRelRGBVar,
		&o.MaxAbsSumRGBVar, &o.MaxRelSumRGBVar,
		&o.MaxAbsChromVar, &o.MaxRelChromVar,
		&o.MaxAbsRGBSqrDiff, &o.MaxRelRGBSqrDiff,
		&o.MaxAbsSumRGBDiff, &o.MaxRelSumRGBDiff,
		&o.MaxAbsChromDiff, &o.MaxRelChromDiff,
	}
}

// Validate checks the options for values the pipeline cannot honour.
func (o Options) Validate() error {
	sizes := []struct {
		name  string
		value int
	}{
		{"min_initial_segment_size", o.MinInitialSegmentSize},
		{"min_segment_size", o.MinSegmentSize},
		{"min_resegment_size", o.MinResegmentSize},
		{"fill_hole_level", o.FillHoleLevel},
		{"resegment_level", o.ResegmentLevel},
		{"connection_max_step", o.ConnectionMaxStep},
		{"merge_level", o.MergeLevel},
		{"merge_min_num_pixels", o.MergeMinNumPixels},
	}
	for _, s := range sizes {
		if s.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidArgument, s.name, s.value)
		}
	}
	for _, t := range o.thresholds() {
		if v, ok := t.Value(); ok && (v < 0 || math.IsNaN(v)) {
			return fmt.Errorf("%w: thresholds must be non-negative, got %v", ErrInvalidArgument, v)
		}
	}
	if o.Method != MethodGeneral && o.Method != MethodChromLum {
		return fmt.Errorf("%w: unknown method %d", ErrInvalidArgument, int(o.Method))
	}
	return nil
}

// interval is a closed range of accepted values. A disabled interval accepts
// everything.
type interval struct {
	lo, hi float64
	on     bool
}

func (iv interval) contains(x float64) bool {
	return !iv.on || (x >= iv.lo && x <= iv.hi)
}

// window returns the interval around anchor allowed by an absolute limit and
// a relative limit (a fraction of |anchor|). The narrower one wins.
func window(anchor float64, abs, rel Threshold) interval {
	width := math.Inf(1)
	if v, ok := abs.Value(); ok {
		width = v
	}
	if v, ok := rel.Value(); ok {
		width = math.Min(width, v*math.Abs(anchor))
	}
	if math.IsInf(width, 1) {
		return interval{}
	}
	return interval{lo: anchor - width, hi: anchor + width, on: true}
}
