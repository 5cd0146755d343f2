// Package config loads server and segmentation settings from YAML and the
// environment.
//
// A configuration file only needs the keys it changes; everything else keeps
// the defaults returned by Default. Similarity thresholds accept a number or
// "off":
//
//	segmentation:
//	  min_segment_size: 50
//	  merge_level: 2
//	  max_abs_chrom_var: 0.04
//	  max_rel_sum_rgb_diff: off
//	preprocess:
//	  max_dimension: 1024
//	server:
//	  workers: 8
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-segment-mcp/internal/imaging"
	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

// Environment variables read by FromEnv.
const (
	EnvConfigPath = "IMAGE_SEGMENT_CONFIG"
	EnvLogLevel   = "IMAGE_SEGMENT_LOG_LEVEL"
	EnvWorkers    = "IMAGE_SEGMENT_WORKERS"
)

// Config is the complete server configuration.
type Config struct {
	Segmentation Segmentation `yaml:"segmentation"`
	Preprocess   Preprocess   `yaml:"preprocess"`
	Server       Server       `yaml:"server"`
}

// Segmentation mirrors segment.Options with configuration names.
type Segmentation struct {
	MinInitialSegmentSize int  `yaml:"min_initial_segment_size" json:"min_initial_segment_size"`
	MinSegmentSize        int  `yaml:"min_segment_size" json:"min_segment_size"`
	MinResegmentSize      int  `yaml:"min_resegment_size" json:"min_resegment_size"`
	FillHoleLevel         int  `yaml:"fill_hole_level" json:"fill_hole_level"`
	ResegmentLevel        int  `yaml:"resegment_level" json:"resegment_level"`
	ConnectCorners        bool `yaml:"connect_corners" json:"connect_corners"`
	ConnectionMaxStep     int  `yaml:"connection_max_step" json:"connection_max_step"`

	MergeLevel              int     `yaml:"merge_level" json:"merge_level"`
	MergeMinNumPixels       int     `yaml:"merge_min_num_pixels" json:"merge_min_num_pixels"`
	MergeRGThreshold        float64 `yaml:"merge_rg_threshold" json:"merge_rg_threshold"`
	MergeSumRGBAbsThreshold float64 `yaml:"merge_sum_rgb_abs_threshold" json:"merge_sum_rgb_abs_threshold"`
	MergeSumRGBRelThreshold float64 `yaml:"merge_sum_rgb_rel_threshold" json:"merge_sum_rgb_rel_threshold"`

	MaxAbsRGBVar    Threshold `yaml:"max_abs_rgb_var" json:"max_abs_rgb_var"`
	MaxRelRGBVar    Threshold `yaml:"max_rel_rgb_var" json:"max_rel_rgb_var"`
	MaxAbsSumRGBVar Threshold `yaml:"max_abs_sum_rgb_var" json:"max_abs_sum_rgb_var"`
	MaxRelSumRGBVar Threshold `yaml:"max_rel_sum_rgb_var" json:"max_rel_sum_rgb_var"`
	MaxAbsChromVar  Threshold `yaml:"max_abs_chrom_var" json:"max_abs_chrom_var"`
	MaxRelChromVar  Threshold `yaml:"max_rel_chrom_var" json:"max_rel_chrom_var"`

	MaxAbsRGBSqrDiff Threshold `yaml:"max_abs_rgb_sqr_diff" json:"max_abs_rgb_sqr_diff"`
	MaxRelRGBSqrDiff Threshold `yaml:"max_rel_rgb_sqr_diff" json:"max_rel_rgb_sqr_diff"`
	MaxAbsSumRGBDiff Threshold `yaml:"max_abs_sum_rgb_diff" json:"max_abs_sum_rgb_diff"`
	MaxRelSumRGBDiff Threshold `yaml:"max_rel_sum_rgb_diff" json:"max_rel_sum_rgb_diff"`
	MaxAbsChromDiff  Threshold `yaml:"max_abs_chrom_diff" json:"max_abs_chrom_diff"`
	MaxRelChromDiff  Threshold `yaml:"max_rel_chrom_diff" json:"max_rel_chrom_diff"`

	MinRGBSumForChromTest       float64 `yaml:"min_rgb_sum_for_chrom_test" json:"min_rgb_sum_for_chrom_test"`
	MinRGBSumForRelativeSumDiff float64 `yaml:"min_rgb_sum_for_relative_sum_diff" json:"min_rgb_sum_for_relative_sum_diff"`

	Method             string `yaml:"method" json:"method"`
	SymmetricNeighbors bool   `yaml:"symmetric_neighbors" json:"symmetric_neighbors"`
}

// Preprocess controls how decoded images are prepared for segmentation.
type Preprocess struct {
	MaxDimension   int     `yaml:"max_dimension" json:"max_dimension"`
	BlurRadius     float64 `yaml:"blur_radius" json:"blur_radius"`
	AlphaThreshold int     `yaml:"alpha_threshold" json:"alpha_threshold"`
}

// Server controls the MCP server.
type Server struct {
	// Workers bounds concurrent segmentations in batch requests.
	Workers int `yaml:"workers"`
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level"`
	// MaxSegments caps the segments listed per image. Zero lists all.
	MaxSegments int `yaml:"max_segments"`
}

// Default returns the built-in configuration.
func Default() Config {
	conv := imaging.DefaultConvertOptions()
	return Config{
		Segmentation: FromOptions(segment.DefaultOptions()),
		Preprocess: Preprocess{
			MaxDimension:   conv.MaxDimension,
			BlurRadius:     conv.BlurRadius,
			AlphaThreshold: int(conv.AlphaThreshold),
		},
		Server: Server{
			Workers:     runtime.NumCPU(),
			LogLevel:    "info",
			MaxSegments: 50,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving absent keys untouched, and validates
// the result. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg.Validate()
}

// FromEnv loads the file named by IMAGE_SEGMENT_CONFIG, if set, and applies
// IMAGE_SEGMENT_LOG_LEVEL and IMAGE_SEGMENT_WORKERS.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Server.LogLevel = level
	}
	if w := os.Getenv(EnvWorkers); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return cfg, fmt.Errorf("%s: %q is not a number", EnvWorkers, w)
		}
		cfg.Server.Workers = n
	}
	return cfg, cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.Segmentation.Options(zerolog.Nop()); err != nil {
		return err
	}
	if c.Preprocess.MaxDimension < 0 || c.Preprocess.BlurRadius < 0 {
		return fmt.Errorf("preprocess: max_dimension and blur_radius must not be negative")
	}
	if c.Preprocess.AlphaThreshold < 0 || c.Preprocess.AlphaThreshold > 255 {
		return fmt.Errorf("preprocess: alpha_threshold must be within 0-255, got %d", c.Preprocess.AlphaThreshold)
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("server: workers must be at least 1, got %d", c.Server.Workers)
	}
	if c.Server.MaxSegments < 0 {
		return fmt.Errorf("server: max_segments must not be negative")
	}
	return nil
}

// FromOptions converts engine options to their configuration form.
func FromOptions(o segment.Options) Segmentation {
	return Segmentation{
		MinInitialSegmentSize:       o.MinInitialSegmentSize,
		MinSegmentSize:              o.MinSegmentSize,
		MinResegmentSize:            o.MinResegmentSize,
		FillHoleLevel:               o.FillHoleLevel,
		ResegmentLevel:              o.ResegmentLevel,
		ConnectCorners:              o.ConnectCorners,
		ConnectionMaxStep:           o.ConnectionMaxStep,
		MergeLevel:                  o.MergeLevel,
		MergeMinNumPixels:           o.MergeMinNumPixels,
		MergeRGThreshold:            o.MergeRGThreshold,
		MergeSumRGBAbsThreshold:     o.MergeSumRGBAbsThreshold,
		MergeSumRGBRelThreshold:     o.MergeSumRGBRelThreshold,
		MaxAbsRGBVar:                wrap(o.MaxAbsRGBVar),
		MaxRelRGBVar:                wrap(o.MaxRelRGBVar),
		MaxAbsSumRGBVar:             wrap(o.MaxAbsSumRGBVar),
		MaxRelSumRGBVar:             wrap(o.MaxRelSumRGBVar),
		MaxAbsChromVar:              wrap(o.MaxAbsChromVar),
		MaxRelChromVar:              wrap(o.MaxRelChromVar),
		MaxAbsRGBSqrDiff:            wrap(o.MaxAbsRGBSqrDiff),
		MaxRelRGBSqrDiff:            wrap(o.MaxRelRGBSqrDiff),
		MaxAbsSumRGBDiff:            wrap(o.MaxAbsSumRGBDiff),
		MaxRelSumRGBDiff:            wrap(o.MaxRelSumRGBDiff),
		MaxAbsChromDiff:             wrap(o.MaxAbsChromDiff),
		MaxRelChromDiff:             wrap(o.MaxRelChromDiff),
		MinRGBSumForChromTest:       o.MinRGBSumForChromTest,
		MinRGBSumForRelativeSumDiff: o.MinRGBSumForRelativeSumDiff,
		Method:                      o.Method.String(),
		SymmetricNeighbors:          o.SymmetricNeighbors,
	}
}

// Options converts the section into validated engine options.
func (s Segmentation) Options(logger zerolog.Logger) (segment.Options, error) {
	method, err := segment.ParseMethod(s.Method)
	if err != nil {
		return segment.Options{}, fmt.Errorf("segmentation: %w", err)
	}
	o := segment.Options{
		MinInitialSegmentSize:       s.MinInitialSegmentSize,
		MinSegmentSize:              s.MinSegmentSize,
		MinResegmentSize:            s.MinResegmentSize,
		FillHoleLevel:               s.FillHoleLevel,
		ResegmentLevel:              s.ResegmentLevel,
		ConnectCorners:              s.ConnectCorners,
		ConnectionMaxStep:           s.ConnectionMaxStep,
		MergeLevel:                  s.MergeLevel,
		MergeMinNumPixels:           s.MergeMinNumPixels,
		MergeRGThreshold:            s.MergeRGThreshold,
		MergeSumRGBAbsThreshold:     s.MergeSumRGBAbsThreshold,
		MergeSumRGBRelThreshold:     s.MergeSumRGBRelThreshold,
		MaxAbsRGBVar:                s.MaxAbsRGBVar.Threshold,
		MaxRelRGBVar:                s.MaxRelRGBVar.Threshold,
		MaxAbsSumRGBVar:             s.MaxAbsSumRGBVar.Threshold,
		MaxRelSumRGBVar:             s.MaxRelSumRGBVar.Threshold,
		MaxAbsChromVar:              s.MaxAbsChromVar.Threshold,
		MaxRelChromVar:              s.MaxRelChromVar.Threshold,
		MaxAbsRGBSqrDiff:            s.MaxAbsRGBSqrDiff.Threshold,
		MaxRelRGBSqrDiff:            s.MaxRelRGBSqrDiff.Threshold,
		MaxAbsSumRGBDiff:            s.MaxAbsSumRGBDiff.Threshold,
		MaxRelSumRGBDiff:            s.MaxRelSumRGBDiff.Threshold,
		MaxAbsChromDiff:             s.MaxAbsChromDiff.Threshold,
		MaxRelChromDiff:             s.MaxRelChromDiff.Threshold,
		MinRGBSumForChromTest:       s.MinRGBSumForChromTest,
		MinRGBSumForRelativeSumDiff: s.MinRGBSumForRelativeSumDiff,
		Method:                      method,
		SymmetricNeighbors:          s.SymmetricNeighbors,
		Logger:                      logger,
	}
	if err := o.Validate(); err != nil {
		return segment.Options{}, fmt.Errorf("segmentation: %w", err)
	}
	return o, nil
}

// Override returns a copy of s with the keys present in the JSON object raw
// replaced. Unknown keys are rejected.
func (s Segmentation) Override(raw json.RawMessage) (Segmentation, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return s, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("invalid segmentation options: %w", err)
	}
	return s, nil
}

// ConvertOptions returns the preprocessing settings for imaging.Convert.
func (p Preprocess) ConvertOptions() imaging.ConvertOptions {
	return imaging.ConvertOptions{
		MaxDimension:   p.MaxDimension,
		BlurRadius:     p.BlurRadius,
		AlphaThreshold: uint8(p.AlphaThreshold),
	}
}

// Override returns a copy of p with the keys present in raw replaced.
func (p Preprocess) Override(raw json.RawMessage) (Preprocess, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("invalid preprocess options: %w", err)
	}
	if p.MaxDimension < 0 || p.BlurRadius < 0 || p.AlphaThreshold < 0 || p.AlphaThreshold > 255 {
		return p, fmt.Errorf("invalid preprocess options: values out of range")
	}
	return p, nil
}
