package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	opts, err := cfg.Segmentation.Options(zerolog.Nop())
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	def := segment.DefaultOptions()
	if opts.MinSegmentSize != def.MinSegmentSize || opts.MaxAbsChromVar != def.MaxAbsChromVar ||
		opts.MaxRelSumRGBDiff != def.MaxRelSumRGBDiff || opts.MaxAbsRGBVar.IsSet() {
		t.Errorf("default options do not match the engine defaults: %+v", opts)
	}
	if cfg.Preprocess.MaxDimension != 512 || cfg.Preprocess.AlphaThreshold != 128 {
		t.Errorf("preprocess defaults: %+v", cfg.Preprocess)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
segmentation:
  min_segment_size: 25
  merge_level: 2
  connect_corners: true
  max_abs_chrom_var: 0.04
  max_rel_sum_rgb_diff: off
  max_abs_rgb_var: 12
  method: chrom-lum
preprocess:
  blur_radius: 1.5
server:
  workers: 3
`)
	cfg := Default()
	if err := Parse(data, &cfg); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	s := cfg.Segmentation
	if s.MinSegmentSize != 25 || s.MergeLevel != 2 || !s.ConnectCorners {
		t.Errorf("ints/bools not applied: %+v", s)
	}
	if v, ok := s.MaxAbsChromVar.Value(); !ok || v != 0.04 {
		t.Errorf("max_abs_chrom_var: got %v", s.MaxAbsChromVar)
	}
	if s.MaxRelSumRGBDiff.IsSet() {
		t.Error("max_rel_sum_rgb_diff should be off")
	}
	if v, ok := s.MaxAbsRGBVar.Value(); !ok || v != 12 {
		t.Errorf("max_abs_rgb_var: got %v", s.MaxAbsRGBVar)
	}
	if !s.MaxAbsSumRGBDiff.IsSet() {
		t.Error("absent keys should keep their defaults")
	}
	if s.MinInitialSegmentSize != 4 {
		t.Errorf("absent min_initial_segment_size: got %d", s.MinInitialSegmentSize)
	}
	if cfg.Preprocess.BlurRadius != 1.5 || cfg.Preprocess.MaxDimension != 512 {
		t.Errorf("preprocess: %+v", cfg.Preprocess)
	}
	if cfg.Server.Workers != 3 {
		t.Errorf("workers: got %d", cfg.Server.Workers)
	}

	opts, err := s.Options(zerolog.Nop())
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.Method != segment.MethodChromLum {
		t.Errorf("method: got %v", opts.Method)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "segmentation:\n  min_size: 3\n"},
		{"bad threshold", "segmentation:\n  max_abs_rgb_var: lots\n"},
		{"negative size", "segmentation:\n  min_segment_size: -1\n"},
		{"unknown method", "segmentation:\n  method: watershed\n"},
		{"threshold list", "segmentation:\n  max_abs_rgb_var: [1, 2]\n"},
		{"zero workers", "server:\n  workers: 0\n"},
		{"alpha range", "preprocess:\n  alpha_threshold: 300\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := Parse([]byte(tt.data), &cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	cfg := Default()
	if err := Parse(nil, &cfg); err != nil {
		t.Errorf("empty document should keep defaults: %v", err)
	}
}

func TestThreshold_YAMLRoundTrip(t *testing.T) {
	in := FromOptions(segment.DefaultOptions())
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "max_abs_rgb_var: \"off\"") && !strings.Contains(string(data), "max_abs_rgb_var: off") {
		t.Errorf("disabled threshold not written as off:\n%s", data)
	}

	var out Segmentation
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.MaxAbsChromVar != in.MaxAbsChromVar || out.MaxAbsRGBVar != in.MaxAbsRGBVar {
		t.Errorf("round trip changed thresholds: %v/%v", out.MaxAbsChromVar, out.MaxAbsRGBVar)
	}
}

func TestSegmentation_Override(t *testing.T) {
	base := Default().Segmentation

	got, err := base.Override(json.RawMessage(`{"min_segment_size": 10, "max_abs_chrom_var": "off", "max_abs_rgb_var": 7.5}`))
	if err != nil {
		t.Fatalf("Override failed: %v", err)
	}
	if got.MinSegmentSize != 10 || got.MaxAbsChromVar.IsSet() {
		t.Errorf("override not applied: %+v", got)
	}
	if v, _ := got.MaxAbsRGBVar.Value(); v != 7.5 {
		t.Errorf("max_abs_rgb_var: got %v", v)
	}
	if got.MergeRGThreshold != base.MergeRGThreshold {
		t.Error("absent keys should keep their values")
	}
	if base.MinSegmentSize != 100 {
		t.Error("Override modified the receiver")
	}

	if _, err := base.Override(json.RawMessage(`{"bogus": 1}`)); err == nil {
		t.Error("expected error for unknown key")
	}
	if same, err := base.Override(nil); err != nil || same.MinSegmentSize != base.MinSegmentSize {
		t.Errorf("nil override: %v", err)
	}
}

func TestThreshold_JSON(t *testing.T) {
	var th Threshold
	for _, in := range []string{`0.5`, `"0.5"`} {
		if err := json.Unmarshal([]byte(in), &th); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if v, ok := th.Value(); !ok || v != 0.5 {
			t.Errorf("Unmarshal(%s) = %v", in, th)
		}
	}
	if err := json.Unmarshal([]byte(`null`), &th); err != nil || th.IsSet() {
		t.Errorf("null should switch off: %v %v", th, err)
	}
	if b, _ := json.Marshal(th); string(b) != `"off"` {
		t.Errorf("Marshal off = %s", b)
	}
	if b, _ := json.Marshal(wrap(segment.Limit(2))); string(b) != `2` {
		t.Errorf("Marshal 2 = %s", b)
	}
}

func TestPreprocess_Override(t *testing.T) {
	p := Default().Preprocess
	got, err := p.Override(json.RawMessage(`{"max_dimension": 64}`))
	if err != nil || got.MaxDimension != 64 || got.AlphaThreshold != 128 {
		t.Errorf("got %+v, %v", got, err)
	}
	if _, err := p.Override(json.RawMessage(`{"alpha_threshold": -1}`)); err == nil {
		t.Error("expected range error")
	}
	if c := got.ConvertOptions(); c.MaxDimension != 64 || c.AlphaThreshold != 128 {
		t.Errorf("ConvertOptions: %+v", c)
	}
}

func TestLoadAndFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.yaml")
	if err := os.WriteFile(path, []byte("server:\n  workers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil || cfg.Server.Workers != 2 {
		t.Fatalf("Load: %+v %v", cfg.Server, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvWorkers, "5")
	cfg, err = FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Server.Workers != 5 || cfg.Server.LogLevel != "debug" {
		t.Errorf("env overrides not applied: %+v", cfg.Server)
	}

	t.Setenv(EnvWorkers, "many")
	if _, err := FromEnv(); err == nil {
		t.Error("expected error for non-numeric workers")
	}
}
