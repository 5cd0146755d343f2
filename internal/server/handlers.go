package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-segment-mcp/internal/imaging"
	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

// maxBatchPaths bounds the number of files accepted by image_segment_batch.
const maxBatchPaths = 256

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_segment").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token of the call.
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// RequestMeta is the _meta object of a request.
type RequestMeta struct {
	ProgressToken interface{} `json:"progressToken,omitempty"`
}

// ProgressParams are the params of a notifications/progress message.
type ProgressParams struct {
	ProgressToken interface{} `json:"progressToken"`
	Progress      int         `json:"progress"`
	Total         int         `json:"total"`
	Message       string      `json:"message,omitempty"`
}

type progressKey struct{}

// reportProgress sends a progress notification when the call being served
// asked for one.
func (s *Server) reportProgress(ctx context.Context, done, total int, message string) {
	token := ctx.Value(progressKey{})
	if token == nil {
		return
	}
	s.notify("notifications/progress", ProgressParams{
		ProgressToken: token,
		Progress:      done,
		Total:         total,
		Message:       message,
	})
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	if params.Meta != nil && params.Meta.ProgressToken != nil {
		ctx = context.WithValue(ctx, progressKey{}, params.Meta.ProgressToken)
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool done")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges per-call overrides onto the configured defaults
//  3. Loads images from cache as needed
//  4. Converts, segments and summarizes
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Segmentation
	case "image_segment":
		return s.handleImageSegment(ctx, args)
	case "image_segment_region":
		return s.handleImageSegmentRegion(ctx, args)
	case "image_segment_lookup":
		return s.handleImageSegmentLookup(ctx, args)
	case "image_segment_batch":
		return s.handleImageSegmentBatch(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

// handleImageLoad always reads the file again, so a client can pick up an
// image that changed on disk since it was first cached.
func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.cache.Evict(a.Path)
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("path", a.Path).Int("cached", s.cache.Len()).Msg("image loaded")
	return info, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Segmentation Handlers ===

// segmentParams are the overrides shared by every segmentation tool.
type segmentParams struct {
	// Options uses the keys of the configuration's segmentation section.
	Options json.RawMessage `json:"options,omitempty"`
	// Preprocess uses the keys of the configuration's preprocess section.
	Preprocess json.RawMessage `json:"preprocess,omitempty"`
	// MaxSegments overrides server.max_segments when set.
	MaxSegments *int `json:"max_segments,omitempty"`
	// IncludeContours adds outer boundary vertices to each segment.
	IncludeContours bool `json:"include_contours,omitempty"`
}

func (p segmentParams) describeOptions(def int) imaging.DescribeOptions {
	n := def
	if p.MaxSegments != nil {
		n = *p.MaxSegments
	}
	return imaging.DescribeOptions{MaxSegments: n, IncludeContours: p.IncludeContours}
}

// segmentImage runs the whole pipeline on img with the call's overrides.
// Every call converts afresh, so the cached source image is never mutated.
func (s *Server) segmentImage(ctx context.Context, img image.Image, p segmentParams) (*imaging.Converted, *segment.Result, error) {
	seg, err := s.cfg.Segmentation.Override(p.Options)
	if err != nil {
		return nil, nil, err
	}
	pre, err := s.cfg.Preprocess.Override(p.Preprocess)
	if err != nil {
		return nil, nil, err
	}
	if p.MaxSegments != nil && *p.MaxSegments < 0 {
		return nil, nil, fmt.Errorf("max_segments must be >= 0, got %d", *p.MaxSegments)
	}
	opts, err := seg.Options(s.root)
	if err != nil {
		return nil, nil, err
	}

	conv, err := imaging.Convert(img, pre.ConvertOptions())
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	res, err := segment.Run(ctx, conv.Image, opts)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info().
		Int("rows", res.Rows).
		Int("cols", res.Cols).
		Int("segments", len(res.Segments)).
		Int("trace_failures", res.TraceFailures).
		Dur("elapsed", time.Since(start)).
		Msg("segmented image")
	return conv, res, nil
}

// SegmentResult is the response of image_segment and image_segment_region.
type SegmentResult struct {
	Path string `json:"path"`
	// Region is the segmented rectangle when only part of the image was used.
	Region *imaging.Bounds `json:"region,omitempty"`
	*imaging.SegmentationSummary
	ElapsedMS int64 `json:"elapsed_ms"`
}

type imageSegmentArgs struct {
	Path string `json:"path"`
	segmentParams
}

func (s *Server) handleImageSegment(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSegmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	conv, res, err := s.segmentImage(ctx, img, a.segmentParams)
	if err != nil {
		return nil, err
	}
	return &SegmentResult{
		Path:                a.Path,
		SegmentationSummary: imaging.DescribeSegments(conv, res, a.describeOptions(s.cfg.Server.MaxSegments)),
		ElapsedMS:           time.Since(start).Milliseconds(),
	}, nil
}

type imageSegmentRegionArgs struct {
	Path string `json:"path"`
	// Region is a named part of the image; it takes precedence over the
	// explicit coordinates.
	Region string `json:"region,omitempty"`
	X1     int    `json:"x1"`
	Y1     int    `json:"y1"`
	X2     int    `json:"x2"`
	Y2     int    `json:"y2"`
	segmentParams
}

func (s *Server) handleImageSegmentRegion(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSegmentRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	rect := image.Rect(a.X1, a.Y1, a.X2, a.Y2)
	if a.Region != "" {
		b := img.Bounds()
		if rect, err = imaging.NamedRegion(b.Dx(), b.Dy(), a.Region); err != nil {
			return nil, err
		}
	}
	crop, err := imaging.CropRegion(img, rect)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	conv, res, err := s.segmentImage(ctx, crop, a.segmentParams)
	if err != nil {
		return nil, err
	}
	sum := imaging.DescribeSegments(conv, res, a.describeOptions(s.cfg.Server.MaxSegments))
	sum.Translate(rect.Min.X, rect.Min.Y)
	return &SegmentResult{
		Path:                a.Path,
		Region:              &imaging.Bounds{X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y},
		SegmentationSummary: sum,
		ElapsedMS:           time.Since(start).Milliseconds(),
	}, nil
}

// LookupResult is the response of image_segment_lookup.
type LookupResult struct {
	X int `json:"x"`
	Y int `json:"y"`
	// Row and Col locate the pixel in the segmented (possibly downsized) grid.
	Row int `json:"row"`
	Col int `json:"col"`
	// Label is the raw label map value: a segment id, 0 for background,
	// or negative for invalid and discarded pixels.
	Label     int                      `json:"label"`
	Pixel     *imaging.PixelColor      `json:"pixel"`
	Segment   *imaging.SegmentSummary  `json:"segment,omitempty"`
	Neighbors []imaging.SegmentSummary `json:"neighbors,omitempty"`
}

type imageSegmentLookupArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	segmentParams
}

func (s *Server) handleImageSegmentLookup(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSegmentLookupArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	pixel, err := imaging.SampleColor(img, a.X, a.Y)
	if err != nil {
		return nil, err
	}

	conv, res, err := s.segmentImage(ctx, img, a.segmentParams)
	if err != nil {
		return nil, err
	}
	row, col := conv.FromSource(a.X, a.Y)
	row, col = min(row, res.Rows-1), min(col, res.Cols-1)

	out := &LookupResult{
		X:     a.X,
		Y:     a.Y,
		Row:   row,
		Col:   col,
		Label: res.Labels[row][col],
		Pixel: pixel,
	}
	seg := res.SegmentAt(row, col)
	if seg == nil {
		return out, nil
	}
	sum := imaging.DescribeSegment(conv, res, seg, a.IncludeContours)
	out.Segment = &sum
	for _, id := range seg.Neighbors {
		if n := res.Segment(id); n != nil {
			out.Neighbors = append(out.Neighbors, imaging.DescribeSegment(conv, res, n, false))
		}
	}
	return out, nil
}

// BatchItem is the outcome for one file of image_segment_batch.
type BatchItem struct {
	Path    string                       `json:"path"`
	Summary *imaging.SegmentationSummary `json:"summary,omitempty"`
	Error   string                       `json:"error,omitempty"`
}

// BatchResult is the response of image_segment_batch.
type BatchResult struct {
	Images    []BatchItem `json:"images"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	ElapsedMS int64       `json:"elapsed_ms"`
}

type imageSegmentBatchArgs struct {
	Paths []string `json:"paths"`
	segmentParams
}

// handleImageSegmentBatch segments each file with its own pipeline run,
// at most server.workers at a time. A failing file is reported in its item
// and does not stop the others; cancellation stops the whole batch. When the
// call carries a progress token, a notifications/progress message follows
// each finished file.
func (s *Server) handleImageSegmentBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSegmentBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("paths must not be empty")
	}
	if len(a.Paths) > maxBatchPaths {
		return nil, fmt.Errorf("too many paths: %d (max %d)", len(a.Paths), maxBatchPaths)
	}

	start := time.Now()
	items := make([]BatchItem, len(a.Paths))
	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Server.Workers)
	for k, path := range a.Paths {
		g.Go(func() error {
			items[k].Path = path
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if gctx.Err() == nil {
					s.reportProgress(gctx, int(done.Add(1)), len(a.Paths), path)
				}
			}()
			img, err := s.cache.Load(path)
			if err != nil {
				items[k].Error = err.Error()
				return nil
			}
			conv, res, err := s.segmentImage(gctx, img, a.segmentParams)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if err != nil {
				items[k].Error = err.Error()
				return nil
			}
			items[k].Summary = imaging.DescribeSegments(conv, res, a.describeOptions(s.cfg.Server.MaxSegments))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	out := &BatchResult{Images: items, ElapsedMS: time.Since(start).Milliseconds()}
	for _, it := range items {
		if it.Error != "" {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out, nil
}
