// Package server implements the MCP (Model Context Protocol) server for image segmentation.
//
// This package provides a JSON-RPC 2.0 server that exposes region-growing
// segmentation through the MCP protocol, so MCP-compatible clients can ask
// which regions an image is made of and where they are.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Segmentation:
//   - image_segment: Segment a whole image
//   - image_segment_region: Segment a rectangle or named region
//   - image_segment_lookup: Describe the segment under a pixel and its neighbors
//   - image_segment_batch: Segment several files concurrently
//
// Every segmentation tool accepts "options" and "preprocess" objects whose
// keys match the segmentation and preprocess sections of the YAML
// configuration. They override the configured values for that call only.
//
// # Coordinates
//
// Results are always in source image pixels, x to the right and y down,
// even when the image was downsized before segmenting or only a region was
// segmented.
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images keyed by path.
// Segmentation converts the cached image afresh on each call, so repeated
// calls with different options never see each other's hole filling.
// image_load always re-reads its file and replaces the cached copy. The
// cache is dropped when the input stream closes.
//
// # Progress
//
// image_segment_batch sends a notifications/progress message after each
// file when the tools/call request carries _meta.progressToken.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// In a batch, a file that fails is reported in its own entry instead.
//
// # Usage
//
//	cfg, err := config.FromEnv()
//	if err != nil {
//	    return err
//	}
//	srv := server.New(cfg, logger)
//	return srv.Run(ctx)
package server
