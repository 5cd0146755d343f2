package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// segmentProperties returns the schema entries shared by the segmentation
// tools, merged with extra.
func segmentProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"options": map[string]interface{}{
			"type": "object",
			"description": "Segmentation overrides using the configuration's segmentation keys, " +
				"e.g. {\"min_segment_size\": 50, \"merge_level\": 2, \"max_abs_chrom_var\": \"off\", \"method\": \"chrom-lum\"}. " +
				"Thresholds take a number or \"off\".",
		},
		"preprocess": map[string]interface{}{
			"type":        "object",
			"description": "Preprocessing overrides: max_dimension (downsize limit, 0 keeps size), blur_radius, alpha_threshold (0-255)",
		},
		"max_segments": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of segments to list, largest first. 0 lists all. Defaults to the server setting",
		},
		"include_contours": map[string]interface{}{
			"type":        "boolean",
			"description": "Include outer boundary vertices for each segment. Default false",
			"default":     false,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Segmentation
		{
			Name: "image_segment",
			Description: "Partition an image into connected regions of similar color by region growing. " +
				"Returns each segment's size, bounds, centroid, a point guaranteed inside it, mean color, " +
				"neighbors and optionally its outer contour. Coordinates are source image pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"path": pathProperty(),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name: "image_segment_region",
			Description: "Segment only part of an image, given by coordinates or a named region. " +
				"Results are reported in the coordinates of the full image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"path": pathProperty(),
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Named region. Takes precedence over x1/y1/x2/y2",
						"enum": []string{
							"top-left", "top-right", "bottom-left", "bottom-right",
							"top-half", "bottom-half", "left-half", "right-half", "center",
						},
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name: "image_segment_lookup",
			Description: "Find the segment containing pixel (x, y) and describe it together with its neighbors. " +
				"Also reports the pixel's own color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based from top)",
					},
				}),
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name: "image_segment_batch",
			Description: "Segment several image files concurrently with the same options. " +
				"A file that fails is reported in its own entry without affecting the others.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Absolute paths to the image files",
						"items":       map[string]interface{}{"type": "string"},
					},
				}),
				"required": []string{"paths"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
