package server

import (
	"testing"

	"github.com/ironsheep/image-segment-mcp/internal/imaging"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_segment",
		"image_segment_region",
		"image_segment_lookup",
		"image_segment_batch",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("InputSchema required should be a string slice")
			}
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %s has no property", name)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool string
		want []string
	}{
		{"image_load", []string{"path"}},
		{"image_dimensions", []string{"path"}},
		{"image_segment", []string{"path"}},
		{"image_segment_region", []string{"path"}},
		{"image_segment_lookup", []string{"path", "x", "y"}},
		{"image_segment_batch", []string{"paths"}},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got, _ := toolMap[tt.tool].InputSchema["required"].([]string)
			if len(got) != len(tt.want) {
				t.Fatalf("required: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("required: got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestToolDefinitions_SegmentOverrides(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "image_load" || tool.Name == "image_dimensions" {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for _, name := range []string{"options", "preprocess", "max_segments", "include_contours"} {
			if _, ok := props[name]; !ok {
				t.Errorf("%s: missing %s property", tool.Name, name)
			}
		}
	}
}

func TestToolDefinitions_RegionNames(t *testing.T) {
	var region map[string]interface{}
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "image_segment_region" {
			region = tool.InputSchema["properties"].(map[string]interface{})["region"].(map[string]interface{})
		}
	}
	if region == nil {
		t.Fatal("image_segment_region has no region property")
	}

	enum, ok := region["enum"].([]string)
	if !ok || len(enum) != 9 {
		t.Fatalf("region enum: got %v", region["enum"])
	}
	for _, name := range enum {
		if _, err := imaging.NamedRegion(100, 100, name); err != nil {
			t.Errorf("enum value %q is not a known region: %v", name, err)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
