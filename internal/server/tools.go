package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func toleranceProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Exclusive near-miss distance in pixels. Default 100",
		"default":     100,
		"minimum":     0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "map_merge",
			Description: "Merge every variant map in a directory into its base map. Writes the merged map and a diagnostic map (red = conflicting edits, yellow = edits within tolerance of another variant's edit, green = clean) and returns a summary of the run.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"maps_dir":   stringProp("Absolute path to the directory holding the base map and its variants"),
					"base_file":  stringProp("File name of the base map inside maps_dir. Default base.bmp"),
					"output_dir": stringProp("Directory receiving the outputs. Default: the parent of maps_dir"),
					"tolerance":  toleranceProp(),
					"exclude": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Entry names in maps_dir that are not variants. Default [\"unused\"]",
					},
					"summary_file":     stringProp("Optional JSON summary file name"),
					"overlay_file":     stringProp("Optional file name for the diagnostic colors blended over the base map"),
					"review_crop_file": stringProp("Optional file name for an enlarged crop around every flagged pixel"),
					"dry_run": map[string]interface{}{
						"type":        "boolean",
						"description": "Compute the summary without writing any file",
						"default":     false,
					},
				},
				"required": []string{"maps_dir"},
			},
		},
		{
			Name:        "map_changes",
			Description: "List the pixels where one variant map differs from the base map. Returns the change count, their bounding box and the first changes in row order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"base":    stringProp("Absolute path to the base map"),
					"variant": stringProp("Absolute path to the variant map"),
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of changes to return. Default 50",
						"default":     50,
					},
				},
				"required": []string{"base", "variant"},
			},
		},
		{
			Name:        "map_compare_pair",
			Description: "Compare the edits of two variants of the same base map. Edits both variants share exactly are ignored. Returns conflicting pixels, near misses closer than the tolerance, and the minimum distance between the remaining edits.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"base":      stringProp("Absolute path to the base map"),
					"a":         stringProp("Absolute path to the first variant"),
					"b":         stringProp("Absolute path to the second variant"),
					"tolerance": toleranceProp(),
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of pixels to list per category. Default 50",
						"default":     50,
					},
				},
				"required": []string{"base", "a", "b"},
			},
		},
		{
			Name:        "map_classify_pixel",
			Description: "Report how one pixel would be treated by a merge of the maps directory: unchanged, clean, near_miss or conflicted, with the color each variant gives it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"maps_dir":  stringProp("Absolute path to the directory holding the base map and its variants"),
					"base_file": stringProp("File name of the base map inside maps_dir. Default base.bmp"),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
					"tolerance": toleranceProp(),
				},
				"required": []string{"maps_dir", "x", "y"},
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
