package server

import (
	"github.com/samber/lo"

	"github.com/ironsheep/pixelmosh/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the PNG file",
	}
}

func probabilityProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"minimum":     0,
		"maximum":     1,
		"description": desc,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "mosh_load",
			Description: "Load a PNG file as the original for subsequent mosh runs and return its dimensions, color type and whether it can be moshed. Loading again resets the session for that path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"strict": map[string]interface{}{
						"type":        "boolean",
						"description": "Reject pixelation of gray+alpha images. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mosh_run",
			Description: "Mosh a fresh copy of the loaded original and return the seed, the number of chunk iterations and a PNG preview. Omitted options come from the session defaults; an omitted seed picks a new one. The same seed and options always give the same image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_rate": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     65535,
						"description": "Minimum chunks to process",
					},
					"max_rate": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     65535,
						"description": "Maximum chunks to process",
					},
					"pixelation": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     255,
						"description": "Pixelation block size; 0 or 1 disables",
					},
					"line_shift":    probabilityProperty("Chance of rotating the lines of a chunk"),
					"reverse":       probabilityProperty("Chance of reversing the lines of a chunk"),
					"flip":          probabilityProperty("Chance of reversing a whole chunk"),
					"channel_swap":  probabilityProperty("Chance of swapping two channels in a chunk"),
					"channel_shift": probabilityProperty("Chance of shifting one channel in a chunk"),
					"seed": map[string]interface{}{
						"type":        []string{"integer", "string"},
						"description": "Random seed (u64). Pass a string for values above 2^53",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Preview scale factor. Default 1.0",
						"default":     1.0,
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a base64 PNG preview. Default true",
						"default":     true,
					},
					"remember": map[string]interface{}{
						"type":        "boolean",
						"description": "Store the options of this run as the session defaults",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mosh_new_seed",
			Description: "Generate a new random seed.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "mosh_defaults",
			Description: "Return the session default options used to fill in omitted mosh_run arguments.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reset": map[string]interface{}{
						"type":        "boolean",
						"description": "Restore the built-in defaults first",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "mosh_compare",
			Description: "Measure how far the last mosh of an image drifted from its original: changed bytes and pixels, and mean and max CIEDE2000 color distance. Optionally returns a difference image and the dominant colors before and after.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"diff": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a base64 PNG of the per-channel difference",
						"default":     false,
					},
					"palette": map[string]interface{}{
						"type":        "integer",
						"description": "Number of dominant colors to list for each image (0 to skip)",
						"minimum":     0,
						"maximum":     imaging.MaxPaletteColors,
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mosh_save",
			Description: "Write the last mosh of an image to a PNG file. \".png\" is appended to the output name when missing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Output file path",
					},
				},
				"required": []string{"path", "output"},
			},
		},
	}
}

// ToolNames returns the names of all tools in definition order.
func ToolNames() []string {
	return lo.Map(GetToolDefinitions(), func(t Tool, _ int) string {
		return t.Name
	})
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
