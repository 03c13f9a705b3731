package server

import (
	"github.com/ironsheep/image-edit-mcp/internal/command"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolDefinitions returns the session tools followed by one tool per entry of
// table, in command id order.
func ToolDefinitions(table command.Table) []Tool {
	tools := sessionTools()
	for _, id := range table.Names() {
		cmd := table[id]
		schema := noArgs()
		if cmd.Properties != nil {
			schema["properties"] = cmd.Properties
		}
		if len(cmd.Required) > 0 {
			schema["required"] = cmd.Required
		}
		tools = append(tools, Tool{
			Name:        toolPrefix + id,
			Description: cmd.Description,
			InputSchema: schema,
		})
	}
	return tools
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func pointSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "integer",
				"description": "X " + description,
			},
			"y": map[string]interface{}{
				"type":        "integer",
				"description": "Y " + description,
			},
		},
		"required": []string{"x", "y"},
	}
}

func sessionTools() []Tool {
	return []Tool{
		// Document
		{
			Name:        "image_open",
			Description: "Open an image file for editing. Replaces the current document and clears its history, view and selection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_info",
			Description: "Describe the open document: size, committed rotation, crop and adjustments, zoom, selection and history position.",
			InputSchema: noArgs(),
		},
		{
			Name:        "image_history",
			Description: "List the retained edit checkpoints, oldest first, marking the current one.",
			InputSchema: noArgs(),
		},
		{
			Name:        "image_save",
			Description: "Write the current image to disk and mark the document unmodified. Without a path the file it was opened from is overwritten.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination path. Defaults to the document's own path.",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "gif", "bmp"},
						"description": "Output format. Defaults to the path's extension, then the source format.",
					},
				},
			},
		},
		{
			Name:        "image_export",
			Description: "Write a copy of the current image to disk. The document keeps its path and modified state.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination path",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "gif", "bmp"},
						"description": "Output format. Defaults to the path's extension, then the source format.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_render",
			Description: "Render the current image at the current zoom and return it as base64-encoded image data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "gif", "bmp"},
						"default":     "png",
						"description": "Encoding of the returned image",
					},
				},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a pixel of the current image (zoom 1.0 coordinates).",
			InputSchema: pointSchema("coordinate in the current image"),
		},

		// History
		{
			Name:        "image_undo",
			Description: "Step back one edit. Reports moved=false at the oldest checkpoint.",
			InputSchema: noArgs(),
		},
		{
			Name:        "image_redo",
			Description: "Step forward one edit. Reports moved=false when there is nothing to redo.",
			InputSchema: noArgs(),
		},

		// Selection
		{
			Name:        "image_select_start",
			Description: "Enter crop-selection mode.",
			InputSchema: noArgs(),
		},
		{
			Name:        "image_select_down",
			Description: "Anchor a crop selection at a display position (zoomed coordinates).",
			InputSchema: pointSchema("display coordinate"),
		},
		{
			Name:        "image_select_move",
			Description: "Drag the selection to a display position and return the preview rectangle in image coordinates.",
			InputSchema: pointSchema("display coordinate"),
		},
		{
			Name:        "image_select_up",
			Description: "Release the selection at a display position. A non-empty rectangle is committed as a crop.",
			InputSchema: pointSchema("display coordinate"),
		},
		{
			Name:        "image_select_cancel",
			Description: "Abandon the crop selection without editing.",
			InputSchema: noArgs(),
		},
	}
}
