package server

import (
	"encoding/json"
	"testing"

	"github.com/ironsheep/image-edit-mcp/internal/command"
)

func TestToolDefinitions(t *testing.T) {
	tools := ToolDefinitions(command.NewTable(1.25))

	expectedTools := []string{
		"image_open",
		"image_info",
		"image_history",
		"image_save",
		"image_export",
		"image_render",
		"image_sample_color",
		"image_undo",
		"image_redo",
		"image_select_start",
		"image_select_down",
		"image_select_move",
		"image_select_up",
		"image_select_cancel",
		"image_rotate",
		"image_rotate_right",
		"image_rotate_left",
		"image_rotate_180",
		"image_crop",
		"image_adjust",
		"image_draw_text",
		"image_draw_shape",
		"image_zoom",
		"image_zoom_in",
		"image_zoom_out",
		"image_zoom_reset",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range ToolDefinitions(command.NewTable(1.25)) {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if props, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok || props == nil {
				t.Errorf("InputSchema properties: got %v", tool.InputSchema["properties"])
			}

			// Must serialize for tools/list
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("Tool does not marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tools := make(map[string]Tool)
	for _, tool := range ToolDefinitions(command.NewTable(1.25)) {
		tools[tool.Name] = tool
	}

	tests := []struct {
		name     string
		required []string
	}{
		{"image_open", []string{"path"}},
		{"image_export", []string{"path"}},
		{"image_sample_color", []string{"x", "y"}},
		{"image_select_down", []string{"x", "y"}},
		{"image_crop", []string{"x1", "y1", "x2", "y2"}},
		{"image_rotate", []string{"turns"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			required, ok := tools[tt.name].InputSchema["required"].([]string)
			if !ok {
				t.Fatalf("required: got %v", tools[tt.name].InputSchema["required"])
			}
			if len(required) != len(tt.required) {
				t.Fatalf("required: got %v, want %v", required, tt.required)
			}
			for i := range required {
				if required[i] != tt.required[i] {
					t.Errorf("required[%d]: got %s, want %s", i, required[i], tt.required[i])
				}
			}
		})
	}

	for _, name := range []string{"image_save", "image_render", "image_rotate_right", "image_zoom_in"} {
		if _, ok := tools[name].InputSchema["required"]; ok {
			t.Errorf("%s should have no required arguments", name)
		}
	}
}

func TestToolDefinitions_CommandOrder(t *testing.T) {
	table := command.NewTable(1.25)
	tools := ToolDefinitions(table)

	commands := tools[len(sessionTools()):]
	for i, id := range table.Names() {
		if commands[i].Name != toolPrefix+id {
			t.Errorf("command tool %d: got %s, want %s", i, commands[i].Name, toolPrefix+id)
		}
		if commands[i].Description != table[id].Description {
			t.Errorf("%s: description not taken from the command table", commands[i].Name)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	expected := ToolDefinitions(s.session.commands)
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
