// Package command maps command identifiers to pure operation constructors.
//
// A dispatcher looks a command up by id and hands it the raw JSON arguments it
// received; the constructor only parses and builds the operation, it never
// touches a document. The same table describes each command's parameters as
// JSON Schema so a server can publish it.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/image-edit-mcp/internal/edit"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// ErrUnknownCommand is returned by Build for ids missing from the table.
var ErrUnknownCommand = errors.New("unknown command")

// ErrInvalidArguments marks arguments that are not valid JSON for the
// command's parameters.
var ErrInvalidArguments = errors.New("undecodable arguments")

// Constructor builds an operation from JSON arguments.
type Constructor func(args json.RawMessage) (edit.Operation, error)

// Command is one table entry.
type Command struct {
	ID          string
	Description string

	// Properties is the JSON Schema "properties" object for the arguments.
	Properties map[string]interface{}
	Required   []string

	Build Constructor
}

// Table maps command ids to commands.
type Table map[string]Command

// Default text and shape settings.
const (
	DefaultTextSize    = 24.0
	DefaultTextColor   = "#000000"
	DefaultShapeColor  = "#FF0000"
	DefaultStrokeWidth = 2
)

// Build constructs the operation for id.
func (t Table) Build(id string, args json.RawMessage) (edit.Operation, error) {
	cmd, ok := t[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	op, err := cmd.Build(args)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", id, err)
	}
	return op, nil
}

// Names returns the command ids in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decode unmarshals args into v, leaving v as is for empty arguments.
func decode(args json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return nil
}

func fixed(op edit.Operation) Constructor {
	return func(json.RawMessage) (edit.Operation, error) { return op, nil }
}

// NewTable builds the command table. zoomStep is the factor used by zoom_in
// and zoom_out.
func NewTable(zoomStep float64) Table {
	if zoomStep <= 1 {
		zoomStep = 1.25
	}

	t := Table{}
	add := func(c Command) { t[c.ID] = c }

	add(Command{
		ID:          "rotate",
		Description: "Rotate the image by a number of quarter turns. Positive turns are clockwise.",
		Properties: map[string]interface{}{
			"turns": map[string]interface{}{
				"type":        "integer",
				"description": "Quarter turns, positive = clockwise (e.g. 1 = 90° right, -1 = 90° left)",
			},
		},
		Required: []string{"turns"},
		Build: func(args json.RawMessage) (edit.Operation, error) {
			var a struct {
				Turns int `json:"turns"`
			}
			if err := decode(args, &a); err != nil {
				return nil, err
			}
			return edit.Rotate{QuarterTurns: a.Turns}, nil
		},
	})
	add(Command{ID: "rotate_right", Description: "Rotate the image 90° clockwise.", Build: fixed(edit.Rotate{QuarterTurns: 1})})
	add(Command{ID: "rotate_left", Description: "Rotate the image 90° counter-clockwise.", Build: fixed(edit.Rotate{QuarterTurns: -1})})
	add(Command{ID: "rotate_180", Description: "Rotate the image 180°.", Build: fixed(edit.Rotate{QuarterTurns: 2})})

	add(Command{
		ID:          "crop",
		Description: "Crop to a rectangle given in the coordinates of the image as currently shown (after rotation and earlier crops, at zoom 1.0). Corners may be given in any order.",
		Properties: map[string]interface{}{
			"x1": coordinate("First corner X coordinate"),
			"y1": coordinate("First corner Y coordinate"),
			"x2": coordinate("Opposite corner X coordinate (exclusive)"),
			"y2": coordinate("Opposite corner Y coordinate (exclusive)"),
		},
		Required: []string{"x1", "y1", "x2", "y2"},
		Build: func(args json.RawMessage) (edit.Operation, error) {
			var a struct {
				X1 int `json:"x1"`
				Y1 int `json:"y1"`
				X2 int `json:"x2"`
				Y2 int `json:"y2"`
			}
			if err := decode(args, &a); err != nil {
				return nil, err
			}
			return edit.Crop{Rect: image.Rect(a.X1, a.Y1, a.X2, a.Y2)}, nil
		},
	})

	add(Command{
		ID:          "adjust",
		Description: "Adjust colors. Factors multiply the current correction (1.0 = unchanged); hue shifts around the color wheel in turns.",
		Properties: map[string]interface{}{
			"brightness": factor("Brightness factor, 0 = black. Default 1.0"),
			"contrast":   factor("Contrast factor, 0 = flat gray. Default 1.0"),
			"saturation": factor("Saturation factor, 0 = grayscale. Default 1.0"),
			"hue": map[string]interface{}{
				"type":        "number",
				"minimum":     -1,
				"maximum":     1,
				"description": "Hue shift in turns (0.5 = 180°). Default 0",
			},
		},
		Build: func(args json.RawMessage) (edit.Operation, error) {
			a := imaging.IdentityAdjustments()
			if err := decode(args, &a); err != nil {
				return nil, err
			}
			return edit.Adjust{Adjustments: a}, nil
		},
	})

	add(Command{
		ID:          "draw_text",
		Description: "Draw a line of text with its top-left corner at (x, y) in the image as currently shown.",
		Properties: map[string]interface{}{
			"x":    coordinate("Left edge X coordinate"),
			"y":    coordinate("Top edge Y coordinate"),
			"text": map[string]interface{}{"type": "string", "description": "Text to draw"},
			"size": map[string]interface{}{
				"type":        "number",
				"description": "Font size in pixels. Default 24",
				"default":     DefaultTextSize,
			},
			"color": hexColor(DefaultTextColor),
		},
		Required: []string{"x", "y", "text"},
		Build: func(args json.RawMessage) (edit.Operation, error) {
			a := struct {
				X     int     `json:"x"`
				Y     int     `json:"y"`
				Text  string  `json:"text"`
				Size  float64 `json:"size"`
				Color string  `json:"color"`
			}{Size: DefaultTextSize, Color: DefaultTextColor}
			if err := decode(args, &a); err != nil {
				return nil, err
			}
			col, err := imaging.ParseHexColor(a.Color)
			if err != nil {
				return nil, err
			}
			return edit.DrawText{At: image.Pt(a.X, a.Y), Text: a.Text, Size: a.Size, Color: col}, nil
		},
	})

	add(Command{
		ID:          "draw_shape",
		Description: "Draw a rectangle, ellipse, line or arrow between two pixels of the image as currently shown.",
		Properties: map[string]interface{}{
			"shape": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"rectangle", "ellipse", "line", "arrow"},
				"description": "Shape to draw",
			},
			"x1": coordinate("Start X coordinate"),
			"y1": coordinate("Start Y coordinate"),
			"x2": coordinate("End X coordinate"),
			"y2": coordinate("End Y coordinate"),
			"width": map[string]interface{}{
				"type":        "integer",
				"description": "Stroke width in pixels. Default 2",
				"default":     DefaultStrokeWidth,
			},
			"filled": map[string]interface{}{
				"type":        "boolean",
				"description": "Fill rectangles and ellipses instead of outlining them",
			},
			"color": hexColor(DefaultShapeColor),
		},
		Required: []string{"shape", "x1", "y1", "x2", "y2"},
		Build: func(args json.RawMessage) (edit.Operation, error) {
			a := struct {
				Shape  string `json:"shape"`
				X1     int    `json:"x1"`
				Y1     int    `json:"y1"`
				X2     int    `json:"x2"`
				Y2     int    `json:"y2"`
				Width  int    `json:"width"`
				Filled bool   `json:"filled"`
				Color  string `json:"color"`
			}{Width: DefaultStrokeWidth, Color: DefaultShapeColor}
			if err := decode(args, &a); err != nil {
				return nil, err
			}
			kind, err := imaging.ParseShapeKind(a.Shape)
			if err != nil {
				return nil, err
			}
			col, err := imaging.ParseHexColor(a.Color)
			if err != nil {
				return nil, err
			}
			return edit.DrawShape{
				Kind:   kind,
				From:   image.Pt(a.X1, a.Y1),
				To:     image.Pt(a.X2, a.Y2),
				Width:  a.Width,
				Filled: a.Filled,
				Color:  col,
			}, nil
		},
	})

	add(Command{
		ID:          "zoom",
		Description: "Set the display zoom factor (clamped to 0.1-2.0). Zoom never changes saved output.",
		Properties: map[string]interface{}{
			"factor": map[string]interface{}{
				"type":        "number",
				"description": "Zoom factor, 1.0 = actual size",
			},
		},
		Required: []string{"factor"},
		Build: func(args json.RawMessage) (edit.Operation, error) {
			var a struct {
				Factor float64 `json:"factor"`
			}
			if err := decode(args, &a); err != nil {
				return nil, err
			}
			return edit.Zoom{Factor: a.Factor, Mode: edit.ZoomSet}, nil
		},
	})
	add(Command{ID: "zoom_in", Description: "Zoom in one step.", Build: fixed(edit.Zoom{Factor: zoomStep, Mode: edit.ZoomBy})})
	add(Command{ID: "zoom_out", Description: "Zoom out one step.", Build: fixed(edit.Zoom{Factor: 1 / zoomStep, Mode: edit.ZoomBy})})
	add(Command{ID: "zoom_reset", Description: "Reset the zoom to actual size.", Build: fixed(edit.Zoom{Factor: 1, Mode: edit.ZoomSet})})

	return t
}

func coordinate(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func factor(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"minimum":     0,
		"maximum":     edit.MaxAdjustFactor,
		"description": description,
		"default":     1.0,
	}
}

func hexColor(def string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Color as hex (#RRGGBB or #RRGGBBAA). Default " + def,
		"default":     def,
	}
}
