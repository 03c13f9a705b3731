package command

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-edit-mcp/internal/edit"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_Names(t *testing.T) {
	table := NewTable(1.25)

	assert.Equal(t, []string{
		"adjust", "crop", "draw_shape", "draw_text",
		"rotate", "rotate_180", "rotate_left", "rotate_right",
		"zoom", "zoom_in", "zoom_out", "zoom_reset",
	}, table.Names())

	for id, cmd := range table {
		assert.Equal(t, id, cmd.ID)
		assert.NotEmpty(t, cmd.Description, id)
		assert.NotNil(t, cmd.Build, id)
		for _, req := range cmd.Required {
			assert.Contains(t, cmd.Properties, req, "%s requires undeclared %s", id, req)
		}
	}
}

func TestBuild(t *testing.T) {
	table := NewTable(2)

	tests := []struct {
		id   string
		args string
		want edit.Operation
	}{
		{"rotate", `{"turns": 3}`, edit.Rotate{QuarterTurns: 3}},
		{"rotate_right", ``, edit.Rotate{QuarterTurns: 1}},
		{"rotate_left", `{}`, edit.Rotate{QuarterTurns: -1}},
		{"rotate_180", `null`, edit.Rotate{QuarterTurns: 2}},
		{"crop", `{"x1": 50, "y1": 40, "x2": 10, "y2": 5}`, edit.Crop{Rect: image.Rect(10, 5, 50, 40)}},
		{"zoom", `{"factor": 1.5}`, edit.Zoom{Factor: 1.5, Mode: edit.ZoomSet}},
		{"zoom_in", ``, edit.Zoom{Factor: 2, Mode: edit.ZoomBy}},
		{"zoom_out", ``, edit.Zoom{Factor: 0.5, Mode: edit.ZoomBy}},
		{"zoom_reset", ``, edit.Zoom{Factor: 1, Mode: edit.ZoomSet}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			op, err := table.Build(tt.id, json.RawMessage(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestBuild_AdjustDefaults(t *testing.T) {
	op, err := NewTable(0).Build("adjust", json.RawMessage(`{"saturation": 0, "hue": 0.25}`))
	require.NoError(t, err)

	assert.Equal(t, edit.Adjust{Adjustments: imaging.Adjustments{
		Brightness: 1, Contrast: 1, Saturation: 0, Hue: 0.25,
	}}, op)
}

func TestBuild_DrawText(t *testing.T) {
	table := NewTable(0)

	op, err := table.Build("draw_text", json.RawMessage(`{"x": 3, "y": 4, "text": "hello"}`))
	require.NoError(t, err)
	assert.Equal(t, edit.DrawText{
		At: image.Pt(3, 4), Text: "hello", Size: DefaultTextSize, Color: color.NRGBA{0, 0, 0, 255},
	}, op)

	op, err = table.Build("draw_text", json.RawMessage(`{"x": 0, "y": 0, "text": "a", "size": 10, "color": "#00FF0080"}`))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 255, 0, 128}, op.(edit.DrawText).Color)

	_, err = table.Build("draw_text", json.RawMessage(`{"text": "a", "color": "green"}`))
	assert.Error(t, err)
}

func TestBuild_DrawShape(t *testing.T) {
	table := NewTable(0)

	op, err := table.Build("draw_shape", json.RawMessage(`{"shape": "rect", "x1": 1, "y1": 2, "x2": 30, "y2": 40, "filled": true}`))
	require.NoError(t, err)
	assert.Equal(t, edit.DrawShape{
		Kind: imaging.ShapeRectangle, From: image.Pt(1, 2), To: image.Pt(30, 40),
		Width: DefaultStrokeWidth, Filled: true, Color: color.NRGBA{255, 0, 0, 255},
	}, op)

	_, err = table.Build("draw_shape", json.RawMessage(`{"shape": "star"}`))
	assert.Error(t, err)
}

func TestBuild_Errors(t *testing.T) {
	table := NewTable(0)

	_, err := table.Build("flip", nil)
	assert.True(t, errors.Is(err, ErrUnknownCommand))

	_, err = table.Build("crop", json.RawMessage(`{"x1": "left"}`))
	assert.True(t, errors.Is(err, ErrInvalidArguments))

	_, err = table.Build("rotate", json.RawMessage(`[1, 2]`))
	assert.True(t, errors.Is(err, ErrInvalidArguments))

	// Well-formed JSON with a bad value is not a decoding failure
	_, err = table.Build("draw_shape", json.RawMessage(`{"shape": "star"}`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidArguments))
}

func TestBuild_ConstructorsArePure(t *testing.T) {
	table := NewTable(0)
	args := json.RawMessage(`{"x1": 1, "y1": 1, "x2": 5, "y2": 5}`)

	a, err := table.Build("crop", args)
	require.NoError(t, err)
	b, err := table.Build("crop", args)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
