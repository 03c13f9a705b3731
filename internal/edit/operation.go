package edit

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Limits enforced by Validate.
const (
	MaxAdjustFactor = 4.0
	MaxTextSize     = 512.0
	MaxStrokeWidth  = 256
)

// Operation is one committed or view-level edit action.
//
// The set of operations is closed: Rotate, Crop, Zoom, Adjust, DrawText and
// DrawShape.
type Operation interface {
	// Name is the short identifier shown in history listings.
	Name() string

	// Validate checks the operation's own parameters. Checks that need the
	// current image, such as a crop landing inside the frame, happen when the
	// operation is folded.
	Validate() error

	operation()
}

// Rotate turns the image clockwise by 90 degrees per quarter turn. Negative
// counts turn counter-clockwise.
type Rotate struct {
	QuarterTurns int
}

func (Rotate) operation() {}

// Name implements Operation.
func (o Rotate) Name() string {
	switch imaging.NormalizeTurns(o.QuarterTurns) {
	case 1:
		return "rotate_right"
	case 2:
		return "rotate_180"
	case 3:
		return "rotate_left"
	}
	return "rotate"
}

// Validate implements Operation. Any count is valid.
func (o Rotate) Validate() error { return nil }

// Crop keeps the pixels inside Rect, given in the displayed frame. Corners may
// come in any order; the rectangle is normalized before use.
type Crop struct {
	Rect image.Rectangle
}

func (Crop) operation() {}

// Name implements Operation.
func (o Crop) Name() string { return "crop" }

// Validate implements Operation.
func (o Crop) Validate() error {
	r := o.Rect.Canon()
	if r.Dx() == 0 || r.Dy() == 0 {
		return fmt.Errorf("degenerate crop rectangle (%d,%d)-(%d,%d)",
			o.Rect.Min.X, o.Rect.Min.Y, o.Rect.Max.X, o.Rect.Max.Y)
	}
	return nil
}

// ZoomMode selects how a Zoom factor is interpreted.
type ZoomMode int

const (
	// ZoomSet replaces the zoom factor.
	ZoomSet ZoomMode = iota
	// ZoomBy multiplies the current zoom factor.
	ZoomBy
)

// Zoom changes the display scale. It only ever touches the view and is never
// recorded in history.
type Zoom struct {
	Factor float64
	Mode   ZoomMode
}

func (Zoom) operation() {}

// Name implements Operation.
func (o Zoom) Name() string { return "zoom" }

// Validate implements Operation.
func (o Zoom) Validate() error {
	if !finite(o.Factor) || o.Factor <= 0 {
		return fmt.Errorf("invalid zoom factor: %v", o.Factor)
	}
	if o.Mode != ZoomSet && o.Mode != ZoomBy {
		return fmt.Errorf("invalid zoom mode: %d", o.Mode)
	}
	return nil
}

// Adjust applies a color correction on top of the committed one.
type Adjust struct {
	imaging.Adjustments
}

func (Adjust) operation() {}

// Name implements Operation.
func (o Adjust) Name() string { return "adjust" }

// Validate implements Operation.
func (o Adjust) Validate() error {
	var errs []error
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"brightness", o.Brightness},
		{"contrast", o.Contrast},
		{"saturation", o.Saturation},
	} {
		if !finite(f.value) || f.value < 0 || f.value > MaxAdjustFactor {
			errs = append(errs, fmt.Errorf("%s %v outside [0, %v]", f.name, f.value, MaxAdjustFactor))
		}
	}
	if !finite(o.Hue) || o.Hue < -1 || o.Hue > 1 {
		errs = append(errs, fmt.Errorf("hue %v outside [-1, 1]", o.Hue))
	}
	return errors.Join(errs...)
}

// Overlay is an operation that draws over the image. Overlays keep their
// geometry in base-image coordinates once committed.
type Overlay interface {
	Operation

	// ToBase maps the overlay from frame f's display coordinates into base
	// coordinates.
	ToBase(f Frame) Overlay

	// FromBase maps the overlay from base coordinates into frame f.
	FromBase(f Frame) Overlay

	// Points are the anchor pixels that must lie inside the frame.
	Points() []image.Point
}

// DrawText writes a single line of text with its top-left corner at At.
type DrawText struct {
	At    image.Point
	Text  string
	Size  float64
	Color color.NRGBA
}

func (DrawText) operation() {}

// Name implements Operation.
func (o DrawText) Name() string { return "draw_text" }

// Validate implements Operation.
func (o DrawText) Validate() error {
	if strings.TrimSpace(o.Text) == "" {
		return errors.New("text must not be empty")
	}
	if !finite(o.Size) || o.Size <= 0 || o.Size > MaxTextSize {
		return fmt.Errorf("text size %v outside (0, %v]", o.Size, MaxTextSize)
	}
	return nil
}

// ToBase implements Overlay.
func (o DrawText) ToBase(f Frame) Overlay {
	o.At = f.PointToBase(o.At)
	return o
}

// FromBase implements Overlay. Text stays upright at its mapped anchor.
func (o DrawText) FromBase(f Frame) Overlay {
	o.At = f.PointFromBase(o.At)
	return o
}

// Points implements Overlay.
func (o DrawText) Points() []image.Point { return []image.Point{o.At} }

// DrawShape draws Kind between the pixels From and To.
type DrawShape struct {
	Kind   imaging.ShapeKind
	From   image.Point
	To     image.Point
	Width  int
	Filled bool
	Color  color.NRGBA
}

func (DrawShape) operation() {}

// Name implements Operation.
func (o DrawShape) Name() string { return "draw_" + string(o.Kind) }

// Validate implements Operation.
func (o DrawShape) Validate() error {
	switch o.Kind {
	case imaging.ShapeRectangle, imaging.ShapeEllipse, imaging.ShapeLine, imaging.ShapeArrow:
	default:
		return fmt.Errorf("unknown shape: %q", o.Kind)
	}
	if o.Width < 1 || o.Width > MaxStrokeWidth {
		return fmt.Errorf("stroke width %d outside [1, %d]", o.Width, MaxStrokeWidth)
	}
	return nil
}

// ToBase implements Overlay.
func (o DrawShape) ToBase(f Frame) Overlay {
	o.From = f.PointToBase(o.From)
	o.To = f.PointToBase(o.To)
	return o
}

// FromBase implements Overlay.
func (o DrawShape) FromBase(f Frame) Overlay {
	o.From = f.PointFromBase(o.From)
	o.To = f.PointFromBase(o.To)
	return o
}

// Points implements Overlay.
func (o DrawShape) Points() []image.Point { return []image.Point{o.From, o.To} }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
