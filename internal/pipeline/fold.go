package pipeline

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-edit-mcp/internal/edit"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Fold commits op on top of s and returns the resulting checkpoint. s is left
// untouched.
//
// Geometry in op is read in the frame s displays: crop rectangles are clipped
// to it and both crops and overlay anchors are stored in base coordinates.
func Fold(s *edit.State, op edit.Operation) (*edit.State, error) {
	if s == nil {
		return nil, errors.New("no state to fold onto")
	}
	if op == nil {
		return nil, errors.New("no operation")
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	next := *s
	next.Op = op
	frame := s.Frame()

	switch o := op.(type) {
	case edit.Zoom:
		return nil, ErrViewOperation

	case edit.Rotate:
		next.Rotation = imaging.NormalizeTurns(s.Rotation + o.QuarterTurns)

	case edit.Crop:
		rect := o.Rect.Canon().Intersect(frame.Bounds())
		if rect.Empty() {
			return nil, fmt.Errorf("crop rectangle (%d,%d)-(%d,%d) outside %dx%d image",
				o.Rect.Min.X, o.Rect.Min.Y, o.Rect.Max.X, o.Rect.Max.Y, frame.Size().X, frame.Size().Y)
		}
		next.Crop = frame.RectToBase(rect)

	case edit.Adjust:
		next.Adjust = s.Adjust.Then(o.Adjustments)

	case edit.Overlay:
		bounds := frame.Bounds()
		for _, p := range o.Points() {
			if !p.In(bounds) {
				return nil, fmt.Errorf("point (%d,%d) outside %dx%d image", p.X, p.Y, bounds.Dx(), bounds.Dy())
			}
		}
		overlays := make([]edit.Overlay, len(s.Overlays), len(s.Overlays)+1)
		copy(overlays, s.Overlays)
		next.Overlays = append(overlays, o.ToBase(frame))

	default:
		return nil, fmt.Errorf("unsupported operation %T", op)
	}

	img, err := Render(ParamsOf(&next, 1))
	if err != nil {
		return nil, err
	}
	next.Image = img
	return &next, nil
}
