// Package pipeline renders edit states. Every checkpoint is rebuilt from the
// opened image and its recipe in a fixed order: rotate, crop, color
// adjustment, overlays, then zoom. Nothing is rotated or resampled
// incrementally.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/image-edit-mcp/internal/edit"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// ErrViewOperation is returned by Fold for operations that only change the
// view and therefore never become a checkpoint.
var ErrViewOperation = errors.New("view operation cannot be folded into history")

// Params is the complete input of Render.
type Params struct {
	// Base is the image as opened.
	Base *imaging.Raster

	// Rotation is a clockwise quarter-turn count; it wraps modulo 4.
	Rotation int

	// Crop is in base coordinates; empty means no crop.
	Crop image.Rectangle

	// Adjust is applied after the crop. The zero value is treated as the
	// identity.
	Adjust imaging.Adjustments

	// Overlays are drawn in order, in base coordinates.
	Overlays []edit.Overlay

	// Zoom resamples the result; 0 and 1 leave it untouched.
	Zoom float64
}

// ParamsOf returns the parameters that render s at the given zoom.
func ParamsOf(s *edit.State, zoom float64) Params {
	return Params{
		Base:     s.Base,
		Rotation: s.Rotation,
		Crop:     s.Crop,
		Adjust:   s.Adjust,
		Overlays: s.Overlays,
		Zoom:     zoom,
	}
}

// Render produces the bitmap described by p.
func Render(p Params) (*imaging.Raster, error) {
	if p.Base == nil {
		return nil, errors.New("no base image")
	}

	frame := edit.Frame{Base: p.Base.Size(), Rotation: imaging.NormalizeTurns(p.Rotation), Crop: p.Crop}

	// Rotate from the base every time
	img := imaging.Rotate(p.Base, frame.Rotation)

	if !p.Crop.Empty() {
		var err error
		img, err = imaging.Crop(img, frame.CropRect())
		if err != nil {
			return nil, fmt.Errorf("failed to crop: %w", err)
		}
	}

	if p.Adjust != (imaging.Adjustments{}) {
		img = imaging.Adjust(img, p.Adjust)
	}

	if len(p.Overlays) > 0 {
		canvas := imaging.NewCanvas(img)
		for i, ov := range p.Overlays {
			if err := draw(canvas, ov.FromBase(frame)); err != nil {
				return nil, fmt.Errorf("failed to draw overlay %d (%s): %w", i, ov.Name(), err)
			}
		}
		img = canvas.Raster()
	}

	if p.Zoom != 0 && p.Zoom != 1 {
		var err error
		img, err = imaging.Scale(img, p.Zoom)
		if err != nil {
			return nil, fmt.Errorf("failed to zoom: %w", err)
		}
	}

	return img, nil
}

func draw(c *imaging.Canvas, ov edit.Overlay) error {
	switch o := ov.(type) {
	case edit.DrawText:
		return c.Text(o.At, o.Text, o.Size, o.Color)
	case edit.DrawShape:
		return c.Shape(o.Kind, o.From, o.To, o.Width, o.Filled, o.Color)
	}
	return fmt.Errorf("unsupported overlay %T", ov)
}

// Initial returns the checkpoint for a freshly opened image.
func Initial(base *imaging.Raster) *edit.State {
	return &edit.State{
		Base:   base,
		Adjust: imaging.IdentityAdjustments(),
		Image:  base,
	}
}

// View renders s for display at zoom.
func View(s *edit.State, zoom float64) (*imaging.Raster, error) {
	if zoom == 0 || zoom == 1 {
		return s.Image, nil
	}
	return imaging.Scale(s.Image, zoom)
}
