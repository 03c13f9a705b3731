package edit

import (
	"image"

	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Frame describes how the displayed image relates to the base image: the base
// size, a clockwise rotation and an optional crop kept in base coordinates.
//
// Coordinates are pixel indices. Rectangles have an inclusive Min and an
// exclusive Max, as in the image package.
type Frame struct {
	Base     image.Point
	Rotation int
	Crop     image.Rectangle
}

// Rotated is the size of the base image after rotation.
func (f Frame) Rotated() image.Point {
	return RotateSize(f.Base, f.Rotation)
}

// CropRect is the crop in the rotated frame, or the whole rotated frame when
// no crop is set.
func (f Frame) CropRect() image.Rectangle {
	if f.Crop.Empty() {
		return image.Rectangle{Max: f.Rotated()}
	}
	return RotateRect(f.Crop, f.Base, f.Rotation)
}

// Size is the displayed size at zoom 1.0.
func (f Frame) Size() image.Point {
	return f.CropRect().Size()
}

// Bounds is the displayed frame anchored at the origin.
func (f Frame) Bounds() image.Rectangle {
	return image.Rectangle{Max: f.Size()}
}

// PointToBase maps a displayed pixel to the base pixel it shows.
func (f Frame) PointToBase(p image.Point) image.Point {
	return RotatePoint(p.Add(f.CropRect().Min), f.Rotated(), -f.Rotation)
}

// PointFromBase maps a base pixel into the displayed frame.
func (f Frame) PointFromBase(p image.Point) image.Point {
	return RotatePoint(p, f.Base, f.Rotation).Sub(f.CropRect().Min)
}

// RectToBase maps a displayed rectangle into base coordinates.
func (f Frame) RectToBase(r image.Rectangle) image.Rectangle {
	return RotateRect(r.Add(f.CropRect().Min), f.Rotated(), -f.Rotation)
}

// RotateSize is the size of a size-sized frame after quarterTurns clockwise
// quarter turns.
func RotateSize(size image.Point, quarterTurns int) image.Point {
	if imaging.NormalizeTurns(quarterTurns)%2 == 1 {
		return image.Pt(size.Y, size.X)
	}
	return size
}

// RotatePoint maps pixel p of a frame with the given size through
// quarterTurns clockwise quarter turns.
func RotatePoint(p image.Point, size image.Point, quarterTurns int) image.Point {
	for i := 0; i < imaging.NormalizeTurns(quarterTurns); i++ {
		p = image.Pt(size.Y-1-p.Y, p.X)
		size = image.Pt(size.Y, size.X)
	}
	return p
}

// RotateRect maps r, inside a frame with the given size, through quarterTurns
// clockwise quarter turns. The result is canonical.
func RotateRect(r image.Rectangle, size image.Point, quarterTurns int) image.Rectangle {
	r = r.Canon()
	for i := 0; i < imaging.NormalizeTurns(quarterTurns); i++ {
		r = image.Rect(size.Y-r.Max.Y, r.Min.X, size.Y-r.Min.Y, r.Max.X)
		size = image.Pt(size.Y, size.X)
	}
	return r
}
