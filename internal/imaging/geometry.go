package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Rotate returns r turned clockwise by 90 degrees per quarter turn. The count
// wraps modulo 4, so -1 and 3 are the same rotation. Quarter turns are exact
// pixel permutations with no resampling.
func Rotate(r *Raster, quarterTurns int) *Raster {
	switch NormalizeTurns(quarterTurns) {
	case 1:
		return wrap(imaging.Rotate270(r.pix))
	case 2:
		return wrap(imaging.Rotate180(r.pix))
	case 3:
		return wrap(imaging.Rotate90(r.pix))
	}
	return r
}

// NormalizeTurns wraps a quarter-turn count into 0..3.
func NormalizeTurns(quarterTurns int) int {
	return ((quarterTurns % 4) + 4) % 4
}

// Crop extracts a rectangular region from an image.
//
// The rectangle uses inclusive Min and exclusive Max, must be non-empty and
// must lie inside the image bounds.
func Crop(r *Raster, rect image.Rectangle) (*Raster, error) {
	bounds := r.Bounds()

	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if rect.Min.X >= rect.Max.X || rect.Min.Y >= rect.Max.Y {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if rect == bounds {
		return r, nil
	}

	return wrap(imaging.Crop(r.pix, rect)), nil
}

// Scale resamples r by factor with a Lanczos filter. Each output dimension is
// rounded and kept at least one pixel. A factor of 1 returns r unchanged.
func Scale(r *Raster, factor float64) (*Raster, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("invalid scale factor: %v", factor)
	}
	if factor == 1 {
		return r, nil
	}

	w, h := ScaledSize(r.Size(), factor)
	return wrap(imaging.Resize(r.pix, w, h, imaging.Lanczos)), nil
}

// ScaledSize is the output size Scale produces for size and factor.
func ScaledSize(size image.Point, factor float64) (int, int) {
	w := int(math.Round(float64(size.X) * factor))
	h := int(math.Round(float64(size.Y) * factor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
