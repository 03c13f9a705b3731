package imaging

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Raster is an immutable 8-bit NRGBA pixel buffer.
//
// A Raster is created by copying its source, and none of its methods hand out
// the underlying buffer, so a Raster shared between history snapshots can never
// be altered by a later edit. Every operation in this package returns a new
// Raster. The bounds always start at (0,0).
//
// Raster implements image.Image for read-only access.
type Raster struct {
	pix *image.NRGBA
}

// NewRaster returns a Raster holding a deep copy of img, normalized to NRGBA
// with its origin moved to (0,0).
func NewRaster(img image.Image) *Raster {
	if r, ok := img.(*Raster); ok {
		return r
	}
	return &Raster{pix: imaging.Clone(img)}
}

// wrap adopts a buffer that no other reference can reach.
func wrap(pix *image.NRGBA) *Raster {
	if pix.Rect.Min != (image.Point{}) {
		pix = imaging.Clone(pix)
	}
	return &Raster{pix: pix}
}

// Width is the image width in pixels.
func (r *Raster) Width() int { return r.pix.Rect.Dx() }

// Height is the image height in pixels.
func (r *Raster) Height() int { return r.pix.Rect.Dy() }

// Depth is the stored channel depth in bits.
func (r *Raster) Depth() int { return 8 }

// Size returns the dimensions as a point.
func (r *Raster) Size() image.Point { return r.pix.Rect.Size() }

// ColorModel implements image.Image.
func (r *Raster) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (r *Raster) Bounds() image.Rectangle { return r.pix.Rect }

// At implements image.Image.
func (r *Raster) At(x, y int) color.Color { return r.pix.NRGBAAt(x, y) }

// NRGBAAt returns the color at (x, y) without interface conversion.
func (r *Raster) NRGBAAt(x, y int) color.NRGBA { return r.pix.NRGBAAt(x, y) }

// Clone returns a private mutable copy of the pixels.
func (r *Raster) Clone() *image.NRGBA {
	return imaging.Clone(r.pix)
}

// Opaque reports whether every pixel has full alpha.
func (r *Raster) Opaque() bool { return r.pix.Opaque() }

// Equal reports whether both rasters have identical dimensions and pixels.
func (r *Raster) Equal(other *Raster) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil {
		return false
	}
	if r.pix.Rect != other.pix.Rect {
		return false
	}
	w := r.Width() * 4
	for y := 0; y < r.Height(); y++ {
		a := r.pix.Pix[y*r.pix.Stride : y*r.pix.Stride+w]
		b := other.pix.Pix[y*other.pix.Stride : y*other.pix.Stride+w]
		if !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}
