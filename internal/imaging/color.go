package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based with origin at top-left:
//   - Valid X range: 0 to width-1
//   - Valid Y range: 0 to height-1
//
// The components are the stored, non-premultiplied values. The Hex format
// excludes alpha; use RGBA.A to get transparency information.
func SampleColor(r *Raster, x, y int) (*ColorResult, error) {
	if !image.Pt(x, y).In(r.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c := r.NRGBAAt(x, y)
	col := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, l := col.Hsl()

	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGB:  RGBColor{R: c.R, G: c.G, B: c.B},
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}, nil
}

// Adjustments describes a color correction.
//
// Brightness, Contrast and Saturation are multiplicative factors where 1 is
// the identity:
//   - Brightness 0 turns every pixel black
//   - Contrast 0 flattens the image to its mean luminance
//   - Saturation 0 produces grayscale (BT.601 luma)
//
// Hue is an additive shift around the color wheel in turns; 0 is the
// identity and 0.5 rotates by 180 degrees.
type Adjustments struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Hue        float64 `json:"hue"`
}

// IdentityAdjustments returns the adjustment that leaves pixels unchanged.
func IdentityAdjustments() Adjustments {
	return Adjustments{Brightness: 1, Contrast: 1, Saturation: 1}
}

// IsIdentity reports whether a leaves pixels unchanged.
func (a Adjustments) IsIdentity() bool {
	return a.Brightness == 1 && a.Contrast == 1 && a.Saturation == 1 && wrapHue(a.Hue) == 0
}

// Then composes a with b applied afterwards: factors multiply and hue shifts
// add.
func (a Adjustments) Then(b Adjustments) Adjustments {
	return Adjustments{
		Brightness: a.Brightness * b.Brightness,
		Contrast:   a.Contrast * b.Contrast,
		Saturation: a.Saturation * b.Saturation,
		Hue:        wrapHue(a.Hue + b.Hue),
	}
}

// wrapHue maps a hue shift into [0,1).
func wrapHue(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	if h >= 1 {
		h = 0
	}
	return h
}

// Adjust applies a in the fixed order brightness, contrast, saturation, hue.
//
// Each stage with an identity value is skipped, so the identity adjustment
// returns the input raster itself and any pass that runs only touches the
// channels it changes. Passes work on straight (non-premultiplied) color, so
// translucent pixels keep their hue. Alpha is preserved.
func Adjust(r *Raster, a Adjustments) *Raster {
	if a.IsIdentity() {
		return r
	}

	img := r.pix

	if a.Brightness != 1 {
		black := colorful.Color{}
		f := a.Brightness
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return mapColor(c, func(col colorful.Color) colorful.Color {
				return black.BlendRgb(col, f)
			})
		})
	}

	if a.Contrast != 1 {
		mean := meanLuma(img)
		gray := colorful.Color{R: mean, G: mean, B: mean}
		f := a.Contrast
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return mapColor(c, func(col colorful.Color) colorful.Color {
				return gray.BlendRgb(col, f)
			})
		})
	}

	hue := wrapHue(a.Hue)
	if a.Saturation != 1 || hue != 0 {
		f := a.Saturation
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return mapColor(c, func(col colorful.Color) colorful.Color {
				if f != 1 {
					y := luma(col)
					col = colorful.Color{R: y, G: y, B: y}.BlendRgb(col, f)
				}
				if hue != 0 {
					h, s, v := col.Clamped().Hsv()
					col = colorful.Hsv(math.Mod(h+hue*360, 360), s, v)
				}
				return col
			})
		})
	}

	return wrap(img)
}

// mapColor runs fn on a straight-alpha pixel. Fully transparent pixels are
// returned as is.
func mapColor(c color.NRGBA, fn func(colorful.Color) colorful.Color) color.NRGBA {
	if c.A == 0 {
		return c
	}
	col := fn(colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}).Clamped()
	return color.NRGBA{
		R: uint8(math.Round(col.R * 255)),
		G: uint8(math.Round(col.G * 255)),
		B: uint8(math.Round(col.B * 255)),
		A: c.A,
	}
}

// luma is the ITU-R BT.601 weighted luminance.
func luma(c colorful.Color) float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// meanLuma averages luminance over the visible pixels of img, in [0,1]. Rows
// are summed in parallel.
func meanLuma(img *image.NRGBA) float64 {
	var (
		mu  sync.Mutex
		sum float64
		n   int
	)
	width := img.Rect.Dx()
	parallel.Line(img.Rect.Dy(), func(start, end int) {
		var partSum float64
		var partN int
		for y := start; y < end; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+width*4]
			for i := 0; i < len(row); i += 4 {
				if row[i+3] == 0 {
					continue
				}
				partSum += luma(colorful.Color{R: float64(row[i]) / 255, G: float64(row[i+1]) / 255, B: float64(row[i+2]) / 255})
				partN++
			}
		}
		mu.Lock()
		sum += partSum
		n += partN
		mu.Unlock()
	})
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
