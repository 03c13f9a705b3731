package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ShapeKind names a vector shape that can be drawn over an image.
type ShapeKind string

// Supported shapes.
const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeEllipse   ShapeKind = "ellipse"
	ShapeLine      ShapeKind = "line"
	ShapeArrow     ShapeKind = "arrow"
)

// ParseShapeKind validates a shape name.
func ParseShapeKind(name string) (ShapeKind, error) {
	switch k := ShapeKind(strings.ToLower(strings.TrimSpace(name))); k {
	case ShapeRectangle, ShapeEllipse, ShapeLine, ShapeArrow:
		return k, nil
	case "rect":
		return ShapeRectangle, nil
	}
	return "", fmt.Errorf("unknown shape: %s", name)
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
// The leading '#' is optional.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	hex = strings.TrimPrefix(hex, "#")

	var a uint8 = 255
	switch len(hex) {
	case 6:
	case 8:
		val, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		a = uint8(val)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	col, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := col.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// HexColor formats c as "#RRGGBBAA", or "#RRGGBB" when opaque.
func HexColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

var (
	textFont     *opentype.Font
	textFontOnce sync.Once
	textFontErr  error
)

func overlayFont() (*opentype.Font, error) {
	textFontOnce.Do(func() {
		textFont, textFontErr = opentype.Parse(goregular.TTF)
	})
	return textFont, textFontErr
}

// Canvas draws overlays onto a private copy of a raster.
//
// A Canvas is single-use: Raster hands the pixels over and any further draw
// returns an error.
type Canvas struct {
	dst *image.NRGBA
	z   *vector.Rasterizer
}

// NewCanvas starts a canvas from a copy of r.
func NewCanvas(r *Raster) *Canvas {
	return &Canvas{dst: r.Clone()}
}

// Raster finishes the canvas and returns the drawn image.
func (c *Canvas) Raster() *Raster {
	out := wrap(c.dst)
	c.dst = nil
	return out
}

// Text draws a single line of text with its top-left corner at `at`, using Go
// Regular at size pixels. Text running past the edges is clipped.
func (c *Canvas) Text(at image.Point, text string, size float64, col color.NRGBA) error {
	if c.dst == nil {
		return fmt.Errorf("canvas already finished")
	}
	f, err := overlayFont()
	if err != nil {
		return fmt.Errorf("failed to parse overlay font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(at.X, at.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return nil
}

// Shape draws kind between the pixels from and to.
//
// Rectangles and ellipses fill the box spanned by both pixels (inclusive) and
// are stroked with width pixels unless filled is set. Lines and arrows run
// between the pixel centers with square caps; filled is ignored for them.
func (c *Canvas) Shape(kind ShapeKind, from, to image.Point, width int, filled bool, col color.NRGBA) error {
	if c.dst == nil {
		return fmt.Errorf("canvas already finished")
	}
	if width < 1 {
		return fmt.Errorf("invalid stroke width: %d", width)
	}

	w := float32(width)
	switch kind {
	case ShapeRectangle:
		box := pixelBox(from, to)
		c.fill(col, func(z *vector.Rasterizer) {
			rectPath(z, box, false)
			if inner := box.inset(w); !filled && inner.valid() {
				rectPath(z, inner, true)
			}
		})
	case ShapeEllipse:
		box := pixelBox(from, to)
		c.fill(col, func(z *vector.Rasterizer) {
			ellipsePath(z, box, false)
			if inner := box.inset(w); !filled && inner.valid() {
				ellipsePath(z, inner, true)
			}
		})
	case ShapeLine:
		c.fill(col, func(z *vector.Rasterizer) {
			segmentPath(z, center(from), center(to), w)
		})
	case ShapeArrow:
		a, b := center(from), center(to)
		c.fill(col, func(z *vector.Rasterizer) {
			segmentPath(z, a, b, w)
		})
		angle := math.Atan2(float64(b.y-a.y), float64(b.x-a.x))
		head := float64(6 + width*2)
		for _, side := range []float64{math.Pi / 6, -math.Pi / 6} {
			tip := fpoint{
				x: b.x - float32(math.Cos(angle+side)*head),
				y: b.y - float32(math.Sin(angle+side)*head),
			}
			c.fill(col, func(z *vector.Rasterizer) {
				segmentPath(z, b, tip, w)
			})
		}
	default:
		return fmt.Errorf("unknown shape: %s", kind)
	}
	return nil
}

// fill rasterizes one path and composites it over the canvas.
func (c *Canvas) fill(col color.NRGBA, path func(z *vector.Rasterizer)) {
	size := c.dst.Bounds().Size()
	if c.z == nil {
		c.z = vector.NewRasterizer(size.X, size.Y)
	} else {
		c.z.Reset(size.X, size.Y)
	}
	c.z.DrawOp = draw.Over
	path(c.z)
	c.z.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{})
}

type fpoint struct{ x, y float32 }

func center(p image.Point) fpoint {
	return fpoint{x: float32(p.X) + 0.5, y: float32(p.Y) + 0.5}
}

type fbox struct{ x0, y0, x1, y1 float32 }

// pixelBox covers both pixels and everything between them.
func pixelBox(a, b image.Point) fbox {
	r := image.Rectangle{Min: a, Max: b}.Canon()
	return fbox{
		x0: float32(r.Min.X), y0: float32(r.Min.Y),
		x1: float32(r.Max.X + 1), y1: float32(r.Max.Y + 1),
	}
}

func (b fbox) inset(d float32) fbox {
	return fbox{x0: b.x0 + d, y0: b.y0 + d, x1: b.x1 - d, y1: b.y1 - d}
}

func (b fbox) valid() bool { return b.x1 > b.x0 && b.y1 > b.y0 }

// rectPath adds a closed rectangle, clockwise on screen unless reverse is set.
func rectPath(z *vector.Rasterizer, b fbox, reverse bool) {
	z.MoveTo(b.x0, b.y0)
	if reverse {
		z.LineTo(b.x0, b.y1)
		z.LineTo(b.x1, b.y1)
		z.LineTo(b.x1, b.y0)
	} else {
		z.LineTo(b.x1, b.y0)
		z.LineTo(b.x1, b.y1)
		z.LineTo(b.x0, b.y1)
	}
	z.ClosePath()
}

// ellipsePath adds a polygonal ellipse inscribed in b.
func ellipsePath(z *vector.Rasterizer, b fbox, reverse bool) {
	cx, cy := float64(b.x0+b.x1)/2, float64(b.y0+b.y1)/2
	rx, ry := float64(b.x1-b.x0)/2, float64(b.y1-b.y0)/2

	steps := int(math.Ceil(2 * math.Pi * math.Max(rx, ry) / 2))
	if steps < 32 {
		steps = 32
	}
	dir := 1.0
	if reverse {
		dir = -1
	}
	z.MoveTo(float32(cx+rx), float32(cy))
	for i := 1; i < steps; i++ {
		angle := dir * 2 * math.Pi * float64(i) / float64(steps)
		z.LineTo(float32(cx+math.Cos(angle)*rx), float32(cy+math.Sin(angle)*ry))
	}
	z.ClosePath()
}

// segmentPath adds a stroke of width w from a to b with square caps. A zero
// length segment becomes a w-by-w square.
func segmentPath(z *vector.Rasterizer, a, b fpoint, w float32) {
	dx, dy := float64(b.x-a.x), float64(b.y-a.y)
	length := math.Hypot(dx, dy)
	ux, uy := 1.0, 0.0
	if length > 0 {
		ux, uy = dx/length, dy/length
	}
	half := float64(w) / 2
	ex, ey := float32(ux*half), float32(uy*half)
	nx, ny := float32(-uy*half), float32(ux*half)

	z.MoveTo(a.x-ex+nx, a.y-ey+ny)
	z.LineTo(b.x+ex+nx, b.y+ey+ny)
	z.LineTo(b.x+ex-nx, b.y+ey-ny)
	z.LineTo(a.x-ex-nx, a.y-ey-ny)
	z.ClosePath()
}
