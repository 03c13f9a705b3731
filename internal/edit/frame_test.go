package edit

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotateSize(t *testing.T) {
	size := image.Pt(40, 20)

	assert.Equal(t, size, RotateSize(size, 0))
	assert.Equal(t, image.Pt(20, 40), RotateSize(size, 1))
	assert.Equal(t, size, RotateSize(size, 2))
	assert.Equal(t, image.Pt(20, 40), RotateSize(size, -1))
	assert.Equal(t, image.Pt(20, 40), RotateSize(size, 5))
}

func TestRotatePoint_Clockwise(t *testing.T) {
	size := image.Pt(4, 2)

	// top-left goes to top-right, bottom-left to top-left
	assert.Equal(t, image.Pt(1, 0), RotatePoint(image.Pt(0, 0), size, 1))
	assert.Equal(t, image.Pt(0, 0), RotatePoint(image.Pt(0, 1), size, 1))
	assert.Equal(t, image.Pt(1, 3), RotatePoint(image.Pt(3, 0), size, 1))
	assert.Equal(t, image.Pt(3, 1), RotatePoint(image.Pt(0, 0), size, 2))
	assert.Equal(t, image.Pt(0, 3), RotatePoint(image.Pt(0, 0), size, 3))
}

func TestRotatePoint_RoundTrip(t *testing.T) {
	size := image.Pt(7, 3)
	points := []image.Point{{0, 0}, {6, 0}, {0, 2}, {6, 2}, {3, 1}}

	for turns := -3; turns <= 5; turns++ {
		rotated := RotateSize(size, turns)
		for _, p := range points {
			q := RotatePoint(p, size, turns)
			assert.True(t, q.In(image.Rectangle{Max: rotated}), "turns=%d p=%v q=%v", turns, p, q)
			assert.Equal(t, p, RotatePoint(q, rotated, -turns), "turns=%d", turns)
		}
	}
}

func TestRotateRect(t *testing.T) {
	size := image.Pt(4, 2)

	assert.Equal(t, image.Rect(1, 0, 2, 2), RotateRect(image.Rect(0, 0, 2, 1), size, 1))
	assert.Equal(t, image.Rect(2, 1, 4, 2), RotateRect(image.Rect(0, 0, 2, 1), size, 2))
	// corners given in any order are normalized first
	assert.Equal(t, image.Rect(1, 0, 2, 2), RotateRect(image.Rect(2, 1, 0, 0), size, 1))
}

func TestRotateRect_MatchesPoints(t *testing.T) {
	size := image.Pt(9, 5)
	r := image.Rect(2, 1, 6, 4)

	for turns := 0; turns < 4; turns++ {
		got := RotateRect(r, size, turns)
		a := RotatePoint(r.Min, size, turns)
		b := RotatePoint(r.Max.Sub(image.Pt(1, 1)), size, turns)
		want := image.Rectangle{Min: a, Max: b}.Canon()
		want.Max = want.Max.Add(image.Pt(1, 1))
		assert.Equal(t, want, got, "turns=%d", turns)
	}
}

func TestFrame_NoCrop(t *testing.T) {
	f := Frame{Base: image.Pt(40, 20), Rotation: 1}

	assert.Equal(t, image.Pt(20, 40), f.Rotated())
	assert.Equal(t, image.Rect(0, 0, 20, 40), f.CropRect())
	assert.Equal(t, image.Pt(20, 40), f.Size())
	assert.Equal(t, image.Rect(0, 0, 20, 40), f.Bounds())
}

func TestFrame_RectToBase(t *testing.T) {
	square := Frame{Base: image.Pt(100, 100), Rotation: 1}
	assert.Equal(t, image.Rect(10, 50, 50, 90), square.RectToBase(image.Rect(10, 10, 50, 50)))

	// the left half of a rotated landscape image is the bottom half of the base
	wide := Frame{Base: image.Pt(40, 20), Rotation: 1}
	assert.Equal(t, image.Rect(0, 10, 40, 20), wide.RectToBase(image.Rect(0, 0, 10, 40)))
}

func TestFrame_WithCrop(t *testing.T) {
	f := Frame{Base: image.Pt(100, 100), Rotation: 1, Crop: image.Rect(10, 50, 50, 90)}

	assert.Equal(t, image.Rect(10, 10, 50, 50), f.CropRect())
	assert.Equal(t, image.Pt(40, 40), f.Size())

	// the displayed origin is the crop's top-left in the rotated frame
	assert.Equal(t, image.Pt(10, 89), f.PointToBase(image.Pt(0, 0)))
	assert.Equal(t, image.Pt(0, 0), f.PointFromBase(image.Pt(10, 89)))

	// a nested crop stays inside the first one
	inner := f.RectToBase(image.Rect(0, 0, 20, 20))
	assert.True(t, inner.In(f.Crop))
}

func TestFrame_PointRoundTrip(t *testing.T) {
	f := Frame{Base: image.Pt(30, 20), Rotation: 3, Crop: image.Rect(5, 2, 25, 18)}
	bounds := f.Bounds()

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 3 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 3 {
			p := image.Pt(x, y)
			base := f.PointToBase(p)
			assert.True(t, base.In(f.Crop), "p=%v base=%v", p, base)
			assert.Equal(t, p, f.PointFromBase(base))
		}
	}
}
