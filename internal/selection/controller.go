// Package selection turns pointer drags on the displayed image into crop
// operations.
package selection

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/image-edit-mcp/internal/edit"
	"github.com/ironsheep/image-edit-mcp/internal/logger"
)

// ErrNotSelecting reports a pointer event that arrived without an active drag.
var ErrNotSelecting = errors.New("no selection in progress")

// ErrViewportChanged reports a drag released after the displayed image or its
// zoom changed under it. The drag is discarded.
var ErrViewportChanged = errors.New("image changed during selection")

// Viewport describes where and how large the image is shown.
type Viewport struct {
	// Zoom is the display scale.
	Zoom float64

	// Size is the displayed frame at zoom 1.0.
	Size image.Point

	// Offset is the display position of the image's top-left corner.
	Offset image.Point

	// Generation identifies the displayed checkpoint. It changes whenever a
	// different checkpoint becomes current, even one of the same size.
	Generation uint64
}

// ToImage maps a display position to image coordinates: the offset and zoom
// are removed, the result rounded to the nearest pixel edge and clamped to the
// frame.
func (v Viewport) ToImage(p image.Point) image.Point {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	d := p.Sub(v.Offset)
	return image.Pt(
		clamp(int(math.Round(float64(d.X)/zoom)), 0, v.Size.X),
		clamp(int(math.Round(float64(d.Y)/zoom)), 0, v.Size.Y),
	)
}

// Rect maps two display corners to a normalized image rectangle.
func (v Viewport) Rect(a, b image.Point) image.Rectangle {
	return image.Rectangle{Min: v.ToImage(a), Max: v.ToImage(b)}.Canon()
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Target is the document a controller crops.
type Target interface {
	// Viewport reports the current display geometry.
	Viewport() (Viewport, error)

	// SetSelection publishes the preview rectangle; empty clears it.
	SetSelection(r image.Rectangle)

	// Apply commits an operation.
	Apply(op edit.Operation) error
}

// State is the controller's mode.
type State int

const (
	Idle State = iota
	Selecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Controller is the crop-selection state machine. Every method returns
// immediately; the drag is driven entirely by the pointer events it is fed.
type Controller struct {
	target   Target
	state    State
	anchored bool
	anchor   image.Point
	viewport Viewport
}

// New creates an idle controller for target.
func New(target Target) *Controller {
	return &Controller{target: target}
}

// State returns the current mode.
func (c *Controller) State() State { return c.state }

// Anchored reports whether a drag is in progress.
func (c *Controller) Anchored() bool { return c.anchored }

// Start enters a fresh selection, discarding any drag in progress.
func (c *Controller) Start() {
	c.reset()
	c.state = Selecting
	logger.Debugf("Selection: Started")
}

// PointerDown anchors a drag at p, given in display coordinates.
func (c *Controller) PointerDown(p image.Point) error {
	vp, err := c.target.Viewport()
	if err != nil {
		c.reset()
		return err
	}

	c.state = Selecting
	c.anchored = true
	c.anchor = p
	c.viewport = vp
	c.target.SetSelection(image.Rectangle{})
	logger.Debugf("Selection: Anchored at %v (zoom %.3f)", p, vp.Zoom)
	return nil
}

// PointerMove updates the preview to the rectangle between the anchor and p.
// It returns false when no drag is in progress. A drag whose viewport changed
// since PointerDown is abandoned.
func (c *Controller) PointerMove(p image.Point) (image.Rectangle, bool) {
	if c.state != Selecting || !c.anchored {
		return image.Rectangle{}, false
	}
	if err := c.checkViewport(); err != nil {
		logger.Debugf("Selection: Abandoned drag: %v", err)
		c.reset()
		return image.Rectangle{}, false
	}
	r := c.viewport.Rect(c.anchor, p)
	c.target.SetSelection(r)
	return r, true
}

// PointerUp ends the drag at p. A rectangle with zero width or height is
// discarded; anything else is committed as a crop. If the viewport changed
// since PointerDown the drag is discarded with ErrViewportChanged. The
// controller is idle afterwards whatever the outcome.
func (c *Controller) PointerUp(p image.Point) (bool, error) {
	if c.state != Selecting || !c.anchored {
		return false, nil
	}

	err := c.checkViewport()
	r := c.viewport.Rect(c.anchor, p)
	c.reset()
	if err != nil {
		logger.Debugf("Selection: Discarded drag: %v", err)
		return false, err
	}

	if r.Dx() == 0 || r.Dy() == 0 {
		logger.Debugf("Selection: Discarded empty rectangle %v", r)
		return false, nil
	}

	logger.Debugf("Selection: Committing crop %v", r)
	if err := c.target.Apply(edit.Crop{Rect: r}); err != nil {
		return false, err
	}
	return true, nil
}

// checkViewport compares the target's viewport with the one captured at
// PointerDown.
func (c *Controller) checkViewport() error {
	vp, err := c.target.Viewport()
	if err != nil {
		return err
	}
	if vp != c.viewport {
		return ErrViewportChanged
	}
	return nil
}

// Cancel abandons any selection.
func (c *Controller) Cancel() {
	c.reset()
	logger.Debugf("Selection: Cancelled")
}

func (c *Controller) reset() {
	c.state = Idle
	c.anchored = false
	c.anchor = image.Point{}
	c.viewport = Viewport{}
	c.target.SetSelection(image.Rectangle{})
}
