package edit

import (
	"image"

	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// State is one history checkpoint.
//
// The recipe fields describe how to rebuild the checkpoint from the opened
// image; Image is that recipe already rendered at zoom 1.0. States are never
// modified after construction, and Overlays is never shared with a later
// state's slice.
type State struct {
	// Base is the image as opened.
	Base *imaging.Raster

	// Rotation is the committed clockwise quarter-turn count, 0..3.
	Rotation int

	// Crop is the committed crop in base coordinates; empty means none.
	Crop image.Rectangle

	// Adjust is the composition of every committed color adjustment.
	Adjust imaging.Adjustments

	// Overlays are the committed draws in base coordinates, oldest first.
	Overlays []Overlay

	// Image is the materialized result.
	Image *imaging.Raster

	// Op is the operation that produced this state; nil for the opened image.
	Op Operation
}

// Frame returns the frame the state displays.
func (s *State) Frame() Frame {
	return Frame{Base: s.Base.Size(), Rotation: s.Rotation, Crop: s.Crop}
}

// Label names the state for history listings.
func (s *State) Label() string {
	if s.Op == nil {
		return "open"
	}
	return s.Op.Name()
}
