// Package edit defines the operations a document accepts, the snapshot type
// kept in history, and the coordinate mapping between the opened image and
// the rotated, cropped frame the user sees.
//
// Geometry committed to a State (crop rectangles and overlay anchors) is
// stored in base coordinates so that an old checkpoint renders the same way
// whatever rotation is applied later.
package edit
