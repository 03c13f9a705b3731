package server

import (
	"fmt"

	"github.com/ironsheep/image-edit-mcp/internal/command"
	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/document"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/selection"
)

// Session is the editing state one server drives: a single document, the
// selection controller cropping it and the command table building edits.
type Session struct {
	doc       *document.Document
	selection *selection.Controller
	commands  command.Table
	encode    imaging.EncodeOptions
}

// NewSession creates an empty session configured by cfg.
func NewSession(cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	compression, err := imaging.ParsePNGCompression(cfg.Output.PNGCompression)
	if err != nil {
		return nil, fmt.Errorf("invalid output settings: %w", err)
	}
	encode := imaging.EncodeOptions{
		JPEGQuality:    cfg.Output.JPEGQuality,
		PNGCompression: compression,
		GIFColors:      cfg.Output.GIFColors,
	}

	doc := document.New(
		document.WithMaxHistory(cfg.Editor.MaxHistory),
		document.WithZoomStep(cfg.Editor.ZoomStep),
		document.WithMaxPixels(cfg.Editor.MaxPixels),
		document.WithEncodeOptions(encode),
	)
	return &Session{
		doc:       doc,
		selection: selection.New(doc),
		commands:  command.NewTable(cfg.Editor.ZoomStep),
		encode:    encode,
	}, nil
}

// Document returns the session's document.
func (s *Session) Document() *document.Document {
	return s.doc
}
