// Package document ties the edit history, the render pipeline and file I/O
// together into the object a UI or command dispatcher drives.
package document

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ironsheep/image-edit-mcp/internal/edit"
	"github.com/ironsheep/image-edit-mcp/internal/history"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/logger"
	"github.com/ironsheep/image-edit-mcp/internal/pipeline"
	"github.com/ironsheep/image-edit-mcp/internal/selection"
)

// Zoom limits and defaults.
const (
	MinZoom           = 0.1
	MaxZoom           = 2.0
	DefaultZoomStep   = 1.25
	DefaultMaxHistory = 50
)

// ViewState is display state that never enters history.
type ViewState struct {
	// Zoom is the display scale, within [MinZoom, MaxZoom].
	Zoom float64

	// Selection is the crop preview in image coordinates; empty when none.
	Selection image.Rectangle
}

func defaultView() ViewState {
	return ViewState{Zoom: 1}
}

// Renderer draws a bitmap on a display surface.
type Renderer interface {
	Draw(bitmap image.Image, width, height int) error
}

// Option configures a Document.
type Option func(*Document)

// WithMaxHistory caps the number of retained checkpoints.
func WithMaxHistory(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxHistory = n
		}
	}
}

// WithMaxPixels caps width*height of opened images. Values of 0 or less keep
// imaging.DefaultMaxPixels.
func WithMaxPixels(n int64) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxPixels = n
		}
	}
}

// WithEncodeOptions sets the encoder settings used by Save, Export and
// Encode.
func WithEncodeOptions(opts imaging.EncodeOptions) Option {
	return func(d *Document) {
		d.encode = opts
	}
}

// WithZoomStep sets the factor ZoomIn and ZoomOut multiply by. Values of 1 or
// less are ignored.
func WithZoomStep(step float64) Option {
	return func(d *Document) {
		if step > 1 && !math.IsInf(step, 0) {
			d.zoomStep = step
		}
	}
}

// Document is one opened image with its edit history and view state.
//
// Edits run synchronously on the caller's goroutine. Open, Save, Export and
// Encode hold the I/O guard for as long as their work runs; edits attempted
// meanwhile fail with ErrDocumentBusy instead of waiting.
type Document struct {
	mu      sync.Mutex
	io      *semaphore.Weighted
	history *history.Stack[*edit.State]
	view    ViewState
	path    string
	info    *imaging.ImageInfo
	saved   *edit.State // checkpoint last opened or saved
	gen     uint64      // bumped whenever a different checkpoint becomes current

	maxHistory int
	maxPixels  int64
	encode     imaging.EncodeOptions
	zoomStep   float64
}

// New creates a document with nothing open.
func New(opts ...Option) *Document {
	d := &Document{
		io:         semaphore.NewWeighted(1),
		view:       defaultView(),
		maxHistory: DefaultMaxHistory,
		maxPixels:  imaging.DefaultMaxPixels,
		zoomStep:   DefaultZoomStep,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.history = history.NewStack[*edit.State](d.maxHistory)
	return d
}

// runIO runs work under the I/O guard. On cancellation it returns at once and
// abandons the work; the guard stays held until the work actually finishes.
func (d *Document) runIO(ctx context.Context, work func() error) error {
	if err := d.io.Acquire(ctx, 1); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		defer d.io.Release(1)
		done <- work()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Busy reports whether I/O is outstanding.
func (d *Document) Busy() bool {
	if !d.io.TryAcquire(1) {
		return true
	}
	d.io.Release(1)
	return false
}

// beginEdit checks that a document is open and claims the I/O guard for the
// duration of an edit. The caller must hold d.mu and call the returned
// release function.
func (d *Document) beginEdit() (*edit.State, func(), error) {
	cur, ok := d.history.Current()
	if !ok {
		return nil, nil, ErrNoActiveDocument
	}
	if !d.io.TryAcquire(1) {
		return nil, nil, ErrDocumentBusy
	}
	return cur, func() { d.io.Release(1) }, nil
}

// current returns the current checkpoint. The caller must hold d.mu.
func (d *Document) current() (*edit.State, error) {
	cur, ok := d.history.Current()
	if !ok {
		return nil, ErrNoActiveDocument
	}
	return cur, nil
}

// Open decodes an image from r and makes it the document, replacing any
// previous image, history and view state. On failure the previous document
// is left as it was.
func (d *Document) Open(ctx context.Context, r io.Reader) error {
	return d.open(ctx, "", func() (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	})
}

// OpenFile opens the image stored at path.
func (d *Document) OpenFile(ctx context.Context, path string) error {
	return d.open(ctx, path, func() (io.ReadCloser, error) {
		return os.Open(path)
	})
}

func (d *Document) open(ctx context.Context, path string, source func() (io.ReadCloser, error)) error {
	var (
		img  *imaging.Raster
		info *imaging.ImageInfo
	)
	err := d.runIO(ctx, func() error {
		rc, err := source()
		if err != nil {
			return err
		}
		defer rc.Close()

		img, info, err = imaging.DecodeLimit(rc, d.maxPixels)
		return err
	})
	if err != nil {
		logger.Warnf("Document: Open %q failed: %v", path, err)
		return fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	initial := pipeline.Initial(img)
	d.history.Reset(initial)
	d.gen++
	d.view = defaultView()
	d.path = path
	d.info = info
	d.saved = initial

	logger.Infof("Document: Opened %dx%d %s image %q", info.Width, info.Height, info.Format, path)
	return nil
}

// Apply commits op. Zoom operations only change the view; every other
// operation is validated, folded onto the current checkpoint and pushed,
// discarding the redo branch. A failed operation leaves the document
// unchanged.
func (d *Document) Apply(op edit.Operation) error {
	if z, ok := op.(edit.Zoom); ok {
		_, err := d.zoom(z)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cur, release, err := d.beginEdit()
	if err != nil {
		return err
	}
	defer release()

	if op == nil {
		return fmt.Errorf("%w: no operation", ErrInvalidOperation)
	}
	next, err := pipeline.Fold(cur, op)
	if err != nil {
		logger.Debugf("Document: Rejected %s: %v", op.Name(), err)
		return fmt.Errorf("%w: %s: %w", ErrInvalidOperation, op.Name(), err)
	}

	d.history.Push(next)
	d.gen++
	d.view.Selection = image.Rectangle{}
	logger.Debugf("Document: Applied %s, now %dx%d", op.Name(), next.Image.Width(), next.Image.Height())
	return nil
}

// Undo steps back one checkpoint. It returns false, without error, at the
// oldest checkpoint.
func (d *Document) Undo() (bool, error) {
	return d.step((*history.Stack[*edit.State]).Undo)
}

// Redo steps forward one checkpoint. It returns false, without error, when
// there is nothing to redo.
func (d *Document) Redo() (bool, error) {
	return d.step((*history.Stack[*edit.State]).Redo)
}

func (d *Document) step(move func(*history.Stack[*edit.State]) (*edit.State, bool)) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, release, err := d.beginEdit()
	if err != nil {
		return false, err
	}
	defer release()

	_, moved := move(d.history)
	if moved {
		d.gen++
		d.view.Selection = image.Rectangle{}
	}
	return moved, nil
}

// ZoomIn multiplies the zoom by the zoom step and returns the new factor.
func (d *Document) ZoomIn() (float64, error) {
	return d.zoom(edit.Zoom{Factor: d.zoomStep, Mode: edit.ZoomBy})
}

// ZoomOut divides the zoom by the zoom step and returns the new factor.
func (d *Document) ZoomOut() (float64, error) {
	return d.zoom(edit.Zoom{Factor: 1 / d.zoomStep, Mode: edit.ZoomBy})
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (d *Document) SetZoom(factor float64) (float64, error) {
	return d.zoom(edit.Zoom{Factor: factor, Mode: edit.ZoomSet})
}

func (d *Document) zoom(z edit.Zoom) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.current(); err != nil {
		return 0, err
	}
	if err := z.Validate(); err != nil {
		return d.view.Zoom, fmt.Errorf("%w: zoom: %w", ErrInvalidOperation, err)
	}

	factor := z.Factor
	if z.Mode == edit.ZoomBy {
		factor *= d.view.Zoom
	}
	d.view.Zoom = clampZoom(factor)
	logger.Debugf("Document: Zoom %.3f", d.view.Zoom)
	return d.view.Zoom, nil
}

func clampZoom(f float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, f))
}

// Current returns the current checkpoint.
func (d *Document) Current() (*edit.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current()
}

// View returns a copy of the view state.
func (d *Document) View() ViewState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Modified reports whether the current checkpoint differs from the one last
// opened or saved.
func (d *Document) Modified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.history.Current()
	return ok && cur != d.saved
}

// Display renders the current checkpoint at the current zoom.
func (d *Document) Display() (*imaging.Raster, error) {
	d.mu.Lock()
	cur, err := d.current()
	zoom := d.view.Zoom
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return pipeline.View(cur, zoom)
}

// Present hands the display bitmap to r.
func (d *Document) Present(r Renderer) error {
	img, err := d.Display()
	if err != nil {
		return err
	}
	return r.Draw(img, img.Width(), img.Height())
}

// SampleColor reads the color of the current image at (x, y), in image
// coordinates at zoom 1.0.
func (d *Document) SampleColor(x, y int) (*imaging.ColorResult, error) {
	cur, err := d.Current()
	if err != nil {
		return nil, err
	}
	c, err := imaging.SampleColor(cur.Image, x, y)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	return c, nil
}

// Viewport implements selection.Target. The image is shown at the origin.
func (d *Document) Viewport() (selection.Viewport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, err := d.current()
	if err != nil {
		return selection.Viewport{}, err
	}
	return selection.Viewport{Zoom: d.view.Zoom, Size: cur.Image.Size(), Generation: d.gen}, nil
}

// SetSelection implements selection.Target.
func (d *Document) SetSelection(r image.Rectangle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view.Selection = r.Canon()
}
