package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ironsheep/image-edit-mcp/internal/edit"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/logger"
)

// Save writes the current image to path and marks the document unmodified.
//
// An empty path reuses the path the document was opened or last saved with.
// An empty format is derived from the path's extension, falling back to the
// format the image was opened in. The written image is the current checkpoint
// at zoom 1.0; history is not touched.
func (d *Document) Save(ctx context.Context, path string, format imaging.Format) error {
	d.mu.Lock()
	if path == "" {
		path = d.path
	}
	d.mu.Unlock()

	cur, format, err := d.writeFile(ctx, path, format)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.path = path
	d.info.Format = format
	d.saved = cur
	d.mu.Unlock()
	return nil
}

// Export writes the current image to path like Save, without changing the
// document's path or modified state.
func (d *Document) Export(ctx context.Context, path string, format imaging.Format) error {
	_, _, err := d.writeFile(ctx, path, format)
	return err
}

// Encode writes the current image to w in format, producing the same bytes
// Export would.
func (d *Document) Encode(ctx context.Context, w io.Writer, format imaging.Format) error {
	d.mu.Lock()
	cur, err := d.current()
	d.mu.Unlock()
	if err != nil {
		return err
	}

	err = d.runIO(ctx, func() error {
		return imaging.Encode(w, cur.Image, format, d.encode)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

func (d *Document) writeFile(ctx context.Context, path string, format imaging.Format) (*edit.State, imaging.Format, error) {
	d.mu.Lock()
	cur, err := d.current()
	var source imaging.Format
	if d.info != nil {
		source = d.info.Format
	}
	d.mu.Unlock()
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return nil, "", fmt.Errorf("%w: no output path", ErrSaveFailed)
	}
	if format == "" {
		format, err = imaging.FormatFromPath(path)
		if err != nil && source != "" {
			format, err = source, nil
		}
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
	}
	if format, err = imaging.ParseFormat(string(format)); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	err = d.runIO(ctx, func() error {
		return writeAtomic(ctx, path, func(w io.Writer) error {
			return imaging.Encode(w, cur.Image, format, d.encode)
		})
	})
	if err != nil {
		logger.Warnf("Document: Writing %q failed: %v", path, err)
		return nil, "", fmt.Errorf("%w: %s: %w", ErrSaveFailed, path, err)
	}

	logger.Infof("Document: Wrote %dx%d %s image to %q", cur.Image.Width(), cur.Image.Height(), format, path)
	return cur, format, nil
}

// writeAtomic writes through a temporary file in the target directory and
// renames it over path, so path never holds a partial image. Nothing is
// renamed once ctx is done.
func writeAtomic(ctx context.Context, path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
