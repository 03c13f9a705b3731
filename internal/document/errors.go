package document

import "errors"

// Errors reported by Document. Each is wrapped around the underlying cause,
// so both can be matched with errors.Is.
var (
	// ErrOpenFailed covers bad paths, unsupported formats and corrupt data.
	ErrOpenFailed = errors.New("open failed")

	// ErrSaveFailed covers encoding and file system failures on save or export.
	ErrSaveFailed = errors.New("save failed")

	// ErrInvalidOperation is returned for an operation whose parameters are
	// out of range or do not fit the current image.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNoActiveDocument is returned by every edit, query and save before a
	// successful open.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrDocumentBusy is returned by edits while an open, save or export is
	// still running.
	ErrDocumentBusy = errors.New("document busy")
)
