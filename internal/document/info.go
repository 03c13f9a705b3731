package document

import (
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

// Info summarizes the open document.
type Info struct {
	Path   string         `json:"path,omitempty"`
	Format imaging.Format `json:"format"`

	// Width and Height are the current image size at zoom 1.0.
	Width  int `json:"width"`
	Height int `json:"height"`

	// BaseWidth and BaseHeight are the size as opened.
	BaseWidth  int `json:"base_width"`
	BaseHeight int `json:"base_height"`

	ColorDepth string `json:"color_depth"`
	HasAlpha   bool   `json:"has_alpha"`

	// Rotation is the committed clockwise quarter-turn count.
	Rotation int `json:"rotation"`

	// Crop is [x1, y1, x2, y2] in base coordinates when a crop is committed.
	Crop []int `json:"crop,omitempty"`

	Adjustments imaging.Adjustments `json:"adjustments"`
	Overlays    int                 `json:"overlays"`

	Zoom          float64 `json:"zoom"`
	DisplayWidth  int     `json:"display_width"`
	DisplayHeight int     `json:"display_height"`

	// Selection is the crop preview as [x1, y1, x2, y2], if any.
	Selection []int `json:"selection,omitempty"`

	HistoryLength int  `json:"history_length"`
	HistoryCursor int  `json:"history_cursor"`
	CanUndo       bool `json:"can_undo"`
	CanRedo       bool `json:"can_redo"`
	Modified      bool `json:"modified"`
}

// Info describes the open document.
func (d *Document) Info() (*Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, err := d.current()
	if err != nil {
		return nil, err
	}

	dw, dh := imaging.ScaledSize(cur.Image.Size(), d.view.Zoom)
	info := &Info{
		Path:          d.path,
		Format:        d.info.Format,
		Width:         cur.Image.Width(),
		Height:        cur.Image.Height(),
		BaseWidth:     cur.Base.Width(),
		BaseHeight:    cur.Base.Height(),
		ColorDepth:    d.info.ColorDepth,
		HasAlpha:      d.info.HasAlpha,
		Rotation:      cur.Rotation,
		Adjustments:   cur.Adjust,
		Overlays:      len(cur.Overlays),
		Zoom:          d.view.Zoom,
		DisplayWidth:  dw,
		DisplayHeight: dh,
		HistoryLength: d.history.Len(),
		HistoryCursor: d.history.Cursor(),
		CanUndo:       d.history.CanUndo(),
		CanRedo:       d.history.CanRedo(),
		Modified:      cur != d.saved,
	}
	if !cur.Crop.Empty() {
		info.Crop = []int{cur.Crop.Min.X, cur.Crop.Min.Y, cur.Crop.Max.X, cur.Crop.Max.Y}
	}
	if sel := d.view.Selection; !sel.Empty() {
		info.Selection = []int{sel.Min.X, sel.Min.Y, sel.Max.X, sel.Max.Y}
	}
	return info, nil
}

// HistoryEntry describes one checkpoint.
type HistoryEntry struct {
	Index     int    `json:"index"`
	Operation string `json:"operation"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Current   bool   `json:"current,omitempty"`
}

// History lists every retained checkpoint, oldest first.
func (d *Document) History() ([]HistoryEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.current(); err != nil {
		return nil, err
	}

	cursor := d.history.Cursor()
	states := d.history.Entries()
	entries := make([]HistoryEntry, len(states))
	for i, s := range states {
		entries[i] = HistoryEntry{
			Index:     i,
			Operation: s.Label(),
			Width:     s.Image.Width(),
			Height:    s.Image.Height(),
			Current:   i == cursor,
		}
	}
	return entries, nil
}
