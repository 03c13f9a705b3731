package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // Register BMP format decoder
)

// DefaultMaxPixels caps width*height of images Decode accepts.
const DefaultMaxPixels int64 = 100_000_000

// ErrImageTooLarge reports an image whose declared canvas exceeds the pixel cap.
var ErrImageTooLarge = errors.New("image too large")

// Format identifies a supported image encoding.
type Format string

// Supported formats. Input and output use the same family.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
)

// ParseFormat normalizes a format name or file extension ("jpg", ".PNG") to a
// supported Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("unsupported image format: %q", name)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("no file extension in %q", path)
	}
	return ParseFormat(ext)
}

// MimeType returns the MIME type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	}
	return "image/png"
}

func (f Format) imagingFormat() imaging.Format {
	switch f {
	case FormatJPEG:
		return imaging.JPEG
	case FormatGIF:
		return imaging.GIF
	case FormatBMP:
		return imaging.BMP
	}
	return imaging.PNG
}

// ImageInfo contains metadata about decoded image data.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected encoding, based on file contents.
	Format Format `json:"format"`

	// ColorDepth indicates the source bit depth per channel: "8-bit" or "16-bit".
	// Decoded pixels are always stored at 8 bits.
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the source color model carries alpha.
	HasAlpha bool `json:"has_alpha"`
}

// Decode reads a complete PNG, JPEG, GIF or BMP stream into a Raster,
// rejecting canvases larger than DefaultMaxPixels.
//
// JPEG EXIF orientation is applied. GIF animations yield their first frame.
// Other formats registered with the image package (TIFF, for instance) are
// rejected.
//
// # Errors
//
//   - Returns error if the stream cannot be read
//   - Returns error if the data is not a supported image or is corrupt
//   - Returns ErrImageTooLarge if the header declares too many pixels
func Decode(r io.Reader) (*Raster, *ImageInfo, error) {
	return DecodeLimit(r, DefaultMaxPixels)
}

// DecodeLimit is Decode with a cap of maxPixels on width*height, checked
// against the header before any pixel data is decoded. maxPixels <= 0 means
// DefaultMaxPixels.
func DecodeLimit(r io.Reader, maxPixels int64) (*Raster, *ImageInfo, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return nil, nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	format, err := ParseFormat(name)
	if err != nil {
		return nil, nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	info := &ImageInfo{
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		Format:     format,
		ColorDepth: "8-bit",
	}
	switch cfg.ColorModel {
	case color.RGBA64Model, color.NRGBA64Model:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	case color.Gray16Model:
		info.ColorDepth = "16-bit"
	case color.RGBAModel, color.NRGBAModel, color.AlphaModel:
		info.HasAlpha = true
	}
	if palette, ok := cfg.ColorModel.(color.Palette); ok {
		for _, c := range palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				info.HasAlpha = true
				break
			}
		}
	}

	return NewRaster(img), info, nil
}

// EncodeOptions carries format-specific encoder settings.
type EncodeOptions struct {
	// JPEGQuality ranges 1-100; 0 uses the encoder default.
	JPEGQuality int

	// PNGCompression selects the zlib level.
	PNGCompression png.CompressionLevel

	// GIFColors is the palette size, 1-256; 0 uses 256.
	GIFColors int
}

// ParsePNGCompression maps a config name to a compression level.
func ParsePNGCompression(name string) (png.CompressionLevel, error) {
	switch name {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "best-speed":
		return png.BestSpeed, nil
	case "best-compression":
		return png.BestCompression, nil
	}
	return png.DefaultCompression, fmt.Errorf("unknown png compression: %q", name)
}

// Encode writes r to w in the given format.
func Encode(w io.Writer, r *Raster, format Format, opts EncodeOptions) error {
	var encodeOpts []imaging.EncodeOption
	switch format {
	case FormatJPEG:
		if opts.JPEGQuality > 0 {
			encodeOpts = append(encodeOpts, imaging.JPEGQuality(opts.JPEGQuality))
		}
	case FormatPNG:
		encodeOpts = append(encodeOpts, imaging.PNGCompressionLevel(opts.PNGCompression))
	case FormatGIF:
		if opts.GIFColors > 0 {
			encodeOpts = append(encodeOpts, imaging.GIFNumColors(opts.GIFColors))
		}
	case FormatBMP:
	default:
		return fmt.Errorf("unsupported image format: %q", format)
	}

	if err := imaging.Encode(w, r.pix, format.imagingFormat(), encodeOpts...); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}
