// Package imaging provides the pixel-level building blocks of the editor.
//
// The central type is Raster, an immutable 8-bit NRGBA image. Decoding, every
// geometric operation (Rotate, Crop, Scale), color correction (Adjust) and
// overlay drawing (Canvas) returns a new Raster and never modifies its input,
// which lets history snapshots share rasters freely.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left) and Max is exclusive (bottom-right)
//
// # Rotation
//
// Rotate turns clockwise in quarter turns. Quarter turns permute pixels
// exactly, so rotating four times reproduces the input bit-for-bit.
//
// # Color Representation
//
// Colors are accepted as hex strings "#RRGGBB" or "#RRGGBBAA" (ParseHexColor)
// and reported in multiple formats by SampleColor:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB / RGBA: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Formats
//
// PNG, JPEG, GIF and BMP are decoded and encoded. Decoded images are always
// stored at 8 bits per channel; ImageInfo reports the source depth.
package imaging
