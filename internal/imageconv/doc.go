// Package imageconv converts between raster image formats.
//
// Decoding covers JPEG, PNG, GIF, BMP, TIFF and WEBP; encoding covers every
// format except WEBP. Targets without an alpha channel (JPG/JPEG) are first
// composited onto an opaque white background so transparent regions do not
// turn black.
package imageconv
