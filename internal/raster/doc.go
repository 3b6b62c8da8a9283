// Package raster provides the pixel grid model used by the map merger, along
// with the collaborators that move rasters to and from disk.
//
// A Raster is a fixed-size grid of RGB triples. The base map and every variant
// map are loaded into Rasters; the merged map and the diagnostic map are
// rendered into Rasters and then handed to a sink.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - A Point is valid when 0 <= X < Width and 0 <= Y < Height
//
// Points are comparable and are used directly as map keys throughout the
// merger.
//
// # Color Representation
//
// Colors are 8-bit RGB triples. Alpha is dropped on load and every raster is
// written fully opaque. Two colors are equal only when all three channels are
// equal.
//
// # Files
//
// Loading goes through disintegration/imaging, which recognizes PNG, JPEG,
// GIF, TIFF and BMP. Saving goes through bild's imgio package and picks the
// encoder from the destination file extension (.bmp, .png, .jpg, .jpeg).
//
// Variant discovery takes an explicit directory. Nothing in this package
// changes the process working directory.
//
// # Thread Safety
//
// The Cache type is safe for concurrent use. A Raster is not synchronized;
// concurrent readers are fine, but writers must be serialized by the caller.
package raster
