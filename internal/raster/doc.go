// Package raster provides the in-memory grid model and grid I/O for the
// canopy distance tools.
//
// A Grid couples an ESRI-style header (dimensions, cell size, lower-left
// corner, nodata marker) with a dense float matrix. Inside the pipeline a
// missing value is always NaN; the header's NoData marker only exists at
// the file boundary, where ReadASC maps it to NaN on the way in and
// WriteASC maps NaN back on the way out.
//
// # Orientation
//
// Matrices are image-oriented: row 0 is the northernmost row and row
// indices increase southward. ESRI ASCII grid files list rows north to
// south, so the reader and writer store rows in file order; the lower-left
// corner in the header still refers to the geographic south-west cell.
//
// # Value semantics
//
// Grids are treated as immutable value objects. Every transformation
// (binarization, resampling, cropping) allocates and returns a new Grid;
// nothing in this package mutates a Grid it was handed.
package raster
