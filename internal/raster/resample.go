package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// ToUnitCell resamples a binary mask grid to a cell size of 1 distance
// unit, so that one edge-propagation step corresponds to one unit of
// physical distance regardless of the input's native resolution.
//
// The mask is rendered to 8-bit grayscale, resized with bilinear
// interpolation, and rebinarized at 0.5. A parallel validity channel is
// resampled the same way so nodata regions survive the round trip. Grids
// already at unit cell size are returned as a clone.
func ToUnitCell(mask Grid) (Grid, error) {
	if err := mask.Validate(); err != nil {
		return Grid{}, err
	}
	if mask.CellSize == 1 {
		return mask.Clone(), nil
	}
	if mask.CellSize <= 0 {
		return Grid{}, fmt.Errorf("grid has non-positive cell size %g", mask.CellSize)
	}

	unitRows := int(math.Ceil(float64(mask.Rows) * mask.CellSize))
	unitCols := int(math.Ceil(float64(mask.Cols) * mask.CellSize))

	values := image.NewGray(image.Rect(0, 0, mask.Cols, mask.Rows))
	validity := image.NewGray(image.Rect(0, 0, mask.Cols, mask.Rows))
	for i := 0; i < mask.Rows; i++ {
		for j := 0; j < mask.Cols; j++ {
			v := mask.Data.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			validity.Pix[i*validity.Stride+j] = 0xff
			if v >= 0.5 {
				values.Pix[i*values.Stride+j] = 0xff
			}
		}
	}

	resized := imaging.Resize(values, unitCols, unitRows, imaging.Linear)
	resizedValidity := imaging.Resize(validity, unitCols, unitRows, imaging.Linear)

	data := mat.NewDense(unitRows, unitCols, nil)
	for i := 0; i < unitRows; i++ {
		for j := 0; j < unitCols; j++ {
			if resizedValidity.NRGBAAt(j, i).R < 0x80 {
				data.Set(i, j, math.NaN())
				continue
			}
			if resized.NRGBAAt(j, i).R >= 0x80 {
				data.Set(i, j, 1)
			} else {
				data.Set(i, j, 0)
			}
		}
	}

	out := mask
	out.Rows, out.Cols = unitRows, unitCols
	out.CellSize = 1
	out.Data = data
	return out, nil
}

// FromUnitCell resamples a unit-resolution result grid back to the
// reference grid's native cell size and dimensions.
//
// The unit grid is bilinearly resampled to 1/cellsize scale; rounding in
// the forward pass can leave the result a cell or two larger than the
// reference, in which case the top-left reference-sized block is cropped.
// A result smaller than the reference is ErrDimensionMismatch — the output
// is never padded.
func FromUnitCell(unit, ref Grid) (Grid, error) {
	if err := unit.Validate(); err != nil {
		return Grid{}, err
	}
	if ref.CellSize <= 0 {
		return Grid{}, fmt.Errorf("reference grid has non-positive cell size %g", ref.CellSize)
	}

	rows := unit.Rows
	cols := unit.Cols
	if ref.CellSize != 1 {
		rows = int(math.Ceil(float64(unit.Rows) / ref.CellSize))
		cols = int(math.Ceil(float64(unit.Cols) / ref.CellSize))
	}

	data := resampleBilinear(unit.Data, rows, cols)
	out := ref
	out.Rows, out.Cols = rows, cols
	out.Data = data

	if rows == ref.Rows && cols == ref.Cols {
		return out, nil
	}
	cropped, err := Crop(out, ref.Rows, ref.Cols)
	if err != nil {
		return Grid{}, err
	}
	return cropped, nil
}

// resampleBilinear resamples a float matrix to the target dimensions with
// NaN-aware bilinear interpolation. NaN neighbors are dropped from the
// weighted average and the remaining weights renormalized; a cell whose
// four source neighbors are all NaN stays NaN.
//
// Distance values and NaN regions cannot survive an 8-bit image round
// trip, so the inverse pass interpolates the floats directly instead of
// going through an image library.
func resampleBilinear(src *mat.Dense, dstRows, dstCols int) *mat.Dense {
	srcRows, srcCols := src.Dims()
	dst := mat.NewDense(dstRows, dstCols, nil)

	scaleY := float64(srcRows) / float64(dstRows)
	scaleX := float64(srcCols) / float64(dstCols)

	for i := 0; i < dstRows; i++ {
		sy := (float64(i)+0.5)*scaleY - 0.5
		y0 := int(math.Floor(sy))
		fy := sy - float64(y0)
		y1 := y0 + 1
		y0 = clampIndex(y0, srcRows)
		y1 = clampIndex(y1, srcRows)

		for j := 0; j < dstCols; j++ {
			sx := (float64(j)+0.5)*scaleX - 0.5
			x0 := int(math.Floor(sx))
			fx := sx - float64(x0)
			x1 := x0 + 1
			x0 = clampIndex(x0, srcCols)
			x1 = clampIndex(x1, srcCols)

			var sum, weight float64
			accumulate := func(v, w float64) {
				if w == 0 || math.IsNaN(v) {
					return
				}
				sum += v * w
				weight += w
			}
			accumulate(src.At(y0, x0), (1-fy)*(1-fx))
			accumulate(src.At(y0, x1), (1-fy)*fx)
			accumulate(src.At(y1, x0), fy*(1-fx))
			accumulate(src.At(y1, x1), fy*fx)

			if weight == 0 {
				dst.Set(i, j, math.NaN())
			} else {
				dst.Set(i, j, sum/weight)
			}
		}
	}
	return dst
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
