package raster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDimensionMismatch is returned when a resampled grid cannot be cropped
// back to its reference dimensions because it came out too small.
var ErrDimensionMismatch = errors.New("resampled grid smaller than reference dimensions")

// DefaultNoData is the nodata marker used when a grid file does not
// declare one, following the ESRI ASCII grid convention.
const DefaultNoData = -9999

// Grid is a georeferenced raster: header metadata plus a Rows x Cols float
// matrix. Undefined cells hold NaN.
type Grid struct {
	Rows      int
	Cols      int
	CellSize  float64
	XLLCorner float64
	YLLCorner float64
	NoData    float64
	Data      *mat.Dense
}

// New allocates a Grid of the given dimensions with every cell NaN and the
// default nodata marker.
func New(rows, cols int, cellSize, xll, yll float64) Grid {
	data := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data.Set(i, j, math.NaN())
		}
	}
	return Grid{
		Rows:      rows,
		Cols:      cols,
		CellSize:  cellSize,
		XLLCorner: xll,
		YLLCorner: yll,
		NoData:    DefaultNoData,
		Data:      data,
	}
}

// Validate checks the Grid invariant that the data matrix dimensions match
// the header.
func (g Grid) Validate() error {
	if g.Data == nil {
		return fmt.Errorf("grid %dx%d has no data matrix", g.Rows, g.Cols)
	}
	r, c := g.Data.Dims()
	if r != g.Rows || c != g.Cols {
		return fmt.Errorf("grid header says %dx%d but data is %dx%d", g.Rows, g.Cols, r, c)
	}
	return nil
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := g
	out.Data = mat.DenseCopyOf(g.Data)
	return out
}

// WithData returns a copy of the grid header wrapped around a new data
// matrix. The matrix must match the header dimensions.
func (g Grid) WithData(data *mat.Dense) (Grid, error) {
	out := g
	out.Data = data
	if err := out.Validate(); err != nil {
		return Grid{}, err
	}
	return out, nil
}

// Binarize thresholds a grid into a {0,1} mask, keeping the header.
//
// With cutoff > 0, cells at or above the cutoff become 1 and cells below
// become 0 (a canopy-height cutoff). With cutoff <= 0 the input is treated
// as already binary: anything greater than zero becomes 1. NaN cells stay
// NaN either way.
func Binarize(g Grid, cutoff float64) Grid {
	out := g.Clone()
	out.Data.Apply(func(_, _ int, v float64) float64 {
		if math.IsNaN(v) {
			return v
		}
		if cutoff > 0 {
			if v >= cutoff {
				return 1
			}
			return 0
		}
		if v > 0 {
			return 1
		}
		return 0
	}, out.Data)
	return out
}

// Crop returns the top-left rows x cols block of the grid. The requested
// block must fit inside the grid.
func Crop(g Grid, rows, cols int) (Grid, error) {
	if rows > g.Rows || cols > g.Cols {
		return Grid{}, fmt.Errorf("%w: need %dx%d, have %dx%d",
			ErrDimensionMismatch, rows, cols, g.Rows, g.Cols)
	}
	data := mat.NewDense(rows, cols, nil)
	data.Copy(g.Data.Slice(0, rows, 0, cols))
	out := g
	out.Rows, out.Cols = rows, cols
	out.Data = data
	return out, nil
}
