package dce

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ComposeSimple merges the two label maps of a non-directional run into a
// single signed distance field.
//
// Negative seed markers are cleared to 0 in both maps, the maps are merged
// as canopyLabels - openLabels, cells where the merge is exactly 0 (no
// frontier reached them within the step budget) become NaN, and the result
// is negated. With the seeding in DetectEdges this leaves open-side cells
// positive and canopy-side cells negative; the sign relationship is kept
// exactly as computed rather than normalized to a nicer convention.
func ComposeSimple(openLabels, canopyLabels *mat.Dense) *mat.Dense {
	rows, cols := openLabels.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			o := clampNegative(openLabels.At(i, j))
			c := clampNegative(canopyLabels.At(i, j))
			merged := c - o
			if merged == 0 {
				out.Set(i, j, math.NaN())
				continue
			}
			out.Set(i, j, -merged)
		}
	}
	return out
}

// ComposeDirectional merges the label maps of a directional run.
//
// Starting from an all-undefined canvas, open-side step indices are written
// negated, canopy-side step indices as-is, any cell where either label map
// is still exactly 0 is forced undefined, and the canvas is negated. The
// seeds keep the two positive regions disjoint, so the overwrites never
// collide.
func ComposeDirectional(openLabels, canopyLabels *mat.Dense) *mat.Dense {
	rows, cols := openLabels.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			o := openLabels.At(i, j)
			c := canopyLabels.At(i, j)

			v := math.NaN()
			if o > 0 {
				v = -o
			}
			if c > 0 {
				v = c
			}
			if o == 0 || c == 0 {
				v = math.NaN()
			}
			out.Set(i, j, -v)
		}
	}
	return out
}

// clampNegative zeroes the -1 seed markers; NaN passes through.
func clampNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
