// Package filter applies convolution kernels to raster matrices.
//
// The convolution here is the "valid" variant: no padding is invented at
// the matrix edges. Cells whose window would extend past the matrix are
// set to NaN instead, and a NaN anywhere inside a window (under a nonzero
// weight) makes the output cell NaN. Repeated application therefore grows
// the undefined band outward by the kernel radius each pass, which is the
// behavior the edge-propagation loop relies on.
package filter

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Convolve computes the weighted local average of m under kernel k.
//
// This is a true convolution: the kernel is mirrored about its center, so
// an asymmetric half-plane kernel weighted toward the north samples the
// southern neighbors. Symmetric kernels are unaffected.
//
// The output has the same dimensions as m. The interior region, offset by
// the kernel's half-height and half-width on each side, holds the windowed
// weighted sums; the border band is NaN. Kernels must have odd dimensions
// (line kernels with a single row or column are fine).
func Convolve(m, k *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	kr, kc := k.Dims()
	hr, hc := kr/2, kc/2

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, math.NaN())
		}
	}

	for i := hr; i < rows-hr; i++ {
		for j := hc; j < cols-hc; j++ {
			var sum float64
			for di := 0; di < kr; di++ {
				for dj := 0; dj < kc; dj++ {
					w := k.At(di, dj)
					// Zero-weight cells are outside the kernel footprint;
					// skipping them keeps a NaN under a zero weight from
					// poisoning the window (IEEE 0*NaN is NaN).
					if w == 0 {
						continue
					}
					sum += w * m.At(i+hr-di, j+hc-dj)
				}
			}
			out.Set(i, j, sum)
		}
	}
	return out
}
