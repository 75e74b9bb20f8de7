package dce

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/silvatools/canopy-dce/internal/filter"
	"github.com/silvatools/canopy-dce/internal/kernel"
)

// detectRadius is the smoothing radius of the propagation loop. One step
// grows a frontier by one radius, so radius 1 makes step indices count
// cells.
const detectRadius = 1

// DetectEdges runs the iterative edge-propagation loop over a binary mask
// (1 = canopy, 0 = open, NaN = nodata) and returns the two label maps.
//
// openLabels carries step indices for open-side cells (seeded -1 on canopy
// cells), canopyLabels for canopy-side cells (seeded -1 on open cells).
// shapeOpen smooths the canopy frontier that advances into the open class
// and shapeCanopy the inverse frontier; the non-directional run passes the
// same shape for both, the directional runs pass opposed half-disks.
//
// The loop always runs exactly steps iterations. Nodata cells and the
// NaN border the valid-region convolution produces never receive a label;
// the undefined band they create widens by one cell per step.
func DetectEdges(mask *mat.Dense, shapeOpen, shapeCanopy kernel.Shape, steps int) (openLabels, canopyLabels *mat.Dense, err error) {
	if steps <= 0 {
		return nil, nil, fmt.Errorf("step count must be positive, got %d", steps)
	}
	kOpen, err := kernel.Build(detectRadius, shapeOpen)
	if err != nil {
		return nil, nil, fmt.Errorf("open-class kernel: %w", err)
	}
	kCanopy, err := kernel.Build(detectRadius, shapeCanopy)
	if err != nil {
		return nil, nil, fmt.Errorf("canopy-class kernel: %w", err)
	}

	// Seed: canopy cells start at -1 in openLabels and at 0 in
	// canopyLabels, open cells the other way around. The frontier masks
	// start as the mask and its inverse.
	openLabels = applyCopy(mask, func(v float64) float64 { return -v })
	canopyLabels = applyCopy(mask, func(v float64) float64 { return v - 1 })
	frontierOpen := applyCopy(mask, func(v float64) float64 { return v })
	frontierCanopy := applyCopy(mask, func(v float64) float64 { return 1 - v })

	for step := 1; step <= steps; step++ {
		smoothedOpen := filter.Convolve(frontierOpen, kOpen)
		smoothedCanopy := filter.Convolve(frontierCanopy, kCanopy)

		// The smoothed fields are separate buffers, so every freeze in
		// this step reads pre-step state and update order cannot leak.
		freeze(openLabels, smoothedOpen, step)
		freeze(canopyLabels, smoothedCanopy, step)

		frontierOpen = rebinarize(smoothedOpen)
		frontierCanopy = rebinarize(smoothedCanopy)
	}
	return openLabels, canopyLabels, nil
}

// freeze assigns the step index to every still-unlabeled cell the frontier
// reached. Labels are write-once: only cells at exactly 0 are eligible,
// and NaN comparisons are false, so nodata and border cells never label.
func freeze(labels, smoothed *mat.Dense, step int) {
	rows, cols := labels.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if labels.At(i, j) == 0 && smoothed.At(i, j) > 0 {
				labels.Set(i, j, float64(step))
			}
		}
	}
}

// rebinarize collapses a smoothed field back to a {0,1} frontier mask.
// NaN stays NaN so the undefined band keeps propagating outward on the
// next convolution.
func rebinarize(smoothed *mat.Dense) *mat.Dense {
	return applyCopy(smoothed, func(v float64) float64 {
		if math.IsNaN(v) {
			return v
		}
		if v > 0 {
			return 1
		}
		return 0
	})
}

// applyCopy returns a new matrix with fn applied to every cell. NaN inputs
// pass through fn unchanged for the arithmetic seeds (NaN arithmetic stays
// NaN).
func applyCopy(m *mat.Dense, fn func(float64) float64) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, fn(m.At(i, j)))
		}
	}
	return out
}
