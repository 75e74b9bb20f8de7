// Package render turns distance grids into preview images.
//
// Previews are presentation-only: the pipeline never reads them back, and
// nothing in the core depends on this package.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/silvatools/canopy-dce/internal/raster"
)

// Ramp endpoints: blue for the most negative distance, near-white at zero,
// green for the most positive. Blending happens in Lab space so the ramp
// stays perceptually even.
var (
	negativeEnd, _ = colorful.Hex("#2166ac")
	zeroMid, _     = colorful.Hex("#f7f7f7")
	positiveEnd, _ = colorful.Hex("#1b7837")

	nodataColor = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
)

// Preview renders a grid as a diverging-ramp image, one pixel per cell,
// upscaled with nearest-neighbor so individual cells stay crisp when the
// raster is smaller than maxDim. Nodata cells render dark gray.
func Preview(g raster.Grid, maxDim int) (image.Image, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	var maxNeg, maxPos float64
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			v := g.Data.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			if v < 0 && -v > maxNeg {
				maxNeg = -v
			}
			if v > 0 && v > maxPos {
				maxPos = v
			}
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, g.Cols, g.Rows))
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			v := g.Data.At(i, j)
			if math.IsNaN(v) {
				img.SetNRGBA(j, i, nodataColor)
				continue
			}
			img.SetNRGBA(j, i, cellColor(v, maxNeg, maxPos))
		}
	}

	longest := g.Cols
	if g.Rows > longest {
		longest = g.Rows
	}
	if maxDim > longest {
		factor := maxDim / longest
		if factor > 1 {
			return transform.Resize(img, g.Cols*factor, g.Rows*factor, transform.NearestNeighbor), nil
		}
	}
	return img, nil
}

// SavePreview renders a grid and writes it to path. The format follows the
// file extension, as the imaging encoder decides.
func SavePreview(path string, g raster.Grid, maxDim int) error {
	img, err := Preview(g, maxDim)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	return nil
}

func cellColor(v, maxNeg, maxPos float64) color.NRGBA {
	c := zeroMid
	switch {
	case v < 0 && maxNeg > 0:
		c = zeroMid.BlendLab(negativeEnd, -v/maxNeg)
	case v > 0 && maxPos > 0:
		c = zeroMid.BlendLab(positiveEnd, v/maxPos)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
