package kernel

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaxRadius is the largest kernel radius the builder accepts. Radii beyond
// this produce kernels too large to be useful for edge propagation and are
// rejected outright.
const MaxRadius = 500

var (
	// ErrInvalidRadius is returned when a kernel radius is not a positive
	// integer in [1, MaxRadius].
	ErrInvalidRadius = errors.New("kernel radius must be in [1, 500]")

	// ErrUnknownShape is returned for unrecognized shape identifiers.
	ErrUnknownShape = errors.New("unknown kernel shape")
)

// Shape identifies a kernel footprint.
type Shape string

// Supported kernel shapes.
const (
	// Square is an all-ones (2r+1)x(2r+1) footprint.
	Square Shape = "square"

	// Disk keeps cells within Euclidean distance r of the center.
	Disk Shape = "disk"

	// DiskNorth through DiskWest are half-plane disks: the disk footprint
	// restricted to one strict side of the center. The center row (or
	// column) itself is excluded, so the footprint is asymmetric.
	DiskNorth Shape = "disk_north"
	DiskSouth Shape = "disk_south"
	DiskEast  Shape = "disk_east"
	DiskWest  Shape = "disk_west"

	// RowLine and ColLine are 1x(2r+1) and (2r+1)x1 all-ones line kernels.
	RowLine Shape = "rows"
	ColLine Shape = "cols"

	// SingleRing is a fixed 3x3 kernel weighting corners at 0.5 and
	// edges and center at 1. Valid only at radius 1.
	SingleRing Shape = "single_ring"
)

// ParseShape converts a shape identifier string to a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case Square, Disk, DiskNorth, DiskSouth, DiskEast, DiskWest, RowLine, ColLine, SingleRing:
		return Shape(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// Build constructs a normalized convolution kernel for the given radius and
// shape. The returned matrix is (2r+1)x(2r+1) except for the line shapes,
// which are 1x(2r+1) (RowLine) and (2r+1)x1 (ColLine). Weights always sum
// to 1.
//
// Row index 0 is the northernmost row, matching the image orientation used
// throughout the pipeline, so DiskNorth places its weight at row offsets
// strictly above the center.
func Build(radius int, shape Shape) (*mat.Dense, error) {
	if radius <= 0 || radius > MaxRadius {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRadius, radius)
	}

	side := 2*radius + 1
	var k *mat.Dense

	switch shape {
	case Square:
		k = mat.NewDense(side, side, nil)
		fill(k, func(dr, dc int) float64 { return 1 })
	case Disk:
		k = mat.NewDense(side, side, nil)
		fill(k, insideDisk(radius))
	case DiskNorth:
		k = mat.NewDense(side, side, nil)
		fill(k, halfDisk(radius, func(dr, dc int) bool { return dr < 0 }))
	case DiskSouth:
		k = mat.NewDense(side, side, nil)
		fill(k, halfDisk(radius, func(dr, dc int) bool { return dr > 0 }))
	case DiskEast:
		k = mat.NewDense(side, side, nil)
		fill(k, halfDisk(radius, func(dr, dc int) bool { return dc > 0 }))
	case DiskWest:
		k = mat.NewDense(side, side, nil)
		fill(k, halfDisk(radius, func(dr, dc int) bool { return dc < 0 }))
	case RowLine:
		k = mat.NewDense(1, side, nil)
		for j := 0; j < side; j++ {
			k.Set(0, j, 1)
		}
	case ColLine:
		k = mat.NewDense(side, 1, nil)
		for i := 0; i < side; i++ {
			k.Set(i, 0, 1)
		}
	case SingleRing:
		if radius != 1 {
			return nil, fmt.Errorf("%w: single_ring is only defined at radius 1, got %d", ErrInvalidRadius, radius)
		}
		k = mat.NewDense(3, 3, []float64{
			0.5, 1, 0.5,
			1, 1, 1,
			0.5, 1, 0.5,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}

	normalize(k)
	return k, nil
}

// fill sets every cell of a square kernel from the weight of its offset
// (dr, dc) relative to the center.
func fill(k *mat.Dense, weight func(dr, dc int) float64) {
	side, _ := k.Dims()
	r := side / 2
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			k.Set(i, j, weight(i-r, j-r))
		}
	}
}

// insideDisk weights cells within Euclidean distance radius of the center.
func insideDisk(radius int) func(dr, dc int) float64 {
	r2 := radius * radius
	return func(dr, dc int) float64 {
		if dr*dr+dc*dc <= r2 {
			return 1
		}
		return 0
	}
}

// halfDisk restricts the disk footprint to one strict half-plane.
func halfDisk(radius int, side func(dr, dc int) bool) func(dr, dc int) float64 {
	disk := insideDisk(radius)
	return func(dr, dc int) float64 {
		if !side(dr, dc) {
			return 0
		}
		return disk(dr, dc)
	}
}

// normalize divides every weight by the kernel total so weights sum to 1.
func normalize(k *mat.Dense) {
	total := mat.Sum(k)
	if total == 0 {
		return
	}
	k.Scale(1/total, k)
}
