package dce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/silvatools/canopy-dce/internal/kernel"
)

// holeMask builds the 7x7 all-canopy mask with a single open cell in the
// center.
func holeMask() *mat.Dense {
	m := mat.NewDense(7, 7, nil)
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			m.Set(i, j, 1)
		}
	}
	m.Set(3, 3, 0)
	return m
}

func TestDetectEdges_SingleHoleScenario(t *testing.T) {
	open, canopy, err := DetectEdges(holeMask(), kernel.Disk, kernel.Disk, 2)
	require.NoError(t, err)

	// The open hole is surrounded by canopy, so the canopy frontier
	// reaches it on the first pass.
	assert.Equal(t, 1.0, open.At(3, 3))

	// Orthogonal neighbors of the hole freeze at step 1.
	for _, c := range [][2]int{{2, 3}, {4, 3}, {3, 2}, {3, 4}} {
		assert.Equal(t, 1.0, canopy.At(c[0], c[1]), "orthogonal %v", c)
	}
	// Diagonal neighbors freeze at step 2 (zero disk weight keeps them
	// out of step 1).
	for _, c := range [][2]int{{2, 2}, {2, 4}, {4, 2}, {4, 4}} {
		assert.Equal(t, 2.0, canopy.At(c[0], c[1]), "diagonal %v", c)
	}

	// Canopy cells beyond two dilations stay unlabeled.
	assert.Equal(t, 0.0, canopy.At(1, 1))
	assert.Equal(t, 0.0, canopy.At(3, 6))

	// Seeds: canopy cells are -1 in the open-class map and vice versa.
	assert.Equal(t, -1.0, open.At(2, 3))
	assert.Equal(t, -1.0, canopy.At(3, 3))
}

func TestDetectEdges_LabelsAreWriteOnce(t *testing.T) {
	shortOpen, shortCanopy, err := DetectEdges(holeMask(), kernel.Disk, kernel.Disk, 2)
	require.NoError(t, err)
	longOpen, longCanopy, err := DetectEdges(holeMask(), kernel.Disk, kernel.Disk, 5)
	require.NoError(t, err)

	// The loop is deterministic, so comparing a short run to a longer one
	// observes the per-cell state machine: once a cell labels at step s it
	// holds s forever, and the labeled set only grows.
	shortLabeled, longLabeled := 0, 0
	for i := 0; i < 7; i++ {
		for j := 0; j < 7; j++ {
			if v := shortOpen.At(i, j); v > 0 {
				shortLabeled++
				assert.Equal(t, v, longOpen.At(i, j), "open (%d,%d)", i, j)
			}
			if v := shortCanopy.At(i, j); v > 0 {
				shortLabeled++
				assert.Equal(t, v, longCanopy.At(i, j), "canopy (%d,%d)", i, j)
			}
			if longOpen.At(i, j) > 0 {
				longLabeled++
			}
			if longCanopy.At(i, j) > 0 {
				longLabeled++
			}
		}
	}
	assert.GreaterOrEqual(t, longLabeled, shortLabeled)
	assert.Greater(t, longLabeled, 0)
}

func TestDetectEdges_AllOpenNeverSeedsCanopyFrontier(t *testing.T) {
	m := mat.NewDense(6, 6, nil) // all open

	open, canopy, err := DetectEdges(m, kernel.Disk, kernel.Disk, 4)
	require.NoError(t, err)

	// With no canopy pixels the open-class frontier is empty, so nothing
	// on the open side ever labels; the canopy map holds only seeds.
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			assert.Equal(t, 0.0, open.At(i, j), "open (%d,%d)", i, j)
			assert.Equal(t, -1.0, canopy.At(i, j), "canopy (%d,%d)", i, j)
		}
	}
}

func TestDetectEdges_NoDataNeverLabels(t *testing.T) {
	m := holeMask()
	m.Set(2, 3, math.NaN())

	open, canopy, err := DetectEdges(m, kernel.Disk, kernel.Disk, 3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(open.At(2, 3)))
	assert.True(t, math.IsNaN(canopy.At(2, 3)))
}

func TestDetectEdges_DirectionalKernelsDiffer(t *testing.T) {
	// Straight horizontal boundary: open north half, canopy south half.
	m := mat.NewDense(8, 8, nil)
	for i := 4; i < 8; i++ {
		for j := 0; j < 8; j++ {
			m.Set(i, j, 1)
		}
	}

	northOpen, _, err := DetectEdges(m, kernel.DiskNorth, kernel.DiskSouth, 3)
	require.NoError(t, err)
	southOpen, _, err := DetectEdges(m, kernel.DiskSouth, kernel.DiskNorth, 3)
	require.NoError(t, err)

	// The north-weighted open kernel (mirrored by the convolution) pulls
	// the canopy frontier northward: open rows freeze at 1, 2, 3 steps
	// moving away from the boundary.
	assert.Equal(t, 1.0, northOpen.At(3, 4))
	assert.Equal(t, 2.0, northOpen.At(2, 4))
	assert.Equal(t, 3.0, northOpen.At(1, 4))

	// The swapped orientation pushes the frontier the other way and never
	// reaches the open side at all.
	for i := 1; i < 4; i++ {
		assert.Equal(t, 0.0, southOpen.At(i, 4), "row %d", i)
	}
}

func TestDetectEdges_Validation(t *testing.T) {
	_, _, err := DetectEdges(holeMask(), kernel.Disk, kernel.Disk, 0)
	assert.Error(t, err)

	_, _, err = DetectEdges(holeMask(), kernel.Shape("blob"), kernel.Disk, 1)
	assert.ErrorIs(t, err, kernel.ErrUnknownShape)
}
