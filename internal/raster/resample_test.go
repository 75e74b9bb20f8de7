package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUnitCell_IdentityAtUnitSize(t *testing.T) {
	g := New(4, 5, 1, 0, 0)
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			g.Data.Set(i, j, float64((i+j)%2))
		}
	}

	unit, err := ToUnitCell(g)
	require.NoError(t, err)
	assert.Equal(t, g.Rows, unit.Rows)
	assert.Equal(t, g.Cols, unit.Cols)
	assert.Equal(t, 1.0, unit.CellSize)
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			assert.Equal(t, g.Data.At(i, j), unit.Data.At(i, j), "cell (%d,%d)", i, j)
		}
	}

	// Identity must be a copy, not an alias.
	unit.Data.Set(0, 0, 9)
	assert.NotEqual(t, 9.0, g.Data.At(0, 0))
}

func TestToUnitCell_UpscalesCoarseGrid(t *testing.T) {
	g := New(4, 4, 2, 0, 0)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := 0.0
			if j >= 2 {
				v = 1
			}
			g.Data.Set(i, j, v)
		}
	}

	unit, err := ToUnitCell(g)
	require.NoError(t, err)
	assert.Equal(t, 8, unit.Rows)
	assert.Equal(t, 8, unit.Cols)
	assert.Equal(t, 1.0, unit.CellSize)

	// Rebinarized output only holds 0 and 1, and the halves survive.
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			v := unit.Data.At(i, j)
			assert.True(t, v == 0 || v == 1, "cell (%d,%d) = %v", i, j, v)
		}
	}
	assert.Equal(t, 0.0, unit.Data.At(4, 0))
	assert.Equal(t, 1.0, unit.Data.At(4, 7))
}

func TestToUnitCell_DownscalesFineGrid(t *testing.T) {
	g := New(10, 10, 0.5, 0, 0)
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			g.Data.Set(i, j, 1)
		}
	}

	unit, err := ToUnitCell(g)
	require.NoError(t, err)
	assert.Equal(t, 5, unit.Rows)
	assert.Equal(t, 5, unit.Cols)
	assert.Equal(t, 1.0, unit.Data.At(2, 2))
}

func TestToUnitCell_PreservesNoDataRegions(t *testing.T) {
	g := New(4, 4, 2, 0, 0)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == 0 {
				continue // northern row stays NaN
			}
			g.Data.Set(i, j, 1)
		}
	}

	unit, err := ToUnitCell(g)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(unit.Data.At(0, 4)))
	assert.Equal(t, 1.0, unit.Data.At(5, 4))
}

func TestToUnitCell_RejectsBadCellSize(t *testing.T) {
	g := New(2, 2, 0, 0, 0)
	_, err := ToUnitCell(g)
	assert.Error(t, err)
}

func TestFromUnitCell_RoundTripDimensions(t *testing.T) {
	ref := New(7, 9, 1.5, 0, 0)

	unit := New(int(math.Ceil(7*1.5)), int(math.Ceil(9*1.5)), 1, 0, 0)
	for i := 0; i < unit.Rows; i++ {
		for j := 0; j < unit.Cols; j++ {
			unit.Data.Set(i, j, 3)
		}
	}

	out, err := FromUnitCell(unit, ref)
	require.NoError(t, err)
	assert.Equal(t, ref.Rows, out.Rows)
	assert.Equal(t, ref.Cols, out.Cols)
	assert.Equal(t, ref.CellSize, out.CellSize)
	assert.InDelta(t, 3.0, out.Data.At(3, 4), 1e-12)
}

func TestFromUnitCell_IdentityAtUnitSize(t *testing.T) {
	ref := New(3, 3, 1, 0, 0)
	unit := New(3, 3, 1, 0, 0)
	unit.Data.Set(1, 1, 5)
	unit.Data.Set(0, 0, -2)
	// (2,2) stays NaN

	out, err := FromUnitCell(unit, ref)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, out.Data.At(1, 1), 1e-12)
	assert.InDelta(t, -2.0, out.Data.At(0, 0), 1e-12)
	assert.True(t, math.IsNaN(out.Data.At(2, 2)))
}

func TestFromUnitCell_UnderproducedIsError(t *testing.T) {
	ref := New(10, 10, 2, 0, 0)
	// Correct forward size would be 20x20; 18 rows scale back to 9 < 10.
	unit := New(18, 20, 1, 0, 0)

	_, err := FromUnitCell(unit, ref)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
