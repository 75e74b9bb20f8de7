package dce

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/silvatools/canopy-dce/internal/kernel"
	"github.com/silvatools/canopy-dce/internal/raster"
)

// Mode selects which detector runs execute.
type Mode string

// Pipeline modes.
const (
	// ModeAll runs the non-directional and both directional variants.
	ModeAll Mode = "all"

	// ModeSimple runs only the non-directional variant.
	ModeSimple Mode = "simple"

	// ModeDirectional runs only the north and south variants.
	ModeDirectional Mode = "directional"
)

// ParseMode converts a mode identifier string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeSimple, ModeDirectional:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want all, simple or directional)", s)
}

// Config carries the pipeline parameters. There is no process-wide
// configuration state; callers build a Config and pass it to Run.
type Config struct {
	// Mode selects which of the three detector runs execute.
	Mode Mode

	// StepCount is the iteration budget per run. Cells farther than
	// StepCount units from a boundary stay undefined in the output.
	StepCount int

	// HeightCutoff binarizes the input: values at or above the cutoff
	// count as canopy. Zero or negative means the input is already a
	// {0,1} mask.
	HeightCutoff float64

	// SimpleShape is the smoothing kernel of the non-directional run.
	// Empty means kernel.Disk, which keeps diagonal neighbors out of the
	// first dilation. The directional runs always use the half-disks.
	SimpleShape kernel.Shape
}

// OutputSummary describes one composed output grid.
type OutputSummary struct {
	Name              string  `json:"name"`
	DefinedCells      int     `json:"defined_cells"`
	UndefinedCells    int     `json:"undefined_cells"`
	UndefinedFraction float64 `json:"undefined_fraction"`
}

// RunSummary describes a completed pipeline run.
type RunSummary struct {
	Mode      string          `json:"mode"`
	StepCount int             `json:"step_count"`
	Rows      int             `json:"rows"`
	Cols      int             `json:"cols"`
	UnitRows  int             `json:"unit_rows"`
	UnitCols  int             `json:"unit_cols"`
	ElapsedMS int64           `json:"elapsed_ms"`
	Outputs   []OutputSummary `json:"outputs"`
}

// Result holds the output grids of a pipeline run. Grids for variants the
// mode did not request are nil.
type Result struct {
	Simple *raster.Grid
	North  *raster.Grid
	South  *raster.Grid

	Summary RunSummary
}

// detectorRun is one (name, kernel orientation) configuration. The north
// run pairs a north half-disk on the open-class frontier with a south
// half-disk on the canopy-class frontier so it responds to edges exposed
// toward the north, and the south run swaps the pair.
type detectorRun struct {
	name        string
	shapeOpen   kernel.Shape
	shapeCanopy kernel.Shape
	directional bool
}

func runsForMode(mode Mode, simpleShape kernel.Shape) ([]detectorRun, error) {
	if simpleShape == "" {
		simpleShape = kernel.Disk
	}
	simple := detectorRun{name: "dce", shapeOpen: simpleShape, shapeCanopy: simpleShape}
	north := detectorRun{name: "dce_north", shapeOpen: kernel.DiskNorth, shapeCanopy: kernel.DiskSouth, directional: true}
	south := detectorRun{name: "dce_south", shapeOpen: kernel.DiskSouth, shapeCanopy: kernel.DiskNorth, directional: true}

	switch mode {
	case ModeSimple:
		return []detectorRun{simple}, nil
	case ModeDirectional:
		return []detectorRun{north, south}, nil
	case ModeAll:
		return []detectorRun{simple, north, south}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

// Run executes the full pipeline: binarize, resample to unit cell size,
// run the requested detector variants, compose their label maps, and
// resample the results back to the input's native resolution.
//
// The detector runs are independent and execute concurrently, each on a
// private copy of the unit-resolution mask. Kernel construction for every
// requested run is validated up front, so a bad configuration fails before
// any computation starts and no partial result is returned.
func Run(grid raster.Grid, cfg Config) (*Result, error) {
	start := time.Now()

	if cfg.StepCount <= 0 {
		return nil, fmt.Errorf("step count must be positive, got %d", cfg.StepCount)
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	runs, err := runsForMode(cfg.Mode, cfg.SimpleShape)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		for _, shape := range []kernel.Shape{r.shapeOpen, r.shapeCanopy} {
			if _, err := kernel.Build(detectRadius, shape); err != nil {
				return nil, fmt.Errorf("run %s: %w", r.name, err)
			}
		}
	}

	mask := raster.Binarize(grid, cfg.HeightCutoff)
	unit, err := raster.ToUnitCell(mask)
	if err != nil {
		return nil, fmt.Errorf("resampling to unit cell size: %w", err)
	}

	composed := make([]*mat.Dense, len(runs))
	errs := make([]error, len(runs))
	var wg sync.WaitGroup
	for idx, r := range runs {
		wg.Add(1)
		go func(idx int, r detectorRun) {
			defer wg.Done()
			private := mat.DenseCopyOf(unit.Data)
			open, canopy, err := DetectEdges(private, r.shapeOpen, r.shapeCanopy, cfg.StepCount)
			if err != nil {
				errs[idx] = fmt.Errorf("run %s: %w", r.name, err)
				return
			}
			if r.directional {
				composed[idx] = ComposeDirectional(open, canopy)
			} else {
				composed[idx] = ComposeSimple(open, canopy)
			}
		}(idx, r)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := &Result{Summary: RunSummary{
		Mode:      string(cfg.Mode),
		StepCount: cfg.StepCount,
		Rows:      grid.Rows,
		Cols:      grid.Cols,
		UnitRows:  unit.Rows,
		UnitCols:  unit.Cols,
	}}

	for idx, r := range runs {
		unitOut := unit
		unitOut.Data = composed[idx]
		native, err := raster.FromUnitCell(unitOut, grid)
		if err != nil {
			return nil, fmt.Errorf("run %s: resampling to native cell size: %w", r.name, err)
		}

		switch r.name {
		case "dce":
			res.Simple = &native
		case "dce_north":
			res.North = &native
		case "dce_south":
			res.South = &native
		}
		res.Summary.Outputs = append(res.Summary.Outputs, summarize(r.name, native))
	}

	res.Summary.ElapsedMS = time.Since(start).Milliseconds()
	return res, nil
}

func summarize(name string, g raster.Grid) OutputSummary {
	defined, undefined := 0, 0
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			if math.IsNaN(g.Data.At(i, j)) {
				undefined++
			} else {
				defined++
			}
		}
	}
	total := g.Rows * g.Cols
	frac := 0.0
	if total > 0 {
		frac = float64(undefined) / float64(total)
	}
	return OutputSummary{
		Name:              name,
		DefinedCells:      defined,
		UndefinedCells:    undefined,
		UndefinedFraction: frac,
	}
}
