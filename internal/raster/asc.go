package raster

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ReadASC loads an ESRI ASCII grid (.asc) file.
//
// The header must provide ncols, nrows, xllcorner, yllcorner and cellsize;
// NODATA_value is optional and defaults to -9999. Header keys are matched
// case-insensitively. Data rows follow in north-to-south order and are
// stored top-down (row 0 = north). Cells equal to the nodata marker become
// NaN.
func ReadASC(path string) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return Grid{}, fmt.Errorf("failed to open grid: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header := map[string]float64{}
	var fields []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		key := strings.ToLower(parts[0])
		if len(parts) == 2 && isHeaderKey(key) {
			val, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return Grid{}, fmt.Errorf("bad header value for %s: %w", parts[0], err)
			}
			header[key] = val
			continue
		}
		// First non-header line starts the data block.
		fields = parts
		break
	}

	for _, required := range []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize"} {
		if _, ok := header[required]; !ok {
			return Grid{}, fmt.Errorf("grid header missing %s", required)
		}
	}

	rows := int(header["nrows"])
	cols := int(header["ncols"])
	if rows <= 0 || cols <= 0 {
		return Grid{}, fmt.Errorf("grid header has non-positive dimensions %dx%d", rows, cols)
	}
	nodata, ok := header["nodata_value"]
	if !ok {
		nodata = DefaultNoData
	}

	data := mat.NewDense(rows, cols, nil)
	i, j := 0, 0
	store := func(raw string) error {
		if i >= rows {
			return fmt.Errorf("grid has more than %d data rows", rows)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("bad cell value at row %d col %d: %w", i, j, err)
		}
		if v == nodata {
			v = math.NaN()
		}
		data.Set(i, j, v)
		j++
		if j == cols {
			j = 0
			i++
		}
		return nil
	}

	for _, raw := range fields {
		if err := store(raw); err != nil {
			return Grid{}, err
		}
	}
	for scanner.Scan() {
		for _, raw := range strings.Fields(scanner.Text()) {
			if err := store(raw); err != nil {
				return Grid{}, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Grid{}, fmt.Errorf("failed to read grid: %w", err)
	}
	if i != rows || j != 0 {
		return Grid{}, fmt.Errorf("grid data ended early: got %d complete rows of %d", i, rows)
	}

	return Grid{
		Rows:      rows,
		Cols:      cols,
		CellSize:  header["cellsize"],
		XLLCorner: header["xllcorner"],
		YLLCorner: header["yllcorner"],
		NoData:    nodata,
		Data:      data,
	}, nil
}

func isHeaderKey(key string) bool {
	switch key {
	case "ncols", "nrows", "xllcorner", "yllcorner", "cellsize", "nodata_value":
		return true
	}
	return false
}

// WriteASC writes a grid as an ESRI ASCII grid file. NaN cells are written
// as the grid's NoData marker. Rows are emitted north to south, matching
// the internal row order.
func WriteASC(path string, g Grid) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid grid: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create grid file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ncols %d\n", g.Cols)
	fmt.Fprintf(w, "nrows %d\n", g.Rows)
	fmt.Fprintf(w, "xllcorner %s\n", formatFloat(g.XLLCorner))
	fmt.Fprintf(w, "yllcorner %s\n", formatFloat(g.YLLCorner))
	fmt.Fprintf(w, "cellsize %s\n", formatFloat(g.CellSize))
	fmt.Fprintf(w, "NODATA_value %s\n", formatFloat(g.NoData))

	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			if j > 0 {
				if err := w.WriteByte(' '); err != nil {
					return fmt.Errorf("failed to write grid data: %w", err)
				}
			}
			v := g.Data.At(i, j)
			if math.IsNaN(v) {
				v = g.NoData
			}
			if _, err := w.WriteString(formatFloat(v)); err != nil {
				return fmt.Errorf("failed to write grid data: %w", err)
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write grid data: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush grid file: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
