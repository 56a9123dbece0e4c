package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"currentscape/internal/currents"
)

// loadTable reads a current table: a header row, then one row per current
// type whose first cell is the type label and whose remaining cells are
// per-timestep values. Only the first n value columns are kept.
func loadTable(path string, n int) (currents.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return currents.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := parseTable(f, n)
	if err != nil {
		return currents.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}

func parseTable(r io.Reader, n int) (currents.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return currents.Table{}, errors.New("empty table")
		}
		return currents.Table{}, fmt.Errorf("read header: %w", err)
	}
	width := len(header) - 1
	if width < 1 {
		return currents.Table{}, errors.New("table has no value columns")
	}
	if n < 0 || n > width {
		n = width
	}

	var tbl currents.Table
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return currents.Table{}, fmt.Errorf("line %d: %w", line, err)
		}
		label := strings.TrimSpace(rec[0])
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				return currents.Table{}, fmt.Errorf("line %d, column %d (%s): %w", line, j+1, label, err)
			}
			row[j] = v
		}
		tbl.Labels = append(tbl.Labels, label)
		tbl.Values = append(tbl.Values, row)
	}
	if len(tbl.Labels) == 0 {
		return currents.Table{}, errors.New("table has no current rows")
	}
	return tbl, nil
}
