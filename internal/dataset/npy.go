package dataset

import (
	"fmt"
	"os"

	"github.com/sbinet/npyio"

	"currentscape/internal/currents"
)

// readNpy decodes a float64 .npy file and returns its flat data and shape.
func readNpy(path string) ([]float64, []int, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, nil, false, fmt.Errorf("read npy header %s: %w", path, err)
	}
	descr := r.Header.Descr
	if descr.Type != "<f8" && descr.Type != "f8" {
		return nil, nil, false, fmt.Errorf("%s: dtype %q, expected little-endian float64", path, descr.Type)
	}
	var data []float64
	if err := r.Read(&data); err != nil {
		return nil, nil, false, fmt.Errorf("read npy data %s: %w", path, err)
	}
	return data, descr.Shape, descr.Fortran, nil
}

// loadVector reads a 1-D array and keeps the first n samples.
func loadVector(path string, n int) (currents.Series, error) {
	data, shape, _, err := readNpy(path)
	if err != nil {
		return nil, err
	}
	if len(shape) != 1 {
		return nil, fmt.Errorf("%s: expected 1-D array, got shape %v", path, shape)
	}
	return currents.Series(data).Head(n), nil
}

// loadRow reads row `row` of a channels x samples array and keeps the first n samples.
// A 1-D array is treated as a single channel.
func loadRow(path string, row, n int) (currents.Series, error) {
	data, shape, fortran, err := readNpy(path)
	if err != nil {
		return nil, err
	}
	switch len(shape) {
	case 1:
		if row != 0 {
			return nil, fmt.Errorf("%s: channel %d requested from a 1-D array", path, row)
		}
		return currents.Series(data).Head(n), nil
	case 2:
	default:
		return nil, fmt.Errorf("%s: expected 1-D or 2-D array, got shape %v", path, shape)
	}
	rows, cols := shape[0], shape[1]
	if row < 0 || row >= rows {
		return nil, fmt.Errorf("%s: channel %d out of range [0,%d)", path, row, rows)
	}
	if n > cols || n < 0 {
		n = cols
	}
	out := make(currents.Series, n)
	for c := 0; c < n; c++ {
		if fortran {
			out[c] = data[c*rows+row]
		} else {
			out[c] = data[row*cols+c]
		}
	}
	return out, nil
}
