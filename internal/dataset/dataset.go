// Package dataset loads the simulation traces a currentscape is drawn from.
package dataset

import (
	"errors"
	"fmt"

	"currentscape/internal/currents"
)

var ErrMisaligned = errors.New("dataset: inputs are not aligned with the time axis")

// Source locates the four input files and the slice of them to analyse.
type Source struct {
	TimePath     string
	VoltagePath  string
	PositivePath string
	NegativePath string
	// Samples is the analysis window: only the first Samples timesteps are used.
	Samples int
	// Channel is the row of the voltage matrix to plot (e.g. the soma segment).
	Channel int
}

// Dataset holds positionally aligned traces for one run.
type Dataset struct {
	Time     currents.Series
	Voltage  currents.Series
	Positive currents.Table
	Negative currents.Table
}

// Len is the number of timesteps.
func (d *Dataset) Len() int { return len(d.Time) }

// Load reads every input and truncates them to the analysis window.
// Any failure aborts the load; no partial dataset is returned.
func Load(src Source) (*Dataset, error) {
	if src.Samples <= 0 {
		return nil, fmt.Errorf("dataset: samples must be positive, got %d", src.Samples)
	}
	t, err := loadVector(src.TimePath, src.Samples)
	if err != nil {
		return nil, fmt.Errorf("load time: %w", err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("load time: %s holds no samples", src.TimePath)
	}
	n := len(t)
	v, err := loadRow(src.VoltagePath, src.Channel, n)
	if err != nil {
		return nil, fmt.Errorf("load voltage: %w", err)
	}
	pos, err := loadTable(src.PositivePath, n)
	if err != nil {
		return nil, fmt.Errorf("load positive currents: %w", err)
	}
	neg, err := loadTable(src.NegativePath, n)
	if err != nil {
		return nil, fmt.Errorf("load negative currents: %w", err)
	}
	d := &Dataset{Time: t, Voltage: v, Positive: pos, Negative: neg}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that every series and table column count matches the time axis.
func (d *Dataset) Validate() error {
	n := d.Len()
	if len(d.Voltage) != n {
		return fmt.Errorf("%w: voltage has %d samples, time has %d", ErrMisaligned, len(d.Voltage), n)
	}
	tables := []struct {
		name string
		tbl  currents.Table
	}{{"positive", d.Positive}, {"negative", d.Negative}}
	for _, x := range tables {
		if err := x.tbl.Validate(); err != nil {
			return fmt.Errorf("%s table: %w", x.name, err)
		}
		if x.tbl.Len() != n {
			return fmt.Errorf("%w: %s table has %d columns, time has %d", ErrMisaligned, x.name, x.tbl.Len(), n)
		}
	}
	return nil
}

// Dedup drops repeated timestamps, keeping the first occurrence, and applies
// the same selection to the voltage trace and both tables.
func (d *Dataset) Dedup() *Dataset {
	idx := currents.FirstOccurrence(d.Time)
	return &Dataset{
		Time:     d.Time.Select(idx),
		Voltage:  d.Voltage.Select(idx),
		Positive: d.Positive.SelectColumns(idx),
		Negative: d.Negative.SelectColumns(idx),
	}
}
