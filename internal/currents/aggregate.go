package currents

import (
	"errors"
	"fmt"
	"math"
)

var ErrSignViolation = errors.New("currents: sign violation")

// Polarity selects which sign a current table is required to carry.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func (p Polarity) String() string {
	if p == Negative {
		return "negative"
	}
	return "positive"
}

func (p Polarity) admits(v float64) bool {
	if p == Negative {
		return v <= 0
	}
	return v >= 0
}

// SignError reports the first value that breaks a table's polarity.
type SignError struct {
	Polarity Polarity
	Label    string
	Column   int
	Value    float64
}

func (e *SignError) Error() string {
	return fmt.Sprintf("%s table: current %q has %g at column %d", e.Polarity, e.Label, e.Value, e.Column)
}

func (e *SignError) Unwrap() error { return ErrSignViolation }

// CheckSign verifies every value of t against p. NaN fails the check.
func CheckSign(t Table, p Polarity) error {
	for i, row := range t.Values {
		for j, v := range row {
			if !p.admits(v) {
				return &SignError{Polarity: p, Label: t.Labels[i], Column: j, Value: v}
			}
		}
	}
	return nil
}

// Total sums every current type per timestep after checking the sign of the table.
func Total(t Table, p Polarity) (Series, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := CheckSign(t, p); err != nil {
		return nil, err
	}
	sum := make(Series, t.Len())
	for _, row := range t.Values {
		for j, v := range row {
			sum[j] += v
		}
	}
	return sum, nil
}

func TotalPositive(t Table) (Series, error) { return Total(t, Positive) }

func TotalNegative(t Table) (Series, error) { return Total(t, Negative) }

// Shares divides each value by the signed total of its timestep. A zero total
// is not guarded against and yields Inf or NaN shares.
func Shares(t Table, p Polarity) (Table, error) {
	total, err := Total(t, p)
	if err != nil {
		return Table{}, err
	}
	out := Table{
		Labels: append([]string(nil), t.Labels...),
		Values: make([][]float64, len(t.Values)),
	}
	for i, row := range t.Values {
		share := make([]float64, len(row))
		for j, v := range row {
			share[j] = v / total[j]
		}
		out.Values[i] = share
	}
	return out, nil
}

func SharesPositive(t Table) (Table, error) { return Shares(t, Positive) }

func SharesNegative(t Table) (Table, error) { return Shares(t, Negative) }

// Aggregate is everything the chart builder needs from both current tables.
type Aggregate struct {
	TotalPos Series
	TotalNeg Series
	SharePos Table
	ShareNeg Table
	// DisplayNeg is ShareNeg flipped into [-1,0] so both stacks share one scale.
	DisplayNeg Table
}

// AggregateTables computes totals and shares for both polarities.
func AggregateTables(pos, neg Table) (*Aggregate, error) {
	if pos.Len() != neg.Len() {
		return nil, fmt.Errorf("%w: positive table has %d columns, negative %d", ErrLengthMismatch, pos.Len(), neg.Len())
	}
	totalPos, err := TotalPositive(pos)
	if err != nil {
		return nil, err
	}
	totalNeg, err := TotalNegative(neg)
	if err != nil {
		return nil, err
	}
	sharePos, err := SharesPositive(pos)
	if err != nil {
		return nil, err
	}
	shareNeg, err := SharesNegative(neg)
	if err != nil {
		return nil, err
	}
	return &Aggregate{
		TotalPos:   totalPos,
		TotalNeg:   totalNeg,
		SharePos:   sharePos,
		ShareNeg:   shareNeg,
		DisplayNeg: shareNeg.Flip(),
	}, nil
}

// MeanShare is the time-averaged share of one current type.
type MeanShare struct {
	Label string
	Share float64
}

// MeanShares averages each row of a share table over its finite values.
// Rows without any finite value report 0.
func MeanShares(shares Table) []MeanShare {
	out := make([]MeanShare, 0, len(shares.Labels))
	for i, row := range shares.Values {
		sum, n := 0.0, 0
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
		mean := 0.0
		if n > 0 {
			mean = sum / float64(n)
		}
		out = append(out, MeanShare{Label: shares.Labels[i], Share: mean})
	}
	return out
}
