package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kjannette/fng-correlation-backend/internal/models"
)

var (
	ErrLengthMismatch = errors.New("series length mismatch")

	// ErrDegenerateStatistics means the coefficient is undefined for the
	// input: fewer than two points, or a series without variance.
	ErrDegenerateStatistics = errors.New("degenerate statistics input")
)

type DegenerateError struct {
	N      int
	Reason string
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("pearson over %d points: %s", e.N, e.Reason)
}

func (e *DegenerateError) Unwrap() error { return ErrDegenerateStatistics }

// Pearson returns the product-moment correlation of xs and ys together with
// the two-sided p-value of the t-test with n-2 degrees of freedom.
func Pearson(xs, ys []float64) (models.CorrelationResult, error) {
	n := len(xs)
	if n != len(ys) {
		return models.CorrelationResult{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, n, len(ys))
	}
	if n < 2 {
		return models.CorrelationResult{}, &DegenerateError{N: n, Reason: "at least 2 points required"}
	}
	if constant(xs) || constant(ys) {
		return models.CorrelationResult{}, &DegenerateError{N: n, Reason: "input has zero variance"}
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return models.CorrelationResult{}, &DegenerateError{N: n, Reason: "coefficient is not a number"}
	}
	r = clamp(r, -1, 1)

	// Two points always lie on a line.
	if n == 2 {
		return models.CorrelationResult{Pearson: math.Copysign(1, r), PValue: 1}, nil
	}

	return models.CorrelationResult{Pearson: r, PValue: pValue(r, n)}, nil
}

func pValue(r float64, n int) float64 {
	if math.Abs(r) == 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/((1-r)*(1+r)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clamp(2*dist.Survival(math.Abs(t)), 0, 1)
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
