// Package tsparam implements the parameter and time-vector kinds data
// elements use to supply time-addressable scalars: constant values,
// infinite and rotating time vectors, column-backed profile views, and
// the composite unit-conversion/phase-in parameters built from them.
package tsparam

import (
	"sort"

	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// Param is the sealed set of parameter variants. Every variant
// evaluates to a scalar at a given problem time and (for durational
// variants) integrates over a supplied delta.
type Param interface {
	// IsConstant reports whether Value is independent of t.
	IsConstant() bool
	// IsDurational reports whether Value integrates over delta rather
	// than sampling an instantaneous rate.
	IsDurational() bool
	// Value evaluates the parameter at t, integrated over delta when
	// the parameter is durational. Callers must pass a meaningful delta
	// for durational parameters; non-durational parameters ignore delta.
	Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error)
}

// ConstantParam is a parameter whose value never varies with time.
type ConstantParam struct {
	Val        float64
	Durational bool
}

// NewConstantParam builds a constant parameter.
func NewConstantParam(val float64, durational bool) ConstantParam {
	return ConstantParam{Val: val, Durational: durational}
}

func (p ConstantParam) IsConstant() bool   { return true }
func (p ConstantParam) IsDurational() bool { return p.Durational }

func (p ConstantParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	if p.Durational {
		if !delta.IsPositive() {
			return 0, apperror.New(apperror.CodeMissingField, "durational constant param requires a positive delta")
		}
		return p.Val * delta.Hours(), nil
	}
	return p.Val, nil
}

// Interpolation selects how an infinite or rotating time vector reads
// between its sample points.
type Interpolation int

const (
	// InterpolationStep holds the value of the latest sample at or
	// before the query time (right-continuous step function).
	InterpolationStep Interpolation = iota
	// InterpolationLinear linearly interpolates between adjacent samples.
	InterpolationLinear
)

// Sample is one (timestamp, value) point of a time vector.
type Sample struct {
	Time  float64 // seconds since an arbitrary epoch shared by the series
	Value float64
}

func sortedSamples(samples []Sample) []Sample {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return sorted
}

// sampleAt evaluates a sorted sample series at time x using the given
// interpolation, extrapolating the first/last value outside the
// series' own range.
func sampleAt(samples []Sample, mode Interpolation, x float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	if x <= samples[0].Time {
		return samples[0].Value
	}
	if x >= samples[len(samples)-1].Time {
		return samples[len(samples)-1].Value
	}

	i := sort.Search(len(samples), func(i int) bool { return samples[i].Time > x }) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(samples)-1 {
		return samples[i].Value
	}

	switch mode {
	case InterpolationLinear:
		a, b := samples[i], samples[i+1]
		frac := (x - a.Time) / (b.Time - a.Time)
		return a.Value + frac*(b.Value-a.Value)
	default:
		return samples[i].Value
	}
}

// averageOverWindow computes the time-weighted average of the sample
// series over [x, x+width), walking each breakpoint the series
// crosses within the window. For step interpolation this is an exact
// weighted average of held values; for linear interpolation each
// sub-interval is approximated by the trapezoid between its endpoints,
// which is exact since the series is genuinely linear between samples.
func averageOverWindow(samples []Sample, mode Interpolation, x, width float64) float64 {
	if width <= 0 {
		return sampleAt(samples, mode, x)
	}
	end := x + width

	breakpoints := []float64{x}
	for _, s := range samples {
		if s.Time > x && s.Time < end {
			breakpoints = append(breakpoints, s.Time)
		}
	}
	breakpoints = append(breakpoints, end)

	var total float64
	for i := 0; i < len(breakpoints)-1; i++ {
		lo, hi := breakpoints[i], breakpoints[i+1]
		segWidth := hi - lo
		if segWidth <= 0 {
			continue
		}
		var segVal float64
		switch mode {
		case InterpolationLinear:
			segVal = (sampleAt(samples, mode, lo) + sampleAt(samples, mode, hi)) / 2
		default:
			segVal = sampleAt(samples, mode, lo)
		}
		total += segWidth * segVal
	}
	return total / width
}
