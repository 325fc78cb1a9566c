// Package model implements the LP model-object kernel: commodities,
// balances, flows, storages, arrows, and the thin param wrappers
// (capacity, cost, loss, conversion, price) that carry their
// semantics flags. Every object follows the same lifecycle: Assemble
// fills back-references and checks structural invariants, Build adds
// variables/rows to the underlying lp.Problem, SetConstants writes
// time-invariant coefficients once, and Update rewrites only the
// time-varying ones for a given problem time.
package model

import (
	"github.com/NVE/TuLiPa-sub002/tptime"
	"github.com/NVE/TuLiPa-sub002/tsparam"
)

// Capacity wraps a param as a variable's bound: Upper or lower,
// optionally constrained non-negative.
type Capacity struct {
	Param         tsparam.Param
	IsUpper       bool
	IsNonnegative bool
}

// Value evaluates the capacity at t, integrated over delta if the
// underlying param is durational.
func (c Capacity) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	v, err := c.Param.Value(t, delta)
	if err != nil {
		return 0, err
	}
	if c.IsNonnegative && v < 0 {
		v = 0
	}
	return v, nil
}

func (c Capacity) IsConstant() bool { return c.Param.IsConstant() }

// Cost wraps a param as an objective coefficient contribution.
type Cost struct {
	Param tsparam.Param
}

func (c Cost) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	return c.Param.Value(t, delta)
}

func (c Cost) IsConstant() bool { return c.Param.IsConstant() }

// Loss wraps a param as a fractional loss factor in [0, 1).
type Loss struct {
	Param tsparam.Param
}

func (l Loss) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	return l.Param.Value(t, delta)
}

func (l Loss) IsConstant() bool { return l.Param.IsConstant() }

// Conversion wraps a param as a unit-conversion factor applied by an arrow.
type Conversion struct {
	Param tsparam.Param
}

func (c Conversion) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	return c.Param.Value(t, delta)
}

func (c Conversion) IsConstant() bool { return c.Param.IsConstant() }

// Price wraps a param as an exogenous balance's unit price.
type Price struct {
	Param tsparam.Param
}

func (p Price) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	return p.Param.Value(t, delta)
}

func (p Price) IsConstant() bool { return p.Param.IsConstant() }

// inConversionLoss is the coefficient an ingoing arrow contributes:
// conversion * (1 - loss).
func inConversionLoss(conv Conversion, loss *Loss, t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	c, err := conv.Value(t, delta)
	if err != nil {
		return 0, err
	}
	if loss == nil {
		return c, nil
	}
	l, err := loss.Value(t, delta)
	if err != nil {
		return 0, err
	}
	return c * (1 - l), nil
}

// outConversionLoss is the coefficient an outgoing arrow contributes:
// conversion / (1 - loss).
func outConversionLoss(conv Conversion, loss *Loss, t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	c, err := conv.Value(t, delta)
	if err != nil {
		return 0, err
	}
	if loss == nil {
		return c, nil
	}
	l, err := loss.Value(t, delta)
	if err != nil {
		return 0, err
	}
	return c / (1 - l), nil
}

func isConstant(conv Conversion, loss *Loss) bool {
	if loss != nil && !loss.IsConstant() {
		return false
	}
	return conv.IsConstant()
}
