package model

import (
	"github.com/NVE/TuLiPa-sub002/horizon"
	"github.com/NVE/TuLiPa-sub002/identity"
	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// Flow is a variable vector of length numperiods(horizon): the flow
// of one commodity between its arrows' balances. Its horizon is
// chosen at Assemble time as the finest horizon reached through any
// of its arrows' target balances.
type Flow struct {
	ObjId  identity.Id
	LB     *Capacity // optional; default lower bound is 0
	UB     *Capacity // optional
	Costs  []Cost
	Arrows []Arrow

	Horizon horizon.Horizon
	Vars    []lp.VarId

	// objBase holds the per-period objective coefficient contributed
	// by constant costs and exogenous prices, written once by
	// SetConstants. Update adds the time-varying remainder on top and
	// writes the full coefficient, since lp.Problem's objective
	// coefficient is a single overwritten scalar, not an additive term
	// like a constraint's RHS.
	objBase []float64
}

// Assemble picks the flow's horizon as the finest among its arrows'
// target balances' horizons (the one with the most periods over the
// same total duration), and validates it has at least one arrow.
func (f *Flow) Assemble() error {
	if len(f.Arrows) == 0 {
		return apperror.New(apperror.CodeInvariantViolation, "flow must have at least one arrow").
			WithDetails("flow", f.ObjId.String())
	}
	var finest horizon.Horizon
	for _, a := range f.Arrows {
		h := a.Target().BalanceHorizon()
		if h == nil {
			continue
		}
		if finest == nil || h.NumPeriods() > finest.NumPeriods() {
			finest = h
		}
	}
	if finest == nil {
		return apperror.New(apperror.CodeInvariantViolation, "flow's arrows reach no horizon").
			WithDetails("flow", f.ObjId.String())
	}
	f.Horizon = finest
	return nil
}

// Build adds the flow's own variables, binds each arrow to them, and
// builds any segmented arrow's internal segment structure.
func (f *Flow) Build(p lp.Problem) error {
	n := f.Horizon.NumPeriods()
	f.Vars = make([]lp.VarId, n)
	f.objBase = make([]float64, n)
	for i := 0; i < n; i++ {
		f.Vars[i] = p.AddVar(0, lp.Unbounded)
	}
	for _, a := range f.Arrows {
		switch arr := a.(type) {
		case *BaseArrow:
			arr.bind(f.Vars, f.Horizon)
		case *SegmentedArrow:
			arr.bind(f.Vars, f.Horizon)
			if err := arr.build(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetConstants writes bounds and coefficients for every param that is
// constant, and captures the constant share of the objective in
// objBase for Update to build on.
func (f *Flow) SetConstants(p lp.Problem) error {
	if err := f.writeBounds(p, tptime.FixedDataTime{}, true); err != nil {
		return err
	}
	if err := f.accumulateObjective(tptime.FixedDataTime{}, true); err != nil {
		return err
	}
	for i, v := range f.Vars {
		if err := p.SetObjCoeff(v, f.objBase[i]); err != nil {
			return err
		}
	}
	for _, a := range f.Arrows {
		if err := f.writeArrowCoefficients(p, a, tptime.FixedDataTime{}, true); err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites bounds and coefficients whose params vary with t,
// and rewrites each period's full objective coefficient as
// objBase plus the time-varying remainder.
func (f *Flow) Update(p lp.Problem, t tptime.ProbTime) error {
	if err := f.writeBounds(p, t, false); err != nil {
		return err
	}
	variable := make([]float64, len(f.Vars))
	if err := f.accumulateInto(variable, t, false); err != nil {
		return err
	}
	for i, v := range f.Vars {
		if err := p.SetObjCoeff(v, f.objBase[i]+variable[i]); err != nil {
			return err
		}
	}
	for _, a := range f.Arrows {
		if err := f.writeArrowCoefficients(p, a, t, false); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) writeBounds(p lp.Problem, t tptime.ProbTime, constantsOnly bool) error {
	n := f.Horizon.NumPeriods()
	if f.LB != nil && f.LB.IsConstant() == constantsOnly {
		for i := 0; i < n; i++ {
			lb, err := f.LB.Value(t, f.Horizon.Duration(i))
			if err != nil {
				return err
			}
			if err := p.SetLB(f.Vars[i], lb); err != nil {
				return err
			}
		}
	}
	if f.UB != nil && f.UB.IsConstant() == constantsOnly {
		for i := 0; i < n; i++ {
			ub, err := f.UB.Value(t, f.Horizon.Duration(i))
			if err != nil {
				return err
			}
			if err := p.SetUB(f.Vars[i], ub); err != nil {
				return err
			}
		}
	}
	return nil
}

// accumulateObjective sums matching contributions into f.objBase.
func (f *Flow) accumulateObjective(t tptime.ProbTime, constantsOnly bool) error {
	return f.accumulateInto(f.objBase, t, constantsOnly)
}

// accumulateInto adds every cost/exogenous-price contribution whose
// constancy matches constantsOnly into dst, indexed by period.
func (f *Flow) accumulateInto(dst []float64, t tptime.ProbTime, constantsOnly bool) error {
	n := f.Horizon.NumPeriods()
	for _, c := range f.Costs {
		if c.IsConstant() != constantsOnly {
			continue
		}
		for i := 0; i < n; i++ {
			v, err := c.Value(t, f.Horizon.Duration(i))
			if err != nil {
				return err
			}
			dst[i] += v
		}
	}
	for _, a := range f.Arrows {
		var bal Balance
		var dir Direction
		switch arr := a.(type) {
		case *BaseArrow:
			bal, dir = arr.Balance, arr.Dir
		case *SegmentedArrow:
			bal, dir = arr.Balance, arr.Dir
		default:
			continue
		}
		eb, ok := bal.(*ExogenousBalance)
		if !ok || eb.Price.IsConstant() != constantsOnly {
			continue
		}
		for i := 0; i < n; i++ {
			price, err := eb.Price.Value(t, f.Horizon.Duration(i))
			if err != nil {
				return err
			}
			if dir == DirIn {
				price = -price
			}
			dst[i] += price
		}
	}
	return nil
}

func (f *Flow) writeArrowCoefficients(p lp.Problem, a Arrow, t tptime.ProbTime, constantsOnly bool) error {
	switch arr := a.(type) {
	case *BaseArrow:
		return arr.writeCoefficients(p, t, constantsOnly)
	case *SegmentedArrow:
		if err := arr.writeCoefficients(p, t, constantsOnly); err != nil {
			return err
		}
		return arr.writeSegmentBounds(p, t, constantsOnly)
	}
	return nil
}
