package model

import (
	"github.com/NVE/TuLiPa-sub002/horizon"
	"github.com/NVE/TuLiPa-sub002/identity"
	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// Arrow is the sealed set of arrow variants: BaseArrow (a single
// conversion/loss coefficient) and SegmentedArrow (a piecewise-linear
// curve split across several LP variables). An arrow couples one
// Flow's variable to one Balance's row.
type Arrow interface {
	arrow()
	Target() Balance
	Direction() Direction
}

// Direction tags whether an arrow feeds into its target balance or
// draws out of it.
type Direction int

const (
	DirIn Direction = iota
	DirOut
)

// BaseArrow writes a single coefficient per (coarse, fine) subperiod
// pair into its target balance's row, adjusted by conversion and loss:
// conversion*(1-loss) for an ingoing arrow, conversion/(1-loss) for an
// outgoing one.
type BaseArrow struct {
	ObjId      identity.Id
	Balance    Balance
	Dir        Direction
	Conversion Conversion
	Loss       *Loss // nil means lossless

	flowVars    []lp.VarId    // the owning Flow's per-period variables
	flowHorizon horizon.Horizon
}

func (a *BaseArrow) arrow()             {}
func (a *BaseArrow) Target() Balance    { return a.Balance }
func (a *BaseArrow) Direction() Direction { return a.Dir }

// bind gives the arrow the flow variables and horizon it couples,
// called by Flow.Build once the flow's own variables exist.
func (a *BaseArrow) bind(flowVars []lp.VarId, flowHorizon horizon.Horizon) {
	a.flowVars = flowVars
	a.flowHorizon = flowHorizon
}

func (a *BaseArrow) coefficient(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	var v float64
	var err error
	switch a.Dir {
	case DirIn:
		v, err = inConversionLoss(a.Conversion, a.Loss, t, delta)
	default:
		v, err = outConversionLoss(a.Conversion, a.Loss, t, delta)
		v = -v
	}
	return v, err
}

// writeCoefficients writes the arrow's coefficient into every (coarse,
// fine) subperiod pair reachable between the balance's horizon and the
// flow's horizon, using the balance period's own delta for any
// durational conversion/loss evaluation.
func (a *BaseArrow) writeCoefficients(p lp.Problem, t tptime.ProbTime, constantsOnly bool) error {
	if isConstant(a.Conversion, a.Loss) != constantsOnly {
		return nil
	}
	balHorizon := a.Balance.BalanceHorizon()
	eb, ok := a.Balance.(*EndogenousBalance)
	if !ok {
		// Exogenous balances have no row; the cost side is handled by
		// the owning Flow directly via the balance's Price.
		return nil
	}
	for bi := 0; bi < balHorizon.NumPeriods(); bi++ {
		lo, hi, err := horizon.GetSubperiods(balHorizon, a.flowHorizon, bi)
		if err != nil {
			return err
		}
		for fi := lo; fi < hi; fi++ {
			coeff, err := a.coefficient(t, a.flowHorizon.Duration(fi))
			if err != nil {
				return err
			}
			if err := p.SetConCoeff(eb.Cons[bi], a.flowVars[fi], coeff); err != nil {
				return err
			}
		}
	}
	return nil
}

// SegmentedArrow splits a single main variable into N piecewise-linear
// segment variables (each with its own capacity), tied together by one
// equality: main = sum(segments). Each segment also arrows into the
// target balance like a BaseArrow. All segments share the arrow's one
// Conversion and Loss; no per-segment conversion or cost is written.
type SegmentedArrow struct {
	ObjId      identity.Id
	Balance    Balance
	Dir        Direction
	Conversion Conversion
	Loss       *Loss
	Segments   []Capacity // per-segment upper bound; len(Segments) == number of segments

	segmentVars []lp.VarId // per period, per segment: segmentVars[period*nseg+seg]
	sumCons     []lp.ConId // per period
	flowVars    []lp.VarId
	flowHorizon horizon.Horizon
}

func (a *SegmentedArrow) arrow()              {}
func (a *SegmentedArrow) Target() Balance     { return a.Balance }
func (a *SegmentedArrow) Direction() Direction { return a.Dir }

func (a *SegmentedArrow) bind(flowVars []lp.VarId, flowHorizon horizon.Horizon) {
	a.flowVars = flowVars
	a.flowHorizon = flowHorizon
}

// build adds the segment variables and the main=sum(segments) equality
// for every period of the owning flow's horizon.
func (a *SegmentedArrow) build(p lp.Problem) error {
	if len(a.Segments) == 0 {
		return apperror.New(apperror.CodeInvariantViolation, "segmented arrow needs at least one segment").
			WithDetails("arrow", a.ObjId.String())
	}
	n := a.flowHorizon.NumPeriods()
	nseg := len(a.Segments)
	a.segmentVars = make([]lp.VarId, n*nseg)
	a.sumCons = make([]lp.ConId, n)
	for i := 0; i < n; i++ {
		con := p.AddCon(lp.ConEq, 0)
		a.sumCons[i] = con
		if err := p.SetConCoeff(con, a.flowVars[i], 1); err != nil {
			return err
		}
		for s := 0; s < nseg; s++ {
			v := p.AddVar(0, lp.Unbounded)
			a.segmentVars[i*nseg+s] = v
			if err := p.SetConCoeff(con, v, -1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *SegmentedArrow) coefficient(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	var v float64
	var err error
	switch a.Dir {
	case DirIn:
		v, err = inConversionLoss(a.Conversion, a.Loss, t, delta)
	default:
		v, err = outConversionLoss(a.Conversion, a.Loss, t, delta)
		v = -v
	}
	return v, err
}

// writeCoefficients writes the same arrow coefficient into every
// segment variable that reaches the target balance's row, since every
// segment carries the same unit conversion/loss, only differing in
// its capacity.
func (a *SegmentedArrow) writeCoefficients(p lp.Problem, t tptime.ProbTime, constantsOnly bool) error {
	if isConstant(a.Conversion, a.Loss) != constantsOnly {
		return nil
	}
	eb, ok := a.Balance.(*EndogenousBalance)
	if !ok {
		return nil
	}
	balHorizon := a.Balance.BalanceHorizon()
	nseg := len(a.Segments)
	for bi := 0; bi < balHorizon.NumPeriods(); bi++ {
		lo, hi, err := horizon.GetSubperiods(balHorizon, a.flowHorizon, bi)
		if err != nil {
			return err
		}
		for fi := lo; fi < hi; fi++ {
			coeff, err := a.coefficient(t, a.flowHorizon.Duration(fi))
			if err != nil {
				return err
			}
			for s := 0; s < nseg; s++ {
				if err := p.SetConCoeff(eb.Cons[bi], a.segmentVars[fi*nseg+s], coeff); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (a *SegmentedArrow) writeSegmentBounds(p lp.Problem, t tptime.ProbTime, constantsOnly bool) error {
	n := a.flowHorizon.NumPeriods()
	nseg := len(a.Segments)
	for s, cap := range a.Segments {
		if cap.IsConstant() != constantsOnly {
			continue
		}
		for i := 0; i < n; i++ {
			ub, err := cap.Value(t, a.flowHorizon.Duration(i))
			if err != nil {
				return err
			}
			if err := p.SetUB(a.segmentVars[i*nseg+s], ub); err != nil {
				return err
			}
		}
	}
	return nil
}
