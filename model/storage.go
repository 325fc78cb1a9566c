package model

import (
	"github.com/NVE/TuLiPa-sub002/boundary"
	"github.com/NVE/TuLiPa-sub002/horizon"
	"github.com/NVE/TuLiPa-sub002/identity"
	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// Storage is a variable vector of length T (the content level at the
// end of each period) plus a single fixable variable representing the
// content at the start of the horizon (x[0]). Carry-over is enforced
// by one equality per period: level[t] - (1-loss)*level[t-1] = 0, with
// level[-1] read from the start variable. A Loss that is constant is
// written once by SetConstants; a time-varying one is rewritten every
// Update since the carry-over coefficient itself depends on it.
type Storage struct {
	ObjId   identity.Id
	Horizon horizon.Horizon
	Balance *EndogenousBalance // the balance this storage's content couples into, via arrows owned separately
	Loss    *Loss              // nil means lossless
	LB      *Capacity
	UB      *Capacity
	Costs   []Cost // e.g. a terminal or holding cost on content level

	Levels    []lp.VarId // length T, level[t]
	Start     lp.VarId   // length-1 fixable variable, level[-1]
	Cons      []lp.ConId // length T, carry-over equalities
}

func (s *Storage) Assemble() error {
	if s.Horizon == nil {
		return apperror.New(apperror.CodeInvariantViolation, "storage has no horizon").
			WithDetails("storage", s.ObjId.String())
	}
	return nil
}

// Build adds the T level variables, the start variable (marked
// fixable so boundary conditions can pin it), and the T carry-over
// equalities.
func (s *Storage) Build(p lp.Problem) error {
	n := s.Horizon.NumPeriods()
	s.Levels = make([]lp.VarId, n)
	for i := 0; i < n; i++ {
		s.Levels[i] = p.AddVar(0, lp.Unbounded)
	}
	s.Start = p.AddVar(0, lp.Unbounded)
	if err := p.MakeFixable(s.Start); err != nil {
		return err
	}

	s.Cons = make([]lp.ConId, n)
	for i := 0; i < n; i++ {
		con := p.AddCon(lp.ConEq, 0)
		s.Cons[i] = con
		if err := p.SetConCoeff(con, s.Levels[i], 1); err != nil {
			return err
		}
	}
	return nil
}

// SetConstants writes bounds, costs, and the carry-over coefficient
// for a constant loss.
func (s *Storage) SetConstants(p lp.Problem) error {
	return s.write(p, tptime.FixedDataTime{}, true)
}

// Update rewrites whatever varies with t, including the carry-over
// coefficient when loss is time-varying.
func (s *Storage) Update(p lp.Problem, t tptime.ProbTime) error {
	return s.write(p, t, false)
}

func (s *Storage) write(p lp.Problem, t tptime.ProbTime, constantsOnly bool) error {
	n := s.Horizon.NumPeriods()

	if s.LB != nil && s.LB.IsConstant() == constantsOnly {
		for i := 0; i < n; i++ {
			lb, err := s.LB.Value(t, s.Horizon.Duration(i))
			if err != nil {
				return err
			}
			if err := p.SetLB(s.Levels[i], lb); err != nil {
				return err
			}
		}
	}
	if s.UB != nil && s.UB.IsConstant() == constantsOnly {
		for i := 0; i < n; i++ {
			ub, err := s.UB.Value(t, s.Horizon.Duration(i))
			if err != nil {
				return err
			}
			if err := p.SetUB(s.Levels[i], ub); err != nil {
				return err
			}
		}
	}
	varying := false
	for _, c := range s.Costs {
		varying = varying || !c.IsConstant()
	}
	costs := make([]float64, n)
	for _, c := range s.Costs {
		if constantsOnly && !c.IsConstant() {
			continue
		}
		for i := 0; i < n; i++ {
			cost, err := c.Value(t, s.Horizon.Duration(i))
			if err != nil {
				return err
			}
			costs[i] += cost
		}
	}
	for i := 0; i < n && len(s.Costs) > 0 && (constantsOnly || varying); i++ {
		if err := p.SetObjCoeff(s.Levels[i], costs[i]); err != nil {
			return err
		}
	}

	lossConstant := s.Loss == nil || s.Loss.IsConstant()
	if lossConstant != constantsOnly {
		return nil
	}
	for i := 0; i < n; i++ {
		retain := 1.0
		if s.Loss != nil {
			l, err := s.Loss.Value(t, s.Horizon.Duration(i))
			if err != nil {
				return err
			}
			retain = 1 - l
		}
		prev := s.Start
		if i > 0 {
			prev = s.Levels[i-1]
		}
		if err := p.SetConCoeff(s.Cons[i], prev, -retain); err != nil {
			return err
		}
	}
	return nil
}

// StartLevel returns the handle for the start-of-horizon content
// variable, the variable boundary conditions pin via lp.Fix.
func (s *Storage) StartLevel() lp.VarId { return s.Start }

// EndLevel returns the handle for the end-of-horizon content level,
// the variable a StartEqualStop boundary condition reads back out.
func (s *Storage) EndLevel() lp.VarId {
	return s.Levels[len(s.Levels)-1]
}

// StateVariables reports storage's one carry-over pair: its fixable
// start level as var_in, its final period's level as var_out. This
// satisfies boundary.StatefulObject.
func (s *Storage) StateVariables() []boundary.StateVariableInfo {
	return []boundary.StateVariableInfo{{VarIn: s.Start, VarOut: s.EndLevel()}}
}
