// Package boundary implements the state-variable and terminal-value
// machinery that couples successive solves of the same problem
// instance across a rolling horizon: the start/stop equality used
// within a single solve, and the Benders-style cut pool used across
// one.
package boundary

import (
	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
)

// StateVariableInfo pairs the ingoing and outgoing LP variables of one
// carry-over quantity: VarIn must be fixable (the problem interface
// pins it between solves), VarOut is read back out after a solve to
// seed the next one.
type StateVariableInfo struct {
	VarIn  lp.VarId
	VarOut lp.VarId
}

// StatefulObject is implemented by any model object that exposes
// carry-over state across solves (Storage always; optionally a
// time-delay or ramp trait).
type StatefulObject interface {
	StateVariables() []StateVariableInfo
}

// StartEqualStop adds one equality per state variable, var_out -
// var_in = 0, tying a solve's terminal state back to its own initial
// state. It applies the same equality whether used as an initial or a
// terminal boundary condition — the direction of use is a matter of
// when the caller invokes Build, not of anything the condition itself
// tracks.
type StartEqualStop struct {
	Objects []StatefulObject
	Cons    []lp.ConId
}

// Build adds one equality constraint per state variable across every
// object.
func (s *StartEqualStop) Build(p lp.Problem) error {
	s.Cons = nil
	for _, obj := range s.Objects {
		for _, sv := range obj.StateVariables() {
			con := p.AddCon(lp.ConEq, 0)
			if err := p.SetConCoeff(con, sv.VarOut, 1); err != nil {
				return err
			}
			if err := p.SetConCoeff(con, sv.VarIn, -1); err != nil {
				return err
			}
			s.Cons = append(s.Cons, con)
		}
	}
	return nil
}

// GetOutgoingStates reads every object's VarOut value out of a
// solution, keyed by object index then state-variable index within
// that object, for seeding the next sub-problem's ingoing states.
func GetOutgoingStates(objects []StatefulObject, sol lp.Solution) ([][]float64, error) {
	out := make([][]float64, len(objects))
	for i, obj := range objects {
		svs := obj.StateVariables()
		out[i] = make([]float64, len(svs))
		for j, sv := range svs {
			idx := int(sv.VarOut)
			if idx < 0 || idx >= len(sol.Values) {
				return nil, apperror.New(apperror.CodeIndexOutOfRange, "state variable out of solution range").
					WithDetails("var_id", idx)
			}
			out[i][j] = sol.Values[idx]
		}
	}
	return out, nil
}

// SetIngoingStates pins every object's VarIn to the given values via
// Fix, seeding the next sub-problem's initial state.
func SetIngoingStates(p lp.Problem, objects []StatefulObject, values [][]float64) error {
	if len(values) != len(objects) {
		return apperror.New(apperror.CodeInvariantViolation, "state values do not match object count")
	}
	for i, obj := range objects {
		svs := obj.StateVariables()
		if len(values[i]) != len(svs) {
			return apperror.New(apperror.CodeInvariantViolation, "state values do not match state variable count").
				WithDetails("object_index", i)
		}
		for j, sv := range svs {
			if err := p.Fix(sv.VarIn, values[i][j]); err != nil {
				return err
			}
		}
	}
	return nil
}
