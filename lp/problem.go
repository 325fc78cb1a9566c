// Package lp defines the abstract linear-program interface every model
// object builds against, and the shared bookkeeping (variable bounds,
// fixable/fixed state, additive right-hand-side terms with dirty-flag
// batching) common to every backend. Concrete backends live in
// subpackages (gonumsimplex, sparselayer) and each wrap a *Base,
// adding only the Solve step.
package lp

import (
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
)

// Unbounded stands in for a mathematically infinite bound. The
// standard-form builder shifts every variable by its lower bound and
// folds that shift into affected row RHS values, which turns a
// genuine +/-Inf into a NaN once that arithmetic runs; model objects
// that want "no bound" should use +/-Unbounded instead of math.Inf.
const Unbounded = 1e15

// VarId, ConId are arena handles into a Problem's variable and
// constraint lists: cheap, comparable, and stable across Build/Update
// calls, unlike a pointer graph.
type VarId int
type ConId int

// ConKind is a constraint's relational sense.
type ConKind int

const (
	ConEq ConKind = iota
	ConGe
	ConLe
)

// Problem is the narrow interface every LP backend implements. Model
// objects build against it during the build phase, rewrite
// time-dependent coefficients during update, and call Solve once per
// problem time.
type Problem interface {
	AddVar(lb, ub float64) VarId
	AddCon(kind ConKind, rhs float64) ConId

	SetConCoeff(con ConId, v VarId, coeff float64) error
	SetObjCoeff(v VarId, coeff float64) error
	SetLB(v VarId, lb float64) error
	SetUB(v VarId, ub float64) error

	GetConCoeff(con ConId, v VarId) (float64, error)
	GetObjCoeff(v VarId) (float64, error)
	GetLB(v VarId) (float64, error)
	GetUB(v VarId) (float64, error)
	GetRHS(con ConId) (float64, error)

	// SetRHSTerm sets one named, additive contribution to a
	// constraint's right-hand side. The constraint's effective RHS is
	// the sum of all its terms; setting a term to 0 explicitly
	// deactivates a previously set contribution without removing the
	// term (spec.md's "coefficients of zero may be written explicitly
	// to deactivate a previously set contribution" applies to RHS
	// terms as well as coefficients).
	SetRHSTerm(con ConId, termId string, value float64) error

	// MakeFixable marks a variable as eligible for Fix/Unfix.
	MakeFixable(v VarId) error
	// Fix pins a fixable variable to value by tightening both bounds.
	Fix(v VarId, value float64) error
	// Unfix restores a fixed variable's bounds to what they were
	// before the first Fix since it was last unfixed; fixing an
	// already-fixed variable again does not replace the saved bounds.
	Unfix(v VarId) error

	// NumVars and NumCons report the problem's current size.
	NumVars() int
	NumCons() int

	// Solve solves the current problem and returns its solution.
	Solve(opts SolveOptions) (Solution, error)
}

// SolveOptions configures a Solve call.
type SolveOptions struct {
	// MaxIterations is not read by either backend in this module
	// (gonumsimplex, sparselayer); it does not limit their solves.
	MaxIterations int
	// Tolerance is the backend's numerical feasibility tolerance; 0
	// means use the backend's default.
	Tolerance float64
}

// Solution is a backend-agnostic solve result.
type Solution struct {
	Objective float64
	Values    []float64 // indexed by VarId
	Status    Status
}

// Status reports how a Solve call concluded.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

func errUnknownVar(v VarId) error {
	return apperror.New(apperror.CodeUnknownId, "unknown variable id").WithDetails("var_id", int(v))
}

func errUnknownCon(con ConId) error {
	return apperror.New(apperror.CodeUnknownId, "unknown constraint id").WithDetails("con_id", int(con))
}

func errIndexOutOfRange(what string, i int) error {
	return apperror.New(apperror.CodeIndexOutOfRange, "index out of range").WithDetails(what, i)
}
