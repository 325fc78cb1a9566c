// Package gonumsimplex is an lp.Problem backend that materializes the
// problem as a dense gonum matrix and solves it with gonum's revised
// simplex implementation.
package gonumsimplex

import (
	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/lp"
)

// Problem is an lp.Problem backed by gonum's dense simplex solver.
type Problem struct {
	*lp.Base
}

// New builds an empty Problem.
func New() *Problem {
	return &Problem{Base: lp.NewBase()}
}

// Solve materializes the current problem into gonum's standard form
// and solves it with gonum's simplex implementation.
func (p *Problem) Solve(opts lp.SolveOptions) (lp.Solution, error) {
	snap, err := p.Materialize()
	if err != nil {
		return lp.Solution{}, err
	}
	form := lp.BuildStandardForm(snap)

	tol := opts.Tolerance
	if tol <= 0 {
		tol = 1e-8
	}

	if len(form.A) == 0 {
		return lp.Solution{Objective: 0, Values: make([]float64, form.NumOrigVar), Status: lp.StatusOptimal}, nil
	}

	rows, cols := len(form.A), len(form.A[0])
	flat := make([]float64, 0, rows*cols)
	for _, row := range form.A {
		flat = append(flat, row...)
	}
	A := mat.NewDense(rows, cols, flat)

	optimal, x, err := gonumlp.Simplex(nil, form.C, A, form.B, tol)
	if err != nil {
		// One reset-and-retry before surfacing failure: a relaxed
		// tolerance gives the revised simplex a looser feasibility band
		// to route around a degenerate pivot that tripped the first
		// pass.
		optimal, x, err = gonumlp.Simplex(nil, form.C, A, form.B, tol*1e3)
		if err != nil {
			return lp.Solution{}, solveErr(err)
		}
	}

	return lp.Solution{
		Objective: form.Objective(optimal),
		Values:    form.Values(x),
		Status:    lp.StatusOptimal,
	}, nil
}

func solveErr(cause error) error {
	switch cause {
	case gonumlp.ErrInfeasible:
		return apperror.Wrap(cause, apperror.CodeSolverFailure, "problem is infeasible")
	case gonumlp.ErrSingular:
		return apperror.Wrap(cause, apperror.CodeSolverFailure, "problem is degenerate")
	default:
		return apperror.Wrap(cause, apperror.CodeSolverFailure, "solver failed")
	}
}
