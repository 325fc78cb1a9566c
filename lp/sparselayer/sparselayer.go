// Package sparselayer is an lp.Problem backend that builds its solve
// system straight from the problem's sparse coefficient storage,
// without ever forming lp.Base's dense Snapshot — useful when most
// constraints touch only a handful of variables, as is typical of a
// balance/arrow network. It solves with the same gonum simplex
// implementation as gonumsimplex, so the two backends are expected to
// agree on every well-posed problem.
package sparselayer

import (
	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
)

// Problem is an lp.Problem backed by sparse row storage.
type Problem struct {
	*lp.Base
}

// New builds an empty Problem.
func New() *Problem {
	return &Problem{Base: lp.NewBase()}
}

// Solve builds gonum's standard form directly from the problem's
// sparse rows and solves it with gonum's simplex implementation.
func (p *Problem) Solve(opts lp.SolveOptions) (lp.Solution, error) {
	n := p.NumVars()
	m := p.NumCons()

	lb := make([]float64, n)
	ub := make([]float64, n)
	obj := make([]float64, n)
	for i := 0; i < n; i++ {
		var err error
		if lb[i], err = p.GetLB(lp.VarId(i)); err != nil {
			return lp.Solution{}, err
		}
		if ub[i], err = p.GetUB(lp.VarId(i)); err != nil {
			return lp.Solution{}, err
		}
		if obj[i], err = p.GetObjCoeff(lp.VarId(i)); err != nil {
			return lp.Solution{}, err
		}
	}

	kinds := make([]lp.ConKind, m)
	rhs := make([]float64, m)
	rows := make([]map[lp.VarId]float64, m)
	for c := 0; c < m; c++ {
		var err error
		if kinds[c], err = p.ConKind(lp.ConId(c)); err != nil {
			return lp.Solution{}, err
		}
		if rhs[c], err = p.GetRHS(lp.ConId(c)); err != nil {
			return lp.Solution{}, err
		}
		if rows[c], err = p.ConCoeffs(lp.ConId(c)); err != nil {
			return lp.Solution{}, err
		}
	}

	form := buildSparseStandardForm(n, lb, ub, obj, kinds, rhs, rows)

	tol := opts.Tolerance
	if tol <= 0 {
		tol = 1e-8
	}

	if len(form.A) == 0 {
		return lp.Solution{Objective: 0, Values: make([]float64, n), Status: lp.StatusOptimal}, nil
	}

	rowCount, colCount := len(form.A), len(form.A[0])
	flat := make([]float64, 0, rowCount*colCount)
	for _, row := range form.A {
		flat = append(flat, row...)
	}
	A := mat.NewDense(rowCount, colCount, flat)

	optimal, x, err := gonumlp.Simplex(nil, form.C, A, form.B, tol)
	if err != nil {
		// One reset-and-retry, mirroring gonumsimplex: relax the
		// tolerance and give the simplex implementation a second pass
		// before surfacing the failure.
		optimal, x, err = gonumlp.Simplex(nil, form.C, A, form.B, tol*1e3)
		if err != nil {
			return lp.Solution{}, apperror.Wrap(err, apperror.CodeSolverFailure, "sparse-layer solve failed")
		}
	}

	return lp.Solution{
		Objective: form.Objective(optimal),
		Values:    form.Values(x),
		Status:    lp.StatusOptimal,
	}, nil
}

// buildSparseStandardForm mirrors lp.BuildStandardForm's layout
// (shifted vars, then upper-bound slacks, then inequality
// slacks/surpluses) but reads rows directly from the sparse maps
// instead of a pre-densified matrix.
func buildSparseStandardForm(n int, lb, ub, obj []float64, kinds []lp.ConKind, rhs []float64, rows []map[lp.VarId]float64) lp.StandardForm {
	var boundedVars []int
	for i, u := range ub {
		if u < lp.Unbounded {
			boundedVars = append(boundedVars, i)
		}
	}
	ncols := n + len(boundedVars) + len(kinds)

	c := make([]float64, ncols)
	copy(c, obj)

	var A [][]float64
	var b []float64

	slackCol := n + len(boundedVars)
	for i, v := range boundedVars {
		row := make([]float64, ncols)
		row[v] = 1
		row[n+i] = 1
		A = append(A, row)
		b = append(b, ub[v]-lb[v])
	}

	for ci, kind := range kinds {
		row := make([]float64, ncols)
		adj := rhs[ci]
		for v, coeff := range rows[ci] {
			row[v] = coeff
			adj -= coeff * lb[v]
		}
		switch kind {
		case lp.ConLe:
			row[slackCol] = 1
		case lp.ConGe:
			row[slackCol] = -1
		}
		slackCol++
		A = append(A, row)
		b = append(b, adj)
	}

	shift := make([]float64, n)
	copy(shift, lb)

	return lp.StandardForm{C: c, A: A, B: b, NumOrigVar: n, Shift: shift}
}
