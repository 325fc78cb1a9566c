package lp

// StandardForm is a problem translated to gonum's simplex convention:
// minimize C'x subject to A*x = B, x >= 0. Shift and slack/surplus
// columns are appended after the original variables, in that order:
// original vars (shifted to a zero lower bound), then one slack per
// finite upper bound, then one column per constraint: a slack for a
// <= row, a surplus for a >= row, and an all-zero column for an
// equality.
type StandardForm struct {
	C          []float64
	A          [][]float64
	B          []float64
	NumOrigVar int
	Shift      []float64 // original variable i's lower bound, subtracted before solving
}

// Objective recovers the true objective value (over unshifted
// variables) from a standard-form solve result.
func (s StandardForm) Objective(standardObjective float64) float64 {
	total := standardObjective
	for i := 0; i < s.NumOrigVar; i++ {
		total += s.C[i] * s.Shift[i]
	}
	return total
}

// Values recovers the original (unshifted) variable values from a
// standard-form solution vector.
func (s StandardForm) Values(x []float64) []float64 {
	values := make([]float64, s.NumOrigVar)
	for i := 0; i < s.NumOrigVar; i++ {
		values[i] = x[i] + s.Shift[i]
	}
	return values
}

// buildStandardFormRows builds every standard-form row: one upper-bound
// row per variable with a finite upper bound, then one row per original
// constraint, its right-hand side shifted by the variables' lower
// bounds. It returns the rows, their right-hand sides, an all-zero
// objective sized to the full column count, and that column count.
func buildStandardFormRows(numOrigVar int, lb, ub []float64, conKinds []ConKind, conRHS []float64, rowOf func(con int) map[VarId]float64) ([][]float64, []float64, []float64, int) {
	ncols := numOrigVar
	var boundedVars []int
	for i, u := range ub {
		if u < Unbounded {
			boundedVars = append(boundedVars, i)
		}
	}
	ncols += len(boundedVars)
	ncols += len(conKinds)

	obj := make([]float64, ncols)

	var rows [][]float64
	var rhs []float64
	slackCol := numOrigVar + len(boundedVars)

	for i, bv := range boundedVars {
		row := make([]float64, ncols)
		row[bv] = 1
		row[numOrigVar+i] = 1
		rows = append(rows, row)
		rhs = append(rhs, ub[bv]-lb[bv])
	}

	for c, kind := range conKinds {
		row := make([]float64, ncols)
		for v, coeff := range rowOf(c) {
			row[v] = coeff
		}
		adj := conRHS[c]
		for v, coeff := range rowOf(c) {
			adj -= coeff * lb[v]
		}
		switch kind {
		case ConLe:
			row[slackCol] = 1
		case ConGe:
			row[slackCol] = -1
		}
		slackCol++
		rows = append(rows, row)
		rhs = append(rhs, adj)
	}

	return rows, rhs, obj, ncols
}

// BuildStandardForm converts a dense problem Snapshot to StandardForm.
func BuildStandardForm(snap Snapshot) StandardForm {
	n := len(snap.Obj)
	rowOf := func(c int) map[VarId]float64 {
		m := make(map[VarId]float64, n)
		for v, coeff := range snap.A[c] {
			if coeff != 0 {
				m[VarId(v)] = coeff
			}
		}
		return m
	}
	rows, rhs, obj, _ := buildStandardFormRows(n, snap.LB, snap.UB, snap.Kinds, snap.RHS, rowOf)
	copy(obj, snap.Obj)

	shift := make([]float64, n)
	copy(shift, snap.LB)

	return StandardForm{C: obj, A: rows, B: rhs, NumOrigVar: n, Shift: shift}
}
