package lp

// Dual estimates a constraint's shadow price by finite difference: it
// nudges the constraint's RHS by a small probe term, re-solves, and
// returns the objective's rate of change. This works uniformly across
// any Problem implementation since it only uses the public
// SetRHSTerm/Solve surface, at the cost of one extra solve per call —
// acceptable for the cut pool and state-variable bookkeeping that only
// need a handful of duals per update, not one per constraint per
// iteration.
func Dual(p Problem, con ConId, opts SolveOptions) (float64, error) {
	const probe = 1e-6
	const termId = "__dual_probe__"

	base, err := p.Solve(opts)
	if err != nil {
		return 0, err
	}
	if err := p.SetRHSTerm(con, termId, probe); err != nil {
		return 0, err
	}
	perturbed, err := p.Solve(opts)
	// Always clear the probe term, even on solve failure.
	_ = p.SetRHSTerm(con, termId, 0)
	if err != nil {
		return 0, err
	}
	return (perturbed.Objective - base.Objective) / probe, nil
}

// FixVarDual estimates the shadow price of a fixed variable's pinned
// value, the slope a Benders cut needs: it nudges the fixed value,
// re-solves, and returns the objective's rate of change. v must
// currently be fixed (see Fix).
func FixVarDual(p Problem, v VarId, currentValue float64, opts SolveOptions) (float64, error) {
	const probe = 1e-6

	base, err := p.Solve(opts)
	if err != nil {
		return 0, err
	}
	if err := p.Fix(v, currentValue+probe); err != nil {
		return 0, err
	}
	perturbed, err := p.Solve(opts)
	_ = p.Fix(v, currentValue)
	if err != nil {
		return 0, err
	}
	return (perturbed.Objective - base.Objective) / probe, nil
}
