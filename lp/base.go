package lp

import "github.com/NVE/TuLiPa-sub002/pkg/apperror"

// variable holds one variable's bounds, objective coefficient, and
// fixable/fixed state.
type variable struct {
	lb, ub  float64
	obj     float64
	fixable bool
	fixed   bool
	savedLB float64
	savedUB float64
}

// constraint holds one constraint's sense, coefficient row (sparse by
// variable id), and its RHS terms.
type constraint struct {
	kind     ConKind
	coeffs   map[VarId]float64
	rhsTerms map[string]float64
	rhsDirty bool
	rhs      float64 // cached sum of rhsTerms, valid when !rhsDirty
}

// Base is the bookkeeping shared by every lp.Problem backend: variable
// and constraint arenas, sparse coefficients, and additive per-term
// RHS values with dirty-flag batching so a constraint's effective RHS
// is only resummed when one of its terms actually changed — the same
// "accumulate now, reconcile on read" shape as the teacher's residual
// graph's incoming-edge cache.
type Base struct {
	vars []variable
	cons []constraint
}

// NewBase returns an empty Base ready for AddVar/AddCon calls.
func NewBase() *Base {
	return &Base{}
}

func (b *Base) AddVar(lb, ub float64) VarId {
	b.vars = append(b.vars, variable{lb: lb, ub: ub})
	return VarId(len(b.vars) - 1)
}

func (b *Base) AddCon(kind ConKind, rhs float64) ConId {
	b.cons = append(b.cons, constraint{
		kind:     kind,
		coeffs:   make(map[VarId]float64),
		rhsTerms: map[string]float64{"base": rhs},
		rhsDirty: true,
	})
	return ConId(len(b.cons) - 1)
}

func (b *Base) checkVar(v VarId) error {
	if int(v) < 0 || int(v) >= len(b.vars) {
		return errUnknownVar(v)
	}
	return nil
}

func (b *Base) checkCon(con ConId) error {
	if int(con) < 0 || int(con) >= len(b.cons) {
		return errUnknownCon(con)
	}
	return nil
}

func (b *Base) SetConCoeff(con ConId, v VarId, coeff float64) error {
	if err := b.checkCon(con); err != nil {
		return err
	}
	if err := b.checkVar(v); err != nil {
		return err
	}
	b.cons[con].coeffs[v] = coeff
	return nil
}

func (b *Base) SetObjCoeff(v VarId, coeff float64) error {
	if err := b.checkVar(v); err != nil {
		return err
	}
	b.vars[v].obj = coeff
	return nil
}

func (b *Base) SetLB(v VarId, lb float64) error {
	if err := b.checkVar(v); err != nil {
		return err
	}
	b.vars[v].lb = lb
	return nil
}

func (b *Base) SetUB(v VarId, ub float64) error {
	if err := b.checkVar(v); err != nil {
		return err
	}
	b.vars[v].ub = ub
	return nil
}

func (b *Base) GetConCoeff(con ConId, v VarId) (float64, error) {
	if err := b.checkCon(con); err != nil {
		return 0, err
	}
	if err := b.checkVar(v); err != nil {
		return 0, err
	}
	return b.cons[con].coeffs[v], nil
}

func (b *Base) GetObjCoeff(v VarId) (float64, error) {
	if err := b.checkVar(v); err != nil {
		return 0, err
	}
	return b.vars[v].obj, nil
}

func (b *Base) GetLB(v VarId) (float64, error) {
	if err := b.checkVar(v); err != nil {
		return 0, err
	}
	return b.vars[v].lb, nil
}

func (b *Base) GetUB(v VarId) (float64, error) {
	if err := b.checkVar(v); err != nil {
		return 0, err
	}
	return b.vars[v].ub, nil
}

func (b *Base) GetRHS(con ConId) (float64, error) {
	if err := b.checkCon(con); err != nil {
		return 0, err
	}
	c := &b.cons[con]
	if c.rhsDirty {
		var sum float64
		for _, v := range c.rhsTerms {
			sum += v
		}
		c.rhs = sum
		c.rhsDirty = false
	}
	return c.rhs, nil
}

func (b *Base) SetRHSTerm(con ConId, termId string, value float64) error {
	if err := b.checkCon(con); err != nil {
		return err
	}
	c := &b.cons[con]
	c.rhsTerms[termId] = value
	c.rhsDirty = true
	return nil
}

func (b *Base) MakeFixable(v VarId) error {
	if err := b.checkVar(v); err != nil {
		return err
	}
	b.vars[v].fixable = true
	return nil
}

func (b *Base) Fix(v VarId, value float64) error {
	if err := b.checkVar(v); err != nil {
		return err
	}
	vr := &b.vars[v]
	if !vr.fixable {
		return errFixUnfixable(v)
	}
	if !vr.fixed {
		vr.savedLB, vr.savedUB = vr.lb, vr.ub
	}
	vr.lb, vr.ub = value, value
	vr.fixed = true
	return nil
}

func (b *Base) Unfix(v VarId) error {
	if err := b.checkVar(v); err != nil {
		return err
	}
	vr := &b.vars[v]
	if !vr.fixable {
		return errFixUnfixable(v)
	}
	if vr.fixed {
		vr.lb, vr.ub = vr.savedLB, vr.savedUB
		vr.fixed = false
	}
	return nil
}

func (b *Base) NumVars() int { return len(b.vars) }
func (b *Base) NumCons() int { return len(b.cons) }

// ConKind reports a constraint's relational sense, for backends that
// build the standard-form system directly off Base's sparse storage
// rather than through Materialize.
func (b *Base) ConKind(con ConId) (ConKind, error) {
	if err := b.checkCon(con); err != nil {
		return 0, err
	}
	return b.cons[con].kind, nil
}

// ConCoeffs returns a constraint's sparse coefficient row as a
// var-id-to-coefficient map. The caller must not mutate it.
func (b *Base) ConCoeffs(con ConId) (map[VarId]float64, error) {
	if err := b.checkCon(con); err != nil {
		return nil, err
	}
	return b.cons[con].coeffs, nil
}

// Snapshot is a dense materialization of the problem, the shape every
// backend's Solve step consumes: one row per constraint, one column
// per variable, plus objective coefficients and variable bounds.
type Snapshot struct {
	A      [][]float64
	Kinds  []ConKind
	RHS    []float64
	Obj    []float64
	LB, UB []float64
}

// Materialize resolves every constraint's RHS (summing its terms) and
// returns a dense snapshot of the problem suitable for handing to a
// simplex backend.
func (b *Base) Materialize() (Snapshot, error) {
	n, m := len(b.vars), len(b.cons)
	snap := Snapshot{
		A:     make([][]float64, m),
		Kinds: make([]ConKind, m),
		RHS:   make([]float64, m),
		Obj:   make([]float64, n),
		LB:    make([]float64, n),
		UB:    make([]float64, n),
	}
	for i, v := range b.vars {
		snap.Obj[i] = v.obj
		snap.LB[i] = v.lb
		snap.UB[i] = v.ub
	}
	for i := range b.cons {
		row := make([]float64, n)
		for v, coeff := range b.cons[i].coeffs {
			row[v] = coeff
		}
		snap.A[i] = row
		snap.Kinds[i] = b.cons[i].kind
		rhs, err := b.GetRHS(ConId(i))
		if err != nil {
			return Snapshot{}, err
		}
		snap.RHS[i] = rhs
	}
	return snap, nil
}

func errFixUnfixable(v VarId) error {
	return apperror.New(apperror.CodeFixUnfixable, "variable is not fixable").WithDetails("var_id", int(v))
}
