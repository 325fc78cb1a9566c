package boundary

import (
	"math"

	"github.com/google/uuid"

	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
)

// Cut is one row's data: future_cost >= constant + sum(slopes[i] * var_in[i]).
type Cut struct {
	Active   bool
	Constant float64
	Slopes   []float64
}

// SimpleSingleCuts is a Benders-style cut pool: a single future-cost
// variable plus a fixed-size ring of inequality rows that approximate
// the expected future cost as a function of this solve's outgoing (the
// next solve's ingoing) state variables. It is a terminal-only
// boundary condition: it belongs at the end of a rolling horizon, not
// the start.
type SimpleSingleCuts struct {
	// PoolId correlates this pool's log lines and errors across a
	// rolling-horizon run; assigned automatically by Build if left
	// empty.
	PoolId string

	Objects     []StatefulObject
	Probability []float64 // per scenario, non-negative, sums to 1
	MaxCuts     int

	FutureCost lp.VarId
	Rows       []lp.ConId
	cuts       []Cut
	next       int // ring buffer write cursor
	numCuts    int // number of rows ever written, capped at MaxCuts
}

// Build adds the future-cost variable (objective coefficient +1) and
// MaxCuts deactivated inequality rows, one slope column per state
// variable across every object.
func (c *SimpleSingleCuts) Build(p lp.Problem) error {
	if c.PoolId == "" {
		c.PoolId = uuid.NewString()
	}
	if c.MaxCuts <= 0 {
		return apperror.New(apperror.CodeInvariantViolation, "cut pool requires max_cuts > 0").
			WithDetails("pool", c.PoolId)
	}
	if err := validateProbability(c.Probability); err != nil {
		if ae, ok := err.(*apperror.Error); ok {
			return ae.WithDetails("pool", c.PoolId)
		}
		return err
	}

	c.FutureCost = p.AddVar(-lp.Unbounded, lp.Unbounded)
	if err := p.SetObjCoeff(c.FutureCost, 1); err != nil {
		return err
	}

	stateVars := c.allStateVars()
	c.Rows = make([]lp.ConId, c.MaxCuts)
	c.cuts = make([]Cut, c.MaxCuts)
	for r := 0; r < c.MaxCuts; r++ {
		con := p.AddCon(lp.ConGe, -lp.Unbounded)
		if err := p.SetConCoeff(con, c.FutureCost, 1); err != nil {
			return err
		}
		for _, sv := range stateVars {
			if err := p.SetConCoeff(con, sv.VarIn, 0); err != nil {
				return err
			}
		}
		c.Rows[r] = con
		c.cuts[r] = Cut{Active: false, Constant: -lp.Unbounded, Slopes: make([]float64, len(stateVars))}
	}
	c.next = 0
	c.numCuts = 0
	return nil
}

func (c *SimpleSingleCuts) allStateVars() []StateVariableInfo {
	var all []StateVariableInfo
	for _, obj := range c.Objects {
		all = append(all, obj.StateVariables()...)
	}
	return all
}

func validateProbability(p []float64) error {
	if len(p) == 0 {
		return apperror.New(apperror.CodeInvariantViolation, "cut pool requires a non-empty probability vector")
	}
	var sum float64
	for _, v := range p {
		if v < 0 {
			return apperror.New(apperror.CodeInvariantViolation, "scenario probability must be non-negative")
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		return apperror.New(apperror.CodeInvariantViolation, "scenario probabilities must sum to 1").
			WithDetails("sum", sum)
	}
	return nil
}

// ScenarioCutParameters is one scenario's contribution to a cut: its
// own constant and per-state-variable slope, as produced by
// GetCutParameters for that scenario's sub-problem solution.
type ScenarioCutParameters struct {
	Constant float64
	Slopes   []float64
}

// UpdateCuts computes the probability-weighted average constant and
// slopes across scenarios and writes them into the current ring-buffer
// row, then advances the cursor (wrapping at MaxCuts).
func (c *SimpleSingleCuts) UpdateCuts(p lp.Problem, scenarios []ScenarioCutParameters) error {
	if len(scenarios) != len(c.Probability) {
		return apperror.New(apperror.CodeInvariantViolation, "scenario count does not match probability vector").
			WithDetails("pool", c.PoolId).WithDetails("got", len(scenarios)).WithDetails("want", len(c.Probability))
	}
	nstate := len(c.allStateVars())

	var constant float64
	slopes := make([]float64, nstate)
	for i, sc := range scenarios {
		if len(sc.Slopes) != nstate {
			return apperror.New(apperror.CodeInvariantViolation, "scenario slope count mismatch").
				WithDetails("pool", c.PoolId).WithDetails("scenario_index", i)
		}
		weight := c.Probability[i]
		constant += weight * sc.Constant
		for j, s := range sc.Slopes {
			slopes[j] += weight * s
		}
	}

	row := c.Rows[c.next]
	c.cuts[c.next] = Cut{Active: true, Constant: constant, Slopes: slopes}

	stateVars := c.allStateVars()
	for j, sv := range stateVars {
		if err := p.SetConCoeff(row, sv.VarIn, -slopes[j]); err != nil {
			return err
		}
	}
	if err := p.SetRHSTerm(row, "base", constant); err != nil {
		return err
	}

	c.next = (c.next + 1) % c.MaxCuts
	if c.numCuts < c.MaxCuts {
		c.numCuts++
	}
	return nil
}

// ClearCuts deactivates every row (constant -infinity, slopes zero)
// and resets the ring-buffer cursor and count.
func (c *SimpleSingleCuts) ClearCuts(p lp.Problem) error {
	stateVars := c.allStateVars()
	for r, row := range c.Rows {
		c.cuts[r] = Cut{Active: false, Constant: -lp.Unbounded, Slopes: make([]float64, len(stateVars))}
		for _, sv := range stateVars {
			if err := p.SetConCoeff(row, sv.VarIn, 0); err != nil {
				return err
			}
		}
		if err := p.SetRHSTerm(row, "base", -lp.Unbounded); err != nil {
			return err
		}
	}
	c.next = 0
	c.numCuts = 0
	return nil
}

// NumCuts reports how many rows currently carry an active cut.
func (c *SimpleSingleCuts) NumCuts() int { return c.numCuts }

// GetCutParameters reduces one scenario's solved sub-problem into a
// (constant, slopes) pair: slopes are the fix-variable duals of each
// ingoing state variable (the marginal cost of relaxing that state by
// one unit), and the constant is the objective value minus the
// slopes' dot product with the current ingoing state, so that the
// resulting affine cut is tight at the solved point.
func GetCutParameters(p lp.Problem, objects []StatefulObject, ingoing []float64, objective float64, opts lp.SolveOptions) (ScenarioCutParameters, error) {
	stateVars := flattenStateVars(objects)
	if len(ingoing) != len(stateVars) {
		return ScenarioCutParameters{}, apperror.New(apperror.CodeInvariantViolation, "ingoing state length mismatch")
	}
	slopes := make([]float64, len(stateVars))
	var dot float64
	for i, sv := range stateVars {
		slope, err := lp.FixVarDual(p, sv.VarIn, ingoing[i], opts)
		if err != nil {
			return ScenarioCutParameters{}, err
		}
		slopes[i] = slope
		dot += slope * ingoing[i]
	}
	return ScenarioCutParameters{Constant: objective - dot, Slopes: slopes}, nil
}

func flattenStateVars(objects []StatefulObject) []StateVariableInfo {
	var all []StateVariableInfo
	for _, obj := range objects {
		all = append(all, obj.StateVariables()...)
	}
	return all
}
