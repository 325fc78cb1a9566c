package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/lp/gonumsimplex"
)

type fakeStateful struct {
	in, out lp.VarId
}

func (f fakeStateful) StateVariables() []StateVariableInfo {
	return []StateVariableInfo{{VarIn: f.in, VarOut: f.out}}
}

func TestStartEqualStop_AddsEqualityPerStateVariable(t *testing.T) {
	p := gonumsimplex.New()
	in := p.AddVar(0, lp.Unbounded)
	out := p.AddVar(0, lp.Unbounded)
	require.NoError(t, p.MakeFixable(in))

	cond := &StartEqualStop{Objects: []StatefulObject{fakeStateful{in: in, out: out}}}
	require.NoError(t, cond.Build(p))
	require.Len(t, cond.Cons, 1)

	require.NoError(t, p.SetObjCoeff(out, 1))
	require.NoError(t, p.Fix(in, 42))
	sol, err := p.Solve(lp.SolveOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 42, sol.Values[int(out)], 1e-6)
}

func TestSimpleSingleCuts_RingBufferWrapsAtMaxCuts(t *testing.T) {
	p := gonumsimplex.New()
	in := p.AddVar(0, lp.Unbounded)
	require.NoError(t, p.MakeFixable(in))
	obj := fakeStateful{in: in, out: in}

	pool := &SimpleSingleCuts{
		Objects:     []StatefulObject{obj},
		Probability: []float64{1},
		MaxCuts:     2,
	}
	require.NoError(t, pool.Build(p))
	assert.Equal(t, 0, pool.NumCuts())

	for i := 0; i < 3; i++ {
		sc := ScenarioCutParameters{Constant: float64(i), Slopes: []float64{1}}
		require.NoError(t, pool.UpdateCuts(p, []ScenarioCutParameters{sc}))
	}
	// Three updates into a 2-row ring: row 0 was written at i=0 then
	// overwritten at i=2; row 1 was written at i=1 and never touched
	// again, so the cut pool still reports only 2 distinct rows ever
	// active.
	assert.Equal(t, 2, pool.NumCuts())
	assert.InDelta(t, 2, pool.cuts[0].Constant, 1e-9)
	assert.InDelta(t, 1, pool.cuts[1].Constant, 1e-9)
}

func TestSimpleSingleCuts_ClearDeactivatesRows(t *testing.T) {
	p := gonumsimplex.New()
	in := p.AddVar(0, lp.Unbounded)
	require.NoError(t, p.MakeFixable(in))
	obj := fakeStateful{in: in, out: in}

	pool := &SimpleSingleCuts{Objects: []StatefulObject{obj}, Probability: []float64{1}, MaxCuts: 1}
	require.NoError(t, pool.Build(p))
	require.NoError(t, pool.UpdateCuts(p, []ScenarioCutParameters{{Constant: 5, Slopes: []float64{2}}}))
	assert.Equal(t, 1, pool.NumCuts())

	require.NoError(t, pool.ClearCuts(p))
	assert.Equal(t, 0, pool.NumCuts())
	assert.False(t, pool.cuts[0].Active)
}

func TestSimpleSingleCuts_BuildAssignsPoolId(t *testing.T) {
	p := gonumsimplex.New()
	in := p.AddVar(0, lp.Unbounded)
	obj := fakeStateful{in: in, out: in}

	pool := &SimpleSingleCuts{Objects: []StatefulObject{obj}, Probability: []float64{1}, MaxCuts: 1}
	assert.Empty(t, pool.PoolId)
	require.NoError(t, pool.Build(p))
	assert.NotEmpty(t, pool.PoolId)

	other := &SimpleSingleCuts{Objects: []StatefulObject{obj}, Probability: []float64{1}, MaxCuts: 1}
	require.NoError(t, other.Build(p))
	assert.NotEqual(t, pool.PoolId, other.PoolId)

	// An explicitly assigned id is left untouched.
	fixed := &SimpleSingleCuts{PoolId: "rolling-horizon-7", Objects: []StatefulObject{obj}, Probability: []float64{1}, MaxCuts: 1}
	require.NoError(t, fixed.Build(p))
	assert.Equal(t, "rolling-horizon-7", fixed.PoolId)
}

func TestSimpleSingleCuts_RejectsBadProbability(t *testing.T) {
	p := gonumsimplex.New()
	pool := &SimpleSingleCuts{Probability: []float64{0.5, 0.6}, MaxCuts: 1}
	assert.Error(t, pool.Build(p))
}
