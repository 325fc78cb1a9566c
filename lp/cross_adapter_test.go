package lp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/lp/gonumsimplex"
	"github.com/NVE/TuLiPa-sub002/lp/sparselayer"
)

func buildProblem(p lp.Problem) {
	x := p.AddVar(0, 8)
	y := p.AddVar(0, 8)
	p.SetObjCoeff(x, 2)
	p.SetObjCoeff(y, 3)

	con := p.AddCon(lp.ConGe, 10)
	p.SetConCoeff(con, x, 1)
	p.SetConCoeff(con, y, 1)
}

// TestCrossAdapterConsistency checks that the two backends agree on
// the same problem, per spec.md's cross-adapter consistency property.
func TestCrossAdapterConsistency(t *testing.T) {
	dense := gonumsimplex.New()
	buildProblem(dense)
	denseSol, err := dense.Solve(lp.SolveOptions{})
	require.NoError(t, err)

	sparse := sparselayer.New()
	buildProblem(sparse)
	sparseSol, err := sparse.Solve(lp.SolveOptions{})
	require.NoError(t, err)

	assert.InDelta(t, denseSol.Objective, sparseSol.Objective, 1e-6)
	for i := range denseSol.Values {
		assert.InDelta(t, denseSol.Values[i], sparseSol.Values[i], 1e-6)
	}
}
