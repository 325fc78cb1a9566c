package model

import (
	"github.com/NVE/TuLiPa-sub002/horizon"
	"github.com/NVE/TuLiPa-sub002/identity"
	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
	"github.com/NVE/TuLiPa-sub002/tsparam"
)

// Commodity owns the default horizon its balances build against unless
// a balance overrides it explicitly.
type Commodity struct {
	Id      identity.Id
	Horizon horizon.Horizon
}

// Balance is the sealed set of balance variants: Endogenous (a row per
// period, enforcing supply equals demand) and Exogenous (no row; an
// external price that arrows into it read as a cost).
type Balance interface {
	balance()
	Id() identity.Id
	BalanceHorizon() horizon.Horizon
}

// EndogenousBalance carries one equality row per period: the sum of
// its Flows' contributing terms (positive for ingoing arrows, negative
// for outgoing) must equal the sum of its signed RHS terms for that
// period.
type EndogenousBalance struct {
	ObjId      identity.Id
	Commodity  *Commodity
	Horizon    horizon.Horizon // nil until Assemble, then Commodity.Horizon unless overridden
	Cons       []lp.ConId
	RHSTerms   []RHSTerm
}

func (b *EndogenousBalance) balance()                        {}
func (b *EndogenousBalance) Id() identity.Id                  { return b.ObjId }
func (b *EndogenousBalance) BalanceHorizon() horizon.Horizon { return b.Horizon }

// Assemble resolves the balance's horizon to its commodity's horizon
// when not set explicitly.
func (b *EndogenousBalance) Assemble() error {
	if b.Horizon == nil {
		if b.Commodity == nil {
			return apperror.New(apperror.CodeInvariantViolation, "endogenous balance has no commodity or horizon").
				WithDetails("balance", b.ObjId.String())
		}
		b.Horizon = b.Commodity.Horizon
	}
	return nil
}

// Build adds one equality constraint per period.
func (b *EndogenousBalance) Build(p lp.Problem) error {
	n := b.Horizon.NumPeriods()
	b.Cons = make([]lp.ConId, n)
	for i := 0; i < n; i++ {
		b.Cons[i] = p.AddCon(lp.ConEq, 0)
	}
	return nil
}

// SetConstants writes any RHSTerm whose param is constant, evaluated
// at an arbitrary reference time since a constant param ignores it.
func (b *EndogenousBalance) SetConstants(p lp.Problem) error {
	return b.writeRHSTerms(p, tptime.FixedDataTime{}, true)
}

// Update rewrites RHSTerm contributions that vary with t.
func (b *EndogenousBalance) Update(p lp.Problem, t tptime.ProbTime) error {
	return b.writeRHSTerms(p, t, false)
}

func (b *EndogenousBalance) writeRHSTerms(p lp.Problem, t tptime.ProbTime, constantsOnly bool) error {
	for _, term := range b.RHSTerms {
		if term.Param.IsConstant() != constantsOnly {
			continue
		}
		for i, con := range b.Cons {
			delta := b.Horizon.Duration(i)
			v, err := term.Param.Value(t, delta)
			if err != nil {
				return err
			}
			if err := p.SetRHSTerm(con, term.TermId, term.Sign*v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExogenousBalance has no row of its own: it carries a Price that
// Flows whose arrows target it read directly as an objective cost
// contribution, instead of a constraint coefficient.
type ExogenousBalance struct {
	ObjId     identity.Id
	Commodity *Commodity
	Horizon   horizon.Horizon
	Price     Price
}

func (b *ExogenousBalance) balance()                        {}
func (b *ExogenousBalance) Id() identity.Id                  { return b.ObjId }
func (b *ExogenousBalance) BalanceHorizon() horizon.Horizon { return b.Horizon }

func (b *ExogenousBalance) Assemble() error {
	if b.Horizon == nil {
		if b.Commodity == nil {
			return apperror.New(apperror.CodeInvariantViolation, "exogenous balance has no commodity or horizon").
				WithDetails("balance", b.ObjId.String())
		}
		b.Horizon = b.Commodity.Horizon
	}
	return nil
}

// RHSTerm is one additive, signed contribution to an endogenous
// balance's right-hand side, e.g. an exogenous demand profile.
type RHSTerm struct {
	TermId string
	Param  tsparam.Param
	Sign   float64

	// ResidualHint marks this term for inclusion in the residual load an
	// adaptive horizon clusters on: "include this RHS term in the
	// residual load when clustering." A demand or must-run-generation
	// term typically carries this; a flexible, dispatchable term does
	// not, since it's the thing the clustering is meant to size against.
	ResidualHint bool
}
