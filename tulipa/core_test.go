package tulipa

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVE/TuLiPa-sub002/element"
	"github.com/NVE/TuLiPa-sub002/horizon"
	"github.com/NVE/TuLiPa-sub002/identity"
	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/lp/gonumsimplex"
	"github.com/NVE/TuLiPa-sub002/model"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
	"github.com/NVE/TuLiPa-sub002/tsparam"
)

func testHorizon(t *testing.T, n int) horizon.Horizon {
	t.Helper()
	h, err := horizon.NewSequential([]horizon.SequentialGroup{{Count: n, Delta: tptime.Hour(1)}})
	require.NoError(t, err)
	return h
}

// registryForTwoAreaMarket registers a minimal element vocabulary
// covering every model object the two-area market scenario needs:
// commodities, endogenous/exogenous balances, base arrows, and flows.
// Each IncludeFunc reports ready=false when a referenced object has not
// resolved yet, so the resolver's fixed-point loop carries the graph to
// completion regardless of input order.
func registryForTwoAreaMarket(t *testing.T, h horizon.Horizon) *element.Registry {
	t.Helper()
	r := element.NewRegistry()

	r.Register(identity.NewTypeKey("commodity", "simple"), func(objects *element.ObjectMap, e element.DataElement) (bool, error) {
		objects.Put(e.Key.Id(), &model.Commodity{Id: e.Key.Id(), Horizon: h})
		return true, nil
	})

	lookupCommodity := func(objects *element.ObjectMap, e element.DataElement) (*model.Commodity, bool, error) {
		ref, ok := element.ReferenceField(e.Value, "CommodityConcept", "CommodityInstance")
		if !ok {
			return nil, false, apperror.New(apperror.CodeMissingField, "missing commodity reference")
		}
		raw, found := objects.Get(ref.Id())
		if !found {
			return nil, false, nil
		}
		c, ok := raw.(*model.Commodity)
		if !ok {
			return nil, false, apperror.New(apperror.CodeWrongFieldType, "referenced object is not a commodity")
		}
		return c, true, nil
	}

	r.Register(identity.NewTypeKey("balance", "endogenous"), func(objects *element.ObjectMap, e element.DataElement) (bool, error) {
		commodity, ready, err := lookupCommodity(objects, e)
		if err != nil || !ready {
			return false, err
		}
		rhs, _, _ := element.OptionalField[float64](e, "DemandLevel")
		var terms []model.RHSTerm
		if rhs != 0 {
			terms = []model.RHSTerm{{TermId: "demand", Param: tsparam.NewConstantParam(rhs, false), Sign: 1}}
		}
		objects.Put(e.Key.Id(), &model.EndogenousBalance{ObjId: e.Key.Id(), Commodity: commodity, RHSTerms: terms})
		return true, nil
	})

	r.Register(identity.NewTypeKey("balance", "exogenous"), func(objects *element.ObjectMap, e element.DataElement) (bool, error) {
		commodity, ready, err := lookupCommodity(objects, e)
		if err != nil || !ready {
			return false, err
		}
		price, err := element.RequireField[float64](e, "Price")
		if err != nil {
			return false, err
		}
		objects.Put(e.Key.Id(), &model.ExogenousBalance{
			ObjId: e.Key.Id(), Commodity: commodity,
			Price: model.Price{Param: tsparam.NewConstantParam(price, false)},
		})
		return true, nil
	})

	r.Register(identity.NewTypeKey("arrow", "base"), func(objects *element.ObjectMap, e element.DataElement) (bool, error) {
		ref, ok := element.ReferenceField(e.Value, "BalanceConcept", "BalanceInstance")
		if !ok {
			return false, apperror.New(apperror.CodeMissingField, "arrow missing balance reference")
		}
		raw, found := objects.Get(ref.Id())
		if !found {
			return false, nil
		}
		bal, ok := raw.(model.Balance)
		if !ok {
			return false, apperror.New(apperror.CodeWrongFieldType, "referenced object is not a balance")
		}
		dirField, err := element.RequireField[string](e, "Direction")
		if err != nil {
			return false, err
		}
		dir := model.DirIn
		if dirField == "out" {
			dir = model.DirOut
		}
		objects.Put(e.Key.Id(), &model.BaseArrow{
			ObjId: e.Key.Id(), Balance: bal, Dir: dir,
			Conversion: model.Conversion{Param: tsparam.NewConstantParam(1, false)},
		})
		return true, nil
	})

	r.Register(identity.NewTypeKey("flow", "simple"), func(objects *element.ObjectMap, e element.DataElement) (bool, error) {
		refs, ok := e.Value["Arrows"].([]identity.Reference)
		if !ok {
			return false, apperror.New(apperror.CodeMissingField, "flow missing arrow references")
		}
		arrows := make([]model.Arrow, 0, len(refs))
		for _, ref := range refs {
			raw, found := objects.Get(ref.Id())
			if !found {
				return false, nil
			}
			arr, ok := raw.(model.Arrow)
			if !ok {
				return false, apperror.New(apperror.CodeWrongFieldType, "referenced object is not an arrow")
			}
			arrows = append(arrows, arr)
		}
		objects.Put(e.Key.Id(), &model.Flow{ObjId: e.Key.Id(), Arrows: arrows})
		return true, nil
	})

	return r
}

// TestCore_TwoAreaMarket_EndToEnd resolves, builds, sets constants,
// updates and solves a two-area deterministic power market from raw
// data elements (spec.md §8's end-to-end scenario) and checks the
// solved objective matches the exogenous price times the fixed demand
// level, as model.TestFlow_BalancesAgainstExogenousPrice
// checks when the objects are wired by hand instead of through the
// resolver.
func TestCore_TwoAreaMarket_EndToEnd(t *testing.T) {
	h := testHorizon(t, 3)
	registry := registryForTwoAreaMarket(t, h)

	elements := []element.DataElement{
		{Key: identity.NewElementKey("flow", "simple", "power-line"), Value: map[string]any{
			"Arrows": []identity.Reference{
				identity.NewReference("arrow", "into-demand"),
				identity.NewReference("arrow", "out-of-supply"),
			},
		}},
		{Key: identity.NewElementKey("arrow", "base", "into-demand"), Value: map[string]any{
			"BalanceConcept": "balance", "BalanceInstance": "demand", "Direction": "in",
		}},
		{Key: identity.NewElementKey("arrow", "base", "out-of-supply"), Value: map[string]any{
			"BalanceConcept": "balance", "BalanceInstance": "supply", "Direction": "out",
		}},
		{Key: identity.NewElementKey("balance", "endogenous", "demand"), Value: map[string]any{
			"CommodityConcept": "commodity", "CommodityInstance": "power", "DemandLevel": 5.0,
		}},
		{Key: identity.NewElementKey("balance", "exogenous", "supply"), Value: map[string]any{
			"CommodityConcept": "commodity", "CommodityInstance": "power", "Price": 10.0,
		}},
		{Key: identity.NewElementKey("commodity", "simple", "power"), Value: map[string]any{}},
	}

	problem := gonumsimplex.New()
	ctx := context.Background()
	core, err := NewCore(ctx, elements, registry, problem, "gonumsimplex", nil)
	require.NoError(t, err)

	require.NoError(t, core.Build(ctx))
	require.NoError(t, core.SetConstants(ctx))
	require.NoError(t, core.Update(ctx, tptime.NewTwoTime(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))))

	sol, err := core.Solve(ctx, lp.SolveOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 150, sol.Objective, 1e-6)
}

func TestCore_DanglingReferenceSurfacesAsResolveError(t *testing.T) {
	h := testHorizon(t, 1)
	registry := registryForTwoAreaMarket(t, h)
	elements := []element.DataElement{
		{Key: identity.NewElementKey("balance", "endogenous", "demand"), Value: map[string]any{
			"CommodityConcept": "commodity", "CommodityInstance": "does-not-exist",
		}},
	}

	problem := gonumsimplex.New()
	_, err := NewCore(context.Background(), elements, registry, problem, "gonumsimplex", nil)
	require.Error(t, err)
	assert.True(t, apperror.Code(err) == apperror.CodeAssembleStalled || containsCode(err, apperror.CodeAssembleStalled))
}

// TestCore_UpdateAdvancesShrinkableHorizons checks that Core.Update
// collects the horizon reached through the resolved balances and
// advances it by the elapsed data-time between successive calls,
// leaving it untouched on the very first call (there is no prior time
// to measure an advance from yet).
func TestCore_UpdateAdvancesShrinkableHorizons(t *testing.T) {
	sub, err := horizon.NewSequential([]horizon.SequentialGroup{{Count: 3, Delta: tptime.Hour(1)}})
	require.NoError(t, err)
	shrinkable, err := horizon.NewShrinkable(sub, tptime.Hour(0), tptime.Hour(0.1), horizon.ResetNormal)
	require.NoError(t, err)

	registry := registryForTwoAreaMarket(t, shrinkable)
	elements := []element.DataElement{
		{Key: identity.NewElementKey("flow", "simple", "power-line"), Value: map[string]any{
			"Arrows": []identity.Reference{
				identity.NewReference("arrow", "into-demand"),
				identity.NewReference("arrow", "out-of-supply"),
			},
		}},
		{Key: identity.NewElementKey("arrow", "base", "into-demand"), Value: map[string]any{
			"BalanceConcept": "balance", "BalanceInstance": "demand", "Direction": "in",
		}},
		{Key: identity.NewElementKey("arrow", "base", "out-of-supply"), Value: map[string]any{
			"BalanceConcept": "balance", "BalanceInstance": "supply", "Direction": "out",
		}},
		{Key: identity.NewElementKey("balance", "endogenous", "demand"), Value: map[string]any{
			"CommodityConcept": "commodity", "CommodityInstance": "power", "DemandLevel": 5.0,
		}},
		{Key: identity.NewElementKey("balance", "exogenous", "supply"), Value: map[string]any{
			"CommodityConcept": "commodity", "CommodityInstance": "power", "Price": 10.0,
		}},
		{Key: identity.NewElementKey("commodity", "simple", "power"), Value: map[string]any{}},
	}

	problem := gonumsimplex.New()
	ctx := context.Background()
	core, err := NewCore(ctx, elements, registry, problem, "gonumsimplex", nil)
	require.NoError(t, err)
	require.NoError(t, core.Build(ctx))
	require.NoError(t, core.SetConstants(ctx))

	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, core.Update(ctx, tptime.NewTwoTime(base, base)))
	assert.Equal(t, tptime.Hour(1), shrinkable.Duration(0), "first update only records the baseline time")

	require.NoError(t, core.Update(ctx, tptime.NewTwoTime(base.Add(30*time.Minute), base.Add(30*time.Minute))))
	assert.Equal(t, tptime.Hour(0.5), shrinkable.Duration(0), "second update advances by the elapsed data time")
}

func containsCode(err error, code apperror.ErrorCode) bool {
	list, ok := err.(*apperror.List)
	if !ok {
		return false
	}
	for _, e := range list.Errors() {
		if e.Code == code {
			return true
		}
	}
	return false
}
