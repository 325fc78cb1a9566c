// Package tulipa orchestrates the five lifecycle phases a parameterized
// LP problem is taken through: resolving a flat element bag into a typed
// object graph, building the problem's variables and rows once, writing
// their constant coefficients, rewriting the time-varying ones at each
// problem time, and solving. Every package upstream (element, model,
// boundary, lp and its backends) is usable standalone; Core is the glue
// an embedding application actually calls.
package tulipa

import (
	"context"
	"fmt"
	"time"

	"github.com/NVE/TuLiPa-sub002/boundary"
	"github.com/NVE/TuLiPa-sub002/element"
	"github.com/NVE/TuLiPa-sub002/horizon"
	"github.com/NVE/TuLiPa-sub002/lp"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/pkg/metrics"
	"github.com/NVE/TuLiPa-sub002/pkg/telemetry"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// Builder is implemented by model objects that add their variables and
// rows to a Problem once, during the build phase.
type Builder interface {
	Build(p lp.Problem) error
}

// ConstantSetter is implemented by model objects that write the
// coefficients which never change across problem times.
type ConstantSetter interface {
	SetConstants(p lp.Problem) error
}

// Updater is implemented by model objects that rewrite their
// time-varying coefficients at a given problem time.
type Updater interface {
	Update(p lp.Problem, t tptime.ProbTime) error
}

// horizonSource is implemented by every model.Balance variant: the
// "objects' balances" a problem reaches its horizons through, per the
// mandatory update contract ("records the set of horizons reached via
// its objects' balances"). Declared here, rather than imported from
// model, so tulipa does not need to depend on the model package to
// classify resolved objects by duck type.
type horizonSource interface {
	BalanceHorizon() horizon.Horizon
}

// timeAdvancer is implemented by horizon variants whose period
// structure depends on elapsed wall-clock time rather than only on
// problem time directly — currently horizon.Shrinkable, whose Update
// shrinks its leading period by the advance since the last call.
type timeAdvancer interface {
	Update(advance tptime.TimeDelta)
}

// Core.Update only advances elapsed-time-driven horizons
// (horizon.Shrinkable). horizon.Adaptive reclusters against a
// domain-specific residual-load signal (model.ResidualSignal), which
// only the caller can compute from the balances it cares about — that
// recluster stays an explicit, caller-driven step between Update
// calls, not something Core does on its own.

// Core holds one resolved object graph bound to one lp.Problem, and
// walks it through build -> set-constants -> update -> solve. Backend
// names every Solve call for the per-backend solve metrics; it is
// informational only and may be "" when m is nil.
type Core struct {
	Problem lp.Problem
	Objects *element.ObjectMap
	Backend string

	metrics *metrics.Metrics

	builders   []Builder
	constSetrs []ConstantSetter
	updaters   []Updater

	horizons       []horizon.Horizon
	lastUpdateTime tptime.ProbTime
}

// NewCore resolves elements against registry, runs the post-resolve
// assemble fixed-point pass, and classifies every resolved object by
// which lifecycle interfaces it implements. m may be nil, in which case
// no metrics are recorded.
func NewCore(ctx context.Context, elements []element.DataElement, registry *element.Registry, problem lp.Problem, backend string, m *metrics.Metrics) (*Core, error) {
	ctx, span := telemetry.StartSpan(ctx, "tulipa.resolve")
	defer span.End()

	start := time.Now()
	objects, err := element.Resolve(elements, registry)
	if m != nil {
		m.ResolveDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	if err := element.AssembleAll(objects); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	if m != nil {
		m.ResolverElementsLoaded.Set(float64(objects.Len()))
	}
	telemetry.AddEvent(ctx, "resolved", telemetry.ResolverAttributes(1, objects.Len(), false)...)

	c := &Core{Problem: problem, Objects: objects, Backend: backend, metrics: m}
	c.classify(objects)
	return c, nil
}

// classify walks every resolved object and records it under whichever
// of Builder/ConstantSetter/Updater it implements. A single object
// commonly satisfies all three, e.g. model.Flow. It also collects the
// distinct set of horizons reached via the resolved balances, sized by
// this one top-level pass rather than re-walked on every Update.
func (c *Core) classify(objects *element.ObjectMap) {
	seen := make(map[horizon.Horizon]struct{})
	for _, obj := range objects.All() {
		if b, ok := obj.(Builder); ok {
			c.builders = append(c.builders, b)
		}
		if cs, ok := obj.(ConstantSetter); ok {
			c.constSetrs = append(c.constSetrs, cs)
		}
		if u, ok := obj.(Updater); ok {
			c.updaters = append(c.updaters, u)
		}
		if hs, ok := obj.(horizonSource); ok {
			if h := hs.BalanceHorizon(); h != nil {
				if _, dup := seen[h]; !dup {
					seen[h] = struct{}{}
					c.horizons = append(c.horizons, h)
				}
			}
		}
	}
}

// StatefulObjects returns every resolved object implementing
// boundary.StatefulObject — callers building a boundary.StartEqualStop
// or a cut pool collect this list once after NewCore and reuse it
// across problem times.
func (c *Core) StatefulObjects() []boundary.StatefulObject {
	var out []boundary.StatefulObject
	for _, obj := range c.Objects.All() {
		if s, ok := obj.(boundary.StatefulObject); ok {
			out = append(out, s)
		}
	}
	return out
}

// Build adds every resolved object's variables and rows to the problem.
// Must be called exactly once, before SetConstants.
func (c *Core) Build(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "tulipa.build")
	defer span.End()
	start := time.Now()

	var errs apperror.List
	for _, b := range c.builders {
		if err := b.Build(c.Problem); err != nil {
			errs.Add(wrapPhaseErr(err, "build"))
		}
	}
	if c.metrics != nil {
		c.metrics.BuildDuration.WithLabelValues("core").Observe(time.Since(start).Seconds())
	}
	if errs.Len() > 0 {
		err := errs.Err()
		telemetry.SetError(ctx, err)
		return err
	}
	telemetry.AddEvent(ctx, "built", telemetry.SolveAttributes(c.Backend, c.Problem.NumCons(), c.Problem.NumVars(), "", 0)...)
	return nil
}

// SetConstants writes every resolved object's constant coefficients.
// Must be called exactly once, after Build and before the first Update.
func (c *Core) SetConstants(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "tulipa.set_constants")
	defer span.End()
	start := time.Now()

	var errs apperror.List
	for _, cs := range c.constSetrs {
		if err := cs.SetConstants(c.Problem); err != nil {
			errs.Add(wrapPhaseErr(err, "set-constants"))
		}
	}
	if c.metrics != nil {
		c.metrics.SetConstantsDuration.WithLabelValues("core").Observe(time.Since(start).Seconds())
	}
	if errs.Len() > 0 {
		err := errs.Err()
		telemetry.SetError(ctx, err)
		return err
	}
	return nil
}

// Update refreshes every collected horizon for problem time t, then
// rewrites every resolved object's time-varying coefficients. Called
// once per problem time, after SetConstants. The first call only
// records t as the update baseline: a horizon's period structure
// advances by elapsed time since the *previous* update, so there is
// nothing to advance by yet.
func (c *Core) Update(ctx context.Context, t tptime.ProbTime) error {
	ctx, span := telemetry.StartSpan(ctx, "tulipa.update")
	defer span.End()
	start := time.Now()

	if c.lastUpdateTime != nil {
		advance := tptime.Diff(t, c.lastUpdateTime)
		for _, h := range c.horizons {
			if ta, ok := h.(timeAdvancer); ok {
				ta.Update(advance)
			}
		}
	}
	c.lastUpdateTime = t

	var errs apperror.List
	for _, u := range c.updaters {
		if err := u.Update(c.Problem, t); err != nil {
			errs.Add(wrapPhaseErr(err, "update"))
		}
	}
	if c.metrics != nil {
		c.metrics.UpdateDuration.WithLabelValues("core").Observe(time.Since(start).Seconds())
	}
	if errs.Len() > 0 {
		err := errs.Err()
		telemetry.SetError(ctx, err)
		return err
	}
	return nil
}

// Solve solves the current problem state and returns its solution.
func (c *Core) Solve(ctx context.Context, opts lp.SolveOptions) (lp.Solution, error) {
	ctx, span := telemetry.StartSpan(ctx, "tulipa.solve")
	defer span.End()
	start := time.Now()

	sol, err := c.Problem.Solve(opts)
	if c.metrics != nil {
		c.metrics.RecordSolve(c.Backend, err == nil, time.Since(start))
	}
	if err != nil {
		telemetry.SetError(ctx, err)
		return lp.Solution{}, wrapPhaseErr(err, "solve")
	}
	telemetry.AddEvent(ctx, "solved", telemetry.SolveAttributes(c.Backend, c.Problem.NumCons(), c.Problem.NumVars(), sol.Status.String(), sol.Objective)...)
	return sol, nil
}

func wrapPhaseErr(err error, phase string) *apperror.Error {
	if ae, ok := err.(*apperror.Error); ok {
		return ae
	}
	return apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("%s phase failed", phase))
}
