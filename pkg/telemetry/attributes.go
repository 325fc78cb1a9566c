package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys for the core lifecycle.
const (
	// Resolver
	AttrResolverPasses   = "resolver.passes"
	AttrResolverElements = "resolver.elements_loaded"
	AttrResolverStalled  = "resolver.stalled"

	// Horizon
	AttrHorizonKind      = "horizon.kind"
	AttrHorizonPeriods   = "horizon.periods"
	AttrHorizonRecluster = "horizon.reclustered"

	// Problem build/update/solve
	AttrObjectKind = "object.kind"
	AttrObjectId   = "object.id"
	AttrBackend    = "lp.backend"
	AttrRows       = "lp.rows"
	AttrColumns    = "lp.columns"
	AttrStatus     = "lp.status"
	AttrObjective  = "lp.objective"

	// Cut pool
	AttrCutPoolId      = "cutpool.id"
	AttrCutPoolRows    = "cutpool.active_rows"
	AttrCutPoolWrapped = "cutpool.wrapped"
)

// ResolverAttributes returns attributes describing one resolver pass.
func ResolverAttributes(passes, elementsLoaded int, stalled bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrResolverPasses, passes),
		attribute.Int(AttrResolverElements, elementsLoaded),
		attribute.Bool(AttrResolverStalled, stalled),
	}
}

// HorizonAttributes returns attributes describing a horizon's current state.
func HorizonAttributes(kind string, periods int, reclustered bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrHorizonKind, kind),
		attribute.Int(AttrHorizonPeriods, periods),
		attribute.Bool(AttrHorizonRecluster, reclustered),
	}
}

// SolveAttributes returns attributes describing a single solve call.
func SolveAttributes(backend string, rows, columns int, status string, objective float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrBackend, backend),
		attribute.Int(AttrRows, rows),
		attribute.Int(AttrColumns, columns),
		attribute.String(AttrStatus, status),
		attribute.Float64(AttrObjective, objective),
	}
}

// CutPoolAttributes returns attributes describing a cut pool's ring-buffer state.
func CutPoolAttributes(id string, activeRows int, wrapped bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCutPoolId, id),
		attribute.Int(AttrCutPoolRows, activeRows),
		attribute.Bool(AttrCutPoolWrapped, wrapped),
	}
}
