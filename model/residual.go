package model

import (
	"github.com/NVE/TuLiPa-sub002/horizon"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// unitHorizon is implemented by horizon.Adaptive: its NumPeriods/
// Duration report the current, already-clustered block structure, not
// the fixed atomic-unit grid ReclusterFlat requires a signal shaped
// against. A horizon exposing this is measured over its atomic units
// instead of its (post-clustering) periods.
type unitHorizon interface {
	UnitCount() int
	UnitDuration() tptime.TimeDelta
}

// ResidualSignal evaluates the residual load an adaptive horizon
// clusters on: the signed sum, per atomic unit of h, of every
// ResidualHint-flagged RHSTerm across balances. A demand term (Sign
// +1) adds to the residual; a must-run supply term wired with Sign -1
// subtracts from it, leaving the flexible, dispatchable remainder for
// the clustering to size blocks against.
//
// balances must all share h as their horizon; the signal has one value
// per atomic unit of h, in unit order, ready for
// horizon.Adaptive.ReclusterFlat. For an h that has already been
// clustered (implements unitHorizon, e.g. horizon.Adaptive), the
// signal is measured over its fixed atomic-unit grid rather than its
// current, already-collapsed period count.
func ResidualSignal(h horizon.Horizon, balances []*EndogenousBalance, t tptime.ProbTime) ([]float64, error) {
	n := h.NumPeriods()
	duration := h.Duration
	if uh, ok := h.(unitHorizon); ok {
		n = uh.UnitCount()
		unitDuration := uh.UnitDuration()
		duration = func(int) tptime.TimeDelta { return unitDuration }
	}

	signal := make([]float64, n)
	for _, b := range balances {
		if b.Horizon != h {
			continue
		}
		for _, term := range b.RHSTerms {
			if !term.ResidualHint {
				continue
			}
			for i := 0; i < n; i++ {
				v, err := term.Param.Value(t, duration(i))
				if err != nil {
					return nil, err
				}
				signal[i] += term.Sign * v
			}
		}
	}
	return signal, nil
}
