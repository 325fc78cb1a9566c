// Package horizon implements the time discretisations an LP is built
// against: sequential, adaptive, and shrinkable horizons, the
// subperiod mapping that lets objects on different grids share a
// balance, and the rigid offsets horizons can be shifted by.
package horizon

import (
	"time"

	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// Horizon is the sealed set of horizon variants: an ordered, finite
// sequence of periods, each with a TimeDelta, that can be iterated
// many times per update without side effects.
type Horizon interface {
	// NumPeriods returns the number of periods in the horizon.
	NumPeriods() int
	// Duration returns the i'th period's span (0-indexed).
	Duration(i int) tptime.TimeDelta
	// StartOffset returns the wall-clock offset of period i's start
	// from the horizon's own reference start time.
	StartOffset(i int) tptime.TimeDelta
	// TotalDuration returns the sum of every period's duration.
	TotalDuration() tptime.TimeDelta
}

// Offset rigidly shifts what GetStartTime returns without changing a
// horizon's period count or delta structure.
type Offset struct {
	// TimeDelta shifts both clocks together.
	TimeDelta tptime.TimeDelta
	// Scenario shifts only the scenario clock, independent of TimeDelta.
	Scenario tptime.TimeDelta
	// IsoYear, when non-zero, shifts the scenario clock's date to the
	// given ISO year instead of applying Scenario.
	IsoYear int
}

// GetStartTime applies an offset to a reference problem time, returning
// the (data, scenario) start times a horizon's period i should use.
func GetStartTime(ref tptime.ProbTime, horizonStart tptime.TimeDelta, off Offset) (data, scenario time.Time) {
	data = ref.DataTime().Add(horizonStart.Add(off.TimeDelta).Duration())
	if off.IsoYear != 0 {
		scenario = ref.ScenarioTime().Add(horizonStart.Add(off.TimeDelta).Duration())
		isoYear, _ := scenario.ISOWeek()
		scenario = scenario.AddDate(off.IsoYear-isoYear, 0, 0)
		return data, scenario
	}
	scenario = ref.ScenarioTime().Add(horizonStart.Add(off.TimeDelta).Add(off.Scenario).Duration())
	return data, scenario
}

func validateDurations(durations []tptime.TimeDelta) error {
	if len(durations) == 0 {
		return apperror.New(apperror.CodeBadHorizon, "horizon must have at least one period")
	}
	for i, d := range durations {
		if !d.IsPositive() {
			return apperror.New(apperror.CodeBadHorizon, "period duration must be positive").WithDetails("index", i)
		}
	}
	return nil
}

func offsetsFromDurations(durations []tptime.TimeDelta) []tptime.TimeDelta {
	offsets := make([]tptime.TimeDelta, len(durations))
	running := tptime.Zero
	for i, d := range durations {
		offsets[i] = running
		running = running.Add(d)
	}
	return offsets
}

func totalOf(durations []tptime.TimeDelta) tptime.TimeDelta {
	total := tptime.Zero
	for _, d := range durations {
		total = total.Add(d)
	}
	return total
}

// GetSubperiods partitions a fine horizon's periods by a coarse
// horizon's period coarseIx: it returns the half-open [lo, hi) range of
// fine-period indices whose cumulative durations exactly cover the
// coarse period's span. Returns SubperiodMismatch if the fine horizon's
// period boundaries do not align with the coarse period's start/stop.
func GetSubperiods(coarse, fine Horizon, coarseIx int) (lo, hi int, err error) {
	if coarseIx < 0 || coarseIx >= coarse.NumPeriods() {
		return 0, 0, apperror.New(apperror.CodeIndexOutOfRange, "coarse period index out of range").WithDetails("index", coarseIx)
	}
	coarseStart := coarse.StartOffset(coarseIx)
	coarseStop := coarseStart.Add(coarse.Duration(coarseIx))

	lo, hi = -1, -1
	for i := 0; i < fine.NumPeriods(); i++ {
		start := fine.StartOffset(i)
		if lo == -1 && start.Compare(coarseStart) == 0 {
			lo = i
		}
		stop := start.Add(fine.Duration(i))
		if lo != -1 && hi == -1 && stop.Compare(coarseStop) == 0 {
			hi = i + 1
			break
		}
	}
	if lo == -1 || hi == -1 {
		return 0, 0, apperror.New(apperror.CodeSubperiodMismatch, "fine horizon periods do not partition the coarse period").
			WithDetails("coarse_index", coarseIx)
	}
	return lo, hi, nil
}
