package tptime

import "time"

// ProbTime is the sealed set of problem-time variants. Every variant
// carries at least a datatime (selects capacities, costs, conversions)
// and a scenariotime (selects profiles). Operations dispatch by
// matching the concrete variant rather than by a shared base struct,
// per the variant-types-plus-trait-interfaces convention used
// throughout this module.
type ProbTime interface {
	// DataTime returns the clock used to select capacities, costs and conversions.
	DataTime() time.Time
	// ScenarioTime returns the clock used to select profiles.
	ScenarioTime() time.Time
	// Add returns the same variant advanced by d.
	Add(d TimeDelta) ProbTime
	// Sub returns the same variant moved back by d.
	Sub(d TimeDelta) ProbTime
}

// Diff returns the elapsed TimeDelta from earlier to later, measured on
// the data clock — the clock a horizon's own period structure advances
// against. Callers driving a shrinkable horizon's Update from one
// problem time to the next use this to compute the advance.
func Diff(later, earlier ProbTime) TimeDelta {
	return NewTimeDelta(later.DataTime().Sub(earlier.DataTime()))
}

// TwoTime is the base ProbTime variant: a data clock and a scenario
// clock that advance together.
type TwoTime struct {
	Data     time.Time
	Scenario time.Time
}

// NewTwoTime builds a TwoTime from its two clocks.
func NewTwoTime(data, scenario time.Time) TwoTime {
	return TwoTime{Data: data, Scenario: scenario}
}

func (t TwoTime) DataTime() time.Time     { return t.Data }
func (t TwoTime) ScenarioTime() time.Time { return t.Scenario }

func (t TwoTime) Add(d TimeDelta) ProbTime {
	return TwoTime{Data: t.Data.Add(d.Duration()), Scenario: t.Scenario.Add(d.Duration())}
}

func (t TwoTime) Sub(d TimeDelta) ProbTime {
	return TwoTime{Data: t.Data.Add(-d.Duration()), Scenario: t.Scenario.Add(-d.Duration())}
}

// FixedDataTime is the ProbTime variant that leaves its datatime
// invariant while advancing scenariotime, supporting scenario sweeps
// pinned to a fixed planning date.
type FixedDataTime struct {
	Data     time.Time
	Scenario time.Time
}

// NewFixedDataTime builds a FixedDataTime from its two clocks.
func NewFixedDataTime(data, scenario time.Time) FixedDataTime {
	return FixedDataTime{Data: data, Scenario: scenario}
}

func (t FixedDataTime) DataTime() time.Time     { return t.Data }
func (t FixedDataTime) ScenarioTime() time.Time { return t.Scenario }

func (t FixedDataTime) Add(d TimeDelta) ProbTime {
	return FixedDataTime{Data: t.Data, Scenario: t.Scenario.Add(d.Duration())}
}

func (t FixedDataTime) Sub(d TimeDelta) ProbTime {
	return FixedDataTime{Data: t.Data, Scenario: t.Scenario.Add(-d.Duration())}
}

// PhaseInTime carries a second scenario clock and a transition window
// used to linearly blend between a short-term and a long-term
// scenario. This variant only carries the clocks and exposes the
// transition progress; no parameter in this module reads them
// (tsparam.UMMSeriesParam blends by its own Stop date instead).
type PhaseInTime struct {
	Data              time.Time
	Scenario          time.Time
	ShortTermScenario time.Time
	TransitionStart   time.Time
	TransitionLength  TimeDelta
}

// NewPhaseInTime builds a PhaseInTime.
func NewPhaseInTime(data, scenario, shortTermScenario, transitionStart time.Time, transitionLength TimeDelta) PhaseInTime {
	return PhaseInTime{
		Data:              data,
		Scenario:          scenario,
		ShortTermScenario: shortTermScenario,
		TransitionStart:   transitionStart,
		TransitionLength:  transitionLength,
	}
}

func (t PhaseInTime) DataTime() time.Time     { return t.Data }
func (t PhaseInTime) ScenarioTime() time.Time { return t.Scenario }

func (t PhaseInTime) Add(d TimeDelta) ProbTime {
	return PhaseInTime{
		Data:              t.Data.Add(d.Duration()),
		Scenario:          t.Scenario.Add(d.Duration()),
		ShortTermScenario: t.ShortTermScenario.Add(d.Duration()),
		TransitionStart:   t.TransitionStart,
		TransitionLength:  t.TransitionLength,
	}
}

func (t PhaseInTime) Sub(d TimeDelta) ProbTime {
	return PhaseInTime{
		Data:              t.Data.Add(-d.Duration()),
		Scenario:          t.Scenario.Add(-d.Duration()),
		ShortTermScenario: t.ShortTermScenario.Add(-d.Duration()),
		TransitionStart:   t.TransitionStart,
		TransitionLength:  t.TransitionLength,
	}
}

// ShortTermWeight returns the weight given to the short-term scenario
// at the variant's current scenario time: 1 at or before
// TransitionStart, linearly decaying to 0 once TransitionLength has
// elapsed, and 0 after the transition completes (or when
// TransitionLength is zero).
func (t PhaseInTime) ShortTermWeight() float64 {
	if t.TransitionLength.IsZero() {
		return 0
	}
	elapsed := t.Scenario.Sub(t.TransitionStart)
	if elapsed <= 0 {
		return 1
	}
	frac := elapsed.Seconds() / t.TransitionLength.Duration().Seconds()
	if frac >= 1 {
		return 0
	}
	return 1 - frac
}
