package horizon

import (
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// ResetMode selects what a Shrinkable horizon does once its first
// period has shrunk down to MinPeriod.
type ResetMode int

const (
	// ResetNormal restores the sub-horizon's original period lengths.
	ResetNormal ResetMode = iota
	// ResetShift drops the now-exhausted first period and shifts every
	// remaining period's slot down by one, appending a fresh last slot.
	ResetShift
)

// Shrinkable wraps a sub-horizon whose first period shrinks by the
// advance given to each Update call, until it reaches MinPeriod, at
// which point it resets. A bitset marks which periods changed on the
// last Update so downstream objects can skip unchanged periods.
//
// Each update shrinks period 0 by max(advance, ShrinkAtLeast) — the
// latter is a floor on how much ground one update covers, so a string
// of small advances still reaches MinPeriod in a bounded number of
// steps rather than crawling down by single ticks forever.
type Shrinkable struct {
	sub            Horizon
	shrinkAtLeast  tptime.TimeDelta
	minPeriod      tptime.TimeDelta
	mode           ResetMode
	durations      []tptime.TimeDelta
	changed        []bool
	shiftedIndices []int // per current slot, the sub-horizon index it now maps to, or -1 if fresh
}

// NewShrinkable builds a Shrinkable horizon over sub, shrinking its
// first period by at least shrinkAtLeast per update until it reaches
// minPeriod, then resetting per mode.
func NewShrinkable(sub Horizon, shrinkAtLeast, minPeriod tptime.TimeDelta, mode ResetMode) (*Shrinkable, error) {
	if sub.NumPeriods() < 1 {
		return nil, apperror.New(apperror.CodeBadHorizon, "shrinkable horizon requires a non-empty sub-horizon")
	}
	durations := make([]tptime.TimeDelta, sub.NumPeriods())
	shiftedIndices := make([]int, sub.NumPeriods())
	for i := 0; i < sub.NumPeriods(); i++ {
		durations[i] = sub.Duration(i)
		shiftedIndices[i] = i
	}
	return &Shrinkable{
		sub:            sub,
		shrinkAtLeast:  shrinkAtLeast,
		minPeriod:      minPeriod,
		mode:           mode,
		durations:      durations,
		changed:        make([]bool, sub.NumPeriods()),
		shiftedIndices: shiftedIndices,
	}, nil
}

func (h *Shrinkable) NumPeriods() int { return len(h.durations) }

func (h *Shrinkable) Duration(i int) tptime.TimeDelta { return h.durations[i] }

func (h *Shrinkable) StartOffset(i int) tptime.TimeDelta {
	offset := tptime.Zero
	for j := 0; j < i; j++ {
		offset = offset.Add(h.durations[j])
	}
	return offset
}

func (h *Shrinkable) TotalDuration() tptime.TimeDelta { return totalOf(h.durations) }

// Changed reports whether period i changed on the last Update call.
func (h *Shrinkable) Changed(i int) bool { return h.changed[i] }

// ShiftedIndex returns the sub-horizon index current slot i now maps
// to, or -1 if slot i holds a fresh (never-shrunk) period produced by
// a reset_shift.
func (h *Shrinkable) ShiftedIndex(i int) int { return h.shiftedIndices[i] }

// Update advances the horizon by advance, shrinking the first period.
// If the shrink would take the first period below MinPeriod, the
// horizon resets per its configured mode instead.
func (h *Shrinkable) Update(advance tptime.TimeDelta) {
	for i := range h.changed {
		h.changed[i] = false
	}

	shrinkBy := advance
	if shrinkBy.Compare(h.shrinkAtLeast) < 0 {
		shrinkBy = h.shrinkAtLeast
	}
	remaining := h.durations[0].Sub(shrinkBy)

	if remaining.Compare(h.minPeriod) >= 0 {
		h.durations[0] = remaining
		h.changed[0] = true
		return
	}

	switch h.mode {
	case ResetShift:
		for i := 0; i < len(h.durations)-1; i++ {
			h.durations[i] = h.sub.Duration(i + 1)
			h.shiftedIndices[i] = i + 1
		}
		last := len(h.durations) - 1
		h.durations[last] = h.sub.Duration(0)
		h.shiftedIndices[last] = -1
		h.changed[last] = true
	default: // ResetNormal
		for i := range h.durations {
			h.durations[i] = h.sub.Duration(i)
			h.shiftedIndices[i] = i
		}
		h.changed[0] = true
	}
}
