package horizon

import "github.com/NVE/TuLiPa-sub002/tptime"

// SequentialGroup is one run of equal-duration periods within a
// Sequential horizon.
type SequentialGroup struct {
	Count int
	Delta tptime.TimeDelta
}

// Sequential is a horizon built from groups of equal-duration periods
// laid end to end, e.g. the two-area market's 364 daily periods of
// Day(3) used in spec scenario 1.
type Sequential struct {
	durations []tptime.TimeDelta
	offsets   []tptime.TimeDelta
	total     tptime.TimeDelta
}

// NewSequential builds a Sequential horizon from its groups.
func NewSequential(groups []SequentialGroup) (*Sequential, error) {
	var durations []tptime.TimeDelta
	for _, g := range groups {
		for i := 0; i < g.Count; i++ {
			durations = append(durations, g.Delta)
		}
	}
	if err := validateDurations(durations); err != nil {
		return nil, err
	}
	return &Sequential{
		durations: durations,
		offsets:   offsetsFromDurations(durations),
		total:     totalOf(durations),
	}, nil
}

func (h *Sequential) NumPeriods() int                    { return len(h.durations) }
func (h *Sequential) Duration(i int) tptime.TimeDelta    { return h.durations[i] }
func (h *Sequential) StartOffset(i int) tptime.TimeDelta { return h.offsets[i] }
func (h *Sequential) TotalDuration() tptime.TimeDelta    { return h.total }
