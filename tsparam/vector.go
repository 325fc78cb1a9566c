package tsparam

import (
	"time"

	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

func toEpochSeconds(t time.Time) float64 {
	return float64(t.Unix())
}

// InfiniteTimeVectorParam is a time vector defined over all time: a
// series of (timestamp, value) samples that extrapolates its first and
// last value forever in either direction.
type InfiniteTimeVectorParam struct {
	samples    []Sample
	mode       Interpolation
	durational bool
}

// NewInfiniteTimeVectorParam builds an infinite time vector from
// absolute timestamps and values, sorting the samples by time.
func NewInfiniteTimeVectorParam(times []time.Time, values []float64, mode Interpolation, durational bool) (*InfiniteTimeVectorParam, error) {
	if len(times) != len(values) {
		return nil, apperror.New(apperror.CodeInvalidArgument, "infinite time vector needs one value per timestamp")
	}
	samples := make([]Sample, len(times))
	for i := range times {
		samples[i] = Sample{Time: toEpochSeconds(times[i]), Value: values[i]}
	}
	return &InfiniteTimeVectorParam{samples: sortedSamples(samples), mode: mode, durational: durational}, nil
}

func (p *InfiniteTimeVectorParam) IsConstant() bool   { return false }
func (p *InfiniteTimeVectorParam) IsDurational() bool { return p.durational }

func (p *InfiniteTimeVectorParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	x := toEpochSeconds(t.ScenarioTime())
	if p.durational {
		if !delta.IsPositive() {
			return 0, apperror.New(apperror.CodeMissingField, "durational time vector requires a positive delta")
		}
		return averageOverWindow(p.samples, p.mode, x, delta.Hours()*3600), nil
	}
	return sampleAt(p.samples, p.mode, x), nil
}

// RotatingTimeVectorParam is a time vector whose samples are defined
// only within a bounded window [Start, Stop). A query date is reduced
// into the window's own calendar year by subtracting whole years
// (never by the window's length), so the pattern genuinely repeats
// only once a full year has elapsed. Within the window's year, once
// the reduced date has passed Stop, the last in-window sample holds
// for the remainder of that year.
type RotatingTimeVectorParam struct {
	start, stop time.Time
	samples     []Sample
	mode        Interpolation
	durational  bool
}

// NewRotatingTimeVectorParam builds a rotating time vector bounded by
// [start, stop).
func NewRotatingTimeVectorParam(start, stop time.Time, times []time.Time, values []float64, mode Interpolation, durational bool) (*RotatingTimeVectorParam, error) {
	if !stop.After(start) {
		return nil, apperror.New(apperror.CodeInvalidArgument, "rotating time vector stop must be after start")
	}
	if len(times) != len(values) {
		return nil, apperror.New(apperror.CodeInvalidArgument, "rotating time vector needs one value per timestamp")
	}
	samples := make([]Sample, len(times))
	for i := range times {
		samples[i] = Sample{Time: toEpochSeconds(times[i]), Value: values[i]}
	}
	return &RotatingTimeVectorParam{start: start, stop: stop, samples: sortedSamples(samples), mode: mode, durational: durational}, nil
}

// reduce maps an absolute query time into the window's own year by
// shifting back whole years until it falls within one year of start.
func (p *RotatingTimeVectorParam) reduce(t time.Time) time.Time {
	yearsOffset := t.Year() - p.start.Year()
	reduced := t.AddDate(-yearsOffset, 0, 0)
	for reduced.Before(p.start) {
		reduced = reduced.AddDate(1, 0, 0)
		yearsOffset--
	}
	for !reduced.Before(p.start.AddDate(1, 0, 0)) {
		reduced = reduced.AddDate(-1, 0, 0)
		yearsOffset++
	}
	return reduced
}

func (p *RotatingTimeVectorParam) lastSampleValue() float64 {
	if len(p.samples) == 0 {
		return 0
	}
	return p.samples[len(p.samples)-1].Value
}

func (p *RotatingTimeVectorParam) valueAt(reduced time.Time) float64 {
	if reduced.Before(p.stop) {
		return sampleAt(p.samples, p.mode, toEpochSeconds(reduced))
	}
	return p.lastSampleValue()
}

func (p *RotatingTimeVectorParam) IsConstant() bool   { return false }
func (p *RotatingTimeVectorParam) IsDurational() bool { return p.durational }

func (p *RotatingTimeVectorParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	reduced := p.reduce(t.ScenarioTime())
	if !p.durational {
		return p.valueAt(reduced), nil
	}
	if !delta.IsPositive() {
		return 0, apperror.New(apperror.CodeMissingField, "durational time vector requires a positive delta")
	}
	end := reduced.Add(delta.Duration())
	if !end.After(p.stop) {
		return averageOverWindow(p.samples, p.mode, toEpochSeconds(reduced), delta.Hours()*3600), nil
	}
	// The window crosses Stop within the delta: split at Stop and
	// weight the in-window average against the held last-sample tail.
	inWindow := p.stop.Sub(reduced).Hours()
	if inWindow <= 0 {
		return p.lastSampleValue(), nil
	}
	tailHours := delta.Hours() - inWindow
	inWindowAvg := averageOverWindow(p.samples, p.mode, toEpochSeconds(reduced), inWindow*3600)
	return (inWindowAvg*inWindow + p.lastSampleValue()*tailHours) / delta.Hours(), nil
}

// ColumnParam is a view into one named column of a shared profile
// table, letting many data elements reference the same loaded series
// (e.g. a weather year's inflow profile) without duplicating it.
type ColumnParam struct {
	table      *Table
	column     string
	durational bool
}

// Table is a shared collection of named sample series, keyed the way a
// loaded CSV or parquet profile file is: one time axis, many value
// columns.
type Table struct {
	times   []time.Time
	columns map[string][]float64
	mode    Interpolation
}

// NewTable builds a shared table from a common time axis and named value columns.
func NewTable(times []time.Time, columns map[string][]float64, mode Interpolation) (*Table, error) {
	for name, values := range columns {
		if len(values) != len(times) {
			return nil, apperror.NewWithField(apperror.CodeInvalidArgument, "column length must match the table's time axis", name)
		}
	}
	return &Table{times: times, columns: columns, mode: mode}, nil
}

func (tb *Table) samplesFor(column string) ([]Sample, error) {
	values, ok := tb.columns[column]
	if !ok {
		return nil, apperror.NewWithField(apperror.CodeMissingField, "unknown table column", column)
	}
	samples := make([]Sample, len(tb.times))
	for i := range tb.times {
		samples[i] = Sample{Time: toEpochSeconds(tb.times[i]), Value: values[i]}
	}
	return sortedSamples(samples), nil
}

// NewColumnParam builds a ColumnParam bound to one column of table.
func NewColumnParam(table *Table, column string, durational bool) (*ColumnParam, error) {
	if _, err := table.samplesFor(column); err != nil {
		return nil, err
	}
	return &ColumnParam{table: table, column: column, durational: durational}, nil
}

func (p *ColumnParam) IsConstant() bool   { return false }
func (p *ColumnParam) IsDurational() bool { return p.durational }

func (p *ColumnParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	samples, err := p.table.samplesFor(p.column)
	if err != nil {
		return 0, err
	}
	x := toEpochSeconds(t.ScenarioTime())
	if !p.durational {
		return sampleAt(samples, p.table.mode, x), nil
	}
	if !delta.IsPositive() {
		return 0, apperror.New(apperror.CodeMissingField, "durational column param requires a positive delta")
	}
	return averageOverWindow(samples, p.table.mode, x, delta.Hours()*3600), nil
}
