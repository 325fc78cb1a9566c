package tsparam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVE/TuLiPa-sub002/tptime"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func atHour(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func probTimeAt(t time.Time) tptime.ProbTime {
	return tptime.NewTwoTime(t, t)
}

func TestConstantParam_NonDurational(t *testing.T) {
	p := NewConstantParam(42, false)
	val, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 42.0, val)
	assert.True(t, p.IsConstant())
	assert.False(t, p.IsDurational())
}

func TestConstantParam_Durational(t *testing.T) {
	p := NewConstantParam(10, true)
	val, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Day(1))
	require.NoError(t, err)
	assert.Equal(t, 240.0, val)
}

func TestConstantParam_DurationalRequiresDelta(t *testing.T) {
	p := NewConstantParam(10, true)
	_, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Zero)
	assert.Error(t, err)
}

func TestInfiniteTimeVectorParam_StepExtrapolates(t *testing.T) {
	v, err := NewInfiniteTimeVectorParam(
		[]time.Time{at(2023, 1, 1), at(2023, 1, 2), at(2023, 1, 3)},
		[]float64{0, 10, 5},
		InterpolationStep, false,
	)
	require.NoError(t, err)

	before, err := v.Value(probTimeAt(at(2020, 1, 1)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, before)

	after, err := v.Value(probTimeAt(at(2030, 1, 1)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 5.0, after)

	mid, err := v.Value(probTimeAt(at(2023, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 10.0, mid)
}

func TestInfiniteTimeVectorParam_LinearInterpolates(t *testing.T) {
	v, err := NewInfiniteTimeVectorParam(
		[]time.Time{at(2023, 1, 1), at(2023, 1, 3)},
		[]float64{0, 10},
		InterpolationLinear, false,
	)
	require.NoError(t, err)

	mid, err := v.Value(probTimeAt(at(2023, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, mid, 1e-9)
}

func TestInfiniteTimeVectorParam_MismatchedLengths(t *testing.T) {
	_, err := NewInfiniteTimeVectorParam([]time.Time{at(2023, 1, 1)}, []float64{1, 2}, InterpolationStep, false)
	assert.Error(t, err)
}

func TestRotatingTimeVectorParam_WithinWindow(t *testing.T) {
	v, err := NewRotatingTimeVectorParam(
		at(1980, 1, 1), at(1980, 1, 4),
		[]time.Time{at(1980, 1, 1), at(1980, 1, 2), at(1980, 1, 3)},
		[]float64{0, 10, 5},
		InterpolationStep, false,
	)
	require.NoError(t, err)

	val, err := v.Value(probTimeAt(at(2023, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 10.0, val)
}

func TestRotatingTimeVectorParam_HoldsLastSampleAfterStop(t *testing.T) {
	v, err := NewRotatingTimeVectorParam(
		at(1980, 1, 1), at(1980, 1, 4),
		[]time.Time{at(1980, 1, 1), at(1980, 1, 2), at(1980, 1, 3)},
		[]float64{0, 10, 5},
		InterpolationStep, false,
	)
	require.NoError(t, err)

	val, err := v.Value(probTimeAt(at(2023, 6, 1)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 5.0, val)
}

func TestRotatingTimeVectorParam_RotatesOnWholeYear(t *testing.T) {
	v, err := NewRotatingTimeVectorParam(
		at(1980, 1, 1), at(1980, 1, 4),
		[]time.Time{at(1980, 1, 1), at(1980, 1, 2), at(1980, 1, 3)},
		[]float64{0, 10, 5},
		InterpolationStep, false,
	)
	require.NoError(t, err)

	y1, err := v.Value(probTimeAt(at(2023, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	y2, err := v.Value(probTimeAt(at(2024, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, y1, y2)
}

func TestRotatingTimeVectorParam_BadWindow(t *testing.T) {
	_, err := NewRotatingTimeVectorParam(at(1980, 1, 4), at(1980, 1, 1), nil, nil, InterpolationStep, false)
	assert.Error(t, err)
}

func TestColumnParam_SharedTable(t *testing.T) {
	table, err := NewTable(
		[]time.Time{at(2023, 1, 1), at(2023, 1, 2)},
		map[string][]float64{"inflow": {1, 2}, "temperature": {-5, -3}},
		InterpolationStep,
	)
	require.NoError(t, err)

	inflow, err := NewColumnParam(table, "inflow", false)
	require.NoError(t, err)
	temp, err := NewColumnParam(table, "temperature", false)
	require.NoError(t, err)

	v1, err := inflow.Value(probTimeAt(at(2023, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v1)

	v2, err := temp.Value(probTimeAt(at(2023, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, -3.0, v2)
}

func TestColumnParam_UnknownColumn(t *testing.T) {
	table, err := NewTable([]time.Time{at(2023, 1, 1)}, map[string][]float64{"inflow": {1}}, InterpolationStep)
	require.NoError(t, err)

	_, err = NewColumnParam(table, "missing", false)
	assert.Error(t, err)
}

func TestTable_ColumnLengthMismatch(t *testing.T) {
	_, err := NewTable([]time.Time{at(2023, 1, 1), at(2023, 1, 2)}, map[string][]float64{"inflow": {1}}, InterpolationStep)
	assert.Error(t, err)
}

func TestMWToGWhSeriesParam(t *testing.T) {
	p := MWToGWhSeriesParam{MW: NewConstantParam(100, false)}
	val, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Day(1))
	require.NoError(t, err)
	assert.InDelta(t, 2.4, val, 1e-9)
	assert.True(t, p.IsDurational())
}

func TestM3SToMM3SeriesParam(t *testing.T) {
	p := M3SToMM3SeriesParam{M3S: NewConstantParam(1, false)}
	val, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Hour(1))
	require.NoError(t, err)
	assert.InDelta(t, 3600.0/1e6, val, 1e-12)
}

func TestFossilMCParam(t *testing.T) {
	p := FossilMCParam{
		FuelPrice:      NewConstantParam(20, false),
		Efficiency:     0.4,
		CO2Price:       NewConstantParam(50, false),
		EmissionFactor: 0.8,
	}
	val, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Zero)
	require.NoError(t, err)
	assert.InDelta(t, 20/0.4+50*0.8, val, 1e-9)
}

func TestFossilMCParam_ZeroEfficiency(t *testing.T) {
	p := FossilMCParam{FuelPrice: NewConstantParam(1, false), CO2Price: NewConstantParam(1, false)}
	_, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Zero)
	assert.Error(t, err)
}

// umm3DayShortTerm builds the 3-sample short-term series from spec
// scenario 4: [1, 0.5, 0.5] at 2023-01-01..03, held (step) between
// samples, durational.
func umm3DayShortTerm(t *testing.T) *InfiniteTimeVectorParam {
	t.Helper()
	v, err := NewInfiniteTimeVectorParam(
		[]time.Time{at(2023, 1, 1), at(2023, 1, 2), at(2023, 1, 3)},
		[]float64{1, 0.5, 0.5},
		InterpolationStep, true,
	)
	require.NoError(t, err)
	return v
}

// TestUMMSeriesParam_BlendsAcrossItsOwnSeriesBoundary reproduces spec
// scenario 4: Stop is the short-term series' own last sample date
// (2023-01-03), not an externally configured transition weight. A
// query window entirely inside the short-term range reads it outright;
// one straddling Stop splits and weight-averages by hours; one
// entirely beyond Stop reads pure long-term.
func TestUMMSeriesParam_BlendsAcrossItsOwnSeriesBoundary(t *testing.T) {
	// A flat, single-sample series rather than a durational
	// ConstantParam: ConstantParam's durational Value integrates to a
	// total (Val*hours), while every other time-vector-backed param in
	// this package reports a time-weighted average, which is what the
	// split-window blend below needs from both sides.
	longTerm, err := NewInfiniteTimeVectorParam([]time.Time{at(2023, 1, 1)}, []float64{10}, InterpolationStep, true)
	require.NoError(t, err)

	p := UMMSeriesParam{
		ShortTerm: umm3DayShortTerm(t),
		LongTerm:  longTerm,
		Stop:      at(2023, 1, 3),
	}

	day1, err := p.Value(probTimeAt(atHour(2023, 1, 1, 1)), tptime.Day(1))
	require.NoError(t, err)
	assert.InDelta(t, 0.9791666666666666, day1, 1e-12)

	day2, err := p.Value(probTimeAt(atHour(2023, 1, 2, 1)), tptime.Day(1))
	require.NoError(t, err)
	assert.InDelta(t, 0.8958333333333334, day2, 1e-12)

	day3, err := p.Value(probTimeAt(atHour(2023, 1, 3, 1)), tptime.Day(1))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, day3, 1e-12)
}

func TestUMMSeriesParam_NonDurationalReadsWhicheverSideOfStop(t *testing.T) {
	p := UMMSeriesParam{
		ShortTerm: NewConstantParam(100, false),
		LongTerm:  NewConstantParam(7, false),
		Stop:      at(2023, 1, 3),
	}
	before, err := p.Value(probTimeAt(at(2023, 1, 1)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 100.0, before)

	after, err := p.Value(probTimeAt(at(2023, 1, 3)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 7.0, after)
}

func TestPrognosisSeriesParam_UsesForecastWithinHorizon(t *testing.T) {
	issued := at(2023, 1, 1)
	p := NewPrognosisSeriesParam(issued, NewConstantParam(1, false), NewConstantParam(2, false), tptime.Day(3))

	near, err := p.Value(probTimeAt(at(2023, 1, 2)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 1.0, near)

	far, err := p.Value(probTimeAt(at(2023, 2, 1)), tptime.Zero)
	require.NoError(t, err)
	assert.Equal(t, 2.0, far)
}
