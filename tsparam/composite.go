package tsparam

import (
	"time"

	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// MWToGWhSeriesParam wraps a power-rate param (MW) and exposes it as
// energy (GWh) integrated over the query delta.
type MWToGWhSeriesParam struct {
	MW Param
}

func (p MWToGWhSeriesParam) IsConstant() bool   { return p.MW.IsConstant() }
func (p MWToGWhSeriesParam) IsDurational() bool { return true }

func (p MWToGWhSeriesParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	if !delta.IsPositive() {
		return 0, apperror.New(apperror.CodeMissingField, "MW-to-GWh conversion requires a positive delta")
	}
	mw, err := instantaneous(p.MW, t, delta)
	if err != nil {
		return 0, err
	}
	return mw * delta.Hours() / 1000, nil
}

// M3SToMM3SeriesParam wraps a flow-rate param (m3/s) and exposes it as
// volume (Mm3) integrated over the query delta.
type M3SToMM3SeriesParam struct {
	M3S Param
}

func (p M3SToMM3SeriesParam) IsConstant() bool   { return p.M3S.IsConstant() }
func (p M3SToMM3SeriesParam) IsDurational() bool { return true }

func (p M3SToMM3SeriesParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	if !delta.IsPositive() {
		return 0, apperror.New(apperror.CodeMissingField, "m3/s-to-Mm3 conversion requires a positive delta")
	}
	m3s, err := instantaneous(p.M3S, t, delta)
	if err != nil {
		return 0, err
	}
	return m3s * delta.Hours() * 3600 / 1e6, nil
}

// instantaneous evaluates a possibly-durational wrapped rate param as
// an instantaneous rate: a non-durational param is sampled directly;
// a durational one is divided back out by the delta it integrated
// over, so composite conversions can wrap either kind of source.
func instantaneous(p Param, t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	val, err := p.Value(t, delta)
	if err != nil {
		return 0, err
	}
	if p.IsDurational() && delta.IsPositive() {
		return val / delta.Hours(), nil
	}
	return val, nil
}

// FossilMCParam computes a thermal plant's marginal cost from a fuel
// price, a thermal efficiency, and a carbon price applied through an
// emission factor: MC = fuelPrice/efficiency + co2Price*emissionFactor.
type FossilMCParam struct {
	FuelPrice      Param
	Efficiency     float64
	CO2Price       Param
	EmissionFactor float64
}

func (p FossilMCParam) IsConstant() bool {
	return p.FuelPrice.IsConstant() && p.CO2Price.IsConstant()
}

func (p FossilMCParam) IsDurational() bool { return false }

func (p FossilMCParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	if p.Efficiency <= 0 {
		return 0, apperror.New(apperror.CodeInvalidArgument, "fossil marginal cost requires a positive efficiency")
	}
	fuel, err := p.FuelPrice.Value(t, delta)
	if err != nil {
		return 0, err
	}
	co2, err := p.CO2Price.Value(t, delta)
	if err != nil {
		return 0, err
	}
	return fuel/p.Efficiency + co2*p.EmissionFactor, nil
}

// UMMSeriesParam phases from a short-term series (e.g. an
// unplanned-outage-adjusted availability signal) into a long-term
// profile once the short-term series' own defined range ends. Stop is
// that boundary — the short-term series' last sample date — not an
// independently configured transition weight: a query window entirely
// before Stop reads the short-term source outright, one entirely at or
// after Stop reads the long-term source outright, and one that spans
// Stop is split at the boundary and weight-averaged by the hours each
// source covers, mirroring RotatingTimeVectorParam.Value's own
// window-crossing split average.
type UMMSeriesParam struct {
	ShortTerm Param
	LongTerm  Param
	Stop      time.Time
}

func (p UMMSeriesParam) IsConstant() bool {
	return p.ShortTerm.IsConstant() && p.LongTerm.IsConstant()
}

func (p UMMSeriesParam) IsDurational() bool { return p.LongTerm.IsDurational() }

func (p UMMSeriesParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	x := t.ScenarioTime()

	if !delta.IsPositive() {
		if x.Before(p.Stop) {
			return p.ShortTerm.Value(t, delta)
		}
		return p.LongTerm.Value(t, delta)
	}

	end := x.Add(delta.Duration())
	if !end.After(p.Stop) {
		return p.ShortTerm.Value(t, delta)
	}
	if !x.Before(p.Stop) {
		return p.LongTerm.Value(t, delta)
	}

	inWindowHours := p.Stop.Sub(x).Hours()
	tailHours := delta.Hours() - inWindowHours
	inWindowDelta := tptime.NewTimeDelta(time.Duration(inWindowHours * float64(time.Hour)))
	tailDelta := tptime.NewTimeDelta(time.Duration(tailHours * float64(time.Hour)))

	shortVal, err := p.ShortTerm.Value(t, inWindowDelta)
	if err != nil {
		return 0, err
	}
	longVal, err := p.LongTerm.Value(t.Add(inWindowDelta), tailDelta)
	if err != nil {
		return 0, err
	}
	return (shortVal*inWindowHours + longVal*tailHours) / delta.Hours(), nil
}

// PrognosisSeriesParam prefers a short-horizon forecast source while
// the query's data time is within Horizon of the forecast's issue
// time, and falls back to a normal long-run source beyond it.
type PrognosisSeriesParam struct {
	IssuedAt  time.Time
	Prognosis Param
	Fallback  Param
	Horizon   tptime.TimeDelta
}

// NewPrognosisSeriesParam builds a prognosis param: prognosis is used
// while t.DataTime() is within horizon of issuedAt, fallback otherwise.
func NewPrognosisSeriesParam(issuedAt time.Time, prognosis, fallback Param, horizon tptime.TimeDelta) PrognosisSeriesParam {
	return PrognosisSeriesParam{IssuedAt: issuedAt, Prognosis: prognosis, Fallback: fallback, Horizon: horizon}
}

func (p PrognosisSeriesParam) IsConstant() bool {
	return p.Prognosis.IsConstant() && p.Fallback.IsConstant()
}

func (p PrognosisSeriesParam) IsDurational() bool { return p.Fallback.IsDurational() }

func (p PrognosisSeriesParam) Value(t tptime.ProbTime, delta tptime.TimeDelta) (float64, error) {
	age := t.DataTime().Sub(p.IssuedAt)
	if age >= 0 && age <= p.Horizon.Duration() {
		return p.Prognosis.Value(t, delta)
	}
	return p.Fallback.Value(t, delta)
}
