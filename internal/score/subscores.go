// Package score computes the six SOFA organ sub-scores from one slot's
// hourly aggregates. Every function returns nil when its inputs carry no
// data; nil is distinct from 0 (confirmed normal) and is only collapsed
// to 0 by the final trailing-window aggregation.
package score

import "mimic-sofa/internal/models"

var (
	coagulationBands = []Band{{20, 4}, {50, 3}, {100, 2}, {150, 1}}
	liverBands       = []Band{{12.0, 4}, {6.0, 3}, {2.0, 2}, {1.2, 1}}
	cnsBands         = []Band{{6, 4}, {10, 3}, {13, 2}, {15, 1}}
	creatinineBands  = []Band{{5.0, 4}, {3.5, 3}, {2.0, 2}, {1.2, 1}}
)

// Coagulation scores the slot's minimum platelet count (K/uL).
func Coagulation(plateletMin *float64) *int {
	return EvalBelow(plateletMin, coagulationBands)
}

// Liver scores the slot's maximum bilirubin (mg/dL).
func Liver(bilirubinMax *float64) *int {
	return EvalAtLeast(bilirubinMax, liverBands)
}

// CNS scores the slot's minimum Glasgow Coma Scale.
func CNS(gcsMin *float64) *int {
	return EvalBelow(gcsMin, cnsBands)
}

// Respiration scores the PaO2/FiO2 ratio, ventilated thresholds first.
// Scores 3 and 4 require mechanical ventilation; an unventilated ratio
// can contribute at most 2.
func Respiration(pfVentMin, pfNoVentMin *float64) *int {
	switch {
	case pfVentMin != nil && *pfVentMin < 100:
		return intPtr(4)
	case pfVentMin != nil && *pfVentMin < 200:
		return intPtr(3)
	case pfNoVentMin != nil && *pfNoVentMin < 300:
		return intPtr(2)
	case pfNoVentMin != nil && *pfNoVentMin < 400:
		return intPtr(1)
	case pfVentMin == nil && pfNoVentMin == nil:
		return nil
	}
	return intPtr(0)
}

// Cardiovascular scores vasopressor support first, hypotension last.
// Dopamine and dobutamine rates are mcg/kg/min; epinephrine and
// norepinephrine any running rate up to 0.1 already scores 3.
func Cardiovascular(meanBPMin, dopamine, dobutamine, epinephrine, norepinephrine *float64) *int {
	switch {
	case gt(dopamine, 15) || gt(epinephrine, 0.1) || gt(norepinephrine, 0.1):
		return intPtr(4)
	case gt(dopamine, 5) || le(epinephrine, 0.1) || le(norepinephrine, 0.1):
		return intPtr(3)
	case gt(dopamine, 0) || gt(dobutamine, 0):
		return intPtr(2)
	case meanBPMin != nil && *meanBPMin < 70:
		return intPtr(1)
	case meanBPMin == nil && dopamine == nil && dobutamine == nil &&
		epinephrine == nil && norepinephrine == nil:
		return nil
	}
	return intPtr(0)
}

// Renal scores the slot's maximum creatinine (mg/dL) and the trailing
// 24-hour urine sum (mL). The two rule sets interleave by severity, so
// the sub-score is the worse of the two parts. The urine sum is itself
// a windowed input, computed before and independently of the final
// worst-value windowing over this sub-score.
func Renal(creatinineMax, urineSum24 *float64) *int {
	creat := EvalAtLeast(creatinineMax, creatinineBands)
	urine := oliguria(urineSum24)
	switch {
	case creat == nil:
		return urine
	case urine == nil:
		return creat
	case *urine > *creat:
		return urine
	}
	return creat
}

func oliguria(urineSum24 *float64) *int {
	switch {
	case urineSum24 == nil:
		return nil
	case *urineSum24 < 200:
		return intPtr(4)
	case *urineSum24 < 500:
		return intPtr(3)
	}
	return intPtr(0)
}

// Compute derives all six sub-scores for one slot.
func Compute(agg models.HourlyAggregates, urineSum24 *float64) models.SubScores {
	return models.SubScores{
		Respiration:    Respiration(agg.PaO2FiO2VentMin, agg.PaO2FiO2NoVentMin),
		Coagulation:    Coagulation(agg.PlateletMin),
		Liver:          Liver(agg.BilirubinMax),
		Cardiovascular: Cardiovascular(agg.MeanBPMin, agg.RateDopamine, agg.RateDobutamine, agg.RateEpinephrine, agg.RateNorepinephrine),
		CNS:            CNS(agg.GCSMin),
		Renal:          Renal(agg.CreatinineMax, urineSum24),
	}
}

// nil-safe comparisons: an absent value never satisfies a rule.

func gt(v *float64, limit float64) bool { return v != nil && *v > limit }
func le(v *float64, limit float64) bool { return v != nil && *v <= limit }

func intPtr(i int) *int { return &i }
