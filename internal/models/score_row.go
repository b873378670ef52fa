package models

import "time"

// HourlyAggregates holds one slot's aligned stream values. A nil field
// means no observation fell in the slot, which is distinct from a
// measured-normal value until the final windowing step.
type HourlyAggregates struct {
	MeanBPMin          *float64
	GCSMin             *float64
	UrineOutput        *float64
	BilirubinMax       *float64
	CreatinineMax      *float64
	PlateletMin        *float64
	PaO2FiO2VentMin    *float64
	PaO2FiO2NoVentMin  *float64
	RateEpinephrine    *float64
	RateNorepinephrine *float64
	RateDopamine       *float64
	RateDobutamine     *float64
}

// SubScores are the six per-hour organ sub-scores, each 0..4 or nil when
// the underlying data is absent.
type SubScores struct {
	Respiration    *int
	Coagulation    *int
	Liver          *int
	Cardiovascular *int
	CNS            *int
	Renal          *int
}

// WindowedScores are the trailing-24h worst sub-scores (nil collapsed to
// 0) and their sum.
type WindowedScores struct {
	Respiration    int
	Coagulation    int
	Liver          int
	Cardiovascular int
	CNS            int
	Renal          int
	Total          int
}

// HourlyScore is one output row of sofa_hourly.
type HourlyScore struct {
	StayID     int64
	Hr         int
	Start      time.Time
	End        time.Time
	Aggregates HourlyAggregates
	UrineSum24 *float64
	Raw        SubScores
	Windowed   WindowedScores
}
