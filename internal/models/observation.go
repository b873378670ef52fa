package models

import "time"

// Observation is a timestamped scalar from one clinical stream.
type Observation struct {
	ChartTime time.Time
	Value     float64
}

// RateInterval is a drug infusion running at Rate over (Start, End).
type RateInterval struct {
	Start time.Time
	End   time.Time
	Rate  float64
}

// VentEpisode is a mechanical-ventilation period for a stay.
type VentEpisode struct {
	Start time.Time
	End   time.Time
}

// StayStreams bundles every clinical stream the scoring pipeline reads
// for a single stay. Lab streams are drawn at the hospital-admission
// grain but carried per stay here.
type StayStreams struct {
	MeanBP         []Observation
	GCS            []Observation
	UrineOutput    []Observation
	Bilirubin      []Observation
	Creatinine     []Observation
	Platelets      []Observation
	PaO2FiO2       []Observation
	VentEpisodes   []VentEpisode
	Epinephrine    []RateInterval
	Norepinephrine []RateInterval
	Dopamine       []RateInterval
	Dobutamine     []RateInterval
}
