package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"mimic-sofa/internal/models"
)

// ObservationRepository reads the per-stream clinical observations the
// scoring pipeline aligns onto the hourly timeline. All inputs are
// already-materialized MIMIC tables or concept views; this layer only
// reads.
type ObservationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewObservationRepository creates a new observation repository.
func NewObservationRepository(db *sql.DB, logger *zap.Logger) *ObservationRepository {
	return &ObservationRepository{
		db:     db,
		logger: logger,
	}
}

// GetMeanBP returns mean-arterial-pressure chart events for a stay.
// Rows flagged as erroneous by the source are excluded here; the
// physiological plausibility filter lives in the aligner.
func (r *ObservationRepository) GetMeanBP(stayID int64) ([]models.Observation, error) {
	query := `
		SELECT charttime, valuenum
		FROM chartevents
		WHERE icustay_id = $1
		  AND itemid IN (456, 52, 6702, 443, 220052, 220181, 225312)
		  AND valuenum IS NOT NULL
		  AND (error IS NULL OR error = 0)
		ORDER BY charttime
	`
	return r.queryObservations(query, "mean bp", stayID)
}

// GetGCS returns Glasgow Coma Scale totals for a stay.
func (r *ObservationRepository) GetGCS(stayID int64) ([]models.Observation, error) {
	query := `
		SELECT charttime, gcs
		FROM pivoted_gcs
		WHERE icustay_id = $1
		  AND gcs IS NOT NULL
		ORDER BY charttime
	`
	return r.queryObservations(query, "gcs", stayID)
}

// GetUrineOutput returns urine-output events for a stay.
func (r *ObservationRepository) GetUrineOutput(stayID int64) ([]models.Observation, error) {
	query := `
		SELECT charttime, value
		FROM urineoutput
		WHERE icustay_id = $1
		  AND value IS NOT NULL
		ORDER BY charttime
	`
	return r.queryObservations(query, "urine output", stayID)
}

// GetPaO2FiO2 returns arterial PaO2/FiO2 ratios for a stay.
func (r *ObservationRepository) GetPaO2FiO2(stayID int64) ([]models.Observation, error) {
	query := `
		SELECT charttime, pao2fio2ratio
		FROM pivoted_bg_art
		WHERE icustay_id = $1
		  AND pao2fio2ratio IS NOT NULL
		ORDER BY charttime
	`
	return r.queryObservations(query, "pao2/fio2", stayID)
}

// LabResults are the three scored labs for one hospital admission. Labs
// are keyed by hadm_id, not icustay_id: lab draws are not always
// attributed to a specific ICU stay.
type LabResults struct {
	Bilirubin  []models.Observation
	Creatinine []models.Observation
	Platelets  []models.Observation
}

// GetLabs returns bilirubin, creatinine and platelet results for a
// hospital admission.
func (r *ObservationRepository) GetLabs(hadmID int64) (*LabResults, error) {
	query := `
		SELECT charttime, bilirubin, creatinine, platelet
		FROM pivoted_lab
		WHERE hadm_id = $1
		ORDER BY charttime
	`

	rows, err := r.db.Query(query, hadmID)
	if err != nil {
		return nil, fmt.Errorf("failed to query labs: %w", err)
	}
	defer rows.Close()

	labs := &LabResults{}
	for rows.Next() {
		var obs models.Observation
		var bilirubin, creatinine, platelet sql.NullFloat64

		if err := rows.Scan(&obs.ChartTime, &bilirubin, &creatinine, &platelet); err != nil {
			return nil, fmt.Errorf("failed to scan lab row: %w", err)
		}

		if bilirubin.Valid {
			labs.Bilirubin = append(labs.Bilirubin, models.Observation{ChartTime: obs.ChartTime, Value: bilirubin.Float64})
		}
		if creatinine.Valid {
			labs.Creatinine = append(labs.Creatinine, models.Observation{ChartTime: obs.ChartTime, Value: creatinine.Float64})
		}
		if platelet.Valid {
			labs.Platelets = append(labs.Platelets, models.Observation{ChartTime: obs.ChartTime, Value: platelet.Float64})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lab rows: %w", err)
	}

	return labs, nil
}

// GetVentEpisodes returns mechanical-ventilation periods for a stay.
func (r *ObservationRepository) GetVentEpisodes(stayID int64) ([]models.VentEpisode, error) {
	query := `
		SELECT starttime, endtime
		FROM ventdurations
		WHERE icustay_id = $1
		ORDER BY starttime
	`

	rows, err := r.db.Query(query, stayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vent episodes: %w", err)
	}
	defer rows.Close()

	var episodes []models.VentEpisode
	for rows.Next() {
		var ep models.VentEpisode
		if err := rows.Scan(&ep.Start, &ep.End); err != nil {
			return nil, fmt.Errorf("failed to scan vent episode: %w", err)
		}
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vent episodes: %w", err)
	}

	return episodes, nil
}

// GetVasopressor returns infusion intervals for one vasopressor dose
// view (epinephrine_dose, norepinephrine_dose, dopamine_dose or
// dobutamine_dose).
func (r *ObservationRepository) GetVasopressor(view string, stayID int64) ([]models.RateInterval, error) {
	if !validDoseView[view] {
		return nil, fmt.Errorf("unknown vasopressor dose view: %s", view)
	}

	query := fmt.Sprintf(`
		SELECT starttime, endtime, vaso_rate
		FROM %s
		WHERE icustay_id = $1
		  AND vaso_rate IS NOT NULL
		ORDER BY starttime
	`, view)

	rows, err := r.db.Query(query, stayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", view, err)
	}
	defer rows.Close()

	var infusions []models.RateInterval
	for rows.Next() {
		var inf models.RateInterval
		if err := rows.Scan(&inf.Start, &inf.End, &inf.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", view, err)
		}
		infusions = append(infusions, inf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", view, err)
	}

	return infusions, nil
}

// Dose-view names; the view name is interpolated, so it must come from
// this fixed set, never from input.
const (
	ViewEpinephrine    = "epinephrine_dose"
	ViewNorepinephrine = "norepinephrine_dose"
	ViewDopamine       = "dopamine_dose"
	ViewDobutamine     = "dobutamine_dose"
)

var validDoseView = map[string]bool{
	ViewEpinephrine:    true,
	ViewNorepinephrine: true,
	ViewDopamine:       true,
	ViewDobutamine:     true,
}

// GetStayStreams loads every stream for one stay.
func (r *ObservationRepository) GetStayStreams(stay models.ICUStay) (*models.StayStreams, error) {
	streams := &models.StayStreams{}
	var err error

	if streams.MeanBP, err = r.GetMeanBP(stay.StayID); err != nil {
		return nil, err
	}
	if streams.GCS, err = r.GetGCS(stay.StayID); err != nil {
		return nil, err
	}
	if streams.UrineOutput, err = r.GetUrineOutput(stay.StayID); err != nil {
		return nil, err
	}
	if streams.PaO2FiO2, err = r.GetPaO2FiO2(stay.StayID); err != nil {
		return nil, err
	}
	if streams.VentEpisodes, err = r.GetVentEpisodes(stay.StayID); err != nil {
		return nil, err
	}

	labs, err := r.GetLabs(stay.HadmID)
	if err != nil {
		return nil, err
	}
	streams.Bilirubin = labs.Bilirubin
	streams.Creatinine = labs.Creatinine
	streams.Platelets = labs.Platelets

	if streams.Epinephrine, err = r.GetVasopressor(ViewEpinephrine, stay.StayID); err != nil {
		return nil, err
	}
	if streams.Norepinephrine, err = r.GetVasopressor(ViewNorepinephrine, stay.StayID); err != nil {
		return nil, err
	}
	if streams.Dopamine, err = r.GetVasopressor(ViewDopamine, stay.StayID); err != nil {
		return nil, err
	}
	if streams.Dobutamine, err = r.GetVasopressor(ViewDobutamine, stay.StayID); err != nil {
		return nil, err
	}

	return streams, nil
}

func (r *ObservationRepository) queryObservations(query, stream string, stayID int64) ([]models.Observation, error) {
	rows, err := r.db.Query(query, stayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", stream, err)
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ChartTime, &o.Value); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", stream, err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", stream, err)
	}

	return obs, nil
}
