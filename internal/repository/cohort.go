package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"mimic-sofa/internal/models"
)

// CohortRepository reads the ICU-stay cohort.
type CohortRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCohortRepository creates a new cohort repository.
func NewCohortRepository(db *sql.DB, logger *zap.Logger) *CohortRepository {
	return &CohortRepository{
		db:     db,
		logger: logger,
	}
}

// GetAdultStays returns every ICU stay whose patient was at least one
// year old at admission. The age cut is a cohort filter, not a scoring
// rule: younger stays are excluded entirely rather than scored.
func (r *CohortRepository) GetAdultStays() ([]models.ICUStay, error) {
	query := `
		SELECT
			ie.icustay_id,
			ie.hadm_id,
			ie.subject_id,
			ie.intime,
			ie.outtime
		FROM icustays ie
		INNER JOIN patients pat ON ie.subject_id = pat.subject_id
		WHERE ie.intime >= pat.dob + INTERVAL '1 year'
		  AND ie.intime IS NOT NULL
		  AND ie.outtime IS NOT NULL
		ORDER BY ie.icustay_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query icu stays: %w", err)
	}
	defer rows.Close()

	var stays []models.ICUStay
	for rows.Next() {
		var stay models.ICUStay
		if err := rows.Scan(
			&stay.StayID,
			&stay.HadmID,
			&stay.SubjectID,
			&stay.InTime,
			&stay.OutTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan icu stay: %w", err)
		}
		stays = append(stays, stay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate icu stays: %w", err)
	}

	return stays, nil
}
