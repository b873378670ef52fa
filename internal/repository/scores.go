package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"mimic-sofa/internal/models"
)

// ScoreRepository writes the hourly score rows.
type ScoreRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewScoreRepository creates a new score repository writing to table.
func NewScoreRepository(db *sql.DB, table string, logger *zap.Logger) *ScoreRepository {
	return &ScoreRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

var scoreColumns = []string{
	"icustay_id", "hr", "starttime", "endtime",
	"meanbp_min", "gcs_min", "urineoutput",
	"bilirubin_max", "creatinine_max", "platelet_min",
	"pao2fio2_vent_min", "pao2fio2_novent_min",
	"rate_epinephrine", "rate_norepinephrine", "rate_dopamine", "rate_dobutamine",
	"uo_24hr",
	"respiration", "coagulation", "liver", "cardiovascular", "cns", "renal",
	"respiration_24hours", "coagulation_24hours", "liver_24hours",
	"cardiovascular_24hours", "cns_24hours", "renal_24hours",
	"sofa_24hours",
}

// ReplaceAll replaces the full score table in one transaction: the
// computation is a deterministic recomputation over immutable history,
// so the previous contents are simply discarded. Rows stream in through
// COPY.
func (r *ScoreRepository) ReplaceAll(rows []models.HourlyScore) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", r.table)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear %s: %w", r.table, err)
	}

	stmt, err := tx.Prepare(pq.CopyIn(r.table, scoreColumns...))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, row := range rows {
		if _, err := stmt.Exec(
			row.StayID,
			row.Hr,
			row.Start,
			row.End,
			nullFloat(row.Aggregates.MeanBPMin),
			nullFloat(row.Aggregates.GCSMin),
			nullFloat(row.Aggregates.UrineOutput),
			nullFloat(row.Aggregates.BilirubinMax),
			nullFloat(row.Aggregates.CreatinineMax),
			nullFloat(row.Aggregates.PlateletMin),
			nullFloat(row.Aggregates.PaO2FiO2VentMin),
			nullFloat(row.Aggregates.PaO2FiO2NoVentMin),
			nullFloat(row.Aggregates.RateEpinephrine),
			nullFloat(row.Aggregates.RateNorepinephrine),
			nullFloat(row.Aggregates.RateDopamine),
			nullFloat(row.Aggregates.RateDobutamine),
			nullFloat(row.UrineSum24),
			nullInt(row.Raw.Respiration),
			nullInt(row.Raw.Coagulation),
			nullInt(row.Raw.Liver),
			nullInt(row.Raw.Cardiovascular),
			nullInt(row.Raw.CNS),
			nullInt(row.Raw.Renal),
			row.Windowed.Respiration,
			row.Windowed.Coagulation,
			row.Windowed.Liver,
			row.Windowed.Cardiovascular,
			row.Windowed.CNS,
			row.Windowed.Renal,
			row.Windowed.Total,
		); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to copy score row: %w", err)
		}
	}

	// Flush the COPY buffer.
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		tx.Rollback()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}

	r.logger.Info("Replaced score table",
		zap.String("table", r.table),
		zap.Int("row_count", len(rows)),
	)
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
