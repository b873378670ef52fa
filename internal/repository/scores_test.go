package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mimic-sofa/internal/models"
)

func sampleRow() models.HourlyScore {
	end := time.Date(2101, 3, 1, 10, 0, 0, 0, time.UTC)
	bp := 65.0
	cns := 3
	return models.HourlyScore{
		StayID: 200001,
		Hr:     0,
		Start:  end.Add(-time.Hour),
		End:    end,
		Aggregates: models.HourlyAggregates{
			MeanBPMin: &bp,
		},
		Raw: models.SubScores{
			CNS: &cns,
		},
		Windowed: models.WindowedScores{
			Cardiovascular: 1,
			CNS:            3,
			Total:          4,
		},
	}
}

func TestReplaceAll_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewScoreRepository(db, "sofa_hourly", zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sofa_hourly`).
		WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectPrepare(`COPY "sofa_hourly"`)
	mock.ExpectExec(`COPY "sofa_hourly"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Final zero-arg exec flushes the COPY buffer.
	mock.ExpectExec(`COPY "sofa_hourly"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.ReplaceAll([]models.HourlyScore{sampleRow()})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_EmptyStillClears(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewScoreRepository(db, "sofa_hourly", zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sofa_hourly`).
		WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectPrepare(`COPY "sofa_hourly"`)
	mock.ExpectExec(`COPY "sofa_hourly"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.ReplaceAll(nil)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_DeleteFails(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewScoreRepository(db, "sofa_hourly", zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM sofa_hourly`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceAll([]models.HourlyScore{sampleRow()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear sofa_hourly")

	assert.NoError(t, mock.ExpectationsWereMet())
}
