package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetMeanBP_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewObservationRepository(db, zap.NewNop())

	at := time.Date(2101, 3, 1, 12, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"charttime", "valuenum"}).
		AddRow(at, 72.5).
		AddRow(at.Add(time.Hour), 68.0)

	mock.ExpectQuery(`FROM chartevents`).
		WithArgs(int64(200001)).
		WillReturnRows(rows)

	obs, err := repo.GetMeanBP(200001)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, 72.5, obs[0].Value)
	assert.Equal(t, at, obs[0].ChartTime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLabs_SplitsColumnsIntoStreams(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewObservationRepository(db, zap.NewNop())

	at := time.Date(2101, 3, 1, 6, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"charttime", "bilirubin", "creatinine", "platelet"}).
		AddRow(at, 1.4, nil, 180.0).
		AddRow(at.Add(6*time.Hour), nil, 2.1, nil)

	mock.ExpectQuery(`FROM pivoted_lab`).
		WithArgs(int64(100001)).
		WillReturnRows(rows)

	labs, err := repo.GetLabs(100001)
	require.NoError(t, err)

	require.Len(t, labs.Bilirubin, 1)
	assert.Equal(t, 1.4, labs.Bilirubin[0].Value)
	require.Len(t, labs.Creatinine, 1)
	assert.Equal(t, 2.1, labs.Creatinine[0].Value)
	require.Len(t, labs.Platelets, 1)
	assert.Equal(t, 180.0, labs.Platelets[0].Value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVentEpisodes_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewObservationRepository(db, zap.NewNop())

	start := time.Date(2101, 3, 1, 11, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"starttime", "endtime"}).
		AddRow(start, start.Add(36*time.Hour))

	mock.ExpectQuery(`FROM ventdurations`).
		WithArgs(int64(200001)).
		WillReturnRows(rows)

	episodes, err := repo.GetVentEpisodes(200001)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, start, episodes[0].Start)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVasopressor_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewObservationRepository(db, zap.NewNop())

	start := time.Date(2101, 3, 1, 14, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"starttime", "endtime", "vaso_rate"}).
		AddRow(start, start.Add(5*time.Hour), 0.08)

	mock.ExpectQuery(`FROM norepinephrine_dose`).
		WithArgs(int64(200001)).
		WillReturnRows(rows)

	infusions, err := repo.GetVasopressor(ViewNorepinephrine, 200001)
	require.NoError(t, err)
	require.Len(t, infusions, 1)
	assert.Equal(t, 0.08, infusions[0].Rate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVasopressor_RejectsUnknownView(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	repo := NewObservationRepository(db, zap.NewNop())

	infusions, err := repo.GetVasopressor("labevents; DROP TABLE", 200001)
	assert.Error(t, err)
	assert.Nil(t, infusions)
	assert.Contains(t, err.Error(), "unknown vasopressor dose view")
}
