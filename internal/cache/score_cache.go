package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mimic-sofa/internal/models"
)

// LatestScore is the serving-layer snapshot of a stay's most recent
// scored hour.
type LatestScore struct {
	StayID         int64     `json:"icustay_id"`
	Hr             int       `json:"hr"`
	EndTime        time.Time `json:"endtime"`
	Respiration    int       `json:"respiration_24hours"`
	Coagulation    int       `json:"coagulation_24hours"`
	Liver          int       `json:"liver_24hours"`
	Cardiovascular int       `json:"cardiovascular_24hours"`
	CNS            int       `json:"cns_24hours"`
	Renal          int       `json:"renal_24hours"`
	Total          int       `json:"sofa_24hours"`
	RunID          string    `json:"run_id"`
}

// ScoreCache keeps the latest windowed score per stay in the KV store
// for downstream dashboards.
type ScoreCache struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewScoreCache creates a score cache with the given entry TTL.
func NewScoreCache(kv KVStore, ttl time.Duration, logger *zap.Logger) *ScoreCache {
	return &ScoreCache{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

func latestKey(stayID int64) string {
	return fmt.Sprintf("sofa:stay:%d:latest", stayID)
}

// SetLatest stores the last emitted hour of one stay.
func (c *ScoreCache) SetLatest(ctx context.Context, runID string, row models.HourlyScore) error {
	latest := LatestScore{
		StayID:         row.StayID,
		Hr:             row.Hr,
		EndTime:        row.End,
		Respiration:    row.Windowed.Respiration,
		Coagulation:    row.Windowed.Coagulation,
		Liver:          row.Windowed.Liver,
		Cardiovascular: row.Windowed.Cardiovascular,
		CNS:            row.Windowed.CNS,
		Renal:          row.Windowed.Renal,
		Total:          row.Windowed.Total,
		RunID:          runID,
	}

	payload, err := json.Marshal(latest)
	if err != nil {
		return fmt.Errorf("failed to marshal latest score: %w", err)
	}

	if err := c.kv.Set(ctx, latestKey(row.StayID), string(payload), c.ttl); err != nil {
		return fmt.Errorf("failed to cache latest score: %w", err)
	}
	return nil
}

// GetLatest reads back a stay's latest score, ErrCacheMiss when absent.
func (c *ScoreCache) GetLatest(ctx context.Context, stayID int64) (*LatestScore, error) {
	val, err := c.kv.Get(ctx, latestKey(stayID))
	if err != nil {
		return nil, err
	}

	var latest LatestScore
	if err := json.Unmarshal([]byte(val), &latest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest score: %w", err)
	}
	return &latest, nil
}
