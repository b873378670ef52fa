package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mimic-sofa/internal/cache"
	"mimic-sofa/internal/config"
	"mimic-sofa/internal/database"
	"mimic-sofa/internal/export"
	"mimic-sofa/internal/models"
	"mimic-sofa/internal/notify"
	"mimic-sofa/internal/repository"
)

// SeverityService wires the scoring pipeline to its inputs and outputs
// and drives the run modes.
type SeverityService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	pipeline    *Pipeline
	scoreCache  *cache.ScoreCache
	notifier    *notify.WebhookNotifier
}

// stayReader adapts the two read repositories to the pipeline Source.
type stayReader struct {
	cohort *repository.CohortRepository
	obs    *repository.ObservationRepository
}

func (r *stayReader) GetAdultStays() ([]models.ICUStay, error) {
	return r.cohort.GetAdultStays()
}

func (r *stayReader) GetStayStreams(stay models.ICUStay) (*models.StayStreams, error) {
	return r.obs.GetStayStreams(stay)
}

// NewSeverityService creates the service from configuration.
func NewSeverityService(cfg *config.Config, logger *zap.Logger) (*SeverityService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	source := &stayReader{
		cohort: repository.NewCohortRepository(db, logger),
		obs:    repository.NewObservationRepository(db, logger),
	}
	sink := repository.NewScoreRepository(db, cfg.Pipeline.OutputTable, logger)
	pipeline := NewPipeline(source, sink, cfg.Pipeline.Workers, logger)

	svc := &SeverityService{
		config:   cfg,
		logger:   logger,
		db:       db,
		pipeline: pipeline,
	}

	if cfg.Pipeline.CacheEnabled {
		svc.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := svc.redisClient.Ping(context.Background()).Err(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		svc.scoreCache = cache.NewScoreCache(
			cache.NewRedisKVStore(svc.redisClient),
			time.Duration(cfg.Pipeline.CacheTTL)*time.Second,
			logger,
		)
	}

	if cfg.Pipeline.WebhookURL != "" {
		svc.notifier = notify.NewWebhookNotifier(cfg.Pipeline.WebhookURL, logger)
	}

	return svc, nil
}

// Start runs the pipeline once or on an interval, per configuration.
func (s *SeverityService) Start(ctx context.Context) error {
	s.logger.Info("Starting severity scoring service",
		zap.String("run_mode", s.config.Pipeline.RunMode),
		zap.Int("workers", s.config.Pipeline.Workers),
		zap.String("output_table", s.config.Pipeline.OutputTable),
	)

	if s.config.Pipeline.RunMode == "once" {
		return s.runOnce(ctx)
	}

	interval := time.Duration(s.config.Pipeline.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting interval mode", zap.Duration("interval", interval))

	if err := s.runOnce(ctx); err != nil {
		s.logger.Error("Scoring run failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.runOnce(ctx); err != nil {
				s.logger.Error("Scoring run failed", zap.Error(err))
			}
		}
	}
}

// runOnce executes one full recomputation plus the serving-layer steps.
func (s *SeverityService) runOnce(ctx context.Context) error {
	runID := uuid.New().String()
	startedAt := time.Now()
	log := s.logger.With(zap.String("run_id", runID))

	log.Info("Starting scoring run")

	stats, rows, err := s.pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if s.scoreCache != nil {
		s.updateCache(ctx, log, runID, rows)
	}

	if path := s.config.Pipeline.ExportPath; path != "" {
		if err := s.exportWorkbook(path, rows); err != nil {
			log.Error("Failed to export workbook", zap.Error(err))
		} else {
			log.Info("Exported workbook", zap.String("path", path))
		}
	}

	if s.notifier != nil {
		summary := notify.RunSummary{
			RunID:        runID,
			StartedAt:    startedAt,
			CompletedAt:  time.Now(),
			StayCount:    stats.StayCount,
			SkippedStays: stats.SkippedStays,
			RowCount:     stats.RowCount,
		}
		if err := s.notifier.NotifyRunCompleted(ctx, summary); err != nil {
			log.Error("Failed to notify run completion", zap.Error(err))
		}
	}

	return nil
}

// updateCache writes each stay's last emitted hour. Rows are ordered by
// stay then hour, so the last row per stay wins.
func (s *SeverityService) updateCache(ctx context.Context, log *zap.Logger, runID string, rows []models.HourlyScore) {
	latest := make(map[int64]models.HourlyScore)
	for _, row := range rows {
		latest[row.StayID] = row
	}

	errorCount := 0
	for _, row := range latest {
		if err := s.scoreCache.SetLatest(ctx, runID, row); err != nil {
			log.Error("Failed to cache latest score",
				zap.Int64("icustay_id", row.StayID),
				zap.Error(err),
			)
			errorCount++
		}
	}

	log.Info("Updated latest-score cache",
		zap.Int("stay_count", len(latest)),
		zap.Int("error_count", errorCount),
	)
}

func (s *SeverityService) exportWorkbook(path string, rows []models.HourlyScore) error {
	data, err := export.GenerateScoreWorkbook(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Stop releases the service's connections.
func (s *SeverityService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping severity scoring service")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Error closing redis connection", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("Error closing database connection", zap.Error(err))
		}
	}

	s.logger.Info("Severity scoring service stopped")
	return nil
}
