package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"mimic-sofa/internal/align"
	"mimic-sofa/internal/models"
	"mimic-sofa/internal/score"
	"mimic-sofa/internal/timeline"
	"mimic-sofa/internal/window"
)

// Source reads the cohort and the per-stay clinical streams. Implemented
// by the repository layer; tests swap in an in-memory fake.
type Source interface {
	GetAdultStays() ([]models.ICUStay, error)
	GetStayStreams(stay models.ICUStay) (*models.StayStreams, error)
}

// Sink persists the computed score rows.
type Sink interface {
	ReplaceAll(rows []models.HourlyScore) error
}

// RunStats summarizes one scoring run.
type RunStats struct {
	StayCount    int
	SkippedStays int
	RowCount     int
}

// Pipeline computes the hourly SOFA time series for the whole cohort.
// Stays are independent, so computation is partitioned across workers;
// the write is a single transactional replace.
type Pipeline struct {
	source  Source
	sink    Sink
	workers int
	logger  *zap.Logger
}

// NewPipeline creates a pipeline with the given worker count.
func NewPipeline(source Source, sink Sink, workers int, logger *zap.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		source:  source,
		sink:    sink,
		workers: workers,
		logger:  logger,
	}
}

// Run scores every stay in the cohort, replaces the output table and
// returns the emitted rows for the serving-layer steps. A stay whose
// streams fail to load is logged and skipped; cohort and write failures
// fail the run.
func (p *Pipeline) Run(ctx context.Context) (*RunStats, []models.HourlyScore, error) {
	started := time.Now()

	stays, err := p.source.GetAdultStays()
	if err != nil {
		return nil, nil, err
	}
	p.logger.Info("Loaded cohort", zap.Int("stay_count", len(stays)))

	jobs := make(chan models.ICUStay)
	var mu sync.Mutex
	var rows []models.HourlyScore
	var skipped int

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stay := range jobs {
				stayRows, err := p.computeStay(stay)
				mu.Lock()
				if err != nil {
					p.logger.Error("Failed to score stay",
						zap.Int64("icustay_id", stay.StayID),
						zap.Error(err),
					)
					skipped++
				} else {
					rows = append(rows, stayRows...)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, stay := range stays {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- stay:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Workers finish out of order; the output contract is stay then hour
	// ascending.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StayID != rows[j].StayID {
			return rows[i].StayID < rows[j].StayID
		}
		return rows[i].Hr < rows[j].Hr
	})

	if err := p.sink.ReplaceAll(rows); err != nil {
		return nil, nil, err
	}

	stats := &RunStats{
		StayCount:    len(stays),
		SkippedStays: skipped,
		RowCount:     len(rows),
	}
	p.logger.Info("Completed scoring run",
		zap.Int("stay_count", stats.StayCount),
		zap.Int("skipped_stays", stats.SkippedStays),
		zap.Int("row_count", stats.RowCount),
		zap.Duration("elapsed", time.Since(started)),
	)
	return stats, rows, nil
}

// computeStay runs the four stages for one stay: timeline, alignment,
// sub-scores, trailing-window aggregation. Pre-admission slots (hr < 0)
// seed the windows but are not emitted.
func (p *Pipeline) computeStay(stay models.ICUStay) ([]models.HourlyScore, error) {
	slots := timeline.Build(stay.InTime, stay.OutTime)
	if len(slots) == 0 {
		return nil, nil
	}

	streams, err := p.source.GetStayStreams(stay)
	if err != nil {
		return nil, err
	}

	aggs := alignStreams(slots, streams)

	urineSum24 := window.TrailingSum(collectFloat(aggs, func(a models.HourlyAggregates) *float64 {
		return a.UrineOutput
	}))

	raw := make([]models.SubScores, len(slots))
	for i := range slots {
		raw[i] = score.Compute(aggs[i], urineSum24[i])
	}

	windowed := windowScores(raw)

	rows := make([]models.HourlyScore, 0, len(slots))
	for i, slot := range slots {
		if slot.Hr < 0 {
			continue
		}
		rows = append(rows, models.HourlyScore{
			StayID:     stay.StayID,
			Hr:         slot.Hr,
			Start:      slot.Start,
			End:        slot.End,
			Aggregates: aggs[i],
			UrineSum24: urineSum24[i],
			Raw:        raw[i],
			Windowed:   windowed[i],
		})
	}
	return rows, nil
}

// alignStreams joins every clinical stream onto the slot grid.
func alignStreams(slots []models.Slot, streams *models.StayStreams) []models.HourlyAggregates {
	// Mean arterial pressure outside (0, 300) is charting noise, not
	// physiology.
	bp := align.MinPerSlot(slots, align.FilterPlausible(streams.MeanBP, 0, 300))
	gcs := align.MinPerSlot(slots, streams.GCS)
	urine := align.SumPerSlot(slots, streams.UrineOutput)
	bilirubin := align.MaxPerSlot(slots, streams.Bilirubin)
	creatinine := align.MaxPerSlot(slots, streams.Creatinine)
	platelets := align.MinPerSlot(slots, streams.Platelets)

	ventObs, noVentObs := align.SplitByVentilation(streams.PaO2FiO2, streams.VentEpisodes)
	pfVent := align.MinPerSlot(slots, ventObs)
	pfNoVent := align.MinPerSlot(slots, noVentObs)

	epinephrine := align.RateMaxPerSlot(slots, streams.Epinephrine)
	norepinephrine := align.RateMaxPerSlot(slots, streams.Norepinephrine)
	dopamine := align.RateMaxPerSlot(slots, streams.Dopamine)
	dobutamine := align.RateMaxPerSlot(slots, streams.Dobutamine)

	aggs := make([]models.HourlyAggregates, len(slots))
	for i := range slots {
		aggs[i] = models.HourlyAggregates{
			MeanBPMin:          bp[i],
			GCSMin:             gcs[i],
			UrineOutput:        urine[i],
			BilirubinMax:       bilirubin[i],
			CreatinineMax:      creatinine[i],
			PlateletMin:        platelets[i],
			PaO2FiO2VentMin:    pfVent[i],
			PaO2FiO2NoVentMin:  pfNoVent[i],
			RateEpinephrine:    epinephrine[i],
			RateNorepinephrine: norepinephrine[i],
			RateDopamine:       dopamine[i],
			RateDobutamine:     dobutamine[i],
		}
	}
	return aggs
}

// windowScores applies the trailing worst-value window to each sub-score
// and sums the six into the total.
func windowScores(raw []models.SubScores) []models.WindowedScores {
	respiration := window.TrailingMax(collectInt(raw, func(s models.SubScores) *int { return s.Respiration }))
	coagulation := window.TrailingMax(collectInt(raw, func(s models.SubScores) *int { return s.Coagulation }))
	liver := window.TrailingMax(collectInt(raw, func(s models.SubScores) *int { return s.Liver }))
	cardiovascular := window.TrailingMax(collectInt(raw, func(s models.SubScores) *int { return s.Cardiovascular }))
	cns := window.TrailingMax(collectInt(raw, func(s models.SubScores) *int { return s.CNS }))
	renal := window.TrailingMax(collectInt(raw, func(s models.SubScores) *int { return s.Renal }))

	out := make([]models.WindowedScores, len(raw))
	for i := range raw {
		out[i] = models.WindowedScores{
			Respiration:    respiration[i],
			Coagulation:    coagulation[i],
			Liver:          liver[i],
			Cardiovascular: cardiovascular[i],
			CNS:            cns[i],
			Renal:          renal[i],
		}
		out[i].Total = out[i].Respiration + out[i].Coagulation + out[i].Liver +
			out[i].Cardiovascular + out[i].CNS + out[i].Renal
	}
	return out
}

func collectInt(raw []models.SubScores, pick func(models.SubScores) *int) []*int {
	out := make([]*int, len(raw))
	for i := range raw {
		out[i] = pick(raw[i])
	}
	return out
}

func collectFloat(aggs []models.HourlyAggregates, pick func(models.HourlyAggregates) *float64) []*float64 {
	out := make([]*float64, len(aggs))
	for i := range aggs {
		out[i] = pick(aggs[i])
	}
	return out
}
