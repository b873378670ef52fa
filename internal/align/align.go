package align

import (
	"sort"

	"mimic-sofa/internal/models"
)

// An observation at time t belongs to slot (start, end] iff
// start < t <= end. The asymmetry is deliberate: a value charted exactly
// on an hour boundary counts toward the hour it closes, never the one it
// opens.

// MinPerSlot aligns observations onto slots and keeps the minimum value
// per slot. Returns one entry per slot, nil where no observation fell in
// the slot.
func MinPerSlot(slots []models.Slot, obs []models.Observation) []*float64 {
	return aggregatePerSlot(slots, obs, func(acc, v float64) float64 {
		if v < acc {
			return v
		}
		return acc
	})
}

// MaxPerSlot keeps the maximum value per slot.
func MaxPerSlot(slots []models.Slot, obs []models.Observation) []*float64 {
	return aggregatePerSlot(slots, obs, func(acc, v float64) float64 {
		if v > acc {
			return v
		}
		return acc
	})
}

// SumPerSlot accumulates values per slot. Used for flow quantities
// (urine output), which add up within an hour instead of competing.
func SumPerSlot(slots []models.Slot, obs []models.Observation) []*float64 {
	return aggregatePerSlot(slots, obs, func(acc, v float64) float64 {
		return acc + v
	})
}

// aggregatePerSlot merge-joins sorted observations onto the sorted,
// contiguous slot sequence. combine folds a new value into the slot's
// running aggregate, which is seeded with the first value seen.
func aggregatePerSlot(slots []models.Slot, obs []models.Observation, combine func(acc, v float64) float64) []*float64 {
	out := make([]*float64, len(slots))
	if len(slots) == 0 || len(obs) == 0 {
		return out
	}

	sorted := make([]models.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ChartTime.Before(sorted[j].ChartTime)
	})

	i := 0
	for _, o := range sorted {
		// Skip observations before the timeline.
		if !o.ChartTime.After(slots[0].Start) {
			continue
		}
		// Advance to the slot whose half-open interval holds this
		// observation. Slots are contiguous, so End ordering suffices.
		for i < len(slots) && o.ChartTime.After(slots[i].End) {
			i++
		}
		if i == len(slots) {
			break
		}
		if out[i] == nil {
			v := o.Value
			out[i] = &v
		} else {
			*out[i] = combine(*out[i], o.Value)
		}
	}
	return out
}

// FilterPlausible drops values outside the open range (lo, hi).
// Implausible vitals are excluded from aggregation, not clamped.
func FilterPlausible(obs []models.Observation, lo, hi float64) []models.Observation {
	kept := make([]models.Observation, 0, len(obs))
	for _, o := range obs {
		if o.Value > lo && o.Value < hi {
			kept = append(kept, o)
		}
	}
	return kept
}
