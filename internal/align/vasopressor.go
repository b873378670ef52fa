package align

import "mimic-sofa/internal/models"

// RateMaxPerSlot attributes infusion rates to slots and keeps the worst
// (maximum) rate per slot. An infusion covers a slot iff the slot's end
// falls strictly after the infusion start and at-or-before the infusion
// end. Returns one entry per slot, nil where no infusion was running.
func RateMaxPerSlot(slots []models.Slot, infusions []models.RateInterval) []*float64 {
	out := make([]*float64, len(slots))
	if len(infusions) == 0 {
		return out
	}
	for i, slot := range slots {
		for _, inf := range infusions {
			if !slot.End.After(inf.Start) || slot.End.After(inf.End) {
				continue
			}
			if out[i] == nil {
				r := inf.Rate
				out[i] = &r
			} else if inf.Rate > *out[i] {
				*out[i] = inf.Rate
			}
		}
	}
	return out
}
