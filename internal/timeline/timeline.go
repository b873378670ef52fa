package timeline

import (
	"math"
	"time"

	"mimic-sofa/internal/models"
)

// LookbackHours is how far before admission the timeline starts. The
// pre-admission slots exist only to seed the trailing windows; output is
// restricted to hr >= 0 downstream.
const LookbackHours = 24

// Build returns the hourly slots for a stay, offsets -24 through
// ceil(duration_hours). The admission time is truncated to the top of
// the hour before offsetting, so slot k covers
// (trunc(inTime)+(k-1)h, trunc(inTime)+k*h].
//
// A zero-duration stay still gets slots -24..0. If the discharge
// precedes the admission by more than the lookback (ceil < -24, corrupt
// source data) the timeline is empty.
func Build(inTime, outTime time.Time) []models.Slot {
	base := inTime.Truncate(time.Hour)
	last := int(math.Ceil(outTime.Sub(inTime).Hours()))
	if last < -LookbackHours {
		return nil
	}

	slots := make([]models.Slot, 0, last+LookbackHours+1)
	for hr := -LookbackHours; hr <= last; hr++ {
		slots = append(slots, models.Slot{
			Hr:    hr,
			Start: base.Add(time.Duration(hr-1) * time.Hour),
			End:   base.Add(time.Duration(hr) * time.Hour),
		})
	}
	return slots
}
