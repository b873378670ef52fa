package align

import (
	"time"

	"mimic-sofa/internal/models"
)

// SplitByVentilation partitions PaO2/FiO2 observations by whether the
// chart time falls inside a ventilation episode (inclusive on both
// ends). Exactly one of the two returned streams receives each
// observation: the respiration thresholds differ by ventilation status,
// so a patient's worst unventilated ratio must never be conflated with a
// better ventilated one in the same hour.
func SplitByVentilation(obs []models.Observation, episodes []models.VentEpisode) (vent, noVent []models.Observation) {
	for _, o := range obs {
		if inEpisode(o.ChartTime, episodes) {
			vent = append(vent, o)
		} else {
			noVent = append(noVent, o)
		}
	}
	return vent, noVent
}

func inEpisode(t time.Time, episodes []models.VentEpisode) bool {
	for _, ep := range episodes {
		if !t.Before(ep.Start) && !t.After(ep.End) {
			return true
		}
	}
	return false
}
