package align

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mimic-sofa/internal/models"
	"mimic-sofa/internal/timeline"
)

func ts(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		panic(err)
	}
	return t
}

func obs(at string, value float64) models.Observation {
	return models.Observation{ChartTime: ts(at), Value: value}
}

func testSlots(t *testing.T) []models.Slot {
	t.Helper()
	// Admission 2101-03-01 10:00, four hour stay: hr 0 is (09:00, 10:00].
	slots := timeline.Build(ts("2101-03-01 10:00:00"), ts("2101-03-01 14:00:00"))
	require.Len(t, slots, 29)
	return slots
}

// slot index for hour offset hr given the -24 lookback.
func idx(hr int) int { return hr + timeline.LookbackHours }

func TestMinPerSlot_HalfOpenBoundaries(t *testing.T) {
	slots := testSlots(t)

	// Hour 1 covers (10:00, 11:00]: a value at exactly 10:00 belongs to
	// hour 0, a value at exactly 11:00 belongs to hour 1.
	values := MinPerSlot(slots, []models.Observation{
		obs("2101-03-01 10:00:00", 80),
		obs("2101-03-01 11:00:00", 75),
	})

	require.NotNil(t, values[idx(0)])
	assert.Equal(t, 80.0, *values[idx(0)])
	require.NotNil(t, values[idx(1)])
	assert.Equal(t, 75.0, *values[idx(1)])
	assert.Nil(t, values[idx(2)])
}

func TestMinPerSlot_KeepsWorstValue(t *testing.T) {
	slots := testSlots(t)

	values := MinPerSlot(slots, []models.Observation{
		obs("2101-03-01 10:15:00", 82),
		obs("2101-03-01 10:30:00", 61),
		obs("2101-03-01 10:45:00", 77),
	})

	require.NotNil(t, values[idx(1)])
	assert.Equal(t, 61.0, *values[idx(1)])
}

func TestMaxPerSlot_KeepsWorstValue(t *testing.T) {
	slots := testSlots(t)

	values := MaxPerSlot(slots, []models.Observation{
		obs("2101-03-01 10:15:00", 1.4),
		obs("2101-03-01 10:30:00", 3.2),
	})

	require.NotNil(t, values[idx(1)])
	assert.Equal(t, 3.2, *values[idx(1)])
}

func TestSumPerSlot_AccumulatesFlow(t *testing.T) {
	slots := testSlots(t)

	values := SumPerSlot(slots, []models.Observation{
		obs("2101-03-01 10:10:00", 30),
		obs("2101-03-01 10:50:00", 45),
	})

	require.NotNil(t, values[idx(1)])
	assert.Equal(t, 75.0, *values[idx(1)])
}

func TestAggregate_IgnoresObservationsOutsideTimeline(t *testing.T) {
	slots := testSlots(t)

	values := MinPerSlot(slots, []models.Observation{
		obs("2101-02-27 10:00:00", 50),  // before the lookback
		obs("2101-03-05 10:00:00", 55),  // after discharge
		obs("2101-02-28 10:00:00", 120), // exactly the first slot start: excluded
	})

	for i := range values {
		assert.Nil(t, values[i])
	}
}

func TestAggregate_UnsortedInput(t *testing.T) {
	slots := testSlots(t)

	values := SumPerSlot(slots, []models.Observation{
		obs("2101-03-01 12:30:00", 20),
		obs("2101-03-01 10:30:00", 30),
		obs("2101-03-01 12:10:00", 25),
	})

	require.NotNil(t, values[idx(1)])
	assert.Equal(t, 30.0, *values[idx(1)])
	require.NotNil(t, values[idx(3)])
	assert.Equal(t, 45.0, *values[idx(3)])
}

func TestFilterPlausible(t *testing.T) {
	filtered := FilterPlausible([]models.Observation{
		obs("2101-03-01 10:10:00", -5),
		obs("2101-03-01 10:20:00", 0),
		obs("2101-03-01 10:30:00", 0.5),
		obs("2101-03-01 10:40:00", 299.9),
		obs("2101-03-01 10:50:00", 300),
		obs("2101-03-01 10:55:00", 1200),
	}, 0, 300)

	require.Len(t, filtered, 2)
	assert.Equal(t, 0.5, filtered[0].Value)
	assert.Equal(t, 299.9, filtered[1].Value)
}
