package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mimic-sofa/internal/models"
)

func TestRateMaxPerSlot_Attribution(t *testing.T) {
	slots := testSlots(t)

	infusions := []models.RateInterval{
		{Start: ts("2101-03-01 10:30:00"), End: ts("2101-03-01 13:00:00"), Rate: 0.08},
	}

	rates := RateMaxPerSlot(slots, infusions)

	// Slot end must fall strictly after the infusion start: hour 1 ends
	// at 11:00 > 10:30, so the rate applies from hour 1.
	assert.Nil(t, rates[idx(0)])
	require.NotNil(t, rates[idx(1)])
	assert.Equal(t, 0.08, *rates[idx(1)])
	require.NotNil(t, rates[idx(2)])

	// Slot end at-or-before the infusion end: hour 3 ends exactly at
	// 13:00 and still carries the rate, hour 4 does not.
	require.NotNil(t, rates[idx(3)])
	assert.Equal(t, 0.08, *rates[idx(3)])
	assert.Nil(t, rates[idx(4)])
}

func TestRateMaxPerSlot_SlotEndAtInfusionStart(t *testing.T) {
	slots := testSlots(t)

	// Infusion starting exactly at a slot end is not attributed to that
	// slot: the end must fall strictly after the start.
	infusions := []models.RateInterval{
		{Start: ts("2101-03-01 11:00:00"), End: ts("2101-03-01 12:30:00"), Rate: 5},
	}

	rates := RateMaxPerSlot(slots, infusions)
	assert.Nil(t, rates[idx(1)])
	require.NotNil(t, rates[idx(2)])
}

func TestRateMaxPerSlot_OverlappingInfusionsKeepWorst(t *testing.T) {
	slots := testSlots(t)

	infusions := []models.RateInterval{
		{Start: ts("2101-03-01 10:00:00"), End: ts("2101-03-01 14:00:00"), Rate: 3},
		{Start: ts("2101-03-01 11:30:00"), End: ts("2101-03-01 12:30:00"), Rate: 8},
	}

	rates := RateMaxPerSlot(slots, infusions)
	require.NotNil(t, rates[idx(1)])
	assert.Equal(t, 3.0, *rates[idx(1)])
	require.NotNil(t, rates[idx(2)])
	assert.Equal(t, 8.0, *rates[idx(2)])
	require.NotNil(t, rates[idx(3)])
	assert.Equal(t, 3.0, *rates[idx(3)])
}
