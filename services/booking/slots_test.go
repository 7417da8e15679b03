package booking

import (
	"testing"
	"time"

	"bikeserve/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.January, 15, hour, minute, 0, 0, time.UTC)
}

func TestGenerateSlotWindow_AlwaysThreeDays(t *testing.T) {
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 1, 30, 59} {
			days := GenerateSlotWindow(at(h, m))
			assert.Len(t, days, 3, "now=%02d:%02d", h, m)
		}
	}
}

func TestGenerateSlotWindow_Morning(t *testing.T) {
	days := GenerateSlotWindow(at(9, 0))
	require.Len(t, days, 3)

	assert.Equal(t, "2024-01-15 (Mon)", days[0].Date)
	assert.Equal(t, "10:00 AM", days[0].Slots[0])
	assert.Equal(t, "6:00 PM", days[0].Slots[len(days[0].Slots)-1])
	assert.Equal(t, "2024-01-16 (Tue)", days[1].Date)
	assert.Equal(t, "2024-01-17 (Wed)", days[2].Date)
}

func TestGenerateSlotWindow_PartialHourRoundsUp(t *testing.T) {
	days := GenerateSlotWindow(at(14, 20))
	assert.Equal(t, []string{"3:00 PM", "4:00 PM", "5:00 PM", "6:00 PM"}, days[0].Slots)
}

func TestGenerateSlotWindow_LastSlotKeepsToday(t *testing.T) {
	days := GenerateSlotWindow(at(18, 0))
	assert.Equal(t, "2024-01-15 (Mon)", days[0].Date)
	assert.Equal(t, []string{"6:00 PM"}, days[0].Slots)
}

func TestGenerateSlotWindow_LateDropsToday(t *testing.T) {
	days := GenerateSlotWindow(at(18, 1))
	require.Len(t, days, 3)
	assert.Equal(t, "2024-01-16 (Tue)", days[0].Date)
	assert.Equal(t, "2024-01-18 (Thu)", days[2].Date)
	assert.Len(t, days[0].Slots, 9)
}

func TestFilterSlots_Idempotent(t *testing.T) {
	raw := []models.DaySlots{
		{Date: "2024-01-15 (Mon)", Slots: []string{"8:00 AM", "10:00 AM", "12:00 PM", "6:00 PM", "7:00 PM", "bogus"}},
		{Date: "2024-01-16 (Tue)", Slots: []string{"9:00 AM", "11:00 AM"}},
	}
	once := FilterSlots(raw)
	twice := FilterSlots(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"10:00 AM", "12:00 PM", "6:00 PM"}, once[0].Slots)
	assert.Equal(t, []string{"11:00 AM"}, once[1].Slots)
}

func TestFilterSlots_GeneratedWindowUnchanged(t *testing.T) {
	days := GenerateSlotWindow(at(7, 45))
	assert.Equal(t, days, FilterSlots(days))
}

func TestHourLabelRoundTrip(t *testing.T) {
	assert.Equal(t, "12:00 PM", HourLabel(12))
	assert.Equal(t, "12:00 AM", HourLabel(0))
	for h := 0; h < 24; h++ {
		got, ok := ParseSlotHour(HourLabel(h))
		require.True(t, ok)
		assert.Equal(t, h, got)
	}
	_, ok := ParseSlotHour("noon")
	assert.False(t, ok)
}

func TestSlotOffered(t *testing.T) {
	now := at(9, 0)
	assert.True(t, SlotOffered(now, models.SlotSelection{Date: "2024-01-15 (Mon)", Slot: "11:00 AM"}))
	assert.True(t, SlotOffered(now, models.SlotSelection{Date: "2024-01-17 (Wed)", Slot: "10:00 AM"}))
	assert.False(t, SlotOffered(now, models.SlotSelection{Date: "2024-01-18 (Thu)", Slot: "10:00 AM"}))
	assert.False(t, SlotOffered(at(15, 0), models.SlotSelection{Date: "2024-01-15 (Mon)", Slot: "11:00 AM"}))
}

func TestSlotStart(t *testing.T) {
	start, ok := SlotStart(models.SlotSelection{Date: "2024-01-15 (Mon)", Slot: "2:00 PM"}, time.UTC)
	require.True(t, ok)
	assert.Equal(t, at(14, 0), start)

	_, ok = SlotStart(models.SlotSelection{Date: "Monday", Slot: "2:00 PM"}, time.UTC)
	assert.False(t, ok)
	_, ok = SlotStart(models.SlotSelection{Date: "2024-01-15 (Mon)", Slot: "afternoon"}, time.UTC)
	assert.False(t, ok)
}
