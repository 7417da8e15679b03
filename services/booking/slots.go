package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bikeserve/models"
)

const (
	openingHour = 10
	closingHour = 18 // last slot starts at 18:00
	windowDays  = 3
)

// GenerateSlotWindow returns the three bookable days for now. Today is included
// only if at least one hourly slot is still ahead.
func GenerateSlotWindow(now time.Time) []models.DaySlots {
	today := todaySlots(now)

	first := 0
	if len(today) == 0 {
		first = 1
	}

	days := make([]models.DaySlots, 0, windowDays)
	for offset := first; offset < first+windowDays; offset++ {
		day := now.AddDate(0, 0, offset)
		slots := today
		if offset > 0 {
			slots = hourSlots(openingHour)
		}
		days = append(days, models.DaySlots{Date: DateLabel(day), Slots: slots})
	}
	return days
}

func todaySlots(now time.Time) []string {
	start := now.Hour()
	if now.Minute() > 0 {
		start++
	}
	if start < openingHour {
		start = openingHour
	}
	if start > closingHour {
		return []string{}
	}
	return hourSlots(start)
}

func hourSlots(from int) []string {
	slots := make([]string, 0, closingHour-from+1)
	for h := from; h <= closingHour; h++ {
		slots = append(slots, HourLabel(h))
	}
	return slots
}

// DateLabel formats a day as "2024-01-15 (Mon)".
func DateLabel(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02"), t.Format("Mon"))
}

// HourLabel formats a 24h hour as "h:00 AM".
func HourLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

var slotLabelRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

// ParseSlotHour converts a "h:mm AM" label back into a 24h hour.
func ParseSlotHour(label string) (int, bool) {
	m := slotLabelRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h < 1 || h > 12 {
		return 0, false
	}
	pm := strings.EqualFold(m[3], "PM")
	switch {
	case pm && h != 12:
		h += 12
	case !pm && h == 12:
		h = 0
	}
	return h, true
}

// FilterSlots keeps only slots whose hour is within business hours [10, 19).
// It never adds slots, so applying it twice is the same as applying it once.
func FilterSlots(days []models.DaySlots) []models.DaySlots {
	out := make([]models.DaySlots, 0, len(days))
	for _, d := range days {
		kept := make([]string, 0, len(d.Slots))
		for _, s := range d.Slots {
			if h, ok := ParseSlotHour(s); ok && h >= openingHour && h < closingHour+1 {
				kept = append(kept, s)
			}
		}
		out = append(out, models.DaySlots{Date: d.Date, Slots: kept})
	}
	return out
}

// SlotOffered reports whether sel is in the filtered window for now.
func SlotOffered(now time.Time, sel models.SlotSelection) bool {
	for _, d := range FilterSlots(GenerateSlotWindow(now)) {
		if d.Date != sel.Date {
			continue
		}
		for _, s := range d.Slots {
			if s == sel.Slot {
				return true
			}
		}
	}
	return false
}

// SlotStart is the wall-clock start of a selection, read in loc.
func SlotStart(sel models.SlotSelection, loc *time.Location) (time.Time, bool) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(sel.Date), " ")
	day, err := time.ParseInLocation("2006-01-02", datePart, loc)
	if err != nil {
		return time.Time{}, false
	}
	hour, ok := ParseSlotHour(sel.Slot)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc), true
}
