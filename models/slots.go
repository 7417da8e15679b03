package models

// DaySlots is one day of the booking window.
type DaySlots struct {
	Date  string   `json:"date"`  // "2024-01-15 (Mon)"
	Slots []string `json:"slots"` // "11:00 AM"
}

// SlotSelection is the (date label, time label) pair picked by the user.
type SlotSelection struct {
	Date string `json:"date"`
	Slot string `json:"slot"`
}

// Complete reports whether both halves of the selection are set.
func (s *SlotSelection) Complete() bool {
	return s != nil && s.Date != "" && s.Slot != ""
}
