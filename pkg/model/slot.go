package model

// Slot is a start position on the clinic's daily grid. Slots are computed,
// never stored.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type Availability struct {
	Available       bool     `json:"available"`
	Service         string   `json:"service"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	DurationMinutes int      `json:"duration_minutes"`
	RequiredSlots   []string `json:"required_slots"`
	Alternatives    []Slot   `json:"alternatives,omitempty"`
}

type AvailableSlots struct {
	Service         string   `json:"service"`
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes"`
	Times           []string `json:"times"`
}
