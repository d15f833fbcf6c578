package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dentabook/pkg/model"
)

const DateLayout = "2006-01-02"

type GridConfig struct {
	Open        string
	Close       string
	LunchStart  string
	LunchEnd    string
	SlotMinutes int
	WorkingDays []time.Weekday
	Holidays    []string
	Location    *time.Location
}

func DefaultGridConfig() GridConfig {
	return GridConfig{
		Open:        "09:00",
		Close:       "18:00",
		LunchStart:  "12:00",
		LunchEnd:    "13:00",
		SlotMinutes: 30,
		WorkingDays: []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday},
		Holidays:    []string{"2026-01-01", "2026-07-20"},
		Location:    time.Local,
	}
}

// Grid is the clinic's daily slot layout. Times inside the grid are minutes
// since midnight.
type Grid struct {
	open, close          int
	lunchStart, lunchEnd int
	slot                 int
	workingDays          map[time.Weekday]bool
	holidays             map[string]bool
	loc                  *time.Location
}

func NewGrid(cfg GridConfig) (*Grid, error) {
	g := &Grid{
		slot:        cfg.SlotMinutes,
		workingDays: make(map[time.Weekday]bool),
		holidays:    make(map[string]bool),
		loc:         cfg.Location,
	}
	if g.loc == nil {
		g.loc = time.Local
	}
	if g.slot <= 0 {
		return nil, fmt.Errorf("slot size must be positive, got %d", g.slot)
	}

	var err error
	for _, f := range []struct {
		dst *int
		raw string
		key string
	}{
		{&g.open, cfg.Open, "open"},
		{&g.close, cfg.Close, "close"},
		{&g.lunchStart, cfg.LunchStart, "lunch start"},
		{&g.lunchEnd, cfg.LunchEnd, "lunch end"},
	} {
		if *f.dst, err = parseClock(f.raw); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	if g.open >= g.close {
		return nil, fmt.Errorf("opening time %s must be before closing time %s", cfg.Open, cfg.Close)
	}
	if g.lunchStart > g.lunchEnd {
		return nil, fmt.Errorf("lunch start %s must not be after lunch end %s", cfg.LunchStart, cfg.LunchEnd)
	}

	for _, d := range cfg.WorkingDays {
		g.workingDays[d] = true
	}
	for _, h := range cfg.Holidays {
		day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(h), g.loc)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h, err)
		}
		g.holidays[day.Format(DateLayout)] = true
	}
	return g, nil
}

func (g *Grid) Location() *time.Location { return g.loc }

func (g *Grid) SlotMinutes() int { return g.slot }

// SlotCount is the number of whole slots a duration needs, rounded up.
func (g *Grid) SlotCount(durationMinutes int) int {
	if durationMinutes <= 0 {
		return 0
	}
	return (durationMinutes + g.slot - 1) / g.slot
}

func (g *Grid) ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), g.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, date)
	}
	return day, nil
}

// CheckDay fails with ErrClinicClosed on non-working weekdays and holidays.
func (g *Grid) CheckDay(date string) (time.Time, error) {
	day, err := g.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if !g.workingDays[day.Weekday()] {
		return time.Time{}, fmt.Errorf("%w: %s is a %s", ErrClinicClosed, date, day.Weekday())
	}
	if g.holidays[day.Format(DateLayout)] {
		return time.Time{}, fmt.Errorf("%w: %s is a holiday", ErrClinicClosed, date)
	}
	return day, nil
}

// At combines a date and a canonical "HH:MM" into an instant in the clinic's
// location.
func (g *Grid) At(date, clock string) (time.Time, error) {
	day, err := g.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	m, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, g.loc), nil
}

// RequiredSlots returns the consecutive slot start times a booking of the
// given duration occupies. Every slot of the run must sit inside business
// hours and outside lunch, and the start must be on the grid.
func (g *Grid) RequiredSlots(date, clock string, durationMinutes int) ([]string, error) {
	if _, err := g.CheckDay(date); err != nil {
		return nil, err
	}
	start, err := parseClock(clock)
	if err != nil {
		return nil, err
	}
	count := g.SlotCount(durationMinutes)
	if count == 0 {
		return nil, fmt.Errorf("%w: service has no duration", ErrUnknownService)
	}
	if (start-g.open)%g.slot != 0 {
		return nil, fmt.Errorf("%w: %s is not on the %d-minute grid", ErrOutOfHours, clock, g.slot)
	}

	slots := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s := start + i*g.slot
		if !g.inHours(s) {
			return nil, fmt.Errorf("%w: %s for %d minutes runs through %s", ErrOutOfHours, clock, durationMinutes, formatClock(s))
		}
		slots = append(slots, formatClock(s))
	}
	return slots, nil
}

// Occupied returns the slots an existing appointment holds, using its stored
// duration. No hour checks: stored appointments were validated when booked.
func (g *Grid) Occupied(a *model.Appointment) []string {
	start, err := parseClock(a.StartTime)
	if err != nil {
		return nil
	}
	count := g.SlotCount(a.DurationMinutes)
	slots := make([]string, 0, count)
	for i := 0; i < count; i++ {
		slots = append(slots, formatClock(start+i*g.slot))
	}
	return slots
}

// Starts lists every grid position from opening to closing, lunch included.
func (g *Grid) Starts() []string {
	var out []string
	for m := g.open; m < g.close; m += g.slot {
		out = append(out, formatClock(m))
	}
	return out
}

func (g *Grid) inHours(s int) bool {
	end := s + g.slot
	if s < g.open || end > g.close {
		return false
	}
	return !(s < g.lunchEnd && end > g.lunchStart)
}

func parseClock(clock string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q, expected HH:MM", ErrInvalidTimeFormat, clock)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q, expected HH:MM", ErrInvalidTimeFormat, clock)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
