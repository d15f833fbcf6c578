package scheduling

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestGrid_RequiredSlots(t *testing.T) {
	g := newTestGrid(t)

	tests := []struct {
		name     string
		date     string
		clock    string
		duration int
		want     []string
		wantErr  error
	}{
		{name: "90 minutes spans three slots", date: testDate, clock: "14:00", duration: 90, want: []string{"14:00", "14:30", "15:00"}},
		{name: "45 minutes rounds up to two slots", date: testDate, clock: "10:00", duration: 45, want: []string{"10:00", "10:30"}},
		{name: "first slot of the day", date: testDate, clock: "09:00", duration: 30, want: []string{"09:00"}},
		{name: "last slot of the day", date: testDate, clock: "17:30", duration: 30, want: []string{"17:30"}},
		{name: "right after lunch", date: testDate, clock: "13:00", duration: 60, want: []string{"13:00", "13:30"}},
		{name: "ends exactly at lunch", date: testDate, clock: "11:00", duration: 60, want: []string{"11:00", "11:30"}},
		{name: "runs past closing", date: testDate, clock: "17:30", duration: 60, wantErr: ErrOutOfHours},
		{name: "spans lunch", date: testDate, clock: "11:30", duration: 90, wantErr: ErrOutOfHours},
		{name: "starts in lunch", date: testDate, clock: "12:30", duration: 30, wantErr: ErrOutOfHours},
		{name: "before opening", date: testDate, clock: "08:30", duration: 30, wantErr: ErrOutOfHours},
		{name: "at closing", date: testDate, clock: "18:00", duration: 30, wantErr: ErrOutOfHours},
		{name: "off grid", date: testDate, clock: "10:15", duration: 30, wantErr: ErrOutOfHours},
		{name: "friday closed", date: testFriday, clock: "10:00", duration: 30, wantErr: ErrClinicClosed},
		{name: "malformed date", date: "2026-13-01", clock: "10:00", duration: 30, wantErr: ErrInvalidDate},
		{name: "non canonical time", date: testDate, clock: "1000", duration: 30, wantErr: ErrInvalidTimeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.RequiredSlots(tt.date, tt.clock, tt.duration)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("RequiredSlots() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RequiredSlots() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RequiredSlots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrid_Holiday(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Location = clinicLoc
	cfg.Holidays = []string{testDate}
	g, err := NewGrid(cfg)
	if err != nil {
		t.Fatalf("NewGrid() error: %v", err)
	}

	_, err = g.RequiredSlots(testDate, "10:00", 30)
	if !errors.Is(err, ErrClinicClosed) {
		t.Errorf("RequiredSlots() on holiday error = %v, want ErrClinicClosed", err)
	}
}

func TestGrid_SlotCount(t *testing.T) {
	g := newTestGrid(t)
	tests := []struct {
		duration int
		want     int
	}{
		{0, 0}, {1, 1}, {30, 1}, {31, 2}, {45, 2}, {60, 2}, {90, 3},
	}
	for _, tt := range tests {
		if got := g.SlotCount(tt.duration); got != tt.want {
			t.Errorf("SlotCount(%d) = %d, want %d", tt.duration, got, tt.want)
		}
	}
}

func TestGrid_Starts(t *testing.T) {
	g := newTestGrid(t)
	starts := g.Starts()

	if len(starts) != 18 {
		t.Fatalf("Starts() returned %d positions, want 18", len(starts))
	}
	if starts[0] != "09:00" || starts[len(starts)-1] != "17:30" {
		t.Errorf("Starts() range = %s..%s, want 09:00..17:30", starts[0], starts[len(starts)-1])
	}
}

func TestGrid_At(t *testing.T) {
	g := newTestGrid(t)
	got, err := g.At(testDate, "14:30")
	if err != nil {
		t.Fatalf("At() error: %v", err)
	}
	want := time.Date(2026, time.November, 2, 14, 30, 0, 0, clinicLoc)
	if !got.Equal(want) {
		t.Errorf("At() = %v, want %v", got, want)
	}
}

func TestNewGrid_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GridConfig)
	}{
		{name: "open after close", mutate: func(c *GridConfig) { c.Open = "19:00" }},
		{name: "zero slot size", mutate: func(c *GridConfig) { c.SlotMinutes = 0 }},
		{name: "lunch inverted", mutate: func(c *GridConfig) { c.LunchStart = "14:00" }},
		{name: "bad clock", mutate: func(c *GridConfig) { c.Close = "6pm" }},
		{name: "bad holiday", mutate: func(c *GridConfig) { c.Holidays = []string{"July 20"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGridConfig()
			tt.mutate(&cfg)
			if _, err := NewGrid(cfg); err == nil {
				t.Error("NewGrid() expected error")
			}
		})
	}
}
