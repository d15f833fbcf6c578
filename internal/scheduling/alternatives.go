package scheduling

import (
	"time"

	"dentabook/pkg/model"
)

const DefaultMaxAlternatives = 5

type AlternativeFinder struct {
	grid    *Grid
	checker *ConflictChecker
}

func NewAlternativeFinder(grid *Grid, checker *ConflictChecker) *AlternativeFinder {
	return &AlternativeFinder{grid: grid, checker: checker}
}

// Window bounds the start instants a search may return. A zero bound is open.
type Window struct {
	NotBefore time.Time
	NotAfter  time.Time
}

func (w Window) contains(t time.Time) bool {
	if !w.NotBefore.IsZero() && t.Before(w.NotBefore) {
		return false
	}
	return w.NotAfter.IsZero() || !t.After(w.NotAfter)
}

func (w Window) open() bool {
	return w.NotBefore.IsZero() && w.NotAfter.IsZero()
}

// Suggest scans date from opening in slot steps and returns up to limit free
// starts that fit duration, ascending. Starts outside window are skipped and
// limit <= 0 means no limit.
func (f *AlternativeFinder) Suggest(date string, duration int, appointments []*model.Appointment, exclude string, limit int, window Window) []model.Slot {
	out := []model.Slot{}
	for _, start := range f.grid.Starts() {
		if limit > 0 && len(out) >= limit {
			break
		}
		required, err := f.grid.RequiredSlots(date, start, duration)
		if err != nil {
			continue
		}
		if !window.open() {
			at, err := f.grid.At(date, start)
			if err != nil || !window.contains(at) {
				continue
			}
		}
		if !f.checker.IsFree(date, required, appointments, exclude) {
			continue
		}
		out = append(out, model.Slot{Date: date, Time: start})
	}
	return out
}
