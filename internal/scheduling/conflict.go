package scheduling

import (
	"dentabook/pkg/model"
)

type ConflictChecker struct {
	grid *Grid
}

func NewConflictChecker(grid *Grid) *ConflictChecker {
	return &ConflictChecker{grid: grid}
}

// Conflicts returns the required slots already held by a non-cancelled
// appointment on date, in the order they were requested. The appointment with
// id exclude is ignored so an update does not collide with itself.
func (c *ConflictChecker) Conflicts(date string, required []string, appointments []*model.Appointment, exclude string) []string {
	taken := make(map[string]struct{})
	for _, a := range appointments {
		if a == nil || a.Date != date || a.Status == model.StatusCancelled {
			continue
		}
		if exclude != "" && a.ID == exclude {
			continue
		}
		for _, s := range c.grid.Occupied(a) {
			taken[s] = struct{}{}
		}
	}

	var out []string
	for _, s := range required {
		if _, ok := taken[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *ConflictChecker) IsFree(date string, required []string, appointments []*model.Appointment, exclude string) bool {
	return len(c.Conflicts(date, required, appointments, exclude)) == 0
}
