package scheduling

import (
	"fmt"

	"dentabook/pkg/model"
)

var transitions = map[string][]string{
	model.StatusRequested: {model.StatusValidated},
	model.StatusValidated: {model.StatusBooked},
	model.StatusBooked:    {model.StatusUpdated, model.StatusCancelled},
	model.StatusUpdated:   {model.StatusBooked},
}

// advance moves an appointment through the given states in order, failing on
// the first step the lifecycle does not allow. Cancelled is terminal.
func advance(a *model.Appointment, states ...string) error {
	for _, to := range states {
		if !canTransition(a.Status, to) {
			return fmt.Errorf("appointment %s: invalid status transition %s -> %s", a.ID, a.Status, to)
		}
		a.Status = to
	}
	return nil
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
