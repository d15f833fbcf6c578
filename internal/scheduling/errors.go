package scheduling

import (
	"errors"
	"fmt"
	"strings"

	"dentabook/pkg/model"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")

	ErrInvalidDate = errors.New("invalid date")

	ErrUnknownService = errors.New("unknown service")

	ErrOutOfHours = errors.New("outside business hours")

	ErrClinicClosed = errors.New("clinic is closed on this date")

	ErrAdvanceBookingTooSoon = errors.New("appointment is too soon")

	ErrAdvanceBookingTooFar = errors.New("appointment is too far in advance")

	ErrDuplicatePatient = errors.New("patient already has an appointment on this date")

	ErrSlotConflict = errors.New("requested time slot is not available")

	ErrAppointmentNotFound = errors.New("appointment not found")

	ErrCancellationWindow = errors.New("appointment can no longer be changed or cancelled")

	ErrPersistence = errors.New("failed to persist appointments")
)

// ConflictError reports the slots that collided with existing appointments
// together with free alternatives on the same date.
type ConflictError struct {
	Date         string
	Slots        []string
	Alternatives []model.Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s at %s", ErrSlotConflict, e.Date, strings.Join(e.Slots, ","))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSlotConflict
}
