package errors

import (
	"errors"
	"net/http"

	"dentabook/internal/scheduling"
	apperrors "dentabook/pkg/errors"
)

var (
	ErrEmptyID = errors.New("appointment ID cannot be empty")

	ErrEmptyUpdate = errors.New("update contains no changes")
)

type rejection struct {
	sentinel error
	code     string
	reason   string
	conflict bool
}

// Checked in order; the first sentinel that matches wins.
var rejections = []rejection{
	{scheduling.ErrSlotConflict, apperrors.CodeSlotConflict, "slot_conflict", true},
	{scheduling.ErrDuplicatePatient, apperrors.CodeDuplicatePatient, "duplicate_patient", true},
	{scheduling.ErrInvalidTimeFormat, apperrors.CodeInvalidTime, "invalid_time", false},
	{scheduling.ErrInvalidDate, apperrors.CodeInvalidDate, "invalid_date", false},
	{scheduling.ErrUnknownService, apperrors.CodeUnknownService, "unknown_service", false},
	{scheduling.ErrOutOfHours, apperrors.CodeOutOfHours, "out_of_hours", false},
	{scheduling.ErrClinicClosed, apperrors.CodeClinicClosed, "clinic_closed", false},
	{scheduling.ErrAdvanceBookingTooSoon, apperrors.CodeTooSoon, "too_soon", false},
	{scheduling.ErrAdvanceBookingTooFar, apperrors.CodeTooFar, "too_far", false},
	{scheduling.ErrCancellationWindow, apperrors.CodeCancellationWindow, "cancellation_window", false},
}

// FromScheduling converts an engine error into the AppError the API returns.
// A slot conflict carries the taken slots and the alternatives in Details.
func FromScheduling(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if errors.Is(err, scheduling.ErrAppointmentNotFound) {
		return apperrors.Wrap(err, apperrors.CodeNotFound, "Appointment not found", http.StatusNotFound)
	}

	for _, r := range rejections {
		if !errors.Is(err, r.sentinel) {
			continue
		}
		if !r.conflict {
			return apperrors.Rejected(r.code, err.Error(), err)
		}
		appErr := apperrors.Conflict(r.code, err.Error(), err)
		var conflict *scheduling.ConflictError
		if errors.As(err, &conflict) {
			appErr.Message = "The requested time is not available"
			appErr.WithDetails(map[string]any{
				"date":         conflict.Date,
				"slots":        conflict.Slots,
				"alternatives": conflict.Alternatives,
			})
		}
		return appErr
	}

	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	return apperrors.Internal("Failed to process appointment request", err)
}

// Reason is a short label for err, used as a metrics dimension.
func Reason(err error) string {
	for _, r := range rejections {
		if errors.Is(err, r.sentinel) {
			return r.reason
		}
	}
	switch {
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		return "not_found"
	case errors.Is(err, scheduling.ErrPersistence):
		return "persistence"
	case apperrors.IsAppError(err):
		return "invalid_request"
	default:
		return "internal"
	}
}
