package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dentabook/internal/scheduling"
	apperrors "dentabook/pkg/errors"
	"dentabook/pkg/model"
)

func TestFromScheduling(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantReason string
	}{
		{"invalid time", fmt.Errorf("%w: 25:00", scheduling.ErrInvalidTimeFormat), apperrors.CodeInvalidTime, http.StatusBadRequest, "invalid_time"},
		{"invalid date", scheduling.ErrInvalidDate, apperrors.CodeInvalidDate, http.StatusBadRequest, "invalid_date"},
		{"unknown service", scheduling.ErrUnknownService, apperrors.CodeUnknownService, http.StatusBadRequest, "unknown_service"},
		{"out of hours", scheduling.ErrOutOfHours, apperrors.CodeOutOfHours, http.StatusBadRequest, "out_of_hours"},
		{"clinic closed", scheduling.ErrClinicClosed, apperrors.CodeClinicClosed, http.StatusBadRequest, "clinic_closed"},
		{"too soon", scheduling.ErrAdvanceBookingTooSoon, apperrors.CodeTooSoon, http.StatusBadRequest, "too_soon"},
		{"too far", scheduling.ErrAdvanceBookingTooFar, apperrors.CodeTooFar, http.StatusBadRequest, "too_far"},
		{"cancellation window", scheduling.ErrCancellationWindow, apperrors.CodeCancellationWindow, http.StatusBadRequest, "cancellation_window"},
		{"duplicate", fmt.Errorf("%w: 2026-11-02", scheduling.ErrDuplicatePatient), apperrors.CodeDuplicatePatient, http.StatusConflict, "duplicate_patient"},
		{"not found", fmt.Errorf("%w: x", scheduling.ErrAppointmentNotFound), apperrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{"unexpected", errors.New("boom"), apperrors.CodeInternal, http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromScheduling(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.StatusCode(), tt.wantStatus)
			}
			if r := Reason(tt.err); r != tt.wantReason {
				t.Errorf("Reason() = %s, want %s", r, tt.wantReason)
			}
		})
	}
}

func TestFromScheduling_ConflictCarriesAlternatives(t *testing.T) {
	err := &scheduling.ConflictError{
		Date:         "2026-11-02",
		Slots:        []string{"14:00"},
		Alternatives: []model.Slot{{Date: "2026-11-02", Time: "14:30"}},
	}

	got := FromScheduling(err)

	if got.StatusCode() != http.StatusConflict || got.Code != apperrors.CodeSlotConflict {
		t.Fatalf("got %d %s", got.StatusCode(), got.Code)
	}
	alts, ok := got.Details["alternatives"].([]model.Slot)
	if !ok || len(alts) != 1 || alts[0].Time != "14:30" {
		t.Errorf("alternatives = %v", got.Details["alternatives"])
	}
	if Reason(err) != "slot_conflict" {
		t.Errorf("Reason() = %s", Reason(err))
	}
}

func TestFromScheduling_PassesAppErrorThrough(t *testing.T) {
	appErr := apperrors.InvalidInput("bad")
	if got := FromScheduling(fmt.Errorf("wrap: %w", appErr)); got != appErr {
		t.Errorf("FromScheduling() = %v, want the original AppError", got)
	}
	if FromScheduling(nil) != nil {
		t.Error("FromScheduling(nil) should be nil")
	}
}
