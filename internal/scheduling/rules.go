package scheduling

import (
	"fmt"
	"time"

	"dentabook/pkg/model"
	"dentabook/pkg/sanitizer"
)

type Rules struct {
	MinAdvance         time.Duration
	MaxAdvance         time.Duration
	CancellationNotice time.Duration
}

func DefaultRules() Rules {
	return Rules{
		MinAdvance:         2 * time.Hour,
		MaxAdvance:         90 * 24 * time.Hour,
		CancellationNotice: 24 * time.Hour,
	}
}

// RuleValidator holds the booking policy checks. Each check is a predicate
// over the request, the clock and the given appointments; none mutates.
type RuleValidator struct {
	rules    Rules
	clock    Clock
	identity sanitizer.Strategy
}

func NewRuleValidator(rules Rules, clock Clock, identity sanitizer.Strategy) *RuleValidator {
	if identity == nil {
		identity = sanitizer.NormalizePhone
	}
	return &RuleValidator{rules: rules, clock: clock, identity: identity}
}

// EarliestStart is the first instant a new booking may start at.
func (v *RuleValidator) EarliestStart() time.Time {
	return v.clock.Now().Add(v.rules.MinAdvance)
}

// LatestStart is the last instant a new booking may start at.
func (v *RuleValidator) LatestStart() time.Time {
	return v.clock.Now().Add(v.rules.MaxAdvance)
}

// BookableWindow is the range of starts that pass the advance checks.
func (v *RuleValidator) BookableWindow() Window {
	return Window{NotBefore: v.EarliestStart(), NotAfter: v.LatestStart()}
}

func (v *RuleValidator) CheckAdvance(start time.Time) error {
	now := v.clock.Now()
	if start.Before(now.Add(v.rules.MinAdvance)) {
		return fmt.Errorf("%w: bookings need at least %s notice", ErrAdvanceBookingTooSoon, v.rules.MinAdvance)
	}
	if start.After(now.Add(v.rules.MaxAdvance)) {
		return fmt.Errorf("%w: bookings open at most %d days ahead", ErrAdvanceBookingTooFar, int(v.rules.MaxAdvance.Hours()/24))
	}
	return nil
}

func (v *RuleValidator) CheckDuplicate(date, phone, exclude string, appointments []*model.Appointment) error {
	key := v.identity(phone)
	if key == "" {
		return nil
	}
	for _, a := range appointments {
		if a == nil || a.Date != date || a.Status == model.StatusCancelled || a.ID == exclude {
			continue
		}
		if v.identity(a.Phone) == key {
			return fmt.Errorf("%w: %s", ErrDuplicatePatient, date)
		}
	}
	return nil
}

// CheckCancellationWindow applies to the existing start of an appointment
// being updated or cancelled.
func (v *RuleValidator) CheckCancellationWindow(existingStart time.Time) error {
	if existingStart.Before(v.clock.Now().Add(v.rules.CancellationNotice)) {
		return fmt.Errorf("%w: changes need at least %s notice", ErrCancellationWindow, v.rules.CancellationNotice)
	}
	return nil
}

// ValidateBooking runs the advance window and duplicate checks in order.
func (v *RuleValidator) ValidateBooking(start time.Time, date, phone, exclude string, appointments []*model.Appointment) error {
	if err := v.CheckAdvance(start); err != nil {
		return err
	}
	return v.CheckDuplicate(date, phone, exclude, appointments)
}
