package scheduling

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"dentabook/pkg/model"
)

func TestEngine_DurationSpanning(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	ctx := context.Background()

	mustBook(t, e, bookingRequest("Root Canal", testDate, "14:00", phoneA))

	for _, clock := range []string{"14:00", "14:30", "15:00"} {
		got, err := e.CheckAvailability(ctx, "Checkup", testDate, clock)
		if err != nil {
			t.Fatalf("CheckAvailability(%s) error: %v", clock, err)
		}
		if got.Available {
			t.Errorf("CheckAvailability(%s) = available, want taken", clock)
		}
	}

	got, err := e.CheckAvailability(ctx, "Checkup", testDate, "15:30")
	if err != nil {
		t.Fatalf("CheckAvailability(15:30) error: %v", err)
	}
	if !got.Available {
		t.Error("CheckAvailability(15:30) = taken, want available")
	}
}

func TestEngine_CheckAvailability(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	ctx := context.Background()
	mustBook(t, e, bookingRequest("Checkup", testDate, "10:00", phoneA))

	tests := []struct {
		name      string
		service   string
		date      string
		clock     string
		available bool
		wantErr   error
	}{
		{name: "free slot with 12 hour time", service: "Filling", date: testDate, clock: "2pm", available: true},
		{name: "arabic time", service: "Checkup", date: testDate, clock: "٢ مساءً", available: true},
		{name: "taken slot", service: "Checkup", date: testDate, clock: "10:00 am", available: false},
		{name: "lunch exclusion", service: "Root Canal", date: testDate, clock: "11:30", wantErr: ErrOutOfHours},
		{name: "unknown service", service: "Braces", date: testDate, clock: "10:00", wantErr: ErrUnknownService},
		{name: "bad time", service: "Checkup", date: testDate, clock: "noonish", wantErr: ErrInvalidTimeFormat},
		{name: "bad date", service: "Checkup", date: "02/11/2026", clock: "10:00", wantErr: ErrInvalidDate},
		{name: "closed day", service: "Checkup", date: testFriday, clock: "10:00", wantErr: ErrClinicClosed},
		{name: "too soon", service: "Checkup", date: "2026-11-01", clock: "09:00", wantErr: ErrAdvanceBookingTooSoon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CheckAvailability(ctx, tt.service, tt.date, tt.clock)
			if tt.wantErr != nil {
				assertErrorIs(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("CheckAvailability() unexpected error: %v", err)
			}
			if got.Available != tt.available {
				t.Errorf("Available = %v, want %v", got.Available, tt.available)
			}
			if !got.Available && len(got.Alternatives) == 0 {
				t.Error("unavailable result carries no alternatives")
			}
		})
	}
}

func TestEngine_CheckAvailability_Alternatives(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	mustBook(t, e, bookingRequest("Checkup", testDate, "10:00", phoneA))

	got, err := e.CheckAvailability(context.Background(), "Checkup", testDate, "10:00")
	if err != nil {
		t.Fatalf("CheckAvailability() error: %v", err)
	}
	want := []model.Slot{
		{Date: testDate, Time: "09:00"},
		{Date: testDate, Time: "09:30"},
		{Date: testDate, Time: "10:30"},
		{Date: testDate, Time: "11:00"},
		{Date: testDate, Time: "11:30"},
	}
	if !reflect.DeepEqual(got.Alternatives, want) {
		t.Errorf("Alternatives = %v, want %v", got.Alternatives, want)
	}
}

func TestEngine_NormalizationEquivalence(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	first := mustBook(t, e, bookingRequest("Checkup", testDate, "٢:٠٠ مساءً", phoneA))
	if first.StartTime != "14:00" {
		t.Fatalf("StartTime = %s, want 14:00", first.StartTime)
	}

	for _, clock := range []string{"14:00", "2:00 PM", "2pm", "2:00pm"} {
		_, err := e.BookAppointment(context.Background(), bookingRequest("Checkup", testDate, clock, phoneB))
		if !errors.Is(err, ErrSlotConflict) {
			t.Errorf("BookAppointment(%q) error = %v, want ErrSlotConflict", clock, err)
		}
	}
}

func TestEngine_LunchExclusion(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)

	_, err := e.BookAppointment(context.Background(), bookingRequest("Root Canal", testDate, "11:30", phoneA))
	assertErrorIs(t, err, ErrOutOfHours)
	if n := len(e.GetAppointments(model.AppointmentFilter{})); n != 0 {
		t.Errorf("failed booking left %d appointments", n)
	}
}

func TestEngine_DoubleBookingPrevention(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(t, FixedClock(testNow), store)
	ctx := context.Background()

	first := mustBook(t, e, bookingRequest("Filling", testDate, "10:00", phoneA))

	_, err := e.BookAppointment(ctx, bookingRequest("Filling", testDate, "10:00", phoneB))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second booking error = %v, want *ConflictError", err)
	}
	if !errors.Is(err, ErrSlotConflict) {
		t.Error("ConflictError does not match ErrSlotConflict")
	}
	if !reflect.DeepEqual(conflict.Slots, []string{"10:00", "10:30"}) {
		t.Errorf("conflict slots = %v, want [10:00 10:30]", conflict.Slots)
	}
	if len(conflict.Alternatives) == 0 || len(conflict.Alternatives) > DefaultMaxAlternatives {
		t.Errorf("conflict alternatives = %v", conflict.Alternatives)
	}

	all := e.GetAppointments(model.AppointmentFilter{})
	if len(all) != 1 || all[0].ID != first.ID {
		t.Fatalf("appointments = %v, want only %s", all, first.ID)
	}
	if store.saves != 1 {
		t.Errorf("store saved %d times, want 1", store.saves)
	}
}

func TestEngine_DuplicatePatient(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	ctx := context.Background()
	mustBook(t, e, bookingRequest("Checkup", testDate, "09:00", phoneA))

	_, err := e.BookAppointment(ctx, bookingRequest("Filling", testDate, "15:00", "+962 79 123 4567"))
	assertErrorIs(t, err, ErrDuplicatePatient)

	if _, err := e.BookAppointment(ctx, bookingRequest("Filling", "2026-11-03", "15:00", phoneA)); err != nil {
		t.Errorf("same patient on another date: unexpected error %v", err)
	}
}

func TestEngine_AdvanceWindowBoundaries(t *testing.T) {
	ctx := context.Background()
	// 10:00 on the same Sunday as testNow.
	target := bookingRequest("Checkup", "2026-11-01", "10:00", phoneA)

	tooSoon := newTestEngine(t, FixedClock(time.Date(2026, 11, 1, 8, 1, 0, 0, clinicLoc)), nil)
	_, err := tooSoon.BookAppointment(ctx, target)
	assertErrorIs(t, err, ErrAdvanceBookingTooSoon)

	justInTime := newTestEngine(t, FixedClock(time.Date(2026, 11, 1, 7, 59, 0, 0, clinicLoc)), nil)
	if _, err := justInTime.BookAppointment(ctx, target); err != nil {
		t.Fatalf("121 minutes ahead: unexpected error %v", err)
	}

	tooFar := newTestEngine(t, FixedClock(testNow), nil)
	_, err = tooFar.BookAppointment(ctx, bookingRequest("Checkup", "2027-01-31", "10:00", phoneA))
	assertErrorIs(t, err, ErrAdvanceBookingTooFar)
}

func TestEngine_CancelFreesSlots(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	ctx := context.Background()
	booked := mustBook(t, e, bookingRequest("Teeth Whitening", testDate, "16:00", phoneA))

	cancelled, err := e.CancelAppointment(ctx, booked.ID)
	if err != nil {
		t.Fatalf("CancelAppointment() error: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}

	got, err := e.CheckAvailability(ctx, "Teeth Whitening", testDate, "16:00")
	if err != nil {
		t.Fatalf("CheckAvailability() error: %v", err)
	}
	if !got.Available {
		t.Error("slot still taken after cancellation")
	}
	if _, err := e.GetAppointment(booked.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("GetAppointment() after cancel error = %v, want ErrAppointmentNotFound", err)
	}
	_, err = e.CancelAppointment(ctx, booked.ID)
	assertErrorIs(t, err, ErrAppointmentNotFound)
}

func TestEngine_CancellationWindow(t *testing.T) {
	clock := newTestClock(testNow)
	e := newTestEngine(t, clock, nil)
	ctx := context.Background()
	booked := mustBook(t, e, bookingRequest("Checkup", testDate, "10:00", phoneA))

	// 23 hours before the appointment.
	clock.Set(time.Date(2026, 11, 1, 11, 0, 0, 0, clinicLoc))

	_, err := e.CancelAppointment(ctx, booked.ID)
	assertErrorIs(t, err, ErrCancellationWindow)

	notes := "running late"
	_, err = e.UpdateAppointment(ctx, booked.ID, model.AppointmentUpdate{Notes: &notes})
	assertErrorIs(t, err, ErrCancellationWindow)

	// Moving to a later, valid slot is still judged against the original start.
	later := "2026-11-10"
	_, err = e.UpdateAppointment(ctx, booked.ID, model.AppointmentUpdate{Date: &later})
	assertErrorIs(t, err, ErrCancellationWindow)

	got, _ := e.GetAppointment(booked.ID)
	if got.Date != testDate || got.Notes != booked.Notes {
		t.Errorf("rejected updates changed the appointment: %+v", got)
	}
}

func TestEngine_UpdateAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		e := newTestEngine(t, FixedClock(testNow), nil)
		_, err := e.UpdateAppointment(ctx, "missing", model.AppointmentUpdate{})
		assertErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("shift within own occupancy", func(t *testing.T) {
		e := newTestEngine(t, FixedClock(testNow), nil)
		booked := mustBook(t, e, bookingRequest("Root Canal", testDate, "14:00", phoneA))

		clock := "2:30 pm"
		got, err := e.UpdateAppointment(ctx, booked.ID, model.AppointmentUpdate{Time: &clock})
		if err != nil {
			t.Fatalf("UpdateAppointment() error: %v", err)
		}
		if got.StartTime != "14:30" || got.Status != model.StatusBooked {
			t.Errorf("updated = %s/%s, want 14:30/booked", got.StartTime, got.Status)
		}
		free, _ := e.CheckAvailability(ctx, "Checkup", testDate, "14:00")
		if !free.Available {
			t.Error("old start still occupied after move")
		}
	})

	t.Run("move onto another appointment", func(t *testing.T) {
		e := newTestEngine(t, FixedClock(testNow), nil)
		mustBook(t, e, bookingRequest("Checkup", testDate, "15:00", phoneA))
		mine := mustBook(t, e, bookingRequest("Checkup", testDate, "09:00", phoneB))

		clock := "15:00"
		_, err := e.UpdateAppointment(ctx, mine.ID, model.AppointmentUpdate{Time: &clock})
		assertErrorIs(t, err, ErrSlotConflict)

		got, _ := e.GetAppointment(mine.ID)
		if got.StartTime != "09:00" {
			t.Errorf("StartTime = %s after rejected update, want 09:00", got.StartTime)
		}
	})

	t.Run("service change re-derives duration", func(t *testing.T) {
		e := newTestEngine(t, FixedClock(testNow), nil)
		booked := mustBook(t, e, bookingRequest("Checkup", testDate, "09:00", phoneA))

		svc := "علاج العصب"
		got, err := e.UpdateAppointment(ctx, booked.ID, model.AppointmentUpdate{Service: &svc})
		if err != nil {
			t.Fatalf("UpdateAppointment() error: %v", err)
		}
		if got.Service != "Root Canal" || got.DurationMinutes != 90 {
			t.Errorf("updated = %s/%d, want Root Canal/90", got.Service, got.DurationMinutes)
		}
	})

	t.Run("service change into lunch", func(t *testing.T) {
		e := newTestEngine(t, FixedClock(testNow), nil)
		booked := mustBook(t, e, bookingRequest("Checkup", testDate, "11:30", phoneA))

		svc := "Root Canal"
		_, err := e.UpdateAppointment(ctx, booked.ID, model.AppointmentUpdate{Service: &svc})
		assertErrorIs(t, err, ErrOutOfHours)
	})

	t.Run("duplicate patient on new date", func(t *testing.T) {
		e := newTestEngine(t, FixedClock(testNow), nil)
		mustBook(t, e, bookingRequest("Checkup", "2026-11-03", "09:00", phoneA))
		mine := mustBook(t, e, bookingRequest("Checkup", testDate, "09:00", phoneA))

		date := "2026-11-03"
		clock := "15:00"
		_, err := e.UpdateAppointment(ctx, mine.ID, model.AppointmentUpdate{Date: &date, Time: &clock})
		assertErrorIs(t, err, ErrDuplicatePatient)
	})

	t.Run("details only", func(t *testing.T) {
		e := newTestEngine(t, FixedClock(testNow), nil)
		booked := mustBook(t, e, bookingRequest("Checkup", testDate, "09:00", phoneA))

		notes := "sensitive teeth"
		got, err := e.UpdateAppointment(ctx, booked.ID, model.AppointmentUpdate{Notes: &notes})
		if err != nil {
			t.Fatalf("UpdateAppointment() error: %v", err)
		}
		if got.Notes != notes || got.StartTime != "09:00" || got.ID != booked.ID {
			t.Errorf("updated = %+v", got)
		}
	})
}

func TestEngine_PersistenceFailureKeepsMutation(t *testing.T) {
	store := &mockStore{saveErr: errors.New("disk full")}
	e := newTestEngine(t, FixedClock(testNow), store)

	got, err := e.BookAppointment(context.Background(), bookingRequest("Checkup", testDate, "09:00", phoneA))
	assertErrorIs(t, err, ErrPersistence)
	if got == nil {
		t.Fatal("BookAppointment() returned no appointment alongside persistence failure")
	}
	if _, err := e.GetAppointment(got.ID); err != nil {
		t.Errorf("appointment not kept in memory: %v", err)
	}
}

func TestEngine_SavesSnapshot(t *testing.T) {
	store := &mockStore{}
	e := newTestEngine(t, FixedClock(testNow), store)
	ctx := context.Background()

	a := mustBook(t, e, bookingRequest("Checkup", testDate, "09:00", phoneA))
	mustBook(t, e, bookingRequest("Checkup", testDate, "10:00", phoneB))
	if len(store.lastSave) != 2 {
		t.Fatalf("last save had %d appointments, want 2", len(store.lastSave))
	}

	if _, err := e.CancelAppointment(ctx, a.ID); err != nil {
		t.Fatalf("CancelAppointment() error: %v", err)
	}
	if len(store.lastSave) != 1 || store.lastSave[0].ID == a.ID {
		t.Errorf("snapshot after cancel = %v", store.lastSave)
	}

	// Snapshots are copies.
	store.lastSave[0].StartTime = "17:30"
	got := e.GetAppointments(model.AppointmentFilter{})
	if got[0].StartTime != "10:00" {
		t.Error("mutating a saved snapshot changed engine state")
	}
}

func TestNewEngine_LoadsStore(t *testing.T) {
	cancelled := stored("c1", testDate, "11:00", 30, phoneC)
	cancelled.Status = model.StatusCancelled
	store := &mockStore{initial: []*model.Appointment{
		stored("a1", testDate, "09:00", 30, phoneA),
		cancelled,
	}}

	e := newTestEngine(t, FixedClock(testNow), store)
	all := e.GetAppointments(model.AppointmentFilter{})
	if len(all) != 1 || all[0].ID != "a1" {
		t.Fatalf("loaded = %v, want only a1", all)
	}

	_, err := e.BookAppointment(context.Background(), bookingRequest("Checkup", testDate, "09:00", phoneB))
	assertErrorIs(t, err, ErrSlotConflict)
}

func TestNewEngine_LoadError(t *testing.T) {
	_, err := NewEngine(context.Background(), Options{
		Catalog: newTestCatalog(t),
		Grid:    newTestGrid(t),
		Store:   &mockStore{loadErr: errors.New("unreachable")},
	})
	if err == nil {
		t.Fatal("NewEngine() expected error when the store cannot load")
	}
}

func TestEngine_GetAppointments(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	mustBook(t, e, bookingRequest("Checkup", "2026-11-03", "09:00", phoneA))
	mustBook(t, e, bookingRequest("Checkup", testDate, "15:00", phoneA))
	mustBook(t, e, bookingRequest("Checkup", testDate, "09:30", phoneB))

	first := e.GetAppointments(model.AppointmentFilter{})
	second := e.GetAppointments(model.AppointmentFilter{})
	if !reflect.DeepEqual(first, second) {
		t.Error("GetAppointments() not idempotent")
	}

	var order []string
	for _, a := range first {
		order = append(order, a.Date+" "+a.StartTime)
	}
	want := []string{testDate + " 09:30", testDate + " 15:00", "2026-11-03 09:00"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	if got := e.GetAppointments(model.AppointmentFilter{Date: testDate}); len(got) != 2 {
		t.Errorf("date filter returned %d, want 2", len(got))
	}
	if got := e.GetAppointments(model.AppointmentFilter{Phone: "+962791234567"}); len(got) != 2 {
		t.Errorf("phone filter returned %d, want 2", len(got))
	}
	if got := e.GetAppointments(model.AppointmentFilter{Date: testDate, Phone: phoneB}); len(got) != 1 {
		t.Errorf("combined filter returned %d, want 1", len(got))
	}
}

func TestEngine_ListAvailableSlots(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)
	ctx := context.Background()
	mustBook(t, e, bookingRequest("Root Canal", testDate, "10:00", phoneA))

	got, err := e.ListAvailableSlots(ctx, "Checkup", testDate)
	if err != nil {
		t.Fatalf("ListAvailableSlots() error: %v", err)
	}
	for _, taken := range []string{"10:00", "10:30", "11:00", "12:00", "12:30"} {
		for _, s := range got.Times {
			if s == taken {
				t.Errorf("ListAvailableSlots() includes unavailable %s", taken)
			}
		}
	}
	if len(got.Times) != 13 {
		t.Errorf("ListAvailableSlots() returned %d times, want 13: %v", len(got.Times), got.Times)
	}

	_, err = e.ListAvailableSlots(ctx, "Checkup", testFriday)
	assertErrorIs(t, err, ErrClinicClosed)
	_, err = e.ListAvailableSlots(ctx, "Braces", testDate)
	assertErrorIs(t, err, ErrUnknownService)
}

func TestEngine_ListAvailableSlots_PastHorizon(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), nil)

	_, err := e.ListAvailableSlots(context.Background(), "Checkup", "2027-03-01")
	assertErrorIs(t, err, ErrAdvanceBookingTooFar)
}

func TestEngine_SuggestionsStayInsideHorizon(t *testing.T) {
	// 2027-01-31 09:45 is exactly 90 days ahead.
	now := time.Date(2026, time.November, 2, 9, 45, 0, 0, clinicLoc)
	const edge = "2027-01-31"
	e := newTestEngine(t, FixedClock(now), nil)
	ctx := context.Background()

	mustBook(t, e, bookingRequest("Checkup", edge, "09:00", phoneA))
	want := []model.Slot{{Date: edge, Time: "09:30"}}

	_, err := e.BookAppointment(ctx, bookingRequest("Checkup", edge, "09:00", phoneB))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("BookAppointment() error = %v, want *ConflictError", err)
	}
	if !reflect.DeepEqual(conflict.Alternatives, want) {
		t.Errorf("conflict alternatives = %v, want %v", conflict.Alternatives, want)
	}

	avail, err := e.CheckAvailability(ctx, "Checkup", edge, "09:00")
	if err != nil {
		t.Fatalf("CheckAvailability() error: %v", err)
	}
	if avail.Available || !reflect.DeepEqual(avail.Alternatives, want) {
		t.Errorf("CheckAvailability() = %+v, want alternatives %v", avail, want)
	}

	slots, err := e.ListAvailableSlots(ctx, "Checkup", edge)
	if err != nil {
		t.Fatalf("ListAvailableSlots() error: %v", err)
	}
	if !reflect.DeepEqual(slots.Times, []string{"09:30"}) {
		t.Fatalf("ListAvailableSlots() = %v, want [09:30]", slots.Times)
	}
	for _, s := range slots.Times {
		mustBook(t, e, bookingRequest("Checkup", edge, s, phoneC))
	}
}

func TestEngine_ConcurrentBookingsSameSlot(t *testing.T) {
	e := newTestEngine(t, FixedClock(testNow), &mockStore{})
	phones := []string{"0791000001", "0791000002", "0791000003", "0791000004", "0791000005", "0791000006", "0791000007", "0791000008"}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, phone := range phones {
		wg.Add(1)
		go func(phone string) {
			defer wg.Done()
			_, err := e.BookAppointment(context.Background(), bookingRequest("Root Canal", testDate, "14:00", phone))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(phone)
	}
	wg.Wait()

	if successes != 1 || conflicts != len(phones)-1 {
		t.Errorf("successes=%d conflicts=%d, want 1 and %d", successes, conflicts, len(phones)-1)
	}
	if n := len(e.GetAppointments(model.AppointmentFilter{Date: testDate})); n != 1 {
		t.Errorf("stored %d appointments, want 1", n)
	}
}
