package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"dentabook/pkg/logger"
	"dentabook/pkg/model"
	"dentabook/pkg/sanitizer"
)

// Store persists the whole appointment set. Save receives a snapshot taken
// after a successful mutation.
type Store interface {
	LoadAll(ctx context.Context) ([]*model.Appointment, error)
	Save(ctx context.Context, appointments []*model.Appointment) error
}

type Options struct {
	Catalog         Catalog
	Grid            *Grid
	Rules           Rules
	Clock           Clock
	Store           Store
	Logger          *logger.Logger
	MaxAlternatives int
	PhoneKey        sanitizer.Strategy
	NewID           func() string
}

// Engine serializes every write against the appointment set behind one lock,
// so validation and mutation form a single critical section. Reads share the
// lock and always see a fully applied state.
type Engine struct {
	mu     sync.RWMutex
	saveMu sync.Mutex
	set    *AppointmentSet

	catalog         Catalog
	grid            *Grid
	checker         *ConflictChecker
	rules           *RuleValidator
	finder          *AlternativeFinder
	clock           Clock
	store           Store
	log             *logger.Logger
	maxAlternatives int
	newID           func() string
}

func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("scheduling: catalog is required")
	}
	if opts.Grid == nil {
		return nil, errors.New("scheduling: grid is required")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{Location: opts.Grid.Location()}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.MaxAlternatives == 0 {
		opts.MaxAlternatives = DefaultMaxAlternatives
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	var existing []*model.Appointment
	if opts.Store != nil {
		loaded, err := opts.Store.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load appointments: %w", err)
		}
		existing = loaded
	}

	checker := NewConflictChecker(opts.Grid)
	e := &Engine{
		set:             NewAppointmentSet(existing),
		catalog:         opts.Catalog,
		grid:            opts.Grid,
		checker:         checker,
		rules:           NewRuleValidator(opts.Rules, opts.Clock, opts.PhoneKey),
		finder:          NewAlternativeFinder(opts.Grid, checker),
		clock:           opts.Clock,
		store:           opts.Store,
		log:             opts.Logger.Component("scheduling"),
		maxAlternatives: opts.MaxAlternatives,
		newID:           opts.NewID,
	}
	e.log.Info("Scheduling engine ready", "appointments", e.set.Len())
	return e, nil
}

func (e *Engine) Catalog() Catalog { return e.catalog }

// slotRequest is a request resolved against the catalog and the grid.
type slotRequest struct {
	service  Service
	date     string
	time     string
	required []string
}

func (e *Engine) resolve(serviceName, date, rawTime string) (*slotRequest, error) {
	svc, err := e.catalog.Lookup(serviceName)
	if err != nil {
		return nil, err
	}
	clock, err := sanitizer.NormalizeTime(rawTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeFormat, err)
	}
	required, err := e.grid.RequiredSlots(date, clock, svc.DurationMinutes)
	if err != nil {
		return nil, err
	}
	return &slotRequest{service: svc, date: date, time: clock, required: required}, nil
}

func (e *Engine) CheckAvailability(ctx context.Context, serviceName, date, rawTime string) (*model.Availability, error) {
	req, err := e.resolve(serviceName, date, rawTime)
	if err != nil {
		return nil, err
	}
	start, err := e.grid.At(req.date, req.time)
	if err != nil {
		return nil, err
	}
	if err := e.rules.CheckAdvance(start); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	sameDay := e.set.OnDate(req.date)
	result := &model.Availability{
		Service:         req.service.Name,
		Date:            req.date,
		Time:            req.time,
		DurationMinutes: req.service.DurationMinutes,
		RequiredSlots:   req.required,
	}
	if e.checker.IsFree(req.date, req.required, sameDay, "") {
		result.Available = true
		return result, nil
	}
	result.Alternatives = e.finder.Suggest(req.date, req.service.DurationMinutes, sameDay, "", e.maxAlternatives, e.rules.BookableWindow())
	return result, nil
}

func (e *Engine) BookAppointment(ctx context.Context, in model.AppointmentRequest) (*model.Appointment, error) {
	req, err := e.resolve(in.Service, in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	out, err := e.bookLocked(req, in)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.log.Info("Appointment booked", "id", out.ID, "date", out.Date, "time", out.StartTime, "service", out.Service)
	return out, e.persistAndUnlock(ctx)
}

func (e *Engine) UpdateAppointment(ctx context.Context, id string, changes model.AppointmentUpdate) (*model.Appointment, error) {
	e.mu.Lock()
	out, err := e.updateLocked(id, changes)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.log.Info("Appointment updated", "id", id, "date", out.Date, "time", out.StartTime)
	return out, e.persistAndUnlock(ctx)
}

func (e *Engine) CancelAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	e.mu.Lock()
	out, err := e.cancelLocked(id)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.log.Info("Appointment cancelled", "id", id, "date", out.Date, "time", out.StartTime)
	return out, e.persistAndUnlock(ctx)
}

func (e *Engine) bookLocked(req *slotRequest, in model.AppointmentRequest) (*model.Appointment, error) {
	start, err := e.grid.At(req.date, req.time)
	if err != nil {
		return nil, err
	}
	sameDay := e.set.OnDate(req.date)
	if err := e.rules.ValidateBooking(start, req.date, in.Phone, "", sameDay); err != nil {
		return nil, err
	}
	if err := e.conflict(req, sameDay, ""); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	appt := &model.Appointment{
		ID:                e.newID(),
		Service:           req.service.Name,
		PatientName:       in.PatientName,
		Phone:             in.Phone,
		Email:             in.Email,
		Date:              req.date,
		StartTime:         req.time,
		DurationMinutes:   req.service.DurationMinutes,
		InsuranceProvider: in.InsuranceProvider,
		Notes:             in.Notes,
		Status:            model.StatusRequested,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := advance(appt, model.StatusValidated, model.StatusBooked); err != nil {
		return nil, err
	}
	e.set.Put(appt)
	return appt.Clone(), nil
}

// updateLocked re-validates a moved appointment against its new slots,
// ignoring its own occupancy, while the notice window always applies to the
// original start.
func (e *Engine) updateLocked(id string, changes model.AppointmentUpdate) (*model.Appointment, error) {
	existing, ok := e.set.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	merged, err := e.applyChanges(existing, changes)
	if err != nil {
		return nil, err
	}
	originalStart, err := e.grid.At(existing.Date, existing.StartTime)
	if err != nil {
		return nil, err
	}

	phoneChanged := changes.Phone != nil && *changes.Phone != existing.Phone
	if changes.Reschedules() || phoneChanged {
		req, err := e.resolve(merged.Service, merged.Date, merged.StartTime)
		if err != nil {
			return nil, err
		}
		newStart, err := e.grid.At(req.date, req.time)
		if err != nil {
			return nil, err
		}
		sameDay := e.set.OnDate(req.date)
		if err := e.rules.ValidateBooking(newStart, req.date, merged.Phone, id, sameDay); err != nil {
			return nil, err
		}
		if err := e.rules.CheckCancellationWindow(originalStart); err != nil {
			return nil, err
		}
		if err := e.conflict(req, sameDay, id); err != nil {
			return nil, err
		}
	} else if err := e.rules.CheckCancellationWindow(originalStart); err != nil {
		return nil, err
	}

	if err := advance(merged, model.StatusUpdated, model.StatusBooked); err != nil {
		return nil, err
	}
	merged.UpdatedAt = e.clock.Now()
	e.set.Put(merged)
	return merged.Clone(), nil
}

func (e *Engine) cancelLocked(id string) (*model.Appointment, error) {
	existing, ok := e.set.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	start, err := e.grid.At(existing.Date, existing.StartTime)
	if err != nil {
		return nil, err
	}
	if err := e.rules.CheckCancellationWindow(start); err != nil {
		return nil, err
	}

	out := existing.Clone()
	if err := advance(out, model.StatusCancelled); err != nil {
		return nil, err
	}
	out.UpdatedAt = e.clock.Now()
	e.set.Remove(id)
	return out, nil
}

// GetAppointments returns copies sorted by date, time and id. Empty filter
// fields match everything; phones compare by normalized identity.
func (e *Engine) GetAppointments(filter model.AppointmentFilter) []*model.Appointment {
	phoneKey := ""
	if filter.Phone != "" {
		phoneKey = e.rules.identity(filter.Phone)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.set.Select(func(a *model.Appointment) bool {
		if filter.Date != "" && a.Date != filter.Date {
			return false
		}
		if phoneKey != "" && e.rules.identity(a.Phone) != phoneKey {
			return false
		}
		return true
	})
}

func (e *Engine) GetAppointment(id string) (*model.Appointment, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, ok := e.set.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	return a.Clone(), nil
}

// ListAvailableSlots returns every start time on date where the service fits
// and that is still bookable from now.
func (e *Engine) ListAvailableSlots(ctx context.Context, serviceName, date string) (*model.AvailableSlots, error) {
	svc, err := e.catalog.Lookup(serviceName)
	if err != nil {
		return nil, err
	}
	if _, err := e.grid.CheckDay(date); err != nil {
		return nil, err
	}
	window := e.rules.BookableWindow()
	if first, err := e.grid.At(date, e.grid.Starts()[0]); err == nil && first.After(window.NotAfter) {
		return nil, fmt.Errorf("%w: %s is past the booking horizon", ErrAdvanceBookingTooFar, date)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	free := e.finder.Suggest(date, svc.DurationMinutes, e.set.OnDate(date), "", 0, window)
	times := make([]string, 0, len(free))
	for _, s := range free {
		times = append(times, s.Time)
	}
	return &model.AvailableSlots{
		Service:         svc.Name,
		Date:            date,
		DurationMinutes: svc.DurationMinutes,
		Times:           times,
	}, nil
}

func (e *Engine) conflict(req *slotRequest, sameDay []*model.Appointment, exclude string) error {
	taken := e.checker.Conflicts(req.date, req.required, sameDay, exclude)
	if len(taken) == 0 {
		return nil
	}
	return &ConflictError{
		Date:         req.date,
		Slots:        taken,
		Alternatives: e.finder.Suggest(req.date, req.service.DurationMinutes, sameDay, exclude, e.maxAlternatives, e.rules.BookableWindow()),
	}
}

// applyChanges returns a copy of existing with the non-nil fields applied.
// The stored duration is re-derived only when the service changes.
func (e *Engine) applyChanges(existing *model.Appointment, changes model.AppointmentUpdate) (*model.Appointment, error) {
	merged := existing.Clone()

	if changes.Service != nil {
		svc, err := e.catalog.Lookup(*changes.Service)
		if err != nil {
			return nil, err
		}
		merged.Service = svc.Name
		merged.DurationMinutes = svc.DurationMinutes
	}
	if changes.Date != nil {
		merged.Date = *changes.Date
	}
	if changes.Time != nil {
		clock, err := sanitizer.NormalizeTime(*changes.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTimeFormat, err)
		}
		merged.StartTime = clock
	}
	if changes.PatientName != nil {
		merged.PatientName = *changes.PatientName
	}
	if changes.Phone != nil {
		merged.Phone = *changes.Phone
	}
	if changes.Email != nil {
		merged.Email = *changes.Email
	}
	if changes.InsuranceProvider != nil {
		merged.InsuranceProvider = *changes.InsuranceProvider
	}
	if changes.Notes != nil {
		merged.Notes = *changes.Notes
	}
	return merged, nil
}

// persistAndUnlock snapshots the set, releases the write lock and saves. The
// save lock is taken before the write lock is released so snapshots reach the
// store in mutation order. A failed save keeps the in-memory change.
func (e *Engine) persistAndUnlock(ctx context.Context) error {
	if e.store == nil {
		e.mu.Unlock()
		return nil
	}
	snapshot := e.set.Snapshot()
	e.saveMu.Lock()
	e.mu.Unlock()
	defer e.saveMu.Unlock()

	if err := e.store.Save(ctx, snapshot); err != nil {
		e.log.Error("Failed to persist appointments", "count", len(snapshot), "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
