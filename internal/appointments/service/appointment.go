package service

import (
	"context"
	"errors"
	"strings"
	"time"

	appointmentserrors "dentabook/internal/appointments/errors"
	"dentabook/internal/appointments/events"
	"dentabook/internal/appointments/validator"
	"dentabook/internal/metrics"
	"dentabook/internal/scheduling"
	apperrors "dentabook/pkg/errors"
	"dentabook/pkg/logger"
	"dentabook/pkg/model"
	"dentabook/pkg/sanitizer"
)

const (
	OpAvailability = "availability"
	OpSlots        = "slots"
	OpBook         = "book"
	OpUpdate       = "update"
	OpCancel       = "cancel"
)

// Scheduler is the engine surface the service drives.
type Scheduler interface {
	CheckAvailability(ctx context.Context, service, date, rawTime string) (*model.Availability, error)
	ListAvailableSlots(ctx context.Context, service, date string) (*model.AvailableSlots, error)
	BookAppointment(ctx context.Context, in model.AppointmentRequest) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, changes model.AppointmentUpdate) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id string) (*model.Appointment, error)
	GetAppointments(filter model.AppointmentFilter) []*model.Appointment
	GetAppointment(id string) (*model.Appointment, error)
	Catalog() scheduling.Catalog
}

// Result is a committed mutation. PersistenceWarning is set when the change
// is live in memory but the store rejected it.
type Result struct {
	Appointment        *model.Appointment `json:"appointment"`
	PersistenceWarning string             `json:"persistence_warning,omitempty"`
}

type AppointmentService interface {
	CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.Availability, error)
	ListAvailableSlots(ctx context.Context, service, date string) (*model.AvailableSlots, error)
	Services() []scheduling.Service

	Book(ctx context.Context, req *model.AppointmentRequest) (*Result, error)
	Update(ctx context.Context, id string, update *model.AppointmentUpdate) (*Result, error)
	Cancel(ctx context.Context, id string) (*Result, error)

	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
}

type Dependencies struct {
	Engine    Scheduler
	Validator *validator.AppointmentValidator
	Publisher events.Publisher
	Metrics   metrics.Recorder
	Phone     sanitizer.Strategy
	Log       *logger.Logger
}

type appointmentService struct {
	engine    Scheduler
	validator *validator.AppointmentValidator
	publisher events.Publisher
	metrics   metrics.Recorder
	phone     sanitizer.Strategy
	log       *logger.Logger
}

func NewAppointmentService(deps Dependencies) AppointmentService {
	s := &appointmentService{
		engine:    deps.Engine,
		validator: deps.Validator,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		phone:     deps.Phone,
		log:       deps.Log,
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	s.log = s.log.Component("appointments")
	if s.validator == nil {
		s.validator = validator.NewAppointmentValidator(s.log)
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.phone == nil {
		s.phone = sanitizer.NormalizePhone
	}
	return s
}

func (s *appointmentService) CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.Availability, error) {
	defer s.observe(OpAvailability, time.Now())

	req.Service = sanitizer.TrimAndNormalize(req.Service)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = sanitizer.TrimAndNormalize(req.Time)

	if err := s.validator.ValidateAvailability(req); err != nil {
		return nil, s.invalid(OpAvailability, "Availability request validation failed", err)
	}

	result, err := s.engine.CheckAvailability(ctx, req.Service, req.Date, req.Time)
	if err != nil {
		return nil, s.reject(OpAvailability, err)
	}
	s.metrics.RecordAvailabilityCheck(result.Available)

	s.log.Debug("Availability checked",
		"service", result.Service,
		"date", result.Date,
		"time", result.Time,
		"available", result.Available,
		"alternatives", len(result.Alternatives),
	)
	return result, nil
}

func (s *appointmentService) ListAvailableSlots(ctx context.Context, service, date string) (*model.AvailableSlots, error) {
	defer s.observe(OpSlots, time.Now())

	service = sanitizer.TrimAndNormalize(service)
	date = strings.TrimSpace(date)
	if service == "" || date == "" {
		return nil, s.invalid(OpSlots, "Both service and date are required", nil)
	}

	slots, err := s.engine.ListAvailableSlots(ctx, service, date)
	if err != nil {
		return nil, s.reject(OpSlots, err)
	}
	return slots, nil
}

func (s *appointmentService) Services() []scheduling.Service {
	return s.engine.Catalog().Services()
}

func (s *appointmentService) Book(ctx context.Context, req *model.AppointmentRequest) (*Result, error) {
	defer s.observe(OpBook, time.Now())

	s.sanitizeRequest(req)
	applyDefaults(req)

	if err := s.validator.ValidateRequest(req); err != nil {
		s.log.Warn("Appointment validation failed",
			"service", req.Service,
			"phone", req.Phone,
			"error", err,
		)
		return nil, s.invalid(OpBook, "Appointment validation failed", err)
	}

	appt, err := s.engine.BookAppointment(ctx, *req)
	result, err := s.commit(ctx, OpBook, appt, err)
	if err != nil {
		s.log.Info("Booking rejected",
			"service", req.Service,
			"date", req.Date,
			"time", req.Time,
			"reason", appointmentserrors.Reason(err),
		)
		return nil, err
	}

	s.metrics.RecordBooked(appt.Service)
	s.publish(ctx, events.TypeBooked, appt)
	s.log.Info("Appointment booked successfully",
		"id", appt.ID,
		"service", appt.Service,
		"date", appt.Date,
		"time", appt.StartTime,
	)
	return result, nil
}

func (s *appointmentService) Update(ctx context.Context, id string, update *model.AppointmentUpdate) (*Result, error) {
	defer s.observe(OpUpdate, time.Now())

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, s.invalid(OpUpdate, appointmentserrors.ErrEmptyID.Error(), nil)
	}
	s.sanitizeUpdate(update)
	if update.IsEmpty() {
		return nil, s.invalid(OpUpdate, appointmentserrors.ErrEmptyUpdate.Error(), nil)
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.log.Warn("Appointment update validation failed", "id", id, "error", err)
		return nil, s.invalid(OpUpdate, "Appointment update validation failed", err)
	}

	appt, err := s.engine.UpdateAppointment(ctx, id, *update)
	result, err := s.commit(ctx, OpUpdate, appt, err)
	if err != nil {
		s.log.Info("Update rejected", "id", id, "reason", appointmentserrors.Reason(err))
		return nil, err
	}

	s.metrics.RecordUpdated()
	s.publish(ctx, events.TypeUpdated, appt)
	s.log.Info("Appointment updated successfully",
		"id", appt.ID,
		"date", appt.Date,
		"time", appt.StartTime,
		"rescheduled", update.Reschedules(),
	)
	return result, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id string) (*Result, error) {
	defer s.observe(OpCancel, time.Now())

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, s.invalid(OpCancel, appointmentserrors.ErrEmptyID.Error(), nil)
	}

	appt, err := s.engine.CancelAppointment(ctx, id)
	result, err := s.commit(ctx, OpCancel, appt, err)
	if err != nil {
		s.log.Info("Cancellation rejected", "id", id, "reason", appointmentserrors.Reason(err))
		return nil, err
	}

	s.metrics.RecordCancelled()
	s.publish(ctx, events.TypeCancelled, appt)
	s.log.Info("Appointment cancelled successfully", "id", appt.ID, "date", appt.Date, "time", appt.StartTime)
	return result, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput(appointmentserrors.ErrEmptyID.Error())
	}
	appt, err := s.engine.GetAppointment(id)
	if err != nil {
		return nil, appointmentserrors.FromScheduling(err)
	}
	return appt, nil
}

func (s *appointmentService) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	filter.Date = strings.TrimSpace(filter.Date)
	filter.Phone = strings.TrimSpace(filter.Phone)
	if filter.Date != "" {
		if _, err := time.Parse(scheduling.DateLayout, filter.Date); err != nil {
			return nil, apperrors.InvalidInput("date must use the YYYY-MM-DD format")
		}
	}
	return s.engine.GetAppointments(filter), nil
}

// commit turns the engine outcome into a Result. A persistence failure still
// yields the committed appointment, flagged with a warning.
func (s *appointmentService) commit(ctx context.Context, op string, appt *model.Appointment, err error) (*Result, error) {
	if err == nil {
		return &Result{Appointment: appt}, nil
	}
	if appt != nil && errors.Is(err, scheduling.ErrPersistence) {
		s.metrics.RecordPersistenceFailure()
		s.log.Error("Appointment change applied but not persisted",
			"operation", op,
			"id", appt.ID,
			"error", err,
		)
		return &Result{Appointment: appt, PersistenceWarning: err.Error()}, nil
	}
	return nil, s.reject(op, err)
}

func (s *appointmentService) reject(op string, err error) error {
	s.metrics.RecordRejected(op, appointmentserrors.Reason(err))
	appErr := appointmentserrors.FromScheduling(err)
	if appErr.Code == apperrors.CodeInternal {
		s.log.Error("Unexpected scheduling failure", "operation", op, "error", err)
	}
	return appErr
}

func (s *appointmentService) invalid(op, message string, err error) error {
	s.metrics.RecordRejected(op, "invalid_request")
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation(message, map[string]any{"errors": errs})
	}
	return apperrors.InvalidInput(message)
}

// publish never fails the request; the change is already committed.
func (s *appointmentService) publish(ctx context.Context, eventType string, appt *model.Appointment) {
	if err := s.publisher.Publish(ctx, eventType, appt); err != nil {
		s.log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"id", appt.ID,
			"error", err,
		)
	}
}

func (s *appointmentService) observe(op string, start time.Time) {
	s.metrics.RecordOperationLatency(op, time.Since(start))
}

func (s *appointmentService) sanitizeRequest(req *model.AppointmentRequest) {
	req.Service = sanitizer.TrimAndNormalize(req.Service)
	req.PatientName = sanitizer.NormalizeName(req.PatientName)
	req.Phone = s.phone(req.Phone)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = sanitizer.TrimAndNormalize(req.Time)
	req.InsuranceProvider = sanitizer.NormalizeText(req.InsuranceProvider)
	req.Notes = sanitizer.NormalizeText(req.Notes)
}

func (s *appointmentService) sanitizeUpdate(u *model.AppointmentUpdate) {
	apply := func(field **string, normalize sanitizer.Strategy) {
		if *field == nil {
			return
		}
		v := normalize(**field)
		*field = &v
	}
	apply(&u.Service, sanitizer.TrimAndNormalize)
	apply(&u.PatientName, sanitizer.NormalizeName)
	apply(&u.Phone, s.phone)
	apply(&u.Email, sanitizer.NormalizeEmail)
	apply(&u.Date, strings.TrimSpace)
	apply(&u.Time, sanitizer.TrimAndNormalize)
	apply(&u.InsuranceProvider, sanitizer.NormalizeText)
	apply(&u.Notes, sanitizer.NormalizeText)
}

func applyDefaults(req *model.AppointmentRequest) {
	if req.Email == "" {
		req.Email = model.DefaultEmail
	}
	if req.InsuranceProvider == "" {
		req.InsuranceProvider = model.DefaultInsurance
	}
	if req.Notes == "" {
		req.Notes = model.DefaultNotes
	}
}
