package model

import (
	"time"
)

const (
	StatusRequested = "requested"
	StatusValidated = "validated"
	StatusBooked    = "booked"
	StatusUpdated   = "updated"
	StatusCancelled = "cancelled"
)

const (
	DefaultEmail     = "no-email@clinic.com"
	DefaultInsurance = "No Insurance"
	DefaultNotes     = "No additional notes"
)

type Appointment struct {
	ID                string    `json:"id" bson:"_id"`
	Service           string    `json:"service" bson:"service"`
	PatientName       string    `json:"patient_name" bson:"patient_name"`
	Phone             string    `json:"phone" bson:"phone"`
	Email             string    `json:"email" bson:"email"`
	Date              string    `json:"date" bson:"date"`
	StartTime         string    `json:"time" bson:"time"`
	DurationMinutes   int       `json:"duration_minutes" bson:"duration_minutes"`
	InsuranceProvider string    `json:"insurance_provider" bson:"insurance_provider"`
	Notes             string    `json:"notes" bson:"notes"`
	Status            string    `json:"status" bson:"status"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

type AppointmentRequest struct {
	Service           string `json:"service" validate:"required,min=2,max=100"`
	PatientName       string `json:"patient_name" validate:"required,min=2,max=100"`
	Phone             string `json:"phone" validate:"required,min=6,max=20"`
	Email             string `json:"email,omitempty" validate:"omitempty,email"`
	Date              string `json:"date" validate:"required,clinic_date"`
	Time              string `json:"time" validate:"required,max=32"`
	InsuranceProvider string `json:"insurance_provider,omitempty" validate:"omitempty,max=100"`
	Notes             string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// AppointmentUpdate carries only the fields being changed; nil means keep.
// A present scheduling field must not be blank.
type AppointmentUpdate struct {
	Service           *string `json:"service,omitempty" validate:"omitnil,min=2,max=100"`
	PatientName       *string `json:"patient_name,omitempty" validate:"omitnil,min=2,max=100"`
	Phone             *string `json:"phone,omitempty" validate:"omitnil,min=6,max=20"`
	Email             *string `json:"email,omitempty" validate:"omitempty,email"`
	Date              *string `json:"date,omitempty" validate:"omitnil,clinic_date"`
	Time              *string `json:"time,omitempty" validate:"omitnil,min=1,max=32"`
	InsuranceProvider *string `json:"insurance_provider,omitempty" validate:"omitempty,max=100"`
	Notes             *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Reschedules reports whether the update moves the appointment or changes
// its length.
func (u *AppointmentUpdate) Reschedules() bool {
	return u.Service != nil || u.Date != nil || u.Time != nil
}

func (u *AppointmentUpdate) IsEmpty() bool {
	return !u.Reschedules() && u.PatientName == nil && u.Phone == nil &&
		u.Email == nil && u.InsuranceProvider == nil && u.Notes == nil
}

type AvailabilityRequest struct {
	Service string `json:"service" validate:"required,min=2,max=100"`
	Date    string `json:"date" validate:"required,clinic_date"`
	Time    string `json:"time" validate:"required,max=32"`
}

type AppointmentFilter struct {
	Date  string
	Phone string
}
