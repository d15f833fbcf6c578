package testutil

import (
	"fmt"
	"time"

	"dentabook/pkg/model"
)

type AppointmentRequestBuilder struct {
	req model.AppointmentRequest
}

func NewAppointmentRequestBuilder() *AppointmentRequestBuilder {
	return &AppointmentRequestBuilder{
		req: model.AppointmentRequest{
			Service:     "Checkup",
			PatientName: "Integration Patient",
			Phone:       UniquePhone(),
			Date:        NextWorkingDate(time.Now(), 3),
			Time:        "10:00",
		},
	}
}

func (b *AppointmentRequestBuilder) WithService(service string) *AppointmentRequestBuilder {
	b.req.Service = service
	return b
}

func (b *AppointmentRequestBuilder) WithPhone(phone string) *AppointmentRequestBuilder {
	b.req.Phone = phone
	return b
}

func (b *AppointmentRequestBuilder) WithDate(date string) *AppointmentRequestBuilder {
	b.req.Date = date
	return b
}

func (b *AppointmentRequestBuilder) WithTime(clock string) *AppointmentRequestBuilder {
	b.req.Time = clock
	return b
}

func (b *AppointmentRequestBuilder) Build() model.AppointmentRequest {
	return b.req
}

// UniquePhone returns a Jordanian mobile number that is unlikely to collide
// with earlier runs against the same database.
func UniquePhone() string {
	return fmt.Sprintf("079%07d", time.Now().UnixNano()%10_000_000)
}

// NextWorkingDate returns the first Sunday to Thursday at least minDays
// ahead of from.
func NextWorkingDate(from time.Time, minDays int) string {
	d := from.AddDate(0, 0, minDays)
	for d.Weekday() == time.Friday || d.Weekday() == time.Saturday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}
