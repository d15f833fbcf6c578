package events

import (
	"context"
	"fmt"
	"time"

	"dentabook/pkg/kafka"
	"dentabook/pkg/logger"
	"dentabook/pkg/middleware"
	"dentabook/pkg/model"
)

const (
	TypeBooked    = "appointment.booked"
	TypeUpdated   = "appointment.updated"
	TypeCancelled = "appointment.cancelled"

	Source        = "appointments"
	SchemaVersion = "1"
)

// Event is the JSON value of every appointment message.
type Event struct {
	Type        string             `json:"type"`
	Appointment *model.Appointment `json:"appointment"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Publisher announces appointment lifecycle changes. Publishing happens after
// the change is committed, so a failure never undoes it.
type Publisher interface {
	Publish(ctx context.Context, eventType string, appt *model.Appointment) error
	Close() error
}

type KafkaPublisher struct {
	producer *kafka.Producer
	timeout  time.Duration
	now      func() time.Time
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Discard()
	}
	return &KafkaPublisher{
		producer: producer,
		timeout:  timeout,
		now:      time.Now,
		log:      log.Component("events"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, appt *model.Appointment) error {
	if appt == nil {
		return fmt.Errorf("%w: nil appointment", kafka.ErrInvalidMessage)
	}
	occurred := p.now()

	msg, err := kafka.NewMessage().
		WithKey(appt.Date).
		WithValue(Event{Type: eventType, Appointment: appt, OccurredAt: occurred}).
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		WithTimestamp(occurred).
		Build()
	if err != nil {
		return err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	p.log.Info("Closing event producer", "topic", p.producer.Topic())
	return p.producer.Close()
}

// NopPublisher is used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *model.Appointment) error { return nil }

func (NopPublisher) Close() error { return nil }
