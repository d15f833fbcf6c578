package kafka

import (
	"errors"
	"testing"
	"time"
)

func TestMessageBuilder(t *testing.T) {
	ts := time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)
	msg, err := NewMessage().
		WithKey("2026-11-02").
		WithValue(struct {
			ID string `json:"id"`
		}{ID: "appt-001"}).
		WithEventID("evt-1").
		WithSchemaVersion("1").
		WithSource("appointments").
		WithTimestamp(ts).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if msg.GetEventID() != "evt-1" {
		t.Errorf("event id = %q", msg.GetEventID())
	}
	if msg.Headers[HeaderTimestamp] != "2026-11-01T08:00:00Z" {
		t.Errorf("timestamp header = %q", msg.Headers[HeaderTimestamp])
	}
	if msg.GetCorrelationID() != "" {
		t.Errorf("correlation id = %q, want empty", msg.GetCorrelationID())
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := msg.DecodeValue(&decoded); err != nil || decoded.ID != "appt-001" {
		t.Errorf("DecodeValue() = %+v, %v", decoded, err)
	}
}

func TestMessageBuilder_GeneratesEventID(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithValue(1).WithEventID("").Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("Build() error = %v, want ErrInvalidMessage", err)
	}
}
