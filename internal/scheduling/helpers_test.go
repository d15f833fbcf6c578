package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dentabook/pkg/model"
)

var clinicLoc = time.FixedZone("clinic", 3*60*60)

// Sunday, a working day.
var testNow = time.Date(2026, time.November, 1, 8, 0, 0, 0, clinicLoc)

const (
	testDate   = "2026-11-02" // Monday
	testFriday = "2026-11-06"
	phoneA     = "0791234567"
	phoneB     = "0791234568"
	phoneC     = "0791234569"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{t: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type mockStore struct {
	mu       sync.Mutex
	initial  []*model.Appointment
	loadErr  error
	saveErr  error
	saves    int
	lastSave []*model.Appointment
	saveFunc func(ctx context.Context, appointments []*model.Appointment) error
}

func (m *mockStore) LoadAll(ctx context.Context) ([]*model.Appointment, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.initial, nil
}

func (m *mockStore) Save(ctx context.Context, appointments []*model.Appointment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, appointments)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.lastSave = appointments
	return m.saveErr
}

func newTestGrid(t *testing.T) *Grid {
	t.Helper()
	cfg := DefaultGridConfig()
	cfg.Location = clinicLoc
	g, err := NewGrid(cfg)
	if err != nil {
		t.Fatalf("NewGrid() error: %v", err)
	}
	return g
}

func newTestCatalog(t *testing.T) *StaticCatalog {
	t.Helper()
	c, err := NewStaticCatalog(DefaultServices)
	if err != nil {
		t.Fatalf("NewStaticCatalog() error: %v", err)
	}
	return c
}

func newTestEngine(t *testing.T, clock Clock, store Store) *Engine {
	t.Helper()
	ids := 0
	e, err := NewEngine(context.Background(), Options{
		Catalog: newTestCatalog(t),
		Grid:    newTestGrid(t),
		Rules:   DefaultRules(),
		Clock:   clock,
		Store:   store,
		NewID: func() string {
			ids++
			return fmt.Sprintf("appt-%03d", ids)
		},
	})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func bookingRequest(service, date, clock, phone string) model.AppointmentRequest {
	return model.AppointmentRequest{
		Service:     service,
		PatientName: "Test Patient",
		Phone:       phone,
		Email:       model.DefaultEmail,
		Date:        date,
		Time:        clock,
	}
}

func stored(id, date, clock string, duration int, phone string) *model.Appointment {
	return &model.Appointment{
		ID:              id,
		Service:         "Test",
		Phone:           phone,
		Date:            date,
		StartTime:       clock,
		DurationMinutes: duration,
		Status:          model.StatusBooked,
	}
}

func mustBook(t *testing.T, e *Engine, req model.AppointmentRequest) *model.Appointment {
	t.Helper()
	a, err := e.BookAppointment(context.Background(), req)
	if err != nil {
		t.Fatalf("BookAppointment(%s %s %s) error: %v", req.Service, req.Date, req.Time, err)
	}
	return a
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
