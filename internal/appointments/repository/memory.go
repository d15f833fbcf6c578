package repository

import (
	"context"
	"sync"

	"dentabook/pkg/model"
)

// MemoryAppointmentRepository keeps appointments in process. Used with
// STORE_BACKEND=memory and in tests.
type MemoryAppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[string]*model.Appointment
	saves        int
}

func NewMemoryAppointmentRepository(seed ...*model.Appointment) *MemoryAppointmentRepository {
	r := &MemoryAppointmentRepository{appointments: make(map[string]*model.Appointment)}
	for _, a := range seed {
		r.appointments[a.ID] = a.Clone()
	}
	return r
}

func (r *MemoryAppointmentRepository) LoadAll(ctx context.Context) ([]*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if a.Status != model.StatusCancelled {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

// Save mirrors the Mongo semantics: missing live appointments become
// cancelled.
func (r *MemoryAppointmentRepository) Save(ctx context.Context, appointments []*model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := make(map[string]bool, len(appointments))
	for _, a := range appointments {
		keep[a.ID] = true
		r.appointments[a.ID] = a.Clone()
	}
	for id, a := range r.appointments {
		if !keep[id] && a.Status != model.StatusCancelled {
			cancelled := a.Clone()
			cancelled.Status = model.StatusCancelled
			r.appointments[id] = cancelled
		}
	}
	r.saves++
	return nil
}

func (r *MemoryAppointmentRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Get returns the stored copy of id, including cancelled appointments.
func (r *MemoryAppointmentRepository) Get(id string) (*model.Appointment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	return a.Clone(), ok
}

func (r *MemoryAppointmentRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
