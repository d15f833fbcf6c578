package scheduling

import (
	"sort"

	"dentabook/pkg/model"
)

// AppointmentSet holds the non-cancelled appointments keyed by id. It is not
// safe for concurrent use; Engine guards it.
type AppointmentSet struct {
	byID map[string]*model.Appointment
}

func NewAppointmentSet(appointments []*model.Appointment) *AppointmentSet {
	s := &AppointmentSet{byID: make(map[string]*model.Appointment, len(appointments))}
	for _, a := range appointments {
		if a == nil || a.ID == "" || a.Status == model.StatusCancelled {
			continue
		}
		s.byID[a.ID] = a.Clone()
	}
	return s
}

func (s *AppointmentSet) Len() int { return len(s.byID) }

func (s *AppointmentSet) Get(id string) (*model.Appointment, bool) {
	a, ok := s.byID[id]
	return a, ok
}

func (s *AppointmentSet) Put(a *model.Appointment) {
	s.byID[a.ID] = a
}

func (s *AppointmentSet) Remove(id string) {
	delete(s.byID, id)
}

// OnDate returns the stored appointments for date without copying.
func (s *AppointmentSet) OnDate(date string) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range s.byID {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

// Snapshot returns copies of every appointment in (date, time, id) order.
func (s *AppointmentSet) Snapshot() []*model.Appointment {
	return s.Select(func(*model.Appointment) bool { return true })
}

// Select returns sorted copies of the appointments matching keep.
func (s *AppointmentSet) Select(keep func(*model.Appointment) bool) []*model.Appointment {
	out := make([]*model.Appointment, 0, len(s.byID))
	for _, a := range s.byID {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	sortAppointments(out)
	return out
}

func sortAppointments(list []*model.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}
