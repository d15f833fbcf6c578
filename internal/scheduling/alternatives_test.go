package scheduling

import (
	"reflect"
	"testing"

	"dentabook/pkg/model"
)

func newTestFinder(t *testing.T) (*AlternativeFinder, *Grid) {
	g := newTestGrid(t)
	return NewAlternativeFinder(g, NewConflictChecker(g)), g
}

func TestAlternativeFinder_Ordering(t *testing.T) {
	f, g := newTestFinder(t)
	existing := []*model.Appointment{
		stored("a1", testDate, "09:00", 90, phoneA),
		stored("a2", testDate, "11:00", 30, phoneB),
	}

	got := f.Suggest(testDate, 60, existing, "", DefaultMaxAlternatives, Window{})

	if len(got) == 0 || len(got) > DefaultMaxAlternatives {
		t.Fatalf("Suggest() returned %d entries, want 1..%d", len(got), DefaultMaxAlternatives)
	}
	checker := NewConflictChecker(g)
	for i, s := range got {
		if s.Date != testDate {
			t.Errorf("suggestion %d on %s, want %s", i, s.Date, testDate)
		}
		if i > 0 && got[i-1].Time >= s.Time {
			t.Errorf("suggestions not strictly ascending: %s then %s", got[i-1].Time, s.Time)
		}
		required, err := g.RequiredSlots(s.Date, s.Time, 60)
		if err != nil {
			t.Errorf("suggestion %s not inside business hours: %v", s.Time, err)
			continue
		}
		if !checker.IsFree(testDate, required, existing, "") {
			t.Errorf("suggestion %s overlaps an existing appointment", s.Time)
		}
	}

	want := []model.Slot{
		{Date: testDate, Time: "13:00"},
		{Date: testDate, Time: "13:30"},
		{Date: testDate, Time: "14:00"},
		{Date: testDate, Time: "14:30"},
		{Date: testDate, Time: "15:00"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}
}

func TestAlternativeFinder_Deterministic(t *testing.T) {
	f, _ := newTestFinder(t)
	existing := []*model.Appointment{stored("a1", testDate, "10:00", 30, phoneA)}

	first := f.Suggest(testDate, 30, existing, "", 5, Window{})
	second := f.Suggest(testDate, 30, existing, "", 5, Window{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Suggest() not deterministic: %v vs %v", first, second)
	}
}

func TestAlternativeFinder_NotBefore(t *testing.T) {
	f, g := newTestFinder(t)
	notBefore, _ := g.At(testDate, "16:00")

	got := f.Suggest(testDate, 30, nil, "", 0, Window{NotBefore: notBefore})
	want := []model.Slot{
		{Date: testDate, Time: "16:00"},
		{Date: testDate, Time: "16:30"},
		{Date: testDate, Time: "17:00"},
		{Date: testDate, Time: "17:30"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}
}

func TestAlternativeFinder_Unlimited(t *testing.T) {
	f, _ := newTestFinder(t)

	// 18 grid positions minus the two lunch slots.
	if got := f.Suggest(testDate, 30, nil, "", 0, Window{}); len(got) != 16 {
		t.Errorf("Suggest() unlimited returned %d, want 16", len(got))
	}
}

func TestAlternativeFinder_ClosedDay(t *testing.T) {
	f, _ := newTestFinder(t)

	if got := f.Suggest(testFriday, 30, nil, "", 5, Window{}); len(got) != 0 {
		t.Errorf("Suggest() on closed day = %v, want none", got)
	}
}

func TestAlternativeFinder_FullDay(t *testing.T) {
	f, _ := newTestFinder(t)
	existing := []*model.Appointment{
		stored("m", testDate, "09:00", 180, phoneA),
		stored("a", testDate, "13:00", 300, phoneB),
	}

	if got := f.Suggest(testDate, 30, existing, "", 5, Window{}); len(got) != 0 {
		t.Errorf("Suggest() on full day = %v, want none", got)
	}
}

func TestAlternativeFinder_NotAfter(t *testing.T) {
	f, g := newTestFinder(t)
	notAfter, _ := g.At(testDate, "09:30")

	got := f.Suggest(testDate, 30, nil, "", 0, Window{NotAfter: notAfter})
	want := []model.Slot{
		{Date: testDate, Time: "09:00"},
		{Date: testDate, Time: "09:30"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest() = %v, want %v", got, want)
	}
}
