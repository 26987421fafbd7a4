package sync

import (
	"math"
	"testing"

	"agricore/pkg/domain"
)

func milkDay(volume float64, session domain.MilkingSession) domain.MilkSession {
	return domain.MilkSession{Date: "2026-03-01", Session: session, VolumeLiters: volume}
}

func TestSumAndAverage(t *testing.T) {
	sessions := []domain.MilkSession{
		milkDay(120, domain.SessionMorning),
		milkDay(80, domain.SessionMidday),
		milkDay(100, domain.SessionEvening),
	}
	volume := func(m domain.MilkSession) float64 { return m.VolumeLiters }
	if got := Sum(sessions, volume); got != 300 {
		t.Fatalf("expected total 300, got %v", got)
	}
	if got := Average(sessions, volume); got != 100 {
		t.Fatalf("expected average 100, got %v", got)
	}
	if got := Average(nil, volume); got != 0 {
		t.Fatalf("expected empty average 0, got %v", got)
	}
}

func TestCountWhere(t *testing.T) {
	animals := []domain.Animal{
		{Type: domain.AnimalMotherCow},
		{Type: domain.AnimalMotherCow},
		{Type: domain.AnimalCalf},
	}
	got := CountWhere(animals, func(a domain.Animal) bool { return a.Type == domain.AnimalMotherCow })
	if got != 2 {
		t.Fatalf("expected 2 mother cows, got %d", got)
	}
}

func TestPercentSplit(t *testing.T) {
	animals := []domain.Animal{
		{Type: domain.AnimalMotherCow},
		{Type: domain.AnimalMotherCow},
		{Type: domain.AnimalCalf},
		{Type: domain.AnimalBull},
	}
	split := PercentSplit(animals, func(a domain.Animal) string { return string(a.Type) })
	if len(split) != 3 {
		t.Fatalf("expected 3 groups, got %+v", split)
	}
	if math.Abs(split["mother_cow"]-50) > 1e-9 || math.Abs(split["calf"]-25) > 1e-9 {
		t.Fatalf("unexpected shares %+v", split)
	}
	if got := PercentSplit(nil, func(a domain.Animal) string { return string(a.Type) }); len(got) != 0 {
		t.Fatalf("expected empty split, got %+v", got)
	}
}
