package progress

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func baseline(quit time.Time) Baseline {
	return Baseline{
		QuitDate:          quit,
		CigarettesPerDay:  20,
		PricePerPack:      50000,
		CigarettesPerPack: 20,
	}
}

func entryOn(day time.Time, smoked int) Entry {
	return Entry{UserID: 1, Date: datatypes.Date(day), CigarettesSmoked: smoked}
}

func TestComputeStats_NoEntriesOptimistic(t *testing.T) {
	// Ten-day window (today inclusive), nothing logged: every day counts
	// as smoke-free.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	quit := now.AddDate(0, 0, -9)
	s := ComputeStats(baseline(quit), nil, now)

	if s.TotalDaysSinceQuit != 10 {
		t.Fatalf("expected 10 days, got %d", s.TotalDaysSinceQuit)
	}
	if s.SmokeFreeDays != 10 {
		t.Errorf("expected 10 smoke-free days, got %d", s.SmokeFreeDays)
	}
	if s.CigarettesAvoided != 200 {
		t.Errorf("expected 200 cigarettes avoided, got %d", s.CigarettesAvoided)
	}
	if s.MoneySaved != 500000 {
		t.Errorf("expected 500000 saved, got %v", s.MoneySaved)
	}
	if s.ReductionRate != 100 {
		t.Errorf("expected 100%% reduction rate, got %v", s.ReductionRate)
	}
}

func TestComputeStats_LoggedSmokingReducesSavings(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	quit := now.AddDate(0, 0, -9)
	entries := []Entry{
		entryOn(quit, 20),               // full relapse day
		entryOn(quit.AddDate(0, 0, 1), 5),
	}
	s := ComputeStats(baseline(quit), entries, now)

	if s.SmokeFreeDays != 8 {
		t.Errorf("expected 8 smoke-free days, got %d", s.SmokeFreeDays)
	}
	// 10*20 baseline minus 25 smoked
	if s.CigarettesAvoided != 175 {
		t.Errorf("expected 175 avoided, got %d", s.CigarettesAvoided)
	}
	if s.MoneySaved != 437500 {
		t.Errorf("expected 437500 saved, got %v", s.MoneySaved)
	}
	if s.ReductionRate != 87.5 {
		t.Errorf("expected 87.5 reduction rate, got %v", s.ReductionRate)
	}
}

func TestComputeStats_CapsOverBaselineLogging(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	quit := now.AddDate(0, 0, -1)
	entries := []Entry{entryOn(quit, 99)} // impossible: above baseline
	s := ComputeStats(baseline(quit), entries, now)

	// The over-baseline day contributes zero avoidance, never negative.
	if s.CigarettesAvoided != 20 {
		t.Errorf("expected 20 avoided (one clean day), got %d", s.CigarettesAvoided)
	}
	if s.MoneySaved != 50000 {
		t.Errorf("expected 50000 saved, got %v", s.MoneySaved)
	}
}

func TestComputeStats_QuitDateInFuture(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	quit := now.AddDate(0, 0, 5)
	s := ComputeStats(baseline(quit), nil, now)
	if s.TotalDaysSinceQuit != 1 {
		t.Errorf("expected minimum window of 1 day, got %d", s.TotalDaysSinceQuit)
	}
}

func TestComputeStats_ZeroBaselineGuards(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	b := Baseline{QuitDate: now.AddDate(0, 0, -4)}
	s := ComputeStats(b, nil, now)
	if s.ReductionRate != 0 {
		t.Errorf("expected 0 reduction rate with zero baseline, got %v", s.ReductionRate)
	}
	if s.MoneySaved != 0 {
		t.Errorf("expected 0 saved with zero pack size, got %v", s.MoneySaved)
	}
}

func TestComputeStats_HealthScoreComposition(t *testing.T) {
	// One fully smoke-free year caps time at 20, smoke-free at 30 and
	// reduction at 50: the composite maxes out at 100.
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	quit := now.AddDate(-1, 0, 0)
	s := ComputeStats(baseline(quit), nil, now)
	if s.HealthImprovement != 100 {
		t.Errorf("expected health capped at 100, got %v", s.HealthImprovement)
	}
}

func TestComputeStats_MonotonicInSmokeFreeDays(t *testing.T) {
	// Adding a zero-cigarette entry never decreases savings or health.
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	quit := now.AddDate(0, 0, -9)
	entries := []Entry{entryOn(quit, 12)}
	before := ComputeStats(baseline(quit), entries, now)

	withExtra := append(entries, entryOn(quit.AddDate(0, 0, 3), 0))
	after := ComputeStats(baseline(quit), withExtra, now)

	if after.MoneySaved < before.MoneySaved {
		t.Errorf("money saved decreased: %v -> %v", before.MoneySaved, after.MoneySaved)
	}
	if after.HealthImprovement < before.HealthImprovement {
		t.Errorf("health decreased: %v -> %v", before.HealthImprovement, after.HealthImprovement)
	}
}

func TestComputeStats_Rounding(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	quit := now.AddDate(0, 0, -6) // 7-day window
	b := Baseline{QuitDate: quit, CigarettesPerDay: 15, PricePerPack: 33333, CigarettesPerPack: 19}
	entries := []Entry{entryOn(quit, 7)}
	s := ComputeStats(b, entries, now)

	if s.MoneySaved != float64(int64(s.MoneySaved)) {
		t.Errorf("money should round to a whole number, got %v", s.MoneySaved)
	}
	if round1(s.ReductionRate) != s.ReductionRate {
		t.Errorf("reduction rate should carry one decimal, got %v", s.ReductionRate)
	}
	if round1(s.HealthImprovement) != s.HealthImprovement {
		t.Errorf("health should carry one decimal, got %v", s.HealthImprovement)
	}
}
