package progress

import (
	"math"
	"time"
)

// Baseline is the user's pre-quit consumption profile.
type Baseline struct {
	QuitDate          time.Time `json:"quit_date"`
	CigarettesPerDay  int       `json:"cigarettes_per_day"`
	PricePerPack      float64   `json:"price_per_pack"`
	CigarettesPerPack int       `json:"cigarettes_per_pack"`
}

// Stats is the derived progress summary, rounded for display.
type Stats struct {
	TotalDaysSinceQuit int     `json:"totalDaysSinceQuit"`
	SmokeFreeDays      int     `json:"smokeFreeDays"`
	CigarettesAvoided  int     `json:"cigarettesAvoided"`
	MoneySaved         float64 `json:"moneySaved"`        // whole currency units
	ReductionRate      float64 `json:"reductionRate"`     // percent, 1 decimal
	HealthImprovement  float64 `json:"healthImprovement"` // 0-100, 1 decimal
}

// Health score weights. Sustained reduction matters more than raw elapsed
// time, so reduction carries half the score.
const (
	timeWeight      = 20.0
	smokeFreeWeight = 30.0
	reductionWeight = 50.0
)

const dateKeyFormat = "2006-01-02"

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeStats derives the progress summary from the baseline and the
// daily log between the quit date and now.
//
// Days without a log entry are treated as fully smoke-free. This is the
// optimistic default: an unlogged day counts in the user's favor. Logged
// values above the baseline are capped at it, so an impossible entry can
// never produce negative avoidance.
func ComputeStats(b Baseline, entries []Entry, now time.Time) Stats {
	totalDays := int(now.Sub(b.QuitDate).Hours()/24) + 1
	if totalDays < 1 {
		totalDays = 1
	}

	var costPerCigarette float64
	if b.CigarettesPerPack > 0 {
		costPerCigarette = b.PricePerPack / float64(b.CigarettesPerPack)
	}

	logged := make(map[string]int, len(entries))
	for _, e := range entries {
		logged[time.Time(e.Date).Format(dateKeyFormat)] = e.CigarettesSmoked
	}

	smokeFreeDays := 0
	totalAvoided := 0
	moneySaved := 0.0
	for i := 0; i < totalDays; i++ {
		key := b.QuitDate.AddDate(0, 0, i).Format(dateKeyFormat)
		actual := logged[key]
		if actual > b.CigarettesPerDay {
			actual = b.CigarettesPerDay
		}
		if actual < 0 {
			actual = 0
		}
		avoided := b.CigarettesPerDay - actual
		totalAvoided += avoided
		moneySaved += float64(avoided) * costPerCigarette
		if actual == 0 {
			smokeFreeDays++
		}
	}

	var reductionRate float64
	if totalDays > 0 && b.CigarettesPerDay > 0 {
		reductionRate = float64(totalAvoided) / float64(totalDays*b.CigarettesPerDay) * 100
	}

	timeComponent := float64(totalDays) / 365 * timeWeight
	if timeComponent > timeWeight {
		timeComponent = timeWeight
	}
	smokeFreeComponent := float64(smokeFreeDays) / float64(totalDays) * smokeFreeWeight
	reductionComponent := reductionRate / 100 * reductionWeight
	health := timeComponent + smokeFreeComponent + reductionComponent
	if health > 100 {
		health = 100
	}

	return Stats{
		TotalDaysSinceQuit: totalDays,
		SmokeFreeDays:      smokeFreeDays,
		CigarettesAvoided:  totalAvoided,
		MoneySaved:         math.Round(moneySaved),
		ReductionRate:      round1(reductionRate),
		HealthImprovement:  round1(health),
	}
}
