package pricing

import (
	"fmt"
	"math"
	"time"

	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
)

const day = 24 * time.Hour

// PenaltyCalculator turns return facts and penalty settings into amounts.
// It does not clamp negative amounts; see BookingService.ProcessReturn.
type PenaltyCalculator struct {
	now func() time.Time
}

func NewPenaltyCalculator() *PenaltyCalculator {
	return &PenaltyCalculator{now: time.Now}
}

func (p *PenaltyCalculator) WithClock(now func() time.Time) *PenaltyCalculator {
	return &PenaltyCalculator{now: now}
}

// damage penalty
func (p *PenaltyCalculator) CalculateDamagePenalty(deposit float64, damageLevel string, settings models.PenaltySettings) models.PenaltyResult {
	var amount float64
	var reason string
	rate := settings.DamagePenaltyRate / 100

	switch damageLevel {
	case models.DamageExcellent:
		reason = "No damage detected"
	case models.DamageGood:
		reason = "Minor wear and tear - no penalty"
	case models.DamageFair:
		amount = deposit * rate * 0.5
		reason = "Moderate damage - 50% of standard penalty"
	case models.DamageDamaged:
		amount = deposit * rate
		reason = "Significant damage - full penalty applied"
	default:
		reason = "Unknown damage level"
	}

	// fixed mode charges the configured amount whatever the damage level
	if settings.DamagePenaltyType == models.PenaltyFixed {
		amount = settings.DamagePenaltyRate
	}

	return models.PenaltyResult{
		Amount:      round2(amount),
		Reason:      reason,
		AppliedAt:   p.now(),
		DamageLevel: damageLevel,
	}
}

// Late days past MaxLatePenaltyDays are not charged. DaysLate keeps the uncapped count.
func (p *PenaltyCalculator) CalculateLatePenalty(expectedReturn, actualReturn time.Time, deposit float64, settings models.PenaltySettings) models.PenaltyResult {
	daysLate := int(math.Ceil(float64(actualReturn.Sub(expectedReturn)) / float64(day)))
	if daysLate <= 0 {
		zero := 0
		return models.PenaltyResult{
			Reason:    "Returned on time or early",
			AppliedAt: p.now(),
			DaysLate:  &zero,
		}
	}

	effective := min(daysLate, settings.MaxLatePenaltyDays)

	var amount float64
	if settings.LatePenaltyType == models.PenaltyPercentage {
		amount = deposit * (settings.LatePenaltyRate / 100) * float64(effective)
	} else {
		amount = settings.LatePenaltyRate * float64(effective)
	}

	return models.PenaltyResult{
		Amount:    round2(amount),
		Reason:    fmt.Sprintf("Late return by %d day(s)", effective),
		AppliedAt: p.now(),
		DaysLate:  &daysLate,
	}
}

// CalculateTotalPenalty sums both penalties; a nil penalty counts as zero.
func CalculateTotalPenalty(damage, late *models.PenaltyResult) float64 {
	var total float64
	if damage != nil {
		total += damage.Amount
	}
	if late != nil {
		total += late.Amount
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
