package pricing

import "time"

const (
	DamageExcellent = "excellent"
	DamageGood      = "good"
	DamageFair      = "fair"
	DamageDamaged   = "damaged"
)

const (
	PenaltyPercentage = "percentage"
	PenaltyFixed      = "fixed"
)

// PenaltySettings is the singleton penalty configuration.
type PenaltySettings struct {
	DamagePenaltyRate  float64   `json:"damagePenaltyRate" validate:"gte=0"`
	DamagePenaltyType  string    `json:"damagePenaltyType" validate:"required,oneof=percentage fixed"`
	LatePenaltyRate    float64   `json:"latePenaltyRate" validate:"gte=0"`
	LatePenaltyType    string    `json:"latePenaltyType" validate:"required,oneof=percentage fixed"`
	MaxLatePenaltyDays int       `json:"maxLatePenaltyDays" validate:"gte=1"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func DefaultPenaltySettings() PenaltySettings {
	return PenaltySettings{
		DamagePenaltyRate:  10,
		DamagePenaltyType:  PenaltyPercentage,
		LatePenaltyRate:    5,
		LatePenaltyType:    PenaltyPercentage,
		MaxLatePenaltyDays: 7,
	}
}

type PenaltyResult struct {
	Amount      float64   `json:"amount"`
	Reason      string    `json:"reason"`
	AppliedAt   time.Time `json:"appliedAt"`
	DaysLate    *int      `json:"daysLate,omitempty"`
	DamageLevel string    `json:"damageLevel,omitempty"`
}
