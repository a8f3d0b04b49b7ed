package pricing

import (
	"time"

	"github.com/google/uuid"
)

// rates before rules
type BaseRates struct {
	Hourly float64 `bson:"hourly" json:"hourly"`
	Daily  float64 `bson:"daily" json:"daily"`
	Weekly float64 `bson:"weekly" json:"weekly"`
}

const (
	OpEquals           = "equals"
	OpNotEquals        = "not_equals"
	OpGreaterThan      = "greater_than"
	OpLessThan         = "less_than"
	OpGreaterThanEqual = "greater_than_equal"
	OpLessThanEqual    = "less_than_equal"
	OpContains         = "contains"
	OpIn               = "in"
)

const (
	EffectPercentDiscount = "percentDiscount"
	EffectFlatDiscount    = "flatDiscount"
	EffectSetPrice        = "setPrice"
	EffectSurcharge       = "surcharge"
	EffectTieredPrice     = "tieredPrice"
)

const (
	ApplyToUnit  = "unit"
	ApplyToTotal = "total"
)

type Condition struct {
	Field    string `bson:"field" json:"field"`
	Operator string `bson:"operator" json:"operator"`
	Value    Value  `bson:"value" json:"value"`
}

type Effect struct {
	Type    string  `bson:"type" json:"type"`
	Value   float64 `bson:"value" json:"value"`
	ApplyTo string  `bson:"applyTo" json:"applyTo"`
}

// Validity is a closed interval. A zero bound leaves that side open.
type Validity struct {
	StartDate time.Time `bson:"startDate" json:"startDate"`
	EndDate   time.Time `bson:"endDate" json:"endDate"`
}

func (v Validity) Contains(t time.Time) bool {
	if !v.StartDate.IsZero() && t.Before(v.StartDate) {
		return false
	}
	if !v.EndDate.IsZero() && t.After(v.EndDate) {
		return false
	}
	return true
}

// PriceRule ids are UUIDs assigned by SaveRule; priority may be fractional.
type PriceRule struct {
	ID         uuid.UUID   `bson:"id" json:"ruleId"`
	Name       string      `bson:"name" json:"name"`
	ProductID  string      `bson:"productId,omitempty" json:"productId,omitempty"`
	CategoryID string      `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Priority   float64     `bson:"priority" json:"priority"`
	Validity   Validity    `bson:"validity" json:"validity"`
	Conditions []Condition `bson:"conditions" json:"conditions"`
	Effect     Effect      `bson:"effect" json:"effect"`
	Enabled    bool        `bson:"enabled" json:"enabled"`
}

// Global rules carry neither a product nor a category scope.
func (r PriceRule) Global() bool {
	return r.ProductID == "" && r.CategoryID == ""
}

type AppliedRule struct {
	RuleID  uuid.UUID `bson:"ruleId" json:"ruleId"`
	Summary string    `bson:"summary" json:"summary"`
}

// PricingSnapshot is stored on the booking as-is and never recalculated.
type PricingSnapshot struct {
	BaseRates      BaseRates     `bson:"baseRates" json:"baseRates"`
	AppliedRules   []AppliedRule `bson:"appliedRules" json:"appliedRules"`
	DiscountAmount float64       `bson:"discountAmount" json:"discountAmount"`
	LateFee        float64       `bson:"lateFee" json:"lateFee"`
	Deposit        float64       `bson:"deposit" json:"deposit"`
	TotalPrice     float64       `bson:"totalPrice" json:"totalPrice"`
}

// booking context keys read by the engine itself
const (
	CtxDurationHours = "durationHours"
	CtxDurationDays  = "durationDays"
	CtxUnitCount     = "unitCount"
	CtxDepositAmount = "depositAmount"
	CtxProductID     = "productId"
	CtxCategoryID    = "categoryId"
	CtxUserType      = "userType"
	CtxStartHour     = "startHour"
	CtxStartWeekday  = "startWeekday"
)

type BookingContext map[string]Value

func (c BookingContext) Lookup(field string) (Value, bool) {
	v, ok := c[field]
	return v, ok
}

// Number returns 0 for missing or non-numeric fields.
func (c BookingContext) Number(field string) float64 {
	f, _ := c[field].Float()
	return f
}

func (c BookingContext) Text(field string) string {
	s, _ := c[field].Str()
	return s
}
