package pricing

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	"go.uber.org/zap"
)

type RuleEngine struct {
	now    func() time.Time
	logger *zap.Logger
}

func NewRuleEngine(logger *zap.Logger) *RuleEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleEngine{now: time.Now, logger: logger}
}

// WithClock returns a copy of the engine that reads validity time from now.
func (e *RuleEngine) WithClock(now func() time.Time) *RuleEngine {
	return &RuleEngine{now: now, logger: e.logger}
}

// log
func (e *RuleEngine) Log(rule models.PriceRule, reason string, err error) {
	e.logger.Debug("Rule Engine",
		zap.String("service", "ApplyPriceRules"),
		zap.String("rule", rule.ID.String()),
		zap.String("skipped", reason),
		zap.Error(err),
	)
}

type tally struct {
	rates    models.BaseRates
	discount float64
	lateFee  float64
}

// ApplyPriceRules prices a booking. Rules run from the highest priority down,
// each one seeing the rates left by the rules before it.
// baseRates and rules are not modified.
func (e *RuleEngine) ApplyPriceRules(baseRates models.BaseRates, rules []models.PriceRule, bctx models.BookingContext) models.PricingSnapshot {
	now := e.now()
	hours := bctx.Number(models.CtxDurationHours)

	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b models.PriceRule) int {
		return cmp.Compare(b.Priority, a.Priority)
	})

	t := &tally{rates: baseRates}
	applied := []models.AppliedRule{}
	for _, rule := range sorted {
		ok, reason, err := Relevant(now, rule, bctx)
		if !ok {
			e.Log(rule, reason, err)
			continue
		}
		t.apply(rule.Effect, hours)
		applied = append(applied, models.AppliedRule{
			RuleID:  rule.ID,
			Summary: fmt.Sprintf("%s: %s applied", rule.Name, rule.Effect.Type),
		})
	}

	basePrice := t.rates.Hourly * hours
	total := basePrice - t.discount + t.lateFee
	if total < 0 {
		total = 0
	}

	return models.PricingSnapshot{
		BaseRates:      t.rates,
		AppliedRules:   applied,
		DiscountAmount: t.discount,
		LateFee:        t.lateFee,
		Deposit:        bctx.Number(models.CtxDepositAmount),
		TotalPrice:     total,
	}
}

// Relevant reports whether a rule applies to the booking at time now.
// When it does not, reason names the failed check.
func Relevant(now time.Time, rule models.PriceRule, bctx models.BookingContext) (ok bool, reason string, err error) {
	if !rule.Enabled {
		return false, "disabled", nil
	}
	if !rule.Validity.Contains(now) {
		return false, "outside validity", nil
	}
	if rule.ProductID != "" && rule.ProductID != bctx.Text(models.CtxProductID) {
		return false, "product mismatch", nil
	}
	if rule.CategoryID != "" && rule.CategoryID != bctx.Text(models.CtxCategoryID) {
		return false, "category mismatch", nil
	}
	ok, err = checkConditions(rule.Conditions, bctx)
	if err != nil {
		return false, "incorrect rule", err
	}
	if !ok {
		return false, "conditions not met", nil
	}
	return true, "", nil
}

func (t *tally) apply(effect models.Effect, hours float64) {
	applyTo := effect.ApplyTo
	if applyTo == "" {
		applyTo = models.ApplyToUnit
	}

	switch effect.Type {
	case models.EffectPercentDiscount:
		// the total branch scales by duration exactly like the unit branch
		if applyTo == models.ApplyToTotal {
			t.discount += t.rates.Hourly * hours * effect.Value / 100
		} else {
			t.discount += t.rates.Hourly * effect.Value / 100 * hours
		}
	case models.EffectFlatDiscount:
		t.discount += effect.Value
	case models.EffectSetPrice:
		if applyTo == models.ApplyToUnit {
			t.rates.Hourly = effect.Value
		}
	case models.EffectSurcharge:
		if applyTo == models.ApplyToTotal {
			t.lateFee += effect.Value
		} else {
			t.rates.Hourly += effect.Value
		}
	case models.EffectTieredPrice:
		// TODO: tier table semantics are undefined for rule effects; priced as a no-op until the rule schema gains tiers.
	}
}
