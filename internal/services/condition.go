package pricing

import (
	"errors"
	"fmt"
	"strings"

	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
)

var (
	errNotComparable = errors.New("compare is impossible")
	errNotContainer  = errors.New("value is not a string or list")
	errUnknownOp     = errors.New("unknown operator")
)

// All conditions must hold; an empty list always holds.
func checkConditions(conditions []models.Condition, bctx models.BookingContext) (bool, error) {
	for _, c := range conditions {
		ok, err := checkCondition(c, bctx)
		if err != nil {
			return false, fmt.Errorf("condition is wrong: %s %s: %w", c.Field, c.Operator, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// A missing field is a null value: it equals nothing,
// so only not_equals can hold for it.
func checkCondition(c models.Condition, bctx models.BookingContext) (bool, error) {
	field, _ := bctx.Lookup(c.Field)

	switch c.Operator {
	case models.OpEquals:
		return field.Equal(c.Value), nil
	case models.OpNotEquals:
		return !field.Equal(c.Value), nil
	case models.OpGreaterThan, models.OpLessThan, models.OpGreaterThanEqual, models.OpLessThanEqual:
		if field.IsNull() {
			return false, nil
		}
		result, err := compareValues(field, c.Value)
		if err != nil {
			return false, err
		}
		switch c.Operator {
		case models.OpGreaterThan:
			return result == 1, nil
		case models.OpLessThan:
			return result == -1, nil
		case models.OpGreaterThanEqual:
			return result >= 0, nil
		default:
			return result <= 0, nil
		}
	case models.OpContains:
		if field.IsNull() {
			return false, nil
		}
		return contains(field, c.Value)
	case models.OpIn:
		if c.Value.Kind() != models.KindList {
			return false, fmt.Errorf("%w: in expects a list, got %s", errNotContainer, c.Value.Kind())
		}
		if field.IsNull() {
			return false, nil
		}
		return contains(c.Value, field)
	}
	return false, errUnknownOp
}

// 1 if field > cond, -1 if field < cond, 0 if equal. Numbers only.
func compareValues(field, cond models.Value) (int, error) {
	f, fok := field.Float()
	c, cok := cond.Float()
	if !fok || !cok {
		return 0, fmt.Errorf("%w: %s vs %s", errNotComparable, field.Kind(), cond.Kind())
	}
	switch {
	case f > c:
		return 1, nil
	case f < c:
		return -1, nil
	}
	return 0, nil
}

// Substring for strings, element membership for lists.
func contains(container, item models.Value) (bool, error) {
	if s, ok := container.Str(); ok {
		sub, ok := item.Str()
		if !ok {
			return false, fmt.Errorf("%w: substring must be a string, got %s", errNotComparable, item.Kind())
		}
		return strings.Contains(s, sub), nil
	}
	if items, ok := container.Items(); ok {
		for _, v := range items {
			if v.Equal(item) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", errNotContainer, container.Kind())
}
