package pricing

import (
	"math"
	"strings"
	"time"

	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
)

// ResolveBaseRates picks the product rates from the highest-priority pricelist that
// is valid at now, matches the user type and lists the product. Earlier pricelists
// win priority ties. Without a match the product's own rates are used.
func ResolveBaseRates(product models.Product, pricelists []models.Pricelist, userType string, now time.Time) models.BaseRates {
	var best *models.Pricelist
	for i := range pricelists {
		pl := &pricelists[i]
		if pl.UserType != "" && pl.UserType != userType {
			continue
		}
		if !pl.Validity.Contains(now) {
			continue
		}
		if _, ok := pl.Rates[product.ID]; !ok {
			continue
		}
		if best == nil || pl.Priority > best.Priority {
			best = pl
		}
	}
	if best == nil {
		return product.BaseRates
	}
	return best.Rates[product.ID]
}

// BuildContext assembles the fields rule conditions can refer to.
// Request attributes come first so they can never shadow the computed fields.
func BuildContext(req models.QuoteRequest, product models.Product) models.BookingContext {
	bctx := make(models.BookingContext, len(req.Attributes)+9)
	for k, v := range req.Attributes {
		bctx[k] = v
	}

	units := req.Units
	if units < 1 {
		units = 1
	}
	hours := req.EndDate.Sub(req.StartDate).Hours()

	bctx[models.CtxDurationHours] = models.Number(hours)
	bctx[models.CtxDurationDays] = models.Number(math.Ceil(hours / 24))
	bctx[models.CtxUnitCount] = models.Number(float64(units))
	bctx[models.CtxDepositAmount] = models.Number(product.DepositAmount * float64(units))
	bctx[models.CtxProductID] = models.String(product.ID)
	bctx[models.CtxCategoryID] = models.String(product.CategoryID)
	bctx[models.CtxUserType] = models.String(req.UserType)
	bctx[models.CtxStartHour] = models.Number(float64(req.StartDate.Hour()))
	bctx[models.CtxStartWeekday] = models.String(strings.ToLower(req.StartDate.Weekday().String()))
	return bctx
}
