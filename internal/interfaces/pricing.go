package pricing

import (
	"context"

	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	"github.com/google/uuid"
)

//go:generate mockgen -destination=./../services/mock_storage_test.go -package=pricing . RuleStorage,CatalogStorage,BookingStorage,SettingsStorage,CacheStorage,Notifier
//go:generate mockgen -destination=./../api/mock_storage_test.go -package=pricing . RuleStorage,CatalogStorage,BookingStorage,SettingsStorage,CacheStorage,Notifier

type RuleStorage interface {
	GetAllRules(ctx context.Context) ([]models.PriceRule, error)
	GetActiveRules(ctx context.Context, productID string, categoryID string) ([]models.PriceRule, error)
	GetRule(ctx context.Context, ruleID uuid.UUID) (models.PriceRule, error)
	SaveRule(ctx context.Context, rule models.PriceRule) (uuid.UUID, error)
	DeleteRule(ctx context.Context, ruleID uuid.UUID) error
}

type CatalogStorage interface {
	GetProduct(ctx context.Context, productID string) (models.Product, error)
	GetPricelists(ctx context.Context, userType string) ([]models.Pricelist, error)
}

type BookingStorage interface {
	CreateBooking(ctx context.Context, booking models.Booking) error
	GetBooking(ctx context.Context, bookingID uuid.UUID) (models.Booking, error)
	SaveReturn(ctx context.Context, bookingID uuid.UUID, record models.ReturnRecord) error
}

type SettingsStorage interface {
	GetSettings(ctx context.Context) (models.PenaltySettings, error)
	SaveSettings(ctx context.Context, settings models.PenaltySettings) error
}

type CacheStorage interface {
	GetSettings(ctx context.Context) (models.PenaltySettings, error)
	SetSettings(ctx context.Context, settings models.PenaltySettings) error
	InvalidateSettings(ctx context.Context) error
}

type Notifier interface {
	Publish(ctx context.Context, event models.BookingEvent) error
}
