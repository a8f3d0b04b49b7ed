package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	interf "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/interfaces"
	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type SettingsService struct {
	logger   *zap.Logger
	db       interf.SettingsStorage
	cache    interf.CacheStorage
	validate *validator.Validate
	now      func() time.Time
}

// cache may be nil
func NewSettingsService(logger *zap.Logger, db interf.SettingsStorage, cache interf.CacheStorage) *SettingsService {
	v := validator.New()
	v.RegisterStructValidation(percentageRates, models.PenaltySettings{})
	return &SettingsService{logger, db, cache, v, time.Now}
}

// percentage rates are capped at 100, fixed rates are plain amounts
func percentageRates(sl validator.StructLevel) {
	s := sl.Current().Interface().(models.PenaltySettings)
	if s.DamagePenaltyType == models.PenaltyPercentage && s.DamagePenaltyRate > 100 {
		sl.ReportError(s.DamagePenaltyRate, "DamagePenaltyRate", "damagePenaltyRate", "lte", "100")
	}
	if s.LatePenaltyType == models.PenaltyPercentage && s.LatePenaltyRate > 100 {
		sl.ReportError(s.LatePenaltyRate, "LatePenaltyRate", "latePenaltyRate", "lte", "100")
	}
}

// cache first, then database
func (s *SettingsService) Get(ctx context.Context) (settings models.PenaltySettings, err error) {
	if s.cache != nil {
		settings, err = s.cache.GetSettings(ctx)
		if err == nil {
			return settings, nil
		}
	}
	settings, err = s.db.GetSettings(ctx)
	if err != nil {
		return models.PenaltySettings{}, err
	}
	if s.cache != nil {
		if err := s.cache.SetSettings(ctx, settings); err != nil {
			s.logger.Warn("settings cache", zap.String("service", "Get"), zap.Error(err))
		}
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, settings models.PenaltySettings) (models.PenaltySettings, error) {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return models.PenaltySettings{}, fmt.Errorf("%w: %s", models.ErrInvalidRequest, strings.Join(msgs, "; "))
		}
		return models.PenaltySettings{}, err
	}

	settings.UpdatedAt = s.now().UTC()
	if err := s.db.SaveSettings(ctx, settings); err != nil {
		return models.PenaltySettings{}, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateSettings(ctx); err != nil {
			s.logger.Error(err.Error())
		}
	}
	return settings, nil
}
