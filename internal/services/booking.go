package pricing

import (
	"context"
	"fmt"
	"time"

	interf "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/interfaces"
	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BookingService struct {
	logger   *zap.Logger
	rules    interf.RuleStorage
	catalog  interf.CatalogStorage
	bookings interf.BookingStorage
	settings *SettingsService
	notifier interf.Notifier
	engine   *RuleEngine
	penalty  *PenaltyCalculator
	now      func() time.Time
}

// notifier may be nil
func NewBookingService(logger *zap.Logger, rules interf.RuleStorage, catalog interf.CatalogStorage, bookings interf.BookingStorage, settings *SettingsService, notifier interf.Notifier) *BookingService {
	return &BookingService{
		logger:   logger,
		rules:    rules,
		catalog:  catalog,
		bookings: bookings,
		settings: settings,
		notifier: notifier,
		engine:   NewRuleEngine(logger),
		penalty:  NewPenaltyCalculator(),
		now:      time.Now,
	}
}

func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	c := *s
	c.engine = s.engine.WithClock(now)
	c.penalty = s.penalty.WithClock(now)
	c.now = now
	return &c
}

func (s *BookingService) Log(err error, service string) {
	s.logger.Error("Booking",
		zap.String("service", service),
		zap.Error(err),
	)
}

// Quote prices a booking without storing anything.
func (s *BookingService) Quote(ctx context.Context, req models.QuoteRequest) (models.PricingSnapshot, error) {
	snapshot, _, err := s.quote(ctx, req)
	if err != nil {
		quotesTotal.WithLabelValues("error").Inc()
		return models.PricingSnapshot{}, err
	}
	quotesTotal.WithLabelValues("ok").Inc()
	return snapshot, nil
}

func (s *BookingService) quote(ctx context.Context, req models.QuoteRequest) (models.PricingSnapshot, models.Product, error) {
	if err := validateQuote(req); err != nil {
		return models.PricingSnapshot{}, models.Product{}, err
	}

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return models.PricingSnapshot{}, models.Product{}, fmt.Errorf("product %s: %w", req.ProductID, err)
	}

	// pricelists and rules are independent of each other
	var pricelists []models.Pricelist
	var rules []models.PriceRule
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pricelists, err = s.catalog.GetPricelists(gctx, req.UserType)
		if err != nil {
			return fmt.Errorf("pricelists: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rules, err = s.rules.GetActiveRules(gctx, product.ID, product.CategoryID)
		if err != nil {
			return fmt.Errorf("rules: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.PricingSnapshot{}, models.Product{}, err
	}

	rates := ResolveBaseRates(product, pricelists, req.UserType, s.now())
	snapshot := s.engine.ApplyPriceRules(rates, rules, BuildContext(req, product))
	rulesApplied.Add(float64(len(snapshot.AppliedRules)))
	return snapshot, product, nil
}

func validateQuote(req models.QuoteRequest) error {
	switch {
	case req.ProductID == "":
		return fmt.Errorf("%w: productId is required", models.ErrInvalidRequest)
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		return fmt.Errorf("%w: startDate and endDate are required", models.ErrInvalidRequest)
	case !req.EndDate.After(req.StartDate):
		return fmt.Errorf("%w: endDate must be after startDate", models.ErrInvalidRequest)
	case req.Units < 0:
		return fmt.Errorf("%w: units must not be negative", models.ErrInvalidRequest)
	}
	return nil
}

// CreateBooking prices the request and stores the booking with its snapshot.
func (s *BookingService) CreateBooking(ctx context.Context, req models.QuoteRequest) (models.Booking, error) {
	snapshot, product, err := s.quote(ctx, req)
	if err != nil {
		quotesTotal.WithLabelValues("error").Inc()
		return models.Booking{}, err
	}
	quotesTotal.WithLabelValues("ok").Inc()

	units := req.Units
	if units < 1 {
		units = 1
	}
	booking := models.Booking{
		ID:             uuid.New(),
		UserID:         req.UserID,
		ProductID:      product.ID,
		StartDate:      req.StartDate,
		ExpectedReturn: req.EndDate,
		Units:          units,
		Status:         models.BookingConfirmed,
		Pricing:        snapshot,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return models.Booking{}, err
	}

	s.notify(ctx, models.BookingEvent{
		Type:       models.EventBookingPriced,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		Amount:     snapshot.TotalPrice,
		OccurredAt: booking.CreatedAt,
	})
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (models.Booking, error) {
	return s.bookings.GetBooking(ctx, bookingID)
}

// ProcessReturn charges damage and late penalties against the booking deposit.
func (s *BookingService) ProcessReturn(ctx context.Context, req models.ReturnRequest) (models.Booking, error) {
	if req.BookingID == uuid.Nil {
		return models.Booking{}, fmt.Errorf("%w: bookingId is required", models.ErrInvalidRequest)
	}
	if req.ActualReturn.IsZero() {
		req.ActualReturn = s.now()
	}

	booking, err := s.bookings.GetBooking(ctx, req.BookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.Status == models.BookingReturned {
		return models.Booking{}, fmt.Errorf("%s: %w", booking.ID, models.ErrAlreadyReturned)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.Booking{}, fmt.Errorf("penalty settings: %w", err)
	}

	deposit := booking.Pricing.Deposit
	damage := s.penalty.CalculateDamagePenalty(deposit, req.DamageLevel, settings)
	late := s.penalty.CalculateLatePenalty(booking.ExpectedReturn, req.ActualReturn, deposit, settings)

	// the calculator passes negative deposits through; nothing negative is charged
	damage.Amount = max(damage.Amount, 0)
	late.Amount = max(late.Amount, 0)

	record := models.ReturnRecord{
		ActualReturn:  req.ActualReturn,
		DamagePenalty: damage,
		LatePenalty:   late,
		TotalPenalty:  CalculateTotalPenalty(&damage, &late),
	}
	if err := s.bookings.SaveReturn(ctx, booking.ID, record); err != nil {
		return models.Booking{}, err
	}
	if damage.Amount > 0 {
		penaltiesTotal.WithLabelValues("damage").Inc()
	}
	if late.Amount > 0 {
		penaltiesTotal.WithLabelValues("late").Inc()
	}

	booking.Status = models.BookingReturned
	booking.Return = &record

	s.notify(ctx, models.BookingEvent{
		Type:       models.EventBookingReturned,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		Amount:     record.TotalPenalty,
		OccurredAt: s.now().UTC(),
	})
	return booking, nil
}

// notification failures never fail the booking
func (s *BookingService) notify(ctx context.Context, event models.BookingEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.Log(err, "notify")
	}
}
