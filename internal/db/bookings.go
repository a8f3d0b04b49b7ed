package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Tables: products, pricelists, pricelist_rates, bookings, penalty_settings.
// bookings.pricing and bookings.return_record are jsonb.
type PricingDB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPricingDB(logger *zap.Logger) (db *PricingDB, err error) {
	// config
	purl := os.Getenv("PRICING_DB")
	if purl == "" {
		return nil, fmt.Errorf("env PRICING_DB is not set")
	}
	port := os.Getenv("PRICING_DB_PORT")
	if port == "" {
		return nil, fmt.Errorf("env PRICING_DB_PORT is not set")
	}
	user := os.Getenv("PRICING_DB_USER")
	if user == "" {
		return nil, fmt.Errorf("env PRICING_DB_USER is not set")
	}
	password := os.Getenv("PRICING_DB_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("env PRICING_DB_PASSWORD is not set")
	}
	database := os.Getenv("PRICING_DB_BASE")
	if database == "" {
		return nil, fmt.Errorf("env PRICING_DB_BASE is not set")
	}
	dsn := "postgres://" + user + ":" + password + "@" + purl + ":" + port + "/" + database

	pool, err := pgxpool.New(context.Background(), dsn)
	return &PricingDB{pool, logger}, err
}

func (p *PricingDB) Close() {
	p.pool.Close()
}

func (p *PricingDB) logSQL(service string, err error, sql string, args []any) {
	p.logger.Error("SQL error",
		zap.String("service", service),
		zap.Error(err),
		zap.String("query", sql),
		zap.Any("args", args),
	)
}

// product with its default rates
func (p *PricingDB) GetProduct(ctx context.Context, productID string) (product models.Product, err error) {
	sql, args, err := sq.Select("id", "category_id", "name", "hourly", "daily", "weekly", "deposit").
		From("products").
		Where(sq.Eq{"id": productID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		p.logSQL("GetProduct", err, sql, args)
		return product, err
	}

	r := &product.BaseRates
	err = p.pool.QueryRow(ctx, sql, args...).
		Scan(&product.ID, &product.CategoryID, &product.Name, &r.Hourly, &r.Daily, &r.Weekly, &product.DepositAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, models.ErrNotFound
	}
	if err != nil {
		p.logSQL("GetProduct", err, sql, args)
		return models.Product{}, err
	}
	return product, nil
}

// Pricelists for the user type plus those open to every customer, highest priority first.
func (p *PricingDB) GetPricelists(ctx context.Context, userType string) ([]models.Pricelist, error) {
	sql, args, err := sq.Select("p.id", "p.name", "p.user_type", "p.priority", "p.valid_from", "p.valid_to",
		"r.product_id", "r.hourly", "r.daily", "r.weekly").
		From("pricelists p").
		Join("pricelist_rates r ON r.pricelist_id = p.id").
		Where(sq.Eq{"p.user_type": []string{userType, ""}}).
		OrderBy("p.priority DESC", "p.id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		p.logSQL("GetPricelists", err, sql, args)
		return nil, err
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		p.logSQL("GetPricelists", err, sql, args)
		return nil, err
	}
	defer rows.Close()

	pricelists := []models.Pricelist{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			pgid      pgtype.UUID
			name      string
			ut        string
			priority  int
			validFrom pgtype.Timestamptz
			validTo   pgtype.Timestamptz
			productID string
			rates     models.BaseRates
		)
		err := rows.Scan(&pgid, &name, &ut, &priority, &validFrom, &validTo,
			&productID, &rates.Hourly, &rates.Daily, &rates.Weekly)
		if err != nil {
			return nil, err
		}
		id, _ := uuid.FromBytes(pgid.Bytes[:])

		i, ok := index[id]
		if !ok {
			i = len(pricelists)
			index[id] = i
			pricelists = append(pricelists, models.Pricelist{
				ID:       id,
				Name:     name,
				UserType: ut,
				Priority: priority,
				Validity: models.Validity{StartDate: timeOrZero(validFrom), EndDate: timeOrZero(validTo)},
				Rates:    map[string]models.BaseRates{},
			})
		}
		pricelists[i].Rates[productID] = rates
	}
	return pricelists, rows.Err()
}

func timeOrZero(t pgtype.Timestamptz) time.Time {
	if t.Status != pgtype.Present {
		return time.Time{}
	}
	return t.Time
}

func (p *PricingDB) CreateBooking(ctx context.Context, booking models.Booking) error {
	pricing, err := json.Marshal(booking.Pricing)
	if err != nil {
		return err
	}

	sql, args, err := sq.Insert("bookings").
		Columns("id", "user_id", "product_id", "start_date", "expected_return", "units", "status", "pricing", "created_at").
		Values(booking.ID, booking.UserID, booking.ProductID, booking.StartDate, booking.ExpectedReturn,
			booking.Units, booking.Status, pricing, booking.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		p.logSQL("CreateBooking", err, sql, args)
		return err
	}

	_, err = p.pool.Exec(ctx, sql, args...)
	if err != nil {
		p.logSQL("CreateBooking", err, sql, args)
		return err
	}
	return nil
}

func (p *PricingDB) GetBooking(ctx context.Context, bookingID uuid.UUID) (models.Booking, error) {
	sql, args, err := sq.Select("id", "user_id", "product_id", "start_date", "expected_return", "units", "status",
		"pricing", "return_record", "created_at").
		From("bookings").
		Where(sq.Eq{"id": bookingID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		p.logSQL("GetBooking", err, sql, args)
		return models.Booking{}, err
	}

	var b models.Booking
	var pgid pgtype.UUID
	var pricing, record []byte
	err = p.pool.QueryRow(ctx, sql, args...).
		Scan(&pgid, &b.UserID, &b.ProductID, &b.StartDate, &b.ExpectedReturn, &b.Units, &b.Status,
			&pricing, &record, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Booking{}, models.ErrNotFound
	}
	if err != nil {
		p.logSQL("GetBooking", err, sql, args)
		return models.Booking{}, err
	}
	b.ID, _ = uuid.FromBytes(pgid.Bytes[:])

	if err := json.Unmarshal(pricing, &b.Pricing); err != nil {
		return models.Booking{}, fmt.Errorf("booking %s pricing: %w", b.ID, err)
	}
	if len(record) > 0 {
		b.Return = &models.ReturnRecord{}
		if err := json.Unmarshal(record, b.Return); err != nil {
			return models.Booking{}, fmt.Errorf("booking %s return: %w", b.ID, err)
		}
	}
	return b, nil
}

// The booking row is locked so a return is only recorded once.
func (p *PricingDB) SaveReturn(ctx context.Context, bookingID uuid.UUID, record models.ReturnRecord) (err error) {
	j, err := json.Marshal(record)
	if err != nil {
		return err
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM bookings WHERE id = $1 FOR UPDATE", bookingID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		err = models.ErrNotFound
		return err
	}
	if err != nil {
		return err
	}
	if status == models.BookingReturned {
		err = models.ErrAlreadyReturned
		return err
	}

	sql, args, err := sq.Update("bookings").
		Set("status", models.BookingReturned).
		Set("actual_return", record.ActualReturn).
		Set("return_record", j).
		Where(sq.Eq{"id": bookingID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		p.logSQL("SaveReturn", err, sql, args)
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	if err != nil {
		p.logSQL("SaveReturn", err, sql, args)
		return err
	}
	return tx.Commit(ctx)
}

var settingsColumns = []string{"id", "damage_penalty_rate", "damage_penalty_type", "late_penalty_rate",
	"late_penalty_type", "max_late_penalty_days", "updated_at"}

// The default settings row is created on first read.
func (p *PricingDB) GetSettings(ctx context.Context) (models.PenaltySettings, error) {
	sql, args, err := sq.Select(settingsColumns[1:]...).
		From("penalty_settings").
		Where(sq.Eq{"id": 1}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		p.logSQL("GetSettings", err, sql, args)
		return models.PenaltySettings{}, err
	}

	var s models.PenaltySettings
	err = p.pool.QueryRow(ctx, sql, args...).
		Scan(&s.DamagePenaltyRate, &s.DamagePenaltyType, &s.LatePenaltyRate, &s.LatePenaltyType,
			&s.MaxLatePenaltyDays, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		s = models.DefaultPenaltySettings()
		s.UpdatedAt = time.Now().UTC()
		return s, p.writeSettings(ctx, s, "ON CONFLICT (id) DO NOTHING")
	}
	if err != nil {
		p.logSQL("GetSettings", err, sql, args)
		return models.PenaltySettings{}, err
	}
	return s, nil
}

func (p *PricingDB) SaveSettings(ctx context.Context, s models.PenaltySettings) error {
	return p.writeSettings(ctx, s, "ON CONFLICT (id) DO UPDATE SET "+
		"damage_penalty_rate = EXCLUDED.damage_penalty_rate, "+
		"damage_penalty_type = EXCLUDED.damage_penalty_type, "+
		"late_penalty_rate = EXCLUDED.late_penalty_rate, "+
		"late_penalty_type = EXCLUDED.late_penalty_type, "+
		"max_late_penalty_days = EXCLUDED.max_late_penalty_days, "+
		"updated_at = EXCLUDED.updated_at")
}

func (p *PricingDB) writeSettings(ctx context.Context, s models.PenaltySettings, conflict string) error {
	sql, args, err := sq.Insert("penalty_settings").
		Columns(settingsColumns...).
		Values(1, s.DamagePenaltyRate, s.DamagePenaltyType, s.LatePenaltyRate, s.LatePenaltyType,
			s.MaxLatePenaltyDays, s.UpdatedAt).
		Suffix(conflict).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		p.logSQL("SaveSettings", err, sql, args)
		return err
	}
	_, err = p.pool.Exec(ctx, sql, args...)
	if err != nil {
		p.logSQL("SaveSettings", err, sql, args)
		return err
	}
	return nil
}
