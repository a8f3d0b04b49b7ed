// Job: booking requests from Kafka are priced and stored
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/config"
	db "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/db"
	kafka "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/external/kafka"
	rabbit "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/external/rabbitmq"
	interf "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/interfaces"
	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	services "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/services"
	"go.uber.org/zap"
)

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// kafka
	reader, err := kafka.GetNewReader("bookings")
	if err != nil {
		logger.Fatal("kafka", zap.Error(err))
	}
	defer reader.CloseReader()

	// rules
	rulesDB, err := db.NewRulesDB()
	if err != nil {
		logger.Fatal("rules storage", zap.Error(err))
	}
	defer rulesDB.Close(context.Background())

	// database
	pg, err := db.NewPricingDB(logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pg.Close()

	// notifications
	var notifier interf.Notifier
	rb, err := rabbit.NewRabbitNotifier()
	if err != nil {
		logger.Error("notifications disabled", zap.Error(err))
	} else {
		defer rb.Close()
		notifier = rb
	}

	// services; settings are not read while booking
	settings := services.NewSettingsService(logger, pg, nil)
	bookings := services.NewBookingService(logger, rulesDB, pg, pg, settings, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers := config.EnvOrDefaultInt("PRICING_BOOKINGS_COUNT", 5)
	logger.Info("bookings job started", zap.Int("workers", workers))

	err = kafka.Consume(ctx, reader, workers, logger, func(ctx context.Context, msg []byte) error {
		var req models.QuoteRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return fmt.Errorf("decode booking request: %w", err)
		}
		booking, err := bookings.CreateBooking(ctx, req)
		if err != nil {
			return err
		}
		logger.Info("booking created",
			zap.String("booking", booking.ID.String()),
			zap.Float64("total", booking.Pricing.TotalPrice))
		return nil
	})
	if err != nil {
		logger.Error("kafka", zap.Error(err))
	}
}
