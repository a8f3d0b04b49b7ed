// Job: returns from Kafka are settled with damage and late penalties
package main

import (
	"context"
	"encoding/json"
	"errors"
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
	reader, err := kafka.GetNewReader("returns")
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

	// cache
	var cache interf.CacheStorage
	redis, err := db.NewCacheService()
	if err != nil {
		logger.Error("cache disabled", zap.Error(err))
	} else {
		defer redis.Close()
		cache = redis
	}

	// notifications
	var notifier interf.Notifier
	rb, err := rabbit.NewRabbitNotifier()
	if err != nil {
		logger.Error("notifications disabled", zap.Error(err))
	} else {
		defer rb.Close()
		notifier = rb
	}

	// services
	settings := services.NewSettingsService(logger, pg, cache)
	bookings := services.NewBookingService(logger, rulesDB, pg, pg, settings, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers := config.EnvOrDefaultInt("PRICING_RETURNS_COUNT", 5)
	logger.Info("returns job started", zap.Int("workers", workers))

	err = kafka.Consume(ctx, reader, workers, logger, func(ctx context.Context, msg []byte) error {
		var req models.ReturnRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return fmt.Errorf("decode return: %w", err)
		}
		booking, err := bookings.ProcessReturn(ctx, req)
		// redelivered message
		if errors.Is(err, models.ErrAlreadyReturned) {
			logger.Info("booking already returned", zap.String("booking", req.BookingID.String()))
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("booking returned",
			zap.String("booking", booking.ID.String()),
			zap.Float64("penalty", booking.Return.TotalPenalty))
		return nil
	})
	if err != nil {
		logger.Error("kafka", zap.Error(err))
	}
}
