// HTTP API: quotes, bookings, returns, rules and penalty settings
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/api"
	"github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/config"
	db "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/db"
	rabbit "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/external/rabbitmq"
	interf "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/interfaces"
	services "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/services"
	tracing "github.com/dhavalagnani/rentlytics-final-odoo-sub000/observability/otel"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// config
	port, err := config.EnvRequired("PRICING_PORT")
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	// tracing is optional
	shutdownTracer, err := tracing.InitTracer(context.Background(), "pricing", logger)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer shutdownTracer()
	}

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

	// api handlers
	r := api.NewHandler(bookings, settings, rulesDB, logger)
	srv := &http.Server{
		Handler:      otelhttp.NewHandler(r, "pricing"),
		Addr:         ":" + port,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()
	logger.Info("pricing api started", zap.String("port", port))

	// shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	timeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(timeout)
	if err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
