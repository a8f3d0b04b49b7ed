package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	redis "github.com/redis/go-redis/v9"
)

const settingsKey = "pricing:penalty_settings"

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService() (serv *CacheService, err error) {

	// config
	addr := os.Getenv("PRICING_CACHE_URL")
	if addr == "" {
		return nil, fmt.Errorf("env PRICING_CACHE_URL is not set")
	}
	user := os.Getenv("PRICING_CACHE_USER")
	pwd := os.Getenv("PRICING_CACHE_PWD")

	// redis
	db := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    pwd,
		Username:    user,
		DB:          0,
		MaxRetries:  5,
		DialTimeout: 10 * time.Second,
	})
	err = db.Ping(context.Background()).Err()
	if err != nil {
		return nil, err
	}

	return &CacheService{db, 5 * time.Minute}, nil
}

func (c *CacheService) GetSettings(ctx context.Context) (settings models.PenaltySettings, err error) {
	val, err := c.client.Get(ctx, settingsKey).Bytes()
	if err == redis.Nil {
		return settings, models.ErrNotFound
	} else if err != nil {
		return settings, err
	}

	err = json.Unmarshal(val, &settings)
	if err != nil {
		return models.PenaltySettings{}, err
	}
	return settings, nil
}

func (c *CacheService) SetSettings(ctx context.Context, settings models.PenaltySettings) error {
	j, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsKey, j, c.ttl).Err()
}

func (c *CacheService) InvalidateSettings(ctx context.Context) error {
	return c.client.Del(ctx, settingsKey).Err()
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
