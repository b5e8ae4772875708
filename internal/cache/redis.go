package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evcharge/config"
	"evcharge/internal/domain"
)

type RedisCache struct {
	client       *redis.Client
	stationsTTL  time.Duration
	recommendTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, stationsTTL, recommendTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:       redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		stationsTTL:  stationsTTL,
		recommendTTL: recommendTTL,
	}
}

func (c *RedisCache) GetStations(ctx context.Context) ([]domain.Station, error) {
	data, err := c.client.Get(ctx, stationsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var stations []domain.Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

func (c *RedisCache) SetStations(ctx context.Context, stations []domain.Station) error {
	payload, err := json.Marshal(stations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, stationsKey(), payload, c.stationsTTL).Err()
}

func (c *RedisCache) GetRecommendations(ctx context.Context, key string) ([]domain.StationRecommendation, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var recs []domain.StationRecommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *RedisCache) SetRecommendations(ctx context.Context, key string, recs []domain.StationRecommendation) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.recommendTTL).Err()
}

// AcquireChargerLock takes a short-lived advisory lock serializing the
// overlap-check-then-insert sequence for one charger.
func (c *RedisCache) AcquireChargerLock(ctx context.Context, chargerID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, chargerLockKey(chargerID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseChargerLock(ctx context.Context, chargerID int64) error {
	return c.client.Del(ctx, chargerLockKey(chargerID)).Err()
}

func stationsKey() string {
	return "cache:stations"
}

func chargerLockKey(chargerID int64) string {
	return fmt.Sprintf("lock:charger:%d", chargerID)
}
