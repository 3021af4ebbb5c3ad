package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zvrva/retreatbooking/config"
	"github.com/zvrva/retreatbooking/internal/domain"
)

type RedisCache struct {
	client          *redis.Client
	roomsTTL        time.Duration
	blockedDatesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, roomsTTL, blockedDatesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:          redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		roomsTTL:        roomsTTL,
		blockedDatesTTL: blockedDatesTTL,
	}
}

func (c *RedisCache) GetRooms(ctx context.Context) ([]domain.Room, error) {
	data, err := c.client.Get(ctx, roomsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rooms []domain.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *RedisCache) SetRooms(ctx context.Context, rooms []domain.Room) error {
	payload, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, roomsKey(), payload, c.roomsTTL).Err()
}

// GetBlockedDates returns the cached calendar projection for a room set, or
// nil on a miss. The projection is read-side only; availability decisions
// never consult it.
func (c *RedisCache) GetBlockedDates(ctx context.Context, roomIDs []int64) ([]time.Time, error) {
	data, err := c.client.Get(ctx, blockedDatesKey(roomIDs)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var days []time.Time
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *RedisCache) SetBlockedDates(ctx context.Context, roomIDs []int64, days []time.Time) error {
	payload, err := json.Marshal(days)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, blockedDatesKey(roomIDs), payload, c.blockedDatesTTL).Err()
}

// InvalidateBlockedDates drops every cached projection. Called after any
// transition that changes which bookings hold inventory.
func (c *RedisCache) InvalidateBlockedDates(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "cache:blocked:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func roomsKey() string {
	return "cache:rooms"
}

func blockedDatesKey(roomIDs []int64) string {
	ids := make([]int64, len(roomIDs))
	copy(ids, roomIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "cache:blocked:" + strings.Join(parts, ",")
}
