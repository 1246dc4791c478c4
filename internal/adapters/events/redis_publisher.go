package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

// Pub/sub channels consumed by dashboards and downstream workers.
const (
	ChannelEvents  = "wastesense:events"
	ChannelAlerts  = "wastesense:alerts"
	ChannelGateway = "wastesense:gateway"
)

const stateTTL = 24 * time.Hour

// RedisPublisher fans events out over pub/sub and keeps a latest-state hash
// per container for cheap dashboard reads.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(ctx context.Context, addr, password string, db int) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &RedisPublisher{client: client}, nil
}

// NewRedisPublisherWithClient wraps an existing client. Used by tests.
func NewRedisPublisherWithClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func (p *RedisPublisher) PublishSensorEvent(ctx context.Context, ev ports.SensorEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal sensor event: %w", err)
	}

	state := map[string]interface{}{
		"container_uid": ev.ContainerUID,
		"fill_level":    ev.FillLevel,
		"battery_pct":   ev.BatteryPct,
		"rssi":          ev.RSSI,
		"sensor_type":   ev.SensorType,
		"timestamp":     ev.Timestamp,
	}
	stateKey := fmt.Sprintf("container:%s:state", ev.ContainerUID)

	pipe := p.client.Pipeline()
	pipe.HSet(ctx, stateKey, state)
	pipe.Expire(ctx, stateKey, stateTTL)
	pipe.Publish(ctx, ChannelEvents, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish sensor event: %w", err)
	}
	return nil
}

func (p *RedisPublisher) PublishAlert(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(map[string]interface{}{
		"id":            alert.ID,
		"type":          alert.Type,
		"severity":      alert.Severity,
		"container_uid": alert.ContainerUID,
		"title":         alert.Title,
		"message":       alert.Message,
		"created_at":    alert.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := p.client.Publish(ctx, ChannelAlerts, payload).Err(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

func (p *RedisPublisher) PublishGatewayEvent(ctx context.Context, ev ports.GatewayEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal gateway event: %w", err)
	}
	if err := p.client.Publish(ctx, ChannelGateway, payload).Err(); err != nil {
		return fmt.Errorf("publish gateway event: %w", err)
	}
	return nil
}
