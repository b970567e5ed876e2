// Package notifier carries notification messages between API instances.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient dials Redis and verifies the connection.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Redis publishes messages on a pub/sub channel so every instance's local
// hub receives them through Relay.
type Redis struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedis(client *redis.Client, channel string, logger *slog.Logger) *Redis {
	return &Redis{client: client, channel: channel, logger: logger}
}

// Emit implements notification.Notifier.
func (r *Redis) Emit(ctx context.Context, msg notification.Message) error {
	payload, err := encode(msg)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s to redis: %w", msg.Event, err)
	}
	return nil
}

// Relay forwards every message published on the channel to local until
// ctx is cancelled.
func (r *Redis) Relay(ctx context.Context, local notification.Notifier) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("notification relay started", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := decode(m.Payload)
			if err != nil {
				r.logger.Warn("dropping malformed notification", "error", err)
				continue
			}
			if err := local.Emit(ctx, msg); err != nil {
				r.logger.Warn("local notification delivery failed", "event", msg.Event, "error", err)
			}
		}
	}
}

func encode(msg notification.Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return b, nil
}

func decode(payload string) (notification.Message, error) {
	var msg notification.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return notification.Message{}, fmt.Errorf("decode notification: %w", err)
	}
	return msg, nil
}
